package models

import (
	"time"
)

// BadgeType: static achievement config, upserted by code at startup
type BadgeType struct {
	ID            string           `gorm:"primaryKey;type:uuid" json:"id"`
	Code          string           `gorm:"uniqueIndex;not null" json:"code"` // e.g., "FIRST_VIDEO", "LEVEL_5"
	NameHe        string           `gorm:"not null" json:"name_he"`
	NameEn        string           `gorm:"not null" json:"name_en"`
	DescriptionHe string           `json:"description_he"`
	DescriptionEn string           `json:"description_en"`
	IconURL       string           `gorm:"type:text" json:"icon_url,omitempty"`
	Rarity        string           `gorm:"type:varchar(16);default:'common'" json:"rarity"` // common, rare, epic, legendary
	Threshold     map[string]int64 `gorm:"serializer:json;type:jsonb" json:"threshold"`     // e.g., {"level": 5}
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// Name picks the label for a language, falling back to Hebrew.
func (b BadgeType) Name(lang string) string {
	if lang == "en" && b.NameEn != "" {
		return b.NameEn
	}
	return b.NameHe
}

// UserBadge: awarded instance
type UserBadge struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string    `gorm:"type:uuid;uniqueIndex:idx_user_badge;not null" json:"user_id"`
	BadgeTypeID string    `gorm:"type:uuid;uniqueIndex:idx_user_badge;not null" json:"badge_type_id"`
	AwardedAt   time.Time `gorm:"autoCreateTime" json:"awarded_at"`

	BadgeType *BadgeType `gorm:"foreignKey:BadgeTypeID" json:"badge,omitempty"`
}

// Threshold keys understood by the badge service.
const (
	ThresholdEvent               = "event"
	ThresholdVideos              = "videos"
	ThresholdCompletedChallenges = "completed_challenges"
	ThresholdAssessment          = "assessment_completed"
	ThresholdLevel               = "level"
	ThresholdStreak              = "streak"
	ThresholdPoints              = "points"
)

// BadgeTriggers is the achievement catalog.
var BadgeTriggers = []BadgeType{
	{
		Code:          "WELCOME",
		NameHe:        "ברוכים הבאים!",
		NameEn:        "Welcome Aboard!",
		DescriptionHe: "הצטרפת לפלטפורמה",
		DescriptionEn: "Joined the platform",
		Rarity:        "common",
		Threshold:     map[string]int64{ThresholdEvent: 1},
	},
	{
		Code:          "FIRST_VIDEO",
		NameHe:        "על המסך",
		NameEn:        "On Camera",
		DescriptionHe: "העלית את הסרטון הראשון",
		DescriptionEn: "Uploaded your first video",
		Rarity:        "common",
		Threshold:     map[string]int64{ThresholdVideos: 1},
	},
	{
		Code:          "FIRST_CHALLENGE",
		NameHe:        "אתגר ראשון",
		NameEn:        "First Challenge",
		DescriptionHe: "השלמת אתגר ראשון",
		DescriptionEn: "Completed your first challenge",
		Rarity:        "common",
		Threshold:     map[string]int64{ThresholdCompletedChallenges: 1},
	},
	{
		Code:          "ASSESSMENT_DONE",
		NameHe:        "הוערכת",
		NameEn:        "Assessed",
		DescriptionHe: "השלמת את מבחן הרמה",
		DescriptionEn: "Completed the level assessment",
		Rarity:        "common",
		Threshold:     map[string]int64{ThresholdAssessment: 1},
	},
	{
		Code:          "LEVEL_5",
		NameHe:        "באמצע הדרך",
		NameEn:        "Halfway There",
		DescriptionHe: "הגעת לרמה 5",
		DescriptionEn: "Reached level 5",
		Rarity:        "rare",
		Threshold:     map[string]int64{ThresholdLevel: 5},
	},
	{
		Code:          "LEVEL_10",
		NameHe:        "עילית",
		NameEn:        "Elite",
		DescriptionHe: "הגעת לרמה 10",
		DescriptionEn: "Reached level 10",
		Rarity:        "legendary",
		Threshold:     map[string]int64{ThresholdLevel: 10},
	},
	{
		Code:          "STREAK_7",
		NameHe:        "שבוע רצוף",
		NameEn:        "Week Streak",
		DescriptionHe: "התאמנת שבעה ימים ברצף",
		DescriptionEn: "Trained seven days in a row",
		Rarity:        "rare",
		Threshold:     map[string]int64{ThresholdStreak: 7},
	},
	{
		Code:          "POINTS_1000",
		NameHe:        "אלף נקודות",
		NameEn:        "Thousand Club",
		DescriptionHe: "צברת 1000 נקודות אימון",
		DescriptionEn: "Earned 1000 training points",
		Rarity:        "epic",
		Threshold:     map[string]int64{ThresholdPoints: 1000},
	},
}
