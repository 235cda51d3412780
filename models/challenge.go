// models/challenge.go
package models

import (
	"time"
)

const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// Challenge is a leveled training drill. Content is static and admin-managed.
type Challenge struct {
	ID             string  `json:"id" gorm:"primaryKey;type:uuid"`
	TitleHe        string  `json:"title_he" gorm:"not null"`
	TitleEn        string  `json:"title_en"`
	DescriptionHe  string  `json:"description_he"`
	DescriptionEn  string  `json:"description_en"`
	Level          int     `json:"level" gorm:"index;not null;check:level >= 1 and level <= 10"`
	Category       string  `json:"category" gorm:"type:varchar(16);index;not null"` // stat key
	Position       string  `json:"position" gorm:"default:'all'"`
	AgeGroup       string  `json:"age_group" gorm:"default:'all'"`
	TargetReps     int     `json:"target_reps"`
	TargetSeconds  int     `json:"target_seconds"`
	Points         int     `json:"points" gorm:"not null"`
	PrerequisiteID *string `json:"prerequisite_id,omitempty" gorm:"type:uuid"`
	Active         bool    `json:"active" gorm:"default:true"`

	Timestamps
}

// Title picks the localized title, falling back to Hebrew.
func (c Challenge) Title(lang string) string {
	if lang == "en" && c.TitleEn != "" {
		return c.TitleEn
	}
	return c.TitleHe
}

// SubmissionMetrics are the self-reported numbers attached to a submission.
type SubmissionMetrics struct {
	Attempts  int `json:"attempts"`
	Successes int `json:"successes"`
	Reps      int `json:"reps"`
	Seconds   int `json:"seconds"`
}

// ChallengeSubmission is one attempt at a challenge, backed by a video.
type ChallengeSubmission struct {
	ID          string            `json:"id" gorm:"primaryKey;type:uuid"`
	ChallengeID string            `json:"challenge_id" gorm:"type:uuid;index;not null"`
	UserID      string            `json:"user_id" gorm:"type:uuid;index;not null"`
	VideoID     string            `json:"video_id" gorm:"type:uuid"`
	Level       int               `json:"level"` // challenge level at submission time
	Metrics     SubmissionMetrics `json:"metrics" gorm:"serializer:json;type:jsonb"`
	AutoScore   float64           `json:"auto_score"`
	Score       *float64          `json:"score,omitempty"`
	Status      string            `json:"status" gorm:"type:varchar(16);index;default:'pending'"`
	Feedback    string            `json:"feedback,omitempty"`
	ReviewedBy  *string           `json:"reviewed_by,omitempty" gorm:"type:uuid"`
	ReviewedAt  *time.Time        `json:"reviewed_at,omitempty"`

	Challenge *Challenge `json:"challenge,omitempty" gorm:"foreignKey:ChallengeID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// DefaultChallenges seed one drill per level so a fresh install is usable.
var DefaultChallenges = []Challenge{
	{TitleHe: "כדרור בין קונוסים", TitleEn: "Cone dribble", Level: 1, Category: StatDribbling, TargetReps: 5, Points: 10},
	{TitleHe: "מסירות לקיר", TitleEn: "Wall passes", Level: 2, Category: StatPassing, TargetReps: 20, Points: 15},
	{TitleHe: "ספרינט 20 מטר", TitleEn: "20m sprint", Level: 3, Category: StatSpeed, TargetSeconds: 4, Points: 20},
	{TitleHe: "הקפצות כדור", TitleEn: "Keep-ups", Level: 4, Category: StatTechnique, TargetReps: 50, Points: 25},
	{TitleHe: "בעיטות לפינות", TitleEn: "Corner shooting", Level: 5, Category: StatShooting, TargetReps: 10, Points: 30},
	{TitleHe: "שכיבות סמיכה וספרינט", TitleEn: "Push-up sprint circuit", Level: 6, Category: StatPhysical, TargetReps: 15, TargetSeconds: 60, Points: 35},
	{TitleHe: "מסירה ארוכה למטרה", TitleEn: "Long ball to target", Level: 7, Category: StatPassing, TargetReps: 10, Points: 40},
	{TitleHe: "כדרור במהירות", TitleEn: "Speed dribble slalom", Level: 8, Category: StatDribbling, TargetSeconds: 12, Points: 45},
	{TitleHe: "בעיטה חופשית", TitleEn: "Free kick accuracy", Level: 9, Category: StatShooting, TargetReps: 10, Points: 50},
	{TitleHe: "מבחן עילית", TitleEn: "Elite combination drill", Level: 10, Category: StatTechnique, TargetReps: 10, TargetSeconds: 90, Points: 60},
}
