package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RolePlayer = "player"
	RoleScout  = "scout"
	RoleAdmin  = "admin"
)

const (
	PositionGoalkeeper = "goalkeeper"
	PositionDefender   = "defender"
	PositionMidfielder = "midfielder"
	PositionForward    = "forward"
)

const (
	MinLevel = 1
	MaxLevel = 10
)

// Stat keys double as challenge categories.
const (
	StatSpeed     = "speed"
	StatTechnique = "technique"
	StatPassing   = "passing"
	StatShooting  = "shooting"
	StatDribbling = "dribbling"
	StatPhysical  = "physical"
)

var StatKeys = []string{StatSpeed, StatTechnique, StatPassing, StatShooting, StatDribbling, StatPhysical}

// User is the single account document for players, scouts and admins.
// Role-specific columns stay empty for the other roles.
type User struct {
	ID                string     `gorm:"primaryKey;type:uuid" json:"id"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash      string     `gorm:"not null" json:"-"`
	Role              string     `gorm:"type:varchar(16);index;not null" json:"role"`
	FullName          string     `gorm:"index" json:"full_name"`
	SearchName        string     `gorm:"index" json:"-"` // ascii-folded full name
	Phone             string     `json:"phone,omitempty"`
	City              string     `gorm:"index" json:"city,omitempty"`
	Bio               string     `json:"bio,omitempty"`
	ProfileImageURL   string     `json:"profile_image_url,omitempty"`
	PreferredLanguage string     `gorm:"type:varchar(2);default:'he'" json:"preferred_language"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`

	// player
	Position            string `gorm:"type:varchar(16);index" json:"position,omitempty"`
	PreferredFoot       string `gorm:"type:varchar(8)" json:"preferred_foot,omitempty"`
	HeightCM            int    `json:"height_cm,omitempty"`
	WeightKG            int    `json:"weight_kg,omitempty"`
	Club                string `json:"club,omitempty"`
	Level               int    `gorm:"default:1;index" json:"level"`
	AssessmentCompleted bool   `gorm:"default:false" json:"assessment_completed"`

	// scout
	Organization    string `json:"organization,omitempty"`
	LicenseNumber   string `json:"license_number,omitempty"`
	YearsExperience int    `json:"years_experience,omitempty"`

	Stats            PlayerStats      `gorm:"serializer:json;type:jsonb" json:"stats"`
	TrainingProgress TrainingProgress `gorm:"serializer:json;type:jsonb" json:"training_progress"`

	Timestamps
}

// PlayerStats is the nested skill/engagement object on a user.
// Skill values are 0–100.
type PlayerStats struct {
	Speed        int   `json:"speed"`
	Technique    int   `json:"technique"`
	Passing      int   `json:"passing"`
	Shooting     int   `json:"shooting"`
	Dribbling    int   `json:"dribbling"`
	Physical     int   `json:"physical"`
	VideosCount  int64 `json:"videos_count"`
	TotalViews   int64 `json:"total_views"`
	TotalLikes   int64 `json:"total_likes"`
	ProfileViews int64 `json:"profile_views"`
}

// Skill returns the value of a stat key, or -1 for an unknown key.
func (s PlayerStats) Skill(key string) int {
	switch key {
	case StatSpeed:
		return s.Speed
	case StatTechnique:
		return s.Technique
	case StatPassing:
		return s.Passing
	case StatShooting:
		return s.Shooting
	case StatDribbling:
		return s.Dribbling
	case StatPhysical:
		return s.Physical
	}
	return -1
}

// SetSkill writes a stat key, clamped to 0–100. Unknown keys are ignored.
func (s *PlayerStats) SetSkill(key string, value int) {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	switch key {
	case StatSpeed:
		s.Speed = value
	case StatTechnique:
		s.Technique = value
	case StatPassing:
		s.Passing = value
	case StatShooting:
		s.Shooting = value
	case StatDribbling:
		s.Dribbling = value
	case StatPhysical:
		s.Physical = value
	}
}

// WeakestSkill is the lowest stat; ties resolve in StatKeys order.
func (s PlayerStats) WeakestSkill() string {
	weakest := StatKeys[0]
	for _, k := range StatKeys[1:] {
		if s.Skill(k) < s.Skill(weakest) {
			weakest = k
		}
	}
	return weakest
}

// TrainingProgress tracks challenge activity for a player (denormalized).
type TrainingProgress struct {
	CompletedChallenges int64          `json:"completed_challenges"`
	TotalPoints         int64          `json:"total_points"`
	CurrentStreak       int            `json:"current_streak"`
	LongestStreak       int            `json:"longest_streak"`
	LastActivityOn      string         `json:"last_activity_on,omitempty"` // YYYY-MM-DD
	CompletedByLevel    map[string]int `json:"completed_by_level,omitempty"`
	LastLevelUpAt       *time.Time     `json:"last_level_up_at,omitempty"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Age in whole years at the given instant; 0 when unknown.
func (u *User) Age(now time.Time) int {
	if u.DateOfBirth == nil {
		return 0
	}
	dob := *u.DateOfBirth
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func (u *User) IsPlayer() bool { return u.Role == RolePlayer }
func (u *User) IsScout() bool  { return u.Role == RoleScout }
func (u *User) IsAdmin() bool  { return u.Role == RoleAdmin }

// PublicPlayer is what scouts see of a player.
type PublicPlayer struct {
	ID                  string      `json:"id"`
	FullName            string      `json:"full_name"`
	City                string      `json:"city,omitempty"`
	Bio                 string      `json:"bio,omitempty"`
	ProfileImageURL     string      `json:"profile_image_url,omitempty"`
	Age                 int         `json:"age,omitempty"`
	Position            string      `json:"position,omitempty"`
	PreferredFoot       string      `json:"preferred_foot,omitempty"`
	HeightCM            int         `json:"height_cm,omitempty"`
	WeightKG            int         `json:"weight_kg,omitempty"`
	Club                string      `json:"club,omitempty"`
	Level               int         `json:"level"`
	AssessmentCompleted bool        `json:"assessment_completed"`
	Stats               PlayerStats `json:"stats"`
}

// Public projects the scout-visible fields.
func (u *User) Public(now time.Time) PublicPlayer {
	return PublicPlayer{
		ID:                  u.ID,
		FullName:            u.FullName,
		City:                u.City,
		Bio:                 u.Bio,
		ProfileImageURL:     u.ProfileImageURL,
		Age:                 u.Age(now),
		Position:            u.Position,
		PreferredFoot:       u.PreferredFoot,
		HeightCM:            u.HeightCM,
		WeightKG:            u.WeightKG,
		Club:                u.Club,
		Level:               u.Level,
		AssessmentCompleted: u.AssessmentCompleted,
		Stats:               u.Stats,
	}
}
