// models/assessment.go
package models

import (
	"time"
)

const (
	AssessmentInProgress = "in_progress"
	AssessmentCompleted  = "completed"
)

const (
	AssessmentSubmissionPending = "pending"
	AssessmentSubmissionScored  = "scored"
)

// Assessment is a player's starting-level evaluation: one scored video per
// required exercise type.
type Assessment struct {
	ID            string     `json:"id" gorm:"primaryKey;type:uuid"`
	UserID        string     `json:"user_id" gorm:"type:uuid;index;not null"`
	Status        string     `json:"status" gorm:"type:varchar(16);default:'in_progress'"`
	ExerciseTypes []string   `json:"exercise_types" gorm:"serializer:json;type:jsonb"`
	AverageScore  float64    `json:"average_score"`
	AssignedLevel int        `json:"assigned_level"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`

	Submissions []AssessmentSubmission `json:"submissions" gorm:"foreignKey:AssessmentID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// AssessmentSubmission is the video for one exercise of an assessment.
type AssessmentSubmission struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid"`
	AssessmentID string     `json:"assessment_id" gorm:"type:uuid;index;not null"`
	UserID       string     `json:"user_id" gorm:"type:uuid;index;not null"`
	ExerciseType string     `json:"exercise_type" gorm:"not null"`
	VideoID      string     `json:"video_id" gorm:"type:uuid"`
	Score        *float64   `json:"score,omitempty"`
	Status       string     `json:"status" gorm:"type:varchar(16);default:'pending'"`
	ScoredBy     *string    `json:"scored_by,omitempty" gorm:"type:uuid"`
	ScoredAt     *time.Time `json:"scored_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
