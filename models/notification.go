package models

import "time"

const (
	NotificationVideoApproved       = "video_approved"
	NotificationVideoRejected       = "video_rejected"
	NotificationVideoRecategorized  = "video_recategorized"
	NotificationSubmissionApproved  = "submission_approved"
	NotificationSubmissionRejected  = "submission_rejected"
	NotificationAssessmentCompleted = "assessment_completed"
	NotificationLevelUp             = "level_up"
	NotificationBadgeAwarded        = "badge_awarded"
)

// Notification is a message for one user, streamed over SSE.
type Notification struct {
	ID        string            `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    string            `json:"user_id" gorm:"type:uuid;index;not null"`
	Kind      string            `json:"kind" gorm:"type:varchar(32);not null"`
	Message   string            `json:"message"`
	Payload   map[string]string `json:"payload,omitempty" gorm:"serializer:json;type:jsonb"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at" gorm:"autoCreateTime;index"`
}
