// models/video.go
package models

import (
	"time"
)

const (
	VideoStatusPending  = "pending"
	VideoStatusApproved = "approved"
	VideoStatusRejected = "rejected"
)

// Video is an uploaded clip plus its categorisation and moderation state.
type Video struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid"`
	OwnerID     string `json:"owner_id" gorm:"type:uuid;index;not null"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description,omitempty"`

	// 📁 Blob references
	ObjectKey    string `json:"-" gorm:"not null"`
	URL          string `json:"url"`
	ThumbnailKey string `json:"-"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	ContentType  string `json:"content_type"`
	SizeBytes    int64  `json:"size_bytes"`

	// 🏷️ Categorisation (category slugs)
	ExerciseType string `json:"exercise_type" gorm:"index"`
	AgeGroup     string `json:"age_group" gorm:"index"`
	Position     string `json:"position" gorm:"index"`

	// 🛡️ Moderation
	Status          string     `json:"status" gorm:"type:varchar(16);index;default:'pending'"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ReviewedBy      *string    `json:"reviewed_by,omitempty" gorm:"type:uuid"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`

	Views int64 `json:"views" gorm:"default:0"`
	Likes int64 `json:"likes" gorm:"default:0"`

	Timestamps
}

// VideoLike records one user's like; the pair is unique.
type VideoLike struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	VideoID   string    `json:"video_id" gorm:"type:uuid;uniqueIndex:idx_video_like;not null"`
	UserID    string    `json:"user_id" gorm:"type:uuid;uniqueIndex:idx_video_like;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
