package models

import "time"

// Session is a bearer token; only its sha256 hash is stored.
type Session struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	TokenHash string    `gorm:"uniqueIndex;not null"`
	UserID    string    `gorm:"type:uuid;index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// PasswordReset is a one-time reset token (hashed).
type PasswordReset struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	TokenHash string    `gorm:"uniqueIndex;not null"`
	UserID    string    `gorm:"type:uuid;index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	UsedAt    *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
