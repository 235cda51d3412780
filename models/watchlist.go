package models

import "time"

// WatchlistEntry is a scout bookmarking a player.
type WatchlistEntry struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	ScoutID   string    `json:"scout_id" gorm:"type:uuid;uniqueIndex:idx_watch_pair;not null"`
	PlayerID  string    `json:"player_id" gorm:"type:uuid;uniqueIndex:idx_watch_pair;not null"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Player *User `json:"player,omitempty" gorm:"foreignKey:PlayerID"`
}
