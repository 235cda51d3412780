package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"scout-platform/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScoutService is the scout-facing side: player search, player pages and the
// watchlist.
type ScoutService struct {
	DB    *gorm.DB
	Cache *CacheService
	Now   func() time.Time
}

func NewScoutService(db *gorm.DB, cache *CacheService) *ScoutService {
	return &ScoutService{DB: db, Cache: cache, Now: time.Now}
}

// PlayerDetails is a player page: public profile plus approved videos.
type PlayerDetails struct {
	Player    models.PublicPlayer `json:"player"`
	Videos    []models.Video      `json:"videos"`
	Watching  bool                `json:"watching"`
	WatchNote string              `json:"watch_note,omitempty"`
}

// WatchlistItem is a watchlist entry with the player's public profile.
type WatchlistItem struct {
	ID        string              `json:"id"`
	Note      string              `json:"note,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	Player    models.PublicPlayer `json:"player"`
}

// BrowsePlayers searches players.
func (s *ScoutService) BrowsePlayers(ctx context.Context, f PlayerFilter) (*PlayerPage, error) {
	return SearchPlayers(ctx, s.DB, f, s.Now())
}

func (s *ScoutService) findPlayer(ctx context.Context, playerID string) (*models.User, error) {
	player, err := findUser(ctx, s.DB, s.Cache, playerID)
	if err != nil {
		return nil, err
	}
	if !player.IsPlayer() {
		return nil, ErrNotAPlayer
	}
	return player, nil
}

// ViewPlayer returns a player page. Views by scouts count towards the
// player's profile_views.
func (s *ScoutService) ViewPlayer(ctx context.Context, viewer *models.User, playerID string) (*PlayerDetails, error) {
	player, err := s.findPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if viewer.IsScout() {
		if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", playerID).
			UpdateColumn("stats", gorm.Expr(
				"jsonb_set(COALESCE(stats, '{}'::jsonb), '{profile_views}', to_jsonb(COALESCE((stats->>'profile_views')::bigint, 0) + 1))",
			)).Error; err != nil {
			return nil, err
		}
		player.Stats.ProfileViews++
		s.Cache.Delete(ctx, profileKey(playerID))
	}

	var videos []models.Video
	if err := s.DB.WithContext(ctx).
		Where("owner_id = ? AND status = ?", playerID, models.VideoStatusApproved).
		Order("created_at DESC").
		Limit(50).
		Find(&videos).Error; err != nil {
		return nil, err
	}

	details := &PlayerDetails{Player: player.Public(s.Now()), Videos: videos}
	if viewer.IsScout() {
		var entry models.WatchlistEntry
		err := s.DB.WithContext(ctx).Where("scout_id = ? AND player_id = ?", viewer.ID, playerID).First(&entry).Error
		if err == nil {
			details.Watching = true
			details.WatchNote = entry.Note
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return details, nil
}

// AddToWatchlist bookmarks a player. Adding an already watched player
// updates the note instead.
func (s *ScoutService) AddToWatchlist(ctx context.Context, scoutID, playerID, note string) (*models.WatchlistEntry, error) {
	if scoutID == playerID {
		return nil, ErrValidation
	}
	if _, err := s.findPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	entry := &models.WatchlistEntry{
		ID:       uuid.NewString(),
		ScoutID:  scoutID,
		PlayerID: playerID,
		Note:     strings.TrimSpace(note),
	}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scout_id"}, {Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"note", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		return nil, err
	}
	// on conflict the stored row keeps its original id
	var saved models.WatchlistEntry
	if err := s.DB.WithContext(ctx).
		Where("scout_id = ? AND player_id = ?", scoutID, playerID).
		First(&saved).Error; err != nil {
		return nil, err
	}
	log.Info().Str("scout_id", scoutID).Str("player_id", playerID).Msg("👀 player watched")
	return &saved, nil
}

// RemoveFromWatchlist deletes the entry for a player.
func (s *ScoutService) RemoveFromWatchlist(ctx context.Context, scoutID, playerID string) error {
	res := s.DB.WithContext(ctx).
		Where("scout_id = ? AND player_id = ?", scoutID, playerID).
		Delete(&models.WatchlistEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateWatchlistNote changes the private note of an entry.
func (s *ScoutService) UpdateWatchlistNote(ctx context.Context, scoutID, playerID, note string) (*models.WatchlistEntry, error) {
	var entry models.WatchlistEntry
	err := s.DB.WithContext(ctx).Where("scout_id = ? AND player_id = ?", scoutID, playerID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	entry.Note = strings.TrimSpace(note)
	if err := s.DB.WithContext(ctx).Model(&entry).Update("note", entry.Note).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Watchlist lists a scout's entries, newest first. Entries whose player no
// longer exists are skipped.
func (s *ScoutService) Watchlist(ctx context.Context, scoutID string) ([]WatchlistItem, error) {
	var entries []models.WatchlistEntry
	if err := s.DB.WithContext(ctx).Preload("Player").
		Where("scout_id = ?", scoutID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	now := s.Now()
	items := make([]WatchlistItem, 0, len(entries))
	for _, e := range entries {
		if e.Player == nil {
			continue
		}
		items = append(items, WatchlistItem{ID: e.ID, Note: e.Note, CreatedAt: e.CreatedAt, Player: e.Player.Public(now)})
	}
	return items, nil
}
