// services/users.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"scout-platform/models"
	"scout-platform/utils"

	"gorm.io/gorm"
)

// findUser loads a user through the profile cache.
func findUser(ctx context.Context, db *gorm.DB, cache *CacheService, userID string) (*models.User, error) {
	var user models.User
	if cache.GetJSON(ctx, "profile", profileKey(userID), &user) && user.ID == userID {
		return &user, nil
	}
	err := db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	cache.SetJSON(ctx, profileKey(userID), &user, ProfileCacheTTL)
	return &user, nil
}

// PlayerFilter narrows the scout-facing player search.
type PlayerFilter struct {
	Query        string
	Position     string
	City         string
	MinLevel     int
	MaxLevel     int
	MinAge       int
	MaxAge       int
	AssessedOnly bool
	Sort         string // level | newest | most_viewed
	Page         int
	Size         int
}

// PlayerPage is one page of search results.
type PlayerPage struct {
	Players    []models.PublicPlayer `json:"players"`
	Page       int                   `json:"page"`
	Size       int                   `json:"size"`
	TotalItems int64                 `json:"total_items"`
	TotalPages int                   `json:"total_pages"`
}

// normalizePage clamps page/size the way every list endpoint does.
func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}

func totalPages(total int64, size int) int {
	return int((total + int64(size) - 1) / int64(size))
}

// SearchPlayers searches players for scouts. Name matching is done on the
// ascii-folded name so diacritics and transliteration don't matter.
func SearchPlayers(ctx context.Context, db *gorm.DB, f PlayerFilter, now time.Time) (*PlayerPage, error) {
	page, size := normalizePage(f.Page, f.Size)

	q := db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RolePlayer)
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + utils.FoldName(term) + "%"
		q = q.Where("search_name LIKE ? OR LOWER(club) LIKE ?", like, "%"+strings.ToLower(term)+"%")
	}
	if f.Position != "" {
		q = q.Where("position = ?", f.Position)
	}
	if f.City != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(strings.TrimSpace(f.City)))
	}
	if f.MinLevel > 0 {
		q = q.Where("level >= ?", f.MinLevel)
	}
	if f.MaxLevel > 0 {
		q = q.Where("level <= ?", f.MaxLevel)
	}
	// age bounds translate to birth-date bounds
	if f.MinAge > 0 {
		q = q.Where("date_of_birth <= ?", now.AddDate(-f.MinAge, 0, 0))
	}
	if f.MaxAge > 0 {
		q = q.Where("date_of_birth > ?", now.AddDate(-(f.MaxAge+1), 0, 0))
	}
	if f.AssessedOnly {
		q = q.Where("assessment_completed = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	switch f.Sort {
	case "newest":
		q = q.Order("created_at DESC")
	case "most_viewed":
		q = q.Order("(stats->>'profile_views')::bigint DESC NULLS LAST").Order("created_at DESC")
	default:
		q = q.Order("level DESC").Order("created_at DESC")
	}

	var users []models.User
	if err := q.Limit(size).Offset((page - 1) * size).Find(&users).Error; err != nil {
		return nil, err
	}

	res := make([]models.PublicPlayer, len(users))
	for i := range users {
		res[i] = users[i].Public(now)
	}
	return &PlayerPage{
		Players:    res,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages(total, size),
	}, nil
}
