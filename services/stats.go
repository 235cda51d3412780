package services

import (
	"context"

	"scout-platform/models"

	"gorm.io/gorm"
)

// VideoAggregate is the per-owner rollup of approved videos.
type VideoAggregate struct {
	OwnerID string
	Videos  int64
	Views   int64
	Likes   int64
}

// videoAggregates sums approved videos per owner; no ids means every owner.
func videoAggregates(ctx context.Context, db *gorm.DB, ownerIDs ...string) (map[string]VideoAggregate, error) {
	q := db.WithContext(ctx).Model(&models.Video{}).
		Select("owner_id, COUNT(*) AS videos, COALESCE(SUM(views), 0) AS views, COALESCE(SUM(likes), 0) AS likes").
		Where("status = ?", models.VideoStatusApproved)
	if len(ownerIDs) > 0 {
		q = q.Where("owner_id IN ?", ownerIDs)
	}
	var rows []VideoAggregate
	if err := q.Group("owner_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]VideoAggregate, len(rows))
	for _, r := range rows {
		out[r.OwnerID] = r
	}
	return out, nil
}

// ApplyAggregate copies the rollup onto stats; it reports whether anything changed.
func ApplyAggregate(st *models.PlayerStats, agg VideoAggregate) bool {
	if st.VideosCount == agg.Videos && st.TotalViews == agg.Views && st.TotalLikes == agg.Likes {
		return false
	}
	st.VideosCount = agg.Videos
	st.TotalViews = agg.Views
	st.TotalLikes = agg.Likes
	return true
}

// writeVideoCounters merges the rollup keys into stats without touching the
// rest of the document.
func writeVideoCounters(ctx context.Context, db *gorm.DB, userID string, agg VideoAggregate) error {
	return db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("stats", gorm.Expr(
			"COALESCE(stats, '{}'::jsonb) || jsonb_build_object('videos_count', ?::bigint, 'total_views', ?::bigint, 'total_likes', ?::bigint)",
			agg.Videos, agg.Views, agg.Likes,
		)).Error
}

// RefreshPlayerStats recomputes the video counters of one player.
func RefreshPlayerStats(ctx context.Context, db *gorm.DB, cache *CacheService, userID string) error {
	aggs, err := videoAggregates(ctx, db, userID)
	if err != nil {
		return err
	}
	var user models.User
	if err := db.WithContext(ctx).Select("id", "stats").First(&user, "id = ?", userID).Error; err != nil {
		return err
	}
	if !ApplyAggregate(&user.Stats, aggs[userID]) {
		return nil
	}
	if err := writeVideoCounters(ctx, db, userID, aggs[userID]); err != nil {
		return err
	}
	cache.Delete(ctx, profileKey(userID))
	return nil
}

// RecomputeAllPlayerStats refreshes every player whose counters drifted.
// Returns the number of players updated.
func RecomputeAllPlayerStats(ctx context.Context, db *gorm.DB, cache *CacheService) (int, error) {
	aggs, err := videoAggregates(ctx, db)
	if err != nil {
		return 0, err
	}

	updated := 0
	var batch []models.User
	err = db.WithContext(ctx).Select("id", "stats").Where("role = ?", models.RolePlayer).
		FindInBatches(&batch, 200, func(tx *gorm.DB, _ int) error {
			for i := range batch {
				u := &batch[i]
				if !ApplyAggregate(&u.Stats, aggs[u.ID]) {
					continue
				}
				if err := writeVideoCounters(ctx, db, u.ID, aggs[u.ID]); err != nil {
					return err
				}
				cache.Delete(ctx, profileKey(u.ID))
				updated++
			}
			return nil
		}).Error
	return updated, err
}
