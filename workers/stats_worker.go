package workers

import (
	"context"
	"time"

	"scout-platform/services"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StatsWorker periodically recomputes the video counters on player stats
// (videos, views, likes) from the videos table.
type StatsWorker struct {
	db       *gorm.DB
	cache    *services.CacheService
	interval time.Duration
	done     chan struct{}
}

func NewStatsWorker(db *gorm.DB, cache *services.CacheService, interval time.Duration) *StatsWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &StatsWorker{db: db, cache: cache, interval: interval, done: make(chan struct{})}
}

func (w *StatsWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("🔁 starting player stats worker")
	go w.run(ctx)
}

// Done is closed once the worker has stopped.
func (w *StatsWorker) Done() <-chan struct{} {
	return w.done
}

func (w *StatsWorker) run(ctx context.Context) {
	defer close(w.done)

	w.recompute(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.recompute(ctx)
		case <-ctx.Done():
			log.Info().Msg("⏹️ player stats worker stopped")
			return
		}
	}
}

func (w *StatsWorker) recompute(ctx context.Context) {
	started := time.Now()
	n, err := services.RecomputeAllPlayerStats(ctx, w.db, w.cache)
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("❌ stats recompute failed")
		}
		return
	}
	log.Debug().Int("updated", n).Dur("took", time.Since(started)).Msg("[STATS] recompute done")
}
