package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// Maintenance job cadence.
const (
	PurgeInterval = 10 * time.Minute
	purgeTimeout  = time.Minute
	streakTimeout = 5 * time.Minute
)

// StartScheduler runs the periodic maintenance jobs: purging expired
// sessions and reset tokens, and resetting broken streaks daily at 00:05 UTC.
// The caller shuts the scheduler down.
func StartScheduler(ctx context.Context, auth *AuthService, progression *ProgressionService) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(PurgeInterval),
		gocron.NewTask(func() {
			jobCtx, cancel := context.WithTimeout(ctx, purgeTimeout)
			defer cancel()
			n, err := auth.PurgeExpired(jobCtx)
			if err != nil {
				log.Error().Err(err).Msg("[Scheduler] purge failed")
				return
			}
			if n > 0 {
				log.Info().Int64("rows", n).Msg("🧹 purged expired sessions and reset tokens")
			}
		}),
		gocron.WithName("purge-expired"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 5, 0))),
		gocron.NewTask(func() {
			jobCtx, cancel := context.WithTimeout(ctx, streakTimeout)
			defer cancel()
			n, err := progression.ResetBrokenStreaks(jobCtx)
			if err != nil {
				log.Error().Err(err).Msg("[Scheduler] streak reset failed")
				return
			}
			log.Info().Int("players", n).Msg("🔁 broken streaks reset")
		}),
		gocron.WithName("reset-streaks"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.Info().Msg("✅ scheduler started")
	return sched, nil
}
