package services

import (
	"context"
	"strconv"
	"time"

	"scout-platform/metrics"
	"scout-platform/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Level-up rule: enough approved submissions at the current level with a
// high enough mean score.
const (
	LevelUpMinApproved = 5
	LevelUpMinMean     = 7.0
)

const activityDayLayout = "2006-01-02"

// ActivityDay is the UTC calendar day used for streaks.
func ActivityDay(t time.Time) string {
	return t.UTC().Format(activityDayLayout)
}

// RecordActivity advances the streak for activity on day. A second activity
// on the same day changes nothing; a gap restarts the streak at 1.
func RecordActivity(tp *models.TrainingProgress, day string) {
	if tp.LastActivityOn == day {
		return
	}
	if yesterday, ok := previousDay(day); ok && tp.LastActivityOn == yesterday {
		tp.CurrentStreak++
	} else {
		tp.CurrentStreak = 1
	}
	if tp.CurrentStreak > tp.LongestStreak {
		tp.LongestStreak = tp.CurrentStreak
	}
	tp.LastActivityOn = day
}

func previousDay(day string) (string, bool) {
	t, err := time.Parse(activityDayLayout, day)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, 0, -1).Format(activityDayLayout), true
}

// RecordCompletion counts an approved challenge towards the totals.
func RecordCompletion(tp *models.TrainingProgress, level, points int) {
	tp.CompletedChallenges++
	tp.TotalPoints += int64(points)
	if tp.CompletedByLevel == nil {
		tp.CompletedByLevel = map[string]int{}
	}
	tp.CompletedByLevel[strconv.Itoa(level)]++
}

// ShouldLevelUp applies the level-up rule to the approved scores at level.
func ShouldLevelUp(level int, scores []float64) bool {
	if level >= models.MaxLevel || len(scores) < LevelUpMinApproved {
		return false
	}
	return Mean(scores) >= LevelUpMinMean
}

// LevelProgress tells a player how close they are to the next level.
type LevelProgress struct {
	Level            int     `json:"level"`
	ApprovedAtLevel  int     `json:"approved_at_level"`
	RequiredApproved int     `json:"required_approved"`
	MeanScore        float64 `json:"mean_score"`
	RequiredMean     float64 `json:"required_mean"`
	MaxLevelReached  bool    `json:"max_level_reached"`
}

// ApprovalOutcome is what an approval changed on the player.
type ApprovalOutcome struct {
	User      *models.User
	LeveledUp bool
}

type ProgressionService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	return &ProgressionService{DB: db, Now: time.Now}
}

// ApplyApproval updates training progress, the challenge's stat and the level
// of the submitter inside tx. The approved submission must already be saved.
// The user row stays locked until tx ends.
func (s *ProgressionService) ApplyApproval(tx *gorm.DB, userID string, ch *models.Challenge, score float64) (*ApprovalOutcome, error) {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}

	tp := &user.TrainingProgress
	RecordCompletion(tp, ch.Level, ch.Points)
	RecordActivity(tp, ActivityDay(s.Now()))

	if old := user.Stats.Skill(ch.Category); old >= 0 {
		user.Stats.SetSkill(ch.Category, BlendSkill(old, score))
	}

	scores, err := approvedScoresAtLevel(tx, userID, user.Level)
	if err != nil {
		return nil, err
	}
	out := &ApprovalOutcome{User: &user}
	if ShouldLevelUp(user.Level, scores) {
		user.Level++
		now := s.Now()
		tp.LastLevelUpAt = &now
		out.LeveledUp = true
		metrics.LevelUps.Inc()
		log.Info().Str("user_id", userID).Int("level", user.Level).Msg("⬆️ level up")
	}

	if err := tx.Model(&user).Select("stats", "training_progress", "level").Updates(&user).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func approvedScoresAtLevel(tx *gorm.DB, userID string, level int) ([]float64, error) {
	var scores []float64
	err := tx.Model(&models.ChallengeSubmission{}).
		Where("user_id = ? AND level = ? AND status = ? AND score IS NOT NULL", userID, level, models.SubmissionStatusApproved).
		Pluck("score", &scores).Error
	return scores, err
}

// LevelProgress reports the approved work at the player's current level.
func (s *ProgressionService) LevelProgress(ctx context.Context, user *models.User) (*LevelProgress, error) {
	scores, err := approvedScoresAtLevel(s.DB.WithContext(ctx), user.ID, user.Level)
	if err != nil {
		return nil, err
	}
	return &LevelProgress{
		Level:            user.Level,
		ApprovedAtLevel:  len(scores),
		RequiredApproved: LevelUpMinApproved,
		MeanScore:        round1(Mean(scores)),
		RequiredMean:     LevelUpMinMean,
		MaxLevelReached:  user.Level >= models.MaxLevel,
	}, nil
}

// ResetBrokenStreaks zeroes current streaks whose last activity is older than
// yesterday. Returns the number of players touched.
func (s *ProgressionService) ResetBrokenStreaks(ctx context.Context) (int, error) {
	yesterday, _ := previousDay(ActivityDay(s.Now()))

	// single statement so a concurrent approval's progress is never overwritten
	res := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RolePlayer).
		Where("(training_progress->>'current_streak')::int > 0").
		Where("training_progress->>'last_activity_on' < ?", yesterday).
		UpdateColumn("training_progress", gorm.Expr("jsonb_set(training_progress, '{current_streak}', '0'::jsonb)"))
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}
