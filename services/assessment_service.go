package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"scout-platform/metrics"
	"scout-platform/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssessmentService runs the starting-level evaluation of players.
type AssessmentService struct {
	DB            *gorm.DB
	Cache         *CacheService
	Videos        *VideoService
	Categories    *CategoryService
	Notifications *NotificationService
	Badges        *BadgeService
	Now           func() time.Time
}

func NewAssessmentService(db *gorm.DB, cache *CacheService, videos *VideoService, categories *CategoryService,
	notifications *NotificationService, badges *BadgeService) *AssessmentService {
	return &AssessmentService{
		DB:            db,
		Cache:         cache,
		Videos:        videos,
		Categories:    categories,
		Notifications: notifications,
		Badges:        badges,
		Now:           time.Now,
	}
}

func (s *AssessmentService) requirePlayer(ctx context.Context, userID string) (*models.User, error) {
	user, err := findUser(ctx, s.DB, s.Cache, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsPlayer() {
		return nil, ErrNotAPlayer
	}
	return user, nil
}

// StartAssessment returns the player's open assessment, creating one with the
// currently active exercise types when none is open.
func (s *AssessmentService) StartAssessment(ctx context.Context, userID string) (*models.Assessment, error) {
	if _, err := s.requirePlayer(ctx, userID); err != nil {
		return nil, err
	}
	open, err := s.openAssessment(ctx, s.DB.WithContext(ctx), userID)
	if err == nil {
		return open, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	types, err := s.Categories.ExerciseTypes(ctx)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("%w: no exercise types configured", ErrInvalidCategory)
	}
	a := &models.Assessment{
		ID:            uuid.NewString(),
		UserID:        userID,
		Status:        models.AssessmentInProgress,
		ExerciseTypes: types,
	}
	if err := s.DB.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	a.Submissions = []models.AssessmentSubmission{}
	log.Info().Str("user_id", userID).Strs("exercises", types).Msg("📋 assessment started")
	return a, nil
}

func (s *AssessmentService) openAssessment(ctx context.Context, db *gorm.DB, userID string) (*models.Assessment, error) {
	var a models.Assessment
	err := db.Preload("Submissions").
		Where("user_id = ? AND status = ?", userID, models.AssessmentInProgress).
		Order("created_at DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAssessment returns the latest assessment of a user with its submissions.
func (s *AssessmentService) GetAssessment(ctx context.Context, userID string) (*models.Assessment, error) {
	var a models.Assessment
	err := s.DB.WithContext(ctx).Preload("Submissions").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SubmitAssessmentVideo uploads the video for one exercise. A second video
// for the same exercise replaces the first.
func (s *AssessmentService) SubmitAssessmentVideo(ctx context.Context, userID, exerciseType string, file Upload, uploadID string) (*models.AssessmentSubmission, error) {
	user, err := s.requirePlayer(ctx, userID)
	if err != nil {
		return nil, err
	}
	a, err := s.openAssessment(ctx, s.DB.WithContext(ctx), userID)
	if errors.Is(err, ErrNotFound) {
		if user.AssessmentCompleted {
			return nil, ErrAssessmentClosed
		}
		if a, err = s.StartAssessment(ctx, userID); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	if !slices.Contains(a.ExerciseTypes, exerciseType) {
		return nil, ErrInvalidExercise
	}

	meta := VideoMeta{
		Title:        "assessment: " + exerciseType,
		ExerciseType: exerciseType,
		Position:     user.Position,
		UploadID:     uploadID,
	}
	if age := user.Age(s.Now()); age > 0 {
		meta.AgeGroup = AgeGroupFor(age)
	}
	video, err := s.Videos.store(ctx, userID, meta, file, nil, "assessment")
	if err != nil {
		return nil, err
	}

	sub := &models.AssessmentSubmission{
		ID:           uuid.NewString(),
		AssessmentID: a.ID,
		UserID:       userID,
		ExerciseType: exerciseType,
		VideoID:      video.ID,
		Status:       models.AssessmentSubmissionPending,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(video).Error; err != nil {
			return err
		}
		if err := tx.Where("assessment_id = ? AND exercise_type = ?", a.ID, exerciseType).
			Delete(&models.AssessmentSubmission{}).Error; err != nil {
			return err
		}
		return tx.Create(sub).Error
	})
	if err != nil {
		s.Videos.removeBlobs(ctx, video)
		return nil, err
	}
	s.Videos.afterUpload(ctx, userID)
	log.Info().Str("user_id", userID).Str("exercise", exerciseType).Msg("📼 assessment video submitted")
	return sub, nil
}

// PendingSubmissions lists assessment videos awaiting a score, oldest first.
func (s *AssessmentService) PendingSubmissions(ctx context.Context, page, size int) ([]models.AssessmentSubmission, int64, error) {
	page, size = normalizePage(page, size)
	q := s.DB.WithContext(ctx).Model(&models.AssessmentSubmission{}).
		Where("status = ?", models.AssessmentSubmissionPending)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var subs []models.AssessmentSubmission
	err := q.Order("created_at ASC").Limit(size).Offset((page - 1) * size).Find(&subs).Error
	return subs, total, err
}

// ScoreAssessmentSubmission records an admin score. Scoring the last open
// exercise completes the assessment and assigns the player's level.
func (s *AssessmentService) ScoreAssessmentSubmission(ctx context.Context, adminID, submissionID string, score float64) (*models.Assessment, error) {
	if !ValidScore(score) {
		return nil, ErrInvalidScore
	}

	var completed *models.Assessment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.AssessmentSubmission
		err := tx.First(&sub, "id = ?", submissionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		// scorers of the same assessment queue here, so the last one sees
		// every other score
		var a models.Assessment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, "id = ?", sub.AssessmentID).Error; err != nil {
			return err
		}
		if a.Status == models.AssessmentCompleted {
			return ErrAssessmentClosed
		}

		now := s.Now()
		if err := tx.Model(&sub).Updates(map[string]interface{}{
			"score":     score,
			"status":    models.AssessmentSubmissionScored,
			"scored_by": adminID,
			"scored_at": now,
		}).Error; err != nil {
			return err
		}

		var subs []models.AssessmentSubmission
		if err := tx.Where("assessment_id = ?", a.ID).Find(&subs).Error; err != nil {
			return err
		}
		scores, done := ScoresIfComplete(a.ExerciseTypes, subs)
		if !done {
			return nil
		}

		a.Status = models.AssessmentCompleted
		a.AverageScore = round1(Mean(scores))
		a.AssignedLevel = AssignLevel(scores)
		a.CompletedAt = &now
		if err := tx.Model(&a).Select("status", "average_score", "assigned_level", "completed_at").Updates(&a).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", a.UserID).Updates(map[string]interface{}{
			"level":                a.AssignedLevel,
			"assessment_completed": true,
		}).Error; err != nil {
			return err
		}
		a.Submissions = subs
		completed = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ModerationDecisions.WithLabelValues("assessment", "scored").Inc()

	if completed == nil {
		var sub models.AssessmentSubmission
		if err := s.DB.WithContext(ctx).First(&sub, "id = ?", submissionID).Error; err != nil {
			return nil, err
		}
		var a models.Assessment
		err := s.DB.WithContext(ctx).Preload("Submissions").First(&a, "id = ?", sub.AssessmentID).Error
		return &a, err
	}

	s.Cache.Delete(ctx, profileKey(completed.UserID))
	metrics.LevelAssignments.Observe(float64(completed.AssignedLevel))
	log.Info().Str("user_id", completed.UserID).Int("level", completed.AssignedLevel).
		Float64("average", completed.AverageScore).Msg("✅ assessment completed")

	if user, err := findUser(ctx, s.DB, s.Cache, completed.UserID); err == nil {
		s.Notifications.notifyUser(ctx, user, models.NotificationAssessmentCompleted,
			map[string]string{"assessment_id": completed.ID, "level": strconv.Itoa(completed.AssignedLevel)},
			completed.AssignedLevel)
	}
	if s.Badges != nil {
		if _, err := s.Badges.AutoAwardBadges(ctx, completed.UserID); err != nil {
			log.Warn().Err(err).Str("user_id", completed.UserID).Msg("badge evaluation failed")
		}
	}
	return completed, nil
}

// ScoresIfComplete returns one score per required exercise once every
// exercise has a scored submission.
func ScoresIfComplete(required []string, subs []models.AssessmentSubmission) ([]float64, bool) {
	byType := make(map[string]float64, len(subs))
	for _, sub := range subs {
		if sub.Status == models.AssessmentSubmissionScored && sub.Score != nil {
			byType[sub.ExerciseType] = *sub.Score
		}
	}
	if len(required) == 0 {
		return nil, false
	}
	scores := make([]float64, 0, len(required))
	for _, t := range required {
		v, ok := byType[t]
		if !ok {
			return nil, false
		}
		scores = append(scores, v)
	}
	return scores, true
}

// ValidScore reports whether score is a number within [0,10].
func ValidScore(score float64) bool {
	return score >= 0 && score <= 10
}
