package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"scout-platform/metrics"
	"scout-platform/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChallengeService manages leveled challenges and the submissions against them.
type ChallengeService struct {
	DB            *gorm.DB
	Cache         *CacheService
	Videos        *VideoService
	Categories    *CategoryService
	Progression   *ProgressionService
	Notifications *NotificationService
	Badges        *BadgeService
	Now           func() time.Time
}

func NewChallengeService(db *gorm.DB, cache *CacheService, videos *VideoService, categories *CategoryService,
	progression *ProgressionService, notifications *NotificationService, badges *BadgeService) *ChallengeService {
	return &ChallengeService{
		DB:            db,
		Cache:         cache,
		Videos:        videos,
		Categories:    categories,
		Progression:   progression,
		Notifications: notifications,
		Badges:        badges,
		Now:           time.Now,
	}
}

// ChallengeInput is the admin create/update form.
type ChallengeInput struct {
	TitleHe        string  `json:"title_he" validate:"required,max=120"`
	TitleEn        string  `json:"title_en" validate:"max=120"`
	DescriptionHe  string  `json:"description_he" validate:"max=2000"`
	DescriptionEn  string  `json:"description_en" validate:"max=2000"`
	Level          int     `json:"level" validate:"required,min=1,max=10"`
	Category       string  `json:"category" validate:"required,oneof=speed technique passing shooting dribbling physical"`
	Position       string  `json:"position"`
	AgeGroup       string  `json:"age_group"`
	TargetReps     int     `json:"target_reps" validate:"min=0"`
	TargetSeconds  int     `json:"target_seconds" validate:"min=0"`
	Points         int     `json:"points" validate:"min=0,max=1000"`
	PrerequisiteID *string `json:"prerequisite_id"`
	Active         *bool   `json:"active"`
}

// ChallengeFilter narrows challenge listings.
type ChallengeFilter struct {
	Level    int
	Category string
	Position string
	AgeGroup string
	Sort     string // level (default) | points | newest
	All      bool   // include inactive (admins)
}

// ChallengeView is a challenge as seen by one user.
type ChallengeView struct {
	models.Challenge
	Unlocked  bool `json:"unlocked"`
	Completed bool `json:"completed"`
}

// ReviewInput is an admin decision on a submission. A nil score on approval
// falls back to the auto score.
type ReviewInput struct {
	Approve  bool     `json:"approve"`
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback" validate:"max=1000"`
}

// TrainingOverview is a player's training dashboard.
type TrainingOverview struct {
	Progress      models.TrainingProgress `json:"progress"`
	LevelProgress *LevelProgress          `json:"level_progress"`
	Pending       int64                   `json:"pending_submissions"`
}

func (s *ChallengeService) apply(ctx context.Context, ch *models.Challenge, in ChallengeInput) error {
	ch.TitleHe = strings.TrimSpace(in.TitleHe)
	ch.TitleEn = strings.TrimSpace(in.TitleEn)
	ch.DescriptionHe = strings.TrimSpace(in.DescriptionHe)
	ch.DescriptionEn = strings.TrimSpace(in.DescriptionEn)
	ch.Level = in.Level
	ch.Category = in.Category
	ch.Position = defaultAll(in.Position)
	ch.AgeGroup = defaultAll(in.AgeGroup)
	ch.TargetReps = in.TargetReps
	ch.TargetSeconds = in.TargetSeconds
	ch.Points = in.Points
	if in.Active != nil {
		ch.Active = *in.Active
	}
	if ch.Level < models.MinLevel || ch.Level > models.MaxLevel {
		return fmt.Errorf("%w: level", ErrValidation)
	}

	slugs := map[string]string{}
	if ch.Position != models.CategoryAll {
		slugs[models.CategoryPosition] = ch.Position
	}
	if ch.AgeGroup != models.CategoryAll {
		slugs[models.CategoryAgeGroup] = ch.AgeGroup
	}
	if err := s.Categories.ValidateSlugs(ctx, slugs); err != nil {
		return err
	}

	ch.PrerequisiteID = nil
	if in.PrerequisiteID != nil && *in.PrerequisiteID != "" {
		if *in.PrerequisiteID == ch.ID {
			return fmt.Errorf("%w: prerequisite_id", ErrValidation)
		}
		var n int64
		if err := s.DB.WithContext(ctx).Model(&models.Challenge{}).
			Where("id = ?", *in.PrerequisiteID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: prerequisite_id", ErrValidation)
		}
		pre := *in.PrerequisiteID
		ch.PrerequisiteID = &pre
	}
	return nil
}

func defaultAll(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return models.CategoryAll
	}
	return v
}

// Create adds a challenge.
func (s *ChallengeService) Create(ctx context.Context, in ChallengeInput) (*models.Challenge, error) {
	ch := &models.Challenge{ID: uuid.NewString(), Active: true}
	if err := s.apply(ctx, ch, in); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(ch).Error; err != nil {
		return nil, err
	}
	if !ch.Active {
		if err := s.DB.WithContext(ctx).Model(ch).Update("active", false).Error; err != nil {
			return nil, err
		}
	}
	log.Info().Str("challenge_id", ch.ID).Int("level", ch.Level).Msg("🏁 challenge created")
	return ch, nil
}

// Update replaces the editable fields of a challenge.
func (s *ChallengeService) Update(ctx context.Context, id string, in ChallengeInput) (*models.Challenge, error) {
	ch, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, ch, in); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Save(ch).Error; err != nil {
		return nil, err
	}
	return ch, nil
}

// Delete soft-deletes a challenge; its submissions are kept.
func (s *ChallengeService) Delete(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Delete(&models.Challenge{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ChallengeService) find(ctx context.Context, id string) (*models.Challenge, error) {
	var ch models.Challenge
	err := s.DB.WithContext(ctx).First(&ch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// completedSet is the set of challenge ids the user has an approved
// submission for.
func (s *ChallengeService) completedSet(ctx context.Context, userID string) (map[string]bool, error) {
	var ids []string
	if err := s.DB.WithContext(ctx).Model(&models.ChallengeSubmission{}).
		Where("user_id = ? AND status = ?", userID, models.SubmissionStatusApproved).
		Distinct().
		Pluck("challenge_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Get returns one challenge as seen by viewer.
func (s *ChallengeService) Get(ctx context.Context, id string, viewer *models.User) (*ChallengeView, error) {
	ch, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	completed, err := s.completedSet(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	return &ChallengeView{Challenge: *ch, Unlocked: IsUnlocked(viewer, ch, completed), Completed: completed[ch.ID]}, nil
}

// List returns challenges with their lock state for viewer.
func (s *ChallengeService) List(ctx context.Context, f ChallengeFilter, viewer *models.User) ([]ChallengeView, error) {
	q := s.DB.WithContext(ctx).Model(&models.Challenge{})
	if !f.All || !viewer.IsAdmin() {
		q = q.Where("active = ?", true)
	}
	if f.Level > 0 {
		q = q.Where("level = ?", f.Level)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Position != "" {
		q = q.Where("position IN ?", []string{f.Position, models.CategoryAll})
	}
	if f.AgeGroup != "" {
		q = q.Where("age_group IN ?", []string{f.AgeGroup, models.CategoryAll})
	}
	switch f.Sort {
	case "points":
		q = q.Order("points DESC").Order("level ASC")
	case "newest":
		q = q.Order("created_at DESC")
	default:
		q = q.Order("level ASC").Order("points ASC")
	}

	var challenges []models.Challenge
	if err := q.Find(&challenges).Error; err != nil {
		return nil, err
	}
	completed, err := s.completedSet(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	views := make([]ChallengeView, len(challenges))
	for i := range challenges {
		views[i] = ChallengeView{
			Challenge: challenges[i],
			Unlocked:  IsUnlocked(viewer, &challenges[i], completed),
			Completed: completed[challenges[i].ID],
		}
	}
	return views, nil
}

// Recommended ranks the unlocked challenges for a player.
func (s *ChallengeService) Recommended(ctx context.Context, userID string, limit int) ([]RankedChallenge, error) {
	user, err := findUser(ctx, s.DB, s.Cache, userID)
	if err != nil {
		return nil, err
	}
	var challenges []models.Challenge
	if err := s.DB.WithContext(ctx).Where("active = ?", true).Find(&challenges).Error; err != nil {
		return nil, err
	}
	completed, err := s.completedSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return RankChallenges(user, challenges, AgeGroupFor(user.Age(s.Now())), completed, limit), nil
}

// SubmitChallenge uploads an attempt at an unlocked challenge.
func (s *ChallengeService) SubmitChallenge(ctx context.Context, userID, challengeID string, m models.SubmissionMetrics, file Upload, uploadID string) (*models.ChallengeSubmission, error) {
	user, err := findUser(ctx, s.DB, s.Cache, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsPlayer() {
		return nil, ErrNotAPlayer
	}
	if m.Attempts < 0 || m.Successes < 0 || m.Reps < 0 || m.Seconds < 0 || m.Successes > m.Attempts {
		return nil, fmt.Errorf("%w: metrics", ErrValidation)
	}
	ch, err := s.find(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if !ch.Active {
		return nil, ErrNotFound
	}
	completed, err := s.completedSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !IsUnlocked(user, ch, completed) {
		return nil, ErrChallengeLocked
	}

	meta := VideoMeta{
		Title:    ch.Title(user.PreferredLanguage),
		Position: user.Position,
		UploadID: uploadID,
	}
	video, err := s.Videos.store(ctx, userID, meta, file, nil, "challenge")
	if err != nil {
		return nil, err
	}

	sub := &models.ChallengeSubmission{
		ID:          uuid.NewString(),
		ChallengeID: ch.ID,
		UserID:      userID,
		VideoID:     video.ID,
		Level:       ch.Level,
		Metrics:     m,
		AutoScore:   AutoScore(ch, m),
		Status:      models.SubmissionStatusPending,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(video).Error; err != nil {
			return err
		}
		return tx.Create(sub).Error
	})
	if err != nil {
		s.Videos.removeBlobs(ctx, video)
		return nil, err
	}
	s.Videos.afterUpload(ctx, userID)
	sub.Challenge = ch
	log.Info().Str("user_id", userID).Str("challenge_id", ch.ID).Float64("auto_score", sub.AutoScore).Msg("📼 challenge submitted")
	return sub, nil
}

// SubmissionPage is one page of submissions.
type SubmissionPage struct {
	Submissions []models.ChallengeSubmission `json:"submissions"`
	Page        int                          `json:"page"`
	Size        int                          `json:"size"`
	TotalItems  int64                        `json:"total_items"`
	TotalPages  int                          `json:"total_pages"`
}

// ListSubmissions returns submissions, newest first; an empty userID lists
// everyone's (admin queue), then oldest first.
func (s *ChallengeService) ListSubmissions(ctx context.Context, userID, status string, page, size int) (*SubmissionPage, error) {
	page, size = normalizePage(page, size)
	q := s.DB.WithContext(ctx).Model(&models.ChallengeSubmission{})
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	order := "created_at DESC"
	if userID == "" {
		order = "created_at ASC"
	}
	var subs []models.ChallengeSubmission
	if err := q.Preload("Challenge").Order(order).Limit(size).Offset((page - 1) * size).Find(&subs).Error; err != nil {
		return nil, err
	}
	return &SubmissionPage{Submissions: subs, Page: page, Size: size, TotalItems: total, TotalPages: totalPages(total, size)}, nil
}

// ReviewSubmission approves or rejects a pending submission. Approval feeds
// the player's progress, skill stat and level.
func (s *ChallengeService) ReviewSubmission(ctx context.Context, adminID, id string, in ReviewInput) (*models.ChallengeSubmission, error) {
	if in.Approve && in.Score != nil && !ValidScore(*in.Score) {
		return nil, ErrInvalidScore
	}

	var sub models.ChallengeSubmission
	var outcome *ApprovalOutcome
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sub, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if sub.Status != models.SubmissionStatusPending {
			return ErrAlreadyReviewed
		}
		var ch models.Challenge
		if err := tx.Unscoped().First(&ch, "id = ?", sub.ChallengeID).Error; err != nil {
			return err
		}
		sub.Challenge = &ch

		now := s.Now()
		sub.ReviewedBy = &adminID
		sub.ReviewedAt = &now
		sub.Feedback = strings.TrimSpace(in.Feedback)
		if !in.Approve {
			sub.Status = models.SubmissionStatusRejected
			return tx.Model(&sub).Select("status", "feedback", "reviewed_by", "reviewed_at").Updates(&sub).Error
		}

		score := sub.AutoScore
		if in.Score != nil {
			score = round1(*in.Score)
		}
		sub.Score = &score
		sub.Status = models.SubmissionStatusApproved
		if err := tx.Model(&sub).Select("status", "score", "feedback", "reviewed_by", "reviewed_at").Updates(&sub).Error; err != nil {
			return err
		}
		outcome, err = s.Progression.ApplyApproval(tx, sub.UserID, &ch, score)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.ModerationDecisions.WithLabelValues("submission", sub.Status).Inc()
	log.Info().Str("submission_id", sub.ID).Str("status", sub.Status).Str("admin_id", adminID).Msg("🛡️ submission reviewed")

	s.Cache.Delete(ctx, profileKey(sub.UserID))
	user, err := findUser(ctx, s.DB, s.Cache, sub.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", sub.UserID).Msg("submitter lookup failed")
		return &sub, nil
	}
	title := sub.Challenge.Title(user.PreferredLanguage)
	payload := map[string]string{"submission_id": sub.ID, "challenge_id": sub.ChallengeID}
	if sub.Status == models.SubmissionStatusRejected {
		s.Notifications.notifyUser(ctx, user, models.NotificationSubmissionRejected, payload, title, sub.Feedback)
		return &sub, nil
	}

	s.Notifications.notifyUser(ctx, user, models.NotificationSubmissionApproved, payload, title, *sub.Score)
	if outcome != nil && outcome.LeveledUp {
		s.Notifications.notifyUser(ctx, user, models.NotificationLevelUp,
			map[string]string{"level": strconv.Itoa(user.Level)}, user.Level)
	}
	if s.Badges != nil {
		if _, err := s.Badges.AutoAwardBadges(ctx, sub.UserID); err != nil {
			log.Warn().Err(err).Str("user_id", sub.UserID).Msg("badge evaluation failed")
		}
	}
	return &sub, nil
}

// Overview returns a player's training dashboard.
func (s *ChallengeService) Overview(ctx context.Context, userID string) (*TrainingOverview, error) {
	user, err := findUser(ctx, s.DB, s.Cache, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsPlayer() {
		return nil, ErrNotAPlayer
	}
	lp, err := s.Progression.LevelProgress(ctx, user)
	if err != nil {
		return nil, err
	}
	var pending int64
	if err := s.DB.WithContext(ctx).Model(&models.ChallengeSubmission{}).
		Where("user_id = ? AND status = ?", userID, models.SubmissionStatusPending).
		Count(&pending).Error; err != nil {
		return nil, err
	}
	return &TrainingOverview{Progress: user.TrainingProgress, LevelProgress: lp, Pending: pending}, nil
}

// SeedDefaults inserts the starter challenges when the table is empty.
func (s *ChallengeService) SeedDefaults(ctx context.Context) error {
	var n int64
	if err := s.DB.WithContext(ctx).Unscoped().Model(&models.Challenge{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	seed := make([]models.Challenge, len(models.DefaultChallenges))
	for i, def := range models.DefaultChallenges {
		def.ID = uuid.NewString()
		def.Position = models.CategoryAll
		def.AgeGroup = models.CategoryAll
		def.Active = true
		seed[i] = def
	}
	if err := s.DB.WithContext(ctx).Create(&seed).Error; err != nil {
		return err
	}
	log.Info().Int("created", len(seed)).Msg("🌱 default challenges seeded")
	return nil
}
