package services

import (
	"context"
	"errors"

	"scout-platform/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeService struct {
	DB            *gorm.DB
	Notifications *NotificationService
}

func NewBadgeService(db *gorm.DB, notifications *NotificationService) *BadgeService {
	return &BadgeService{DB: db, Notifications: notifications}
}

// BadgeProgress is the snapshot badge thresholds are checked against.
type BadgeProgress struct {
	Videos              int64
	CompletedChallenges int64
	AssessmentCompleted bool
	Level               int64
	Streak              int64
	Points              int64
}

// SeedBadgeTypes upserts the catalog by code and fills in the ids.
func (s *BadgeService) SeedBadgeTypes(ctx context.Context) error {
	for i := range models.BadgeTriggers {
		b := &models.BadgeTriggers[i]
		var existing models.BadgeType
		err := s.DB.WithContext(ctx).Where("code = ?", b.Code).First(&existing).Error
		if err == nil {
			b.ID = existing.ID
			if err := s.DB.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
				"name_he":        b.NameHe,
				"name_en":        b.NameEn,
				"description_he": b.DescriptionHe,
				"description_en": b.DescriptionEn,
				"rarity":         b.Rarity,
			}).Error; err != nil {
				return err
			}
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		b.ID = uuid.NewString()
		if err := s.DB.WithContext(ctx).Create(b).Error; err != nil {
			return err
		}
	}
	log.Info().Int("badges", len(models.BadgeTriggers)).Msg("🎖️ badge catalog ready")
	return nil
}

// AutoAwardBadges checks all badge triggers for a user after a progress
// update. Already-held badges are skipped; the newly awarded are returned.
func (s *BadgeService) AutoAwardBadges(ctx context.Context, userID string) ([]models.BadgeType, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	prog, err := s.progressFor(ctx, &user)
	if err != nil {
		return nil, err
	}

	var held []string
	if err := s.DB.WithContext(ctx).Model(&models.UserBadge{}).
		Where("user_id = ?", userID).
		Pluck("badge_type_id", &held).Error; err != nil {
		return nil, err
	}
	owned := make(map[string]bool, len(held))
	for _, id := range held {
		owned[id] = true
	}

	var awarded []models.BadgeType
	for _, trigger := range models.BadgeTriggers {
		if trigger.ID == "" || owned[trigger.ID] || !MeetsThreshold(prog, trigger.Threshold) {
			continue
		}
		ub := models.UserBadge{ID: uuid.NewString(), UserID: userID, BadgeTypeID: trigger.ID}
		res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ub)
		if res.Error != nil {
			return awarded, res.Error
		}
		if res.RowsAffected == 0 {
			continue
		}
		awarded = append(awarded, trigger)
		log.Info().Str("badge", trigger.Code).Str("user_id", userID).Msg("🎖️ badge awarded")
		s.Notifications.notifyUser(ctx, &user, models.NotificationBadgeAwarded,
			map[string]string{"badge": trigger.Code}, trigger.Name(user.PreferredLanguage))
	}
	return awarded, nil
}

func (s *BadgeService) progressFor(ctx context.Context, u *models.User) (BadgeProgress, error) {
	prog := BadgeProgress{
		CompletedChallenges: u.TrainingProgress.CompletedChallenges,
		AssessmentCompleted: u.AssessmentCompleted,
		Level:               int64(u.Level),
		Streak:              int64(u.TrainingProgress.LongestStreak),
		Points:              u.TrainingProgress.TotalPoints,
	}
	if err := s.DB.WithContext(ctx).Model(&models.Video{}).
		Where("owner_id = ?", u.ID).
		Count(&prog.Videos).Error; err != nil {
		return prog, err
	}
	return prog, nil
}

// ListUserBadges returns a user's awards with their badge type.
func (s *BadgeService) ListUserBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	var badges []models.UserBadge
	err := s.DB.WithContext(ctx).Preload("BadgeType").
		Where("user_id = ?", userID).
		Order("awarded_at ASC").
		Find(&badges).Error
	return badges, err
}

// MeetsThreshold reports whether every requirement holds. The event key is
// always satisfied; unknown keys never are.
func MeetsThreshold(prog BadgeProgress, req map[string]int64) bool {
	for key, required := range req {
		switch key {
		case models.ThresholdEvent:
		case models.ThresholdVideos:
			if prog.Videos < required {
				return false
			}
		case models.ThresholdCompletedChallenges:
			if prog.CompletedChallenges < required {
				return false
			}
		case models.ThresholdAssessment:
			if !prog.AssessmentCompleted {
				return false
			}
		case models.ThresholdLevel:
			if prog.Level < required {
				return false
			}
		case models.ThresholdStreak:
			if prog.Streak < required {
				return false
			}
		case models.ThresholdPoints:
			if prog.Points < required {
				return false
			}
		default:
			return false
		}
	}
	return true
}
