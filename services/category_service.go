package services

import (
	"context"
	"errors"
	"strings"

	"scout-platform/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CategoryService manages the labels videos and challenges are filed under.
type CategoryService struct {
	DB *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{DB: db}
}

// CategoryInput is the admin create/update form.
type CategoryInput struct {
	Kind      string `json:"kind" validate:"required,oneof=exercise_type age_group position"`
	NameHe    string `json:"name_he" validate:"required,max=80"`
	NameEn    string `json:"name_en" validate:"required,max=80"`
	SortOrder int    `json:"sort_order"`
	Active    *bool  `json:"active"`
}

// CategorySlug derives the slug of a category from its English name, falling
// back to the Hebrew one.
func CategorySlug(nameEn, nameHe string) string {
	if s := slug.Make(nameEn); s != "" {
		return s
	}
	return slug.Make(nameHe)
}

// List returns categories, optionally of one kind, ordered for display.
func (s *CategoryService) List(ctx context.Context, kind string, includeInactive bool) ([]models.Category, error) {
	q := s.DB.WithContext(ctx).Model(&models.Category{})
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	var cats []models.Category
	err := q.Order("kind ASC").Order("sort_order ASC").Order("name_en ASC").Find(&cats).Error
	return cats, err
}

// Create adds a category. The slug must be unused within its kind.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	cat := &models.Category{
		ID:        uuid.NewString(),
		Kind:      in.Kind,
		Slug:      CategorySlug(in.NameEn, in.NameHe),
		NameHe:    strings.TrimSpace(in.NameHe),
		NameEn:    strings.TrimSpace(in.NameEn),
		SortOrder: in.SortOrder,
		Active:    in.Active == nil || *in.Active,
	}
	if cat.Slug == "" || cat.Slug == models.CategoryAll {
		return nil, ErrValidation
	}
	if err := s.ensureSlugFree(ctx, cat.Kind, cat.Slug, ""); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(cat).Error; err != nil {
		return nil, err
	}
	// gorm skips zero values for columns with a default
	if !cat.Active {
		if err := s.DB.WithContext(ctx).Model(cat).Update("active", false).Error; err != nil {
			return nil, err
		}
	}
	log.Info().Str("kind", cat.Kind).Str("slug", cat.Slug).Msg("🏷️ category created")
	return cat, nil
}

// Update renames or reorders a category. The slug follows the English name
// only while nothing references the old one.
func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	var cat models.Category
	err := s.DB.WithContext(ctx).First(&cat, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if in.Kind != "" && in.Kind != cat.Kind {
		return nil, ErrValidation
	}

	cat.NameHe = strings.TrimSpace(in.NameHe)
	cat.NameEn = strings.TrimSpace(in.NameEn)
	cat.SortOrder = in.SortOrder
	if in.Active != nil {
		cat.Active = *in.Active
	}

	if next := CategorySlug(cat.NameEn, cat.NameHe); next != "" && next != cat.Slug {
		used, err := s.inUse(ctx, cat)
		if err != nil {
			return nil, err
		}
		if !used {
			if err := s.ensureSlugFree(ctx, cat.Kind, next, cat.ID); err != nil {
				return nil, err
			}
			cat.Slug = next
		}
	}

	if err := s.DB.WithContext(ctx).Save(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// Delete removes an unused category.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	var cat models.Category
	err := s.DB.WithContext(ctx).First(&cat, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	used, err := s.inUse(ctx, cat)
	if err != nil {
		return err
	}
	if used {
		return ErrCategoryInUse
	}
	return s.DB.WithContext(ctx).Delete(&cat).Error
}

func (s *CategoryService) ensureSlugFree(ctx context.Context, kind, sl, exceptID string) error {
	q := s.DB.WithContext(ctx).Unscoped().Model(&models.Category{}).Where("kind = ? AND slug = ?", kind, sl)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicateCategory
	}
	return nil
}

// inUse reports whether a video or challenge references the category.
func (s *CategoryService) inUse(ctx context.Context, cat models.Category) (bool, error) {
	db := s.DB.WithContext(ctx)
	var n int64
	if err := db.Model(&models.Video{}).Where(cat.Kind+" = ?", cat.Slug).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	switch cat.Kind {
	case models.CategoryAgeGroup, models.CategoryPosition:
		if err := db.Model(&models.Challenge{}).Where(cat.Kind+" = ?", cat.Slug).Count(&n).Error; err != nil {
			return false, err
		}
	}
	return n > 0, nil
}

// ValidateSlugs checks that every non-empty slug names an active category of
// its kind. Keys of slugs are category kinds.
func (s *CategoryService) ValidateSlugs(ctx context.Context, slugs map[string]string) error {
	for kind, sl := range slugs {
		if sl == "" {
			continue
		}
		var n int64
		if err := s.DB.WithContext(ctx).Model(&models.Category{}).
			Where("kind = ? AND slug = ? AND active = ?", kind, sl, true).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrInvalidCategory
		}
	}
	return nil
}

// ExerciseTypes returns the active exercise type slugs in display order.
func (s *CategoryService) ExerciseTypes(ctx context.Context) ([]string, error) {
	var slugs []string
	err := s.DB.WithContext(ctx).Model(&models.Category{}).
		Where("kind = ? AND active = ?", models.CategoryExerciseType, true).
		Order("sort_order ASC").
		Pluck("slug", &slugs).Error
	return slugs, err
}

// SeedDefaults inserts the default categories that are missing.
func (s *CategoryService) SeedDefaults(ctx context.Context) error {
	created := 0
	for _, def := range models.DefaultCategories {
		sl := CategorySlug(def.NameEn, def.NameHe)
		var n int64
		if err := s.DB.WithContext(ctx).Unscoped().Model(&models.Category{}).
			Where("kind = ? AND slug = ?", def.Kind, sl).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		cat := def
		cat.ID = uuid.NewString()
		cat.Slug = sl
		cat.Active = true
		if err := s.DB.WithContext(ctx).Create(&cat).Error; err != nil {
			return err
		}
		created++
	}
	if created > 0 {
		log.Info().Int("created", created).Msg("🌱 default categories seeded")
	}
	return nil
}
