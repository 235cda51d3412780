package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"scout-platform/i18n"
	"scout-platform/metrics"
	"scout-platform/models"
	"scout-platform/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileService owns edits of the user document.
type ProfileService struct {
	DB    *gorm.DB
	Cache *CacheService
	Store utils.BlobStore
	Now   func() time.Time
}

func NewProfileService(db *gorm.DB, cache *CacheService, store utils.BlobStore) *ProfileService {
	return &ProfileService{DB: db, Cache: cache, Store: store, Now: time.Now}
}

// ProfileUpdate is a partial edit; nil fields are left untouched.
type ProfileUpdate struct {
	FullName          *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Phone             *string `json:"phone" validate:"omitempty,phone"`
	City              *string `json:"city" validate:"omitempty,max=80"`
	Bio               *string `json:"bio" validate:"omitempty,max=1000"`
	PreferredLanguage *string `json:"preferred_language" validate:"omitempty,lang"`
	DateOfBirth       *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`

	Position      *string `json:"position" validate:"omitempty,position"`
	PreferredFoot *string `json:"preferred_foot" validate:"omitempty,foot"`
	HeightCM      *int    `json:"height_cm" validate:"omitempty,min=100,max=230"`
	WeightKG      *int    `json:"weight_kg" validate:"omitempty,min=25,max=150"`
	Club          *string `json:"club" validate:"omitempty,max=120"`

	Organization    *string `json:"organization" validate:"omitempty,max=120"`
	LicenseNumber   *string `json:"license_number" validate:"omitempty,max=60"`
	YearsExperience *int    `json:"years_experience" validate:"omitempty,min=0,max=70"`
}

// ProfileView is a user plus derived profile facts.
type ProfileView struct {
	User            *models.User `json:"user"`
	Completion      int          `json:"completion"`
	Recommendations []string     `json:"recommendations"`
	Messages        []string     `json:"messages"`
}

// GetProfile returns the user document with completion and recommendations.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*ProfileView, error) {
	user, err := findUser(ctx, s.DB, s.Cache, userID)
	if err != nil {
		return nil, err
	}
	rc, err := s.recommendationContext(ctx, user)
	if err != nil {
		return nil, err
	}
	keys := Recommendations(user, rc)
	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = i18n.T(user.PreferredLanguage, k)
	}
	return &ProfileView{
		User:            user,
		Completion:      CompletionPercentage(user),
		Recommendations: keys,
		Messages:        msgs,
	}, nil
}

func (s *ProfileService) recommendationContext(ctx context.Context, user *models.User) (RecommendationContext, error) {
	var rc RecommendationContext
	db := s.DB.WithContext(ctx)
	switch user.Role {
	case models.RolePlayer:
		var videos int64
		if err := db.Model(&models.Video{}).Where("owner_id = ?", user.ID).Count(&videos).Error; err != nil {
			return rc, err
		}
		rc.HasVideos = videos > 0

		var recent int64
		since := s.Now().AddDate(0, 0, -7)
		if err := db.Model(&models.ChallengeSubmission{}).
			Where("user_id = ? AND created_at >= ?", user.ID, since).
			Count(&recent).Error; err != nil {
			return rc, err
		}
		rc.ActiveLastWeek = recent > 0
	case models.RoleScout:
		var watched int64
		if err := db.Model(&models.WatchlistEntry{}).Where("scout_id = ?", user.ID).Count(&watched).Error; err != nil {
			return rc, err
		}
		rc.WatchlistNotEmpty = watched > 0
	}
	return rc, nil
}

// UpdateProfile applies an owner edit. Fields of other roles are ignored.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*models.User, error) {
	// the cached copy has no password hash; edits start from the row
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := ApplyProfileUpdate(&user, in); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&user).Select(editableProfileColumns).Updates(&user).Error; err != nil {
		return nil, err
	}
	s.Cache.Delete(ctx, profileKey(userID))
	return &user, nil
}

var editableProfileColumns = []string{
	"full_name", "search_name", "phone", "city", "bio", "preferred_language", "date_of_birth",
	"position", "preferred_foot", "height_cm", "weight_kg", "club",
	"organization", "license_number", "years_experience",
}

// ApplyProfileUpdate copies the set fields of in onto u.
func ApplyProfileUpdate(u *models.User, in ProfileUpdate) error {
	if in.FullName != nil {
		u.FullName = strings.TrimSpace(*in.FullName)
		u.SearchName = utils.FoldName(u.FullName)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.City != nil {
		u.City = strings.TrimSpace(*in.City)
	}
	if in.Bio != nil {
		u.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.PreferredLanguage != nil {
		u.PreferredLanguage = i18n.Normalize(*in.PreferredLanguage)
	}
	if in.DateOfBirth != nil {
		if *in.DateOfBirth == "" {
			u.DateOfBirth = nil
		} else {
			dob, err := time.Parse("2006-01-02", *in.DateOfBirth)
			if err != nil {
				return fmt.Errorf("%w: date_of_birth", ErrValidation)
			}
			u.DateOfBirth = &dob
		}
	}

	switch u.Role {
	case models.RolePlayer:
		if in.Position != nil {
			u.Position = *in.Position
		}
		if in.PreferredFoot != nil {
			u.PreferredFoot = *in.PreferredFoot
		}
		if in.HeightCM != nil {
			u.HeightCM = *in.HeightCM
		}
		if in.WeightKG != nil {
			u.WeightKG = *in.WeightKG
		}
		if in.Club != nil {
			u.Club = strings.TrimSpace(*in.Club)
		}
	case models.RoleScout:
		if in.Organization != nil {
			u.Organization = strings.TrimSpace(*in.Organization)
		}
		if in.LicenseNumber != nil {
			u.LicenseNumber = strings.TrimSpace(*in.LicenseNumber)
		}
		if in.YearsExperience != nil {
			u.YearsExperience = *in.YearsExperience
		}
	}
	return nil
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// UploadProfileImage stores a new avatar and points the profile at it.
func (s *ProfileService) UploadProfileImage(ctx context.Context, userID string, file Upload) (*models.User, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		return nil, ErrUnsupportedFile
	}
	user, err := findUser(ctx, s.DB, s.Cache, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.NewString(), ext)
	url, err := s.Store.Put(ctx, key, file.Body, file.Size, file.ContentType, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	metrics.Uploads.WithLabelValues("avatar").Inc()
	metrics.UploadBytes.Add(float64(file.Size))

	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Update("profile_image_url", url).Error; err != nil {
		return nil, err
	}
	s.Cache.Delete(ctx, profileKey(userID))
	user.ProfileImageURL = url
	return user, nil
}
