package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"scout-platform/metrics"
	"scout-platform/models"
	"scout-platform/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".m4v": true, ".webm": true, ".avi": true, ".mkv": true,
}

// VideoMeta is the descriptive part of an upload.
type VideoMeta struct {
	Title        string `json:"title" form:"title" validate:"required,max=120"`
	Description  string `json:"description" form:"description" validate:"max=2000"`
	ExerciseType string `json:"exercise_type" form:"exercise_type"`
	AgeGroup     string `json:"age_group" form:"age_group"`
	Position     string `json:"position" form:"position"`
	UploadID     string `json:"upload_id" form:"upload_id"` // client-chosen id for progress polling
}

// VideoCategories is the recategorization form.
type VideoCategories struct {
	ExerciseType string `json:"exercise_type"`
	AgeGroup     string `json:"age_group"`
	Position     string `json:"position"`
}

func (vc VideoCategories) slugs() map[string]string {
	return map[string]string{
		models.CategoryExerciseType: vc.ExerciseType,
		models.CategoryAgeGroup:     vc.AgeGroup,
		models.CategoryPosition:     vc.Position,
	}
}

// VideoFilter narrows video listings.
type VideoFilter struct {
	ExerciseType string
	AgeGroup     string
	Position     string
	OwnerID      string
	Status       string // honoured for the owner and admins only
	Sort         string // newest | most_viewed | most_liked
	Page         int
	Size         int
}

// VideoPage is one page of videos.
type VideoPage struct {
	Videos     []models.Video `json:"videos"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	TotalItems int64          `json:"total_items"`
	TotalPages int            `json:"total_pages"`
}

type VideoService struct {
	DB             *gorm.DB
	Cache          *CacheService
	Store          utils.BlobStore
	Categories     *CategoryService
	Notifications  *NotificationService
	Badges         *BadgeService
	MaxUploadBytes int64
	SignedURLTTL   time.Duration
}

func NewVideoService(db *gorm.DB, cache *CacheService, store utils.BlobStore, categories *CategoryService,
	notifications *NotificationService, badges *BadgeService, maxUploadBytes int64) *VideoService {
	return &VideoService{
		DB:             db,
		Cache:          cache,
		Store:          store,
		Categories:     categories,
		Notifications:  notifications,
		Badges:         badges,
		MaxUploadBytes: maxUploadBytes,
		SignedURLTTL:   time.Hour,
	}
}

// Upload stores a video (and optional thumbnail) and records it as pending
// moderation.
func (s *VideoService) Upload(ctx context.Context, ownerID string, meta VideoMeta, file Upload, thumb *Upload) (*models.Video, error) {
	video, err := s.store(ctx, ownerID, meta, file, thumb, "video")
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(video).Error; err != nil {
		s.removeBlobs(ctx, video)
		return nil, err
	}
	s.afterUpload(ctx, ownerID)
	log.Info().Str("video_id", video.ID).Str("owner_id", ownerID).Int64("bytes", video.SizeBytes).Msg("📼 video uploaded")
	return video, nil
}

// store validates and writes the blobs of a video; the row is not saved.
func (s *VideoService) store(ctx context.Context, ownerID string, meta VideoMeta, file Upload, thumb *Upload, purpose string) (*models.Video, error) {
	if strings.TrimSpace(meta.Title) == "" {
		return nil, fmt.Errorf("%w: title", ErrValidation)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !videoExtensions[ext] {
		return nil, ErrUnsupportedFile
	}
	if file.ContentType != "" && !strings.HasPrefix(file.ContentType, "video/") &&
		file.ContentType != "application/octet-stream" {
		return nil, ErrUnsupportedFile
	}
	if s.MaxUploadBytes > 0 && file.Size > s.MaxUploadBytes {
		return nil, ErrFileTooLarge
	}
	cats := VideoCategories{ExerciseType: meta.ExerciseType, AgeGroup: meta.AgeGroup, Position: meta.Position}
	if err := s.Categories.ValidateSlugs(ctx, cats.slugs()); err != nil {
		return nil, err
	}

	video := &models.Video{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Title:        strings.TrimSpace(meta.Title),
		Description:  strings.TrimSpace(meta.Description),
		ContentType:  file.ContentType,
		SizeBytes:    file.Size,
		ExerciseType: meta.ExerciseType,
		AgeGroup:     meta.AgeGroup,
		Position:     meta.Position,
		Status:       models.VideoStatusPending,
	}
	if video.ContentType == "" {
		video.ContentType = "application/octet-stream"
	}

	video.ObjectKey = fmt.Sprintf("videos/%s/%s%s", ownerID, uuid.NewString(), ext)
	url, err := s.Store.Put(ctx, video.ObjectKey, file.Body, file.Size, video.ContentType, s.progressReporter(ctx, meta.UploadID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	video.URL = url
	s.Cache.SetUploadProgress(ctx, meta.UploadID, 100)
	metrics.Uploads.WithLabelValues(purpose).Inc()
	metrics.UploadBytes.Add(float64(file.Size))

	if thumb != nil && thumb.Size > 0 {
		thumbExt := strings.ToLower(filepath.Ext(thumb.Filename))
		if !imageExtensions[thumbExt] {
			s.removeBlobs(ctx, video)
			return nil, ErrUnsupportedFile
		}
		video.ThumbnailKey = fmt.Sprintf("thumbnails/%s/%s%s", ownerID, uuid.NewString(), thumbExt)
		turl, err := s.Store.Put(ctx, video.ThumbnailKey, thumb.Body, thumb.Size, thumb.ContentType, nil)
		if err != nil {
			video.ThumbnailKey = ""
			s.removeBlobs(ctx, video)
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		video.ThumbnailURL = turl
		metrics.Uploads.WithLabelValues("thumbnail").Inc()
		metrics.UploadBytes.Add(float64(thumb.Size))
	}
	return video, nil
}

// progressReporter publishes whole-percent changes of an upload.
func (s *VideoService) progressReporter(ctx context.Context, uploadID string) utils.ProgressFunc {
	if uploadID == "" || !s.Cache.Enabled() {
		return nil
	}
	last := -1
	return func(written, total int64) {
		pct := utils.Percent(written, total)
		if pct == last {
			return
		}
		last = pct
		s.Cache.SetUploadProgress(ctx, uploadID, pct)
	}
}

// UploadProgress returns the percent of an in-flight upload.
func (s *VideoService) UploadProgress(ctx context.Context, uploadID string) (int, error) {
	pct, ok := s.Cache.UploadProgress(ctx, uploadID)
	if !ok {
		return 0, ErrUploadUnknown
	}
	return pct, nil
}

func (s *VideoService) afterUpload(ctx context.Context, ownerID string) {
	if err := RefreshPlayerStats(ctx, s.DB, s.Cache, ownerID); err != nil {
		log.Warn().Err(err).Str("user_id", ownerID).Msg("stats refresh failed")
	}
	if s.Badges != nil {
		if _, err := s.Badges.AutoAwardBadges(ctx, ownerID); err != nil {
			log.Warn().Err(err).Str("user_id", ownerID).Msg("badge evaluation failed")
		}
	}
}

func (s *VideoService) removeBlobs(ctx context.Context, v *models.Video) {
	for _, key := range []string{v.ObjectKey, v.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := s.Store.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to delete blob")
		}
	}
}

// canSeeAll reports whether viewer may see videos of any status of owner.
func canSeeAll(viewer *models.User, ownerID string) bool {
	return viewer != nil && (viewer.IsAdmin() || viewer.ID == ownerID)
}

// List returns a page of videos. Anyone but the owner and admins only sees
// approved videos.
func (s *VideoService) List(ctx context.Context, f VideoFilter, viewer *models.User) (*VideoPage, error) {
	page, size := normalizePage(f.Page, f.Size)

	q := s.DB.WithContext(ctx).Model(&models.Video{})
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if canSeeAll(viewer, f.OwnerID) && (f.OwnerID != "" || viewer.IsAdmin()) {
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
	} else {
		q = q.Where("status = ?", models.VideoStatusApproved)
	}
	if f.ExerciseType != "" {
		q = q.Where("exercise_type = ?", f.ExerciseType)
	}
	if f.AgeGroup != "" {
		q = q.Where("age_group = ?", f.AgeGroup)
	}
	if f.Position != "" {
		q = q.Where("position = ?", f.Position)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	switch f.Sort {
	case "most_viewed":
		q = q.Order("views DESC")
	case "most_liked":
		q = q.Order("likes DESC")
	}
	q = q.Order("created_at DESC")

	var videos []models.Video
	if err := q.Limit(size).Offset((page - 1) * size).Find(&videos).Error; err != nil {
		return nil, err
	}
	return &VideoPage{Videos: videos, Page: page, Size: size, TotalItems: total, TotalPages: totalPages(total, size)}, nil
}

func (s *VideoService) find(ctx context.Context, id string) (*models.Video, error) {
	var v models.Video
	err := s.DB.WithContext(ctx).First(&v, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// visible loads a video the viewer is allowed to see.
func (s *VideoService) visible(ctx context.Context, id string, viewer *models.User) (*models.Video, error) {
	v, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status != models.VideoStatusApproved && !canSeeAll(viewer, v.OwnerID) {
		return nil, ErrNotFound
	}
	return v, nil
}

// Get returns one video; approved videos watched by someone other than the
// owner count a view.
func (s *VideoService) Get(ctx context.Context, id string, viewer *models.User) (*models.Video, error) {
	v, err := s.visible(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	if v.Status == models.VideoStatusApproved && (viewer == nil || viewer.ID != v.OwnerID) {
		if err := s.DB.WithContext(ctx).Model(&models.Video{}).Where("id = ?", v.ID).
			UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
			return nil, err
		}
		v.Views++
	}
	return v, nil
}

// DownloadURL returns a time-limited URL for the video file.
func (s *VideoService) DownloadURL(ctx context.Context, id string, viewer *models.User) (string, error) {
	v, err := s.visible(ctx, id, viewer)
	if err != nil {
		return "", err
	}
	url, err := s.Store.SignedURL(ctx, v.ObjectKey, s.SignedURLTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return url, nil
}

// Like records a like once per user; repeating it is a no-op.
func (s *VideoService) Like(ctx context.Context, userID, id string) (*models.Video, error) {
	v, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status != models.VideoStatusApproved {
		return nil, ErrNotFound
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		like := models.VideoLike{ID: uuid.NewString(), VideoID: id, UserID: userID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Video{}).Where("id = ?", id).
			UpdateColumn("likes", gorm.Expr("likes + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// Unlike removes a like; unliking twice is a no-op.
func (s *VideoService) Unlike(ctx context.Context, userID, id string) (*models.Video, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("video_id = ? AND user_id = ?", id, userID).Delete(&models.VideoLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Video{}).Where("id = ?", id).
			UpdateColumn("likes", gorm.Expr("GREATEST(likes - 1, 0)")).Error
	})
	if err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// Delete soft-deletes a video and removes its blobs. Owner or admin only.
func (s *VideoService) Delete(ctx context.Context, actor *models.User, id string) error {
	v, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !canSeeAll(actor, v.OwnerID) {
		return ErrForbidden
	}
	if err := s.DB.WithContext(ctx).Delete(v).Error; err != nil {
		return err
	}
	s.removeBlobs(ctx, v)
	if err := RefreshPlayerStats(ctx, s.DB, s.Cache, v.OwnerID); err != nil {
		log.Warn().Err(err).Str("user_id", v.OwnerID).Msg("stats refresh failed")
	}
	log.Info().Str("video_id", v.ID).Str("by", actor.ID).Msg("🗑️ video deleted")
	return nil
}

// ListPending returns videos awaiting moderation, oldest first.
func (s *VideoService) ListPending(ctx context.Context, page, size int) (*VideoPage, error) {
	page, size = normalizePage(page, size)
	q := s.DB.WithContext(ctx).Model(&models.Video{}).Where("status = ?", models.VideoStatusPending)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	var videos []models.Video
	if err := q.Order("created_at ASC").Limit(size).Offset((page - 1) * size).Find(&videos).Error; err != nil {
		return nil, err
	}
	return &VideoPage{Videos: videos, Page: page, Size: size, TotalItems: total, TotalPages: totalPages(total, size)}, nil
}

// Approve publishes a video.
func (s *VideoService) Approve(ctx context.Context, adminID, id string) (*models.Video, error) {
	return s.review(ctx, adminID, id, models.VideoStatusApproved, "")
}

// Reject hides a video with a reason shown to the owner.
func (s *VideoService) Reject(ctx context.Context, adminID, id, reason string) (*models.Video, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason", ErrValidation)
	}
	return s.review(ctx, adminID, id, models.VideoStatusRejected, reason)
}

func (s *VideoService) review(ctx context.Context, adminID, id, status, reason string) (*models.Video, error) {
	v, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status == status {
		return nil, ErrAlreadyReviewed
	}
	now := time.Now()
	v.Status = status
	v.RejectionReason = reason
	v.ReviewedBy = &adminID
	v.ReviewedAt = &now
	if err := s.DB.WithContext(ctx).Model(v).
		Select("status", "rejection_reason", "reviewed_by", "reviewed_at").
		Updates(v).Error; err != nil {
		return nil, err
	}
	metrics.ModerationDecisions.WithLabelValues("video", status).Inc()
	log.Info().Str("video_id", v.ID).Str("status", status).Str("admin_id", adminID).Msg("🛡️ video reviewed")

	if err := RefreshPlayerStats(ctx, s.DB, s.Cache, v.OwnerID); err != nil {
		log.Warn().Err(err).Str("user_id", v.OwnerID).Msg("stats refresh failed")
	}
	s.notifyOwner(ctx, v, status, reason)
	return v, nil
}

func (s *VideoService) notifyOwner(ctx context.Context, v *models.Video, kind, reason string) {
	owner, err := findUser(ctx, s.DB, s.Cache, v.OwnerID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", v.OwnerID).Msg("video owner lookup failed")
		return
	}
	payload := map[string]string{"video_id": v.ID}
	switch kind {
	case models.VideoStatusApproved:
		s.Notifications.notifyUser(ctx, owner, models.NotificationVideoApproved, payload, v.Title)
	case models.VideoStatusRejected:
		s.Notifications.notifyUser(ctx, owner, models.NotificationVideoRejected, payload, v.Title, reason)
	case models.NotificationVideoRecategorized:
		s.Notifications.notifyUser(ctx, owner, models.NotificationVideoRecategorized, payload, v.Title)
	}
}

// Recategorize replaces the category slugs of a video.
func (s *VideoService) Recategorize(ctx context.Context, adminID, id string, cats VideoCategories) (*models.Video, error) {
	v, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Categories.ValidateSlugs(ctx, cats.slugs()); err != nil {
		return nil, err
	}
	v.ExerciseType = cats.ExerciseType
	v.AgeGroup = cats.AgeGroup
	v.Position = cats.Position
	if err := s.DB.WithContext(ctx).Model(v).
		Select("exercise_type", "age_group", "position").
		Updates(v).Error; err != nil {
		return nil, err
	}
	log.Info().Str("video_id", v.ID).Str("admin_id", adminID).Msg("🏷️ video recategorized")
	s.notifyOwner(ctx, v, models.NotificationVideoRecategorized, "")
	return v, nil
}
