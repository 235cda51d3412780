package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"scout-platform/i18n"
	"scout-platform/metrics"
	"scout-platform/models"
	"scout-platform/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxSignInFailures = 10
	signInFailWindow  = 15 * time.Minute
	passwordResetTTL  = time.Hour
)

// AuthService handles credentials and bearer sessions.
type AuthService struct {
	DB         *gorm.DB
	Cache      *CacheService
	Mailer     Mailer
	Badges     *BadgeService
	SessionTTL time.Duration
	ResetURL   string // client page receiving ?token=
	Now        func() time.Time
}

func NewAuthService(db *gorm.DB, cache *CacheService, mailer Mailer, badges *BadgeService, sessionTTL time.Duration) *AuthService {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &AuthService{
		DB:         db,
		Cache:      cache,
		Mailer:     mailer,
		Badges:     badges,
		SessionTTL: sessionTTL,
		ResetURL:   "/reset-password",
		Now:        time.Now,
	}
}

// SignUpInput is the registration form.
type SignUpInput struct {
	Email             string `json:"email" validate:"required"`
	Password          string `json:"password" validate:"required,password"`
	Role              string `json:"role" validate:"required,signup_role"`
	FullName          string `json:"full_name" validate:"required,min=2,max=100"`
	PreferredLanguage string `json:"preferred_language" validate:"omitempty,lang"`
	Position          string `json:"position" validate:"omitempty,position"`
	Organization      string `json:"organization" validate:"omitempty,max=120"`
}

// AuthResult is returned by sign-up and sign-in.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// SignUp creates the account, mirrors its profile document and opens a session.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	email, ok := utils.NormalizeEmail(in.Email)
	if !ok {
		return nil, ErrInvalidEmail
	}
	if !utils.IsStrongPassword(in.Password) {
		return nil, ErrWeakPassword
	}
	if in.Role != models.RolePlayer && in.Role != models.RoleScout {
		return nil, ErrInvalidRole
	}

	var count int64
	if err := s.DB.WithContext(ctx).Unscoped().Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:                uuid.NewString(),
		Email:             email,
		PasswordHash:      string(hash),
		Role:              in.Role,
		FullName:          strings.TrimSpace(in.FullName),
		SearchName:        utils.FoldName(in.FullName),
		PreferredLanguage: i18n.Normalize(in.PreferredLanguage),
		Level:             models.MinLevel,
	}
	if in.Role == models.RolePlayer {
		user.Position = in.Position
	} else {
		user.Organization = in.Organization
	}

	var result *AuthResult
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		res, err := s.openSession(tx, user)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Signups.WithLabelValues(user.Role).Inc()
	log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("✅ user registered")

	if s.Badges != nil {
		if _, err := s.Badges.AutoAwardBadges(ctx, user.ID); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID).Msg("badge evaluation failed")
		}
	}
	return result, nil
}

// SignIn checks credentials. Repeated failures for one email are throttled.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	normalized, ok := utils.NormalizeEmail(email)
	if !ok {
		return nil, ErrInvalidEmail
	}
	if s.Cache.Counter(ctx, signInFailKey(normalized)) >= maxSignInFailures {
		return nil, ErrTooManyRequests
	}

	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", normalized).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.recordFailure(ctx, normalized)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordFailure(ctx, normalized)
		return nil, ErrInvalidCredentials
	}

	s.Cache.Delete(ctx, signInFailKey(normalized))
	return s.openSession(s.DB.WithContext(ctx), &user)
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	metrics.SignInFailures.Inc()
	s.Cache.IncrWindow(ctx, signInFailKey(email), signInFailWindow)
}

// SignOut revokes the given token. Unknown tokens are ignored.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	h := HashToken(token)
	if err := s.DB.WithContext(ctx).Where("token_hash = ?", h).Delete(&models.Session{}).Error; err != nil {
		return err
	}
	s.Cache.DeleteSession(ctx, h)
	return nil
}

// Authenticate resolves a bearer token to its (non-deleted) user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	h := HashToken(token)

	userID := s.Cache.GetSessionUser(ctx, h)
	if userID == "" {
		var sess models.Session
		err := s.DB.WithContext(ctx).
			Where("token_hash = ? AND expires_at > ?", h, s.Now()).
			First(&sess).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		if err != nil {
			return nil, err
		}
		userID = sess.UserID
		s.Cache.SetSessionUser(ctx, h, userID, sess.ExpiresAt.Sub(s.Now()))
	}

	user, err := findUser(ctx, s.DB, s.Cache, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return user, err
}

// RequestPasswordReset emails a one-time link. Unknown addresses succeed
// silently so the endpoint cannot be used to probe accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	normalized, ok := utils.NormalizeEmail(email)
	if !ok {
		return ErrInvalidEmail
	}

	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", normalized).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Info().Msg("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, err := NewToken()
	if err != nil {
		return err
	}
	reset := models.PasswordReset{
		ID:        uuid.NewString(),
		TokenHash: HashToken(token),
		UserID:    user.ID,
		ExpiresAt: s.Now().Add(passwordResetTTL),
	}
	if err := s.DB.WithContext(ctx).Create(&reset).Error; err != nil {
		return err
	}

	lang := i18n.Normalize(user.PreferredLanguage)
	subject := "איפוס סיסמה"
	if lang == i18n.English {
		subject = "Password reset"
	}
	return s.Mailer.Send(ctx, user.Email, subject, fmt.Sprintf("%s?token=%s", s.ResetURL, token))
}

// ResetPassword consumes a reset token and revokes every open session.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if !utils.IsStrongPassword(newPassword) {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var revoked []string
	var userID string
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reset models.PasswordReset
		err := tx.Where("token_hash = ? AND used_at IS NULL AND expires_at > ?", HashToken(token), s.Now()).
			First(&reset).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		if err != nil {
			return err
		}
		userID = reset.UserID

		now := s.Now()
		if err := tx.Model(&reset).Update("used_at", &now).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
			Update("password_hash", string(hash)).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Session{}).Where("user_id = ?", reset.UserID).
			Pluck("token_hash", &revoked).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", reset.UserID).Delete(&models.Session{}).Error
	})
	if err != nil {
		return err
	}

	s.Cache.DeleteSession(ctx, revoked...)
	log.Info().Str("user_id", userID).Int("revoked_sessions", len(revoked)).Msg("🔑 password reset")
	return nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	normalized, ok := utils.NormalizeEmail(email)
	if !ok {
		return ErrInvalidEmail
	}
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", normalized).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if !utils.IsStrongPassword(password) {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		ID:                uuid.NewString(),
		Email:             normalized,
		PasswordHash:      string(hash),
		Role:              models.RoleAdmin,
		FullName:          "Admin",
		SearchName:        "admin",
		PreferredLanguage: i18n.Hebrew,
		Level:             models.MinLevel,
	}
	if err := s.DB.WithContext(ctx).Create(admin).Error; err != nil {
		return err
	}
	log.Info().Str("email", normalized).Msg("✅ bootstrap admin created")
	return nil
}

// PurgeExpired deletes expired sessions and spent or expired reset tokens.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	now := s.Now()
	res := s.DB.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	if res.Error != nil {
		return 0, res.Error
	}
	resets := s.DB.WithContext(ctx).Where("expires_at <= ? OR used_at IS NOT NULL", now).Delete(&models.PasswordReset{})
	if resets.Error != nil {
		return res.RowsAffected, resets.Error
	}
	return res.RowsAffected + resets.RowsAffected, nil
}

func (s *AuthService) openSession(tx *gorm.DB, user *models.User) (*AuthResult, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}
	sess := models.Session{
		ID:        uuid.NewString(),
		TokenHash: HashToken(token),
		UserID:    user.ID,
		ExpiresAt: s.Now().Add(s.SessionTTL),
	}
	if err := tx.Create(&sess).Error; err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: sess.ExpiresAt, User: user}, nil
}

// NewToken returns 32 random bytes, hex encoded.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashToken is the at-rest form of a bearer or reset token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
