package services

import "errors"

// Sentinel errors; handlers map each to a status code and a localized message.
// The error text is the i18n key.
var (
	ErrNotFound           = errors.New("not-found")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation")
	ErrEmailInUse         = errors.New("email-already-in-use")
	ErrInvalidEmail       = errors.New("invalid-email")
	ErrWeakPassword       = errors.New("weak-password")
	ErrInvalidCredentials = errors.New("invalid-credentials")
	ErrTooManyRequests    = errors.New("too-many-requests")
	ErrInvalidToken       = errors.New("invalid-token")
	ErrInvalidRole        = errors.New("invalid-role")
	ErrStorage            = errors.New("storage")
	ErrFileTooLarge       = errors.New("file-too-large")
	ErrUnsupportedFile    = errors.New("unsupported-file")
	ErrInvalidCategory    = errors.New("invalid-category")
	ErrDuplicateCategory  = errors.New("duplicate-category")
	ErrCategoryInUse      = errors.New("category-in-use")
	ErrInvalidScore       = errors.New("invalid-score")
	ErrChallengeLocked    = errors.New("challenge-locked")
	ErrAssessmentClosed   = errors.New("assessment-closed")
	ErrInvalidExercise    = errors.New("invalid-exercise")
	ErrAlreadyReviewed    = errors.New("already-reviewed")
	ErrNotAPlayer         = errors.New("not-a-player")
	ErrUploadUnknown      = errors.New("upload-progress-unknown")
)
