package handlers

import (
	"errors"
	"mime/multipart"
	"strconv"

	"scout-platform/i18n"
	"scout-platform/middleware"
	"scout-platform/services"
	"scout-platform/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

var validate = utils.NewValidator()

var statusByError = map[error]int{
	services.ErrNotFound:           fiber.StatusNotFound,
	services.ErrForbidden:          fiber.StatusForbidden,
	services.ErrValidation:         fiber.StatusBadRequest,
	services.ErrEmailInUse:         fiber.StatusConflict,
	services.ErrInvalidEmail:       fiber.StatusBadRequest,
	services.ErrWeakPassword:       fiber.StatusBadRequest,
	services.ErrInvalidCredentials: fiber.StatusUnauthorized,
	services.ErrTooManyRequests:    fiber.StatusTooManyRequests,
	services.ErrInvalidToken:       fiber.StatusBadRequest,
	services.ErrInvalidRole:        fiber.StatusBadRequest,
	services.ErrStorage:            fiber.StatusBadGateway,
	services.ErrFileTooLarge:       fiber.StatusRequestEntityTooLarge,
	services.ErrUnsupportedFile:    fiber.StatusUnsupportedMediaType,
	services.ErrInvalidCategory:    fiber.StatusBadRequest,
	services.ErrDuplicateCategory:  fiber.StatusConflict,
	services.ErrCategoryInUse:      fiber.StatusConflict,
	services.ErrInvalidScore:       fiber.StatusBadRequest,
	services.ErrChallengeLocked:    fiber.StatusForbidden,
	services.ErrAssessmentClosed:   fiber.StatusConflict,
	services.ErrInvalidExercise:    fiber.StatusBadRequest,
	services.ErrAlreadyReviewed:    fiber.StatusConflict,
	services.ErrNotAPlayer:         fiber.StatusBadRequest,
	services.ErrUploadUnknown:      fiber.StatusNotFound,
}

// fail writes the standard error body for an i18n code.
func fail(c *fiber.Ctx, status int, code string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": i18n.T(middleware.Lang(c), code),
	})
}

// respondError maps a service error to its status and localized message.
// Unknown errors are 500s and carry the cause.
func respondError(c *fiber.Ctx, err error) error {
	for known, status := range statusByError {
		if errors.Is(err, known) {
			return fail(c, status, known.Error())
		}
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("❌ request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "internal",
		"message": i18n.T(middleware.Lang(c), "internal"),
		"cause":   err.Error(),
	})
}

// parseBody decodes the JSON body into v and validates it. On failure the
// error response has been written and false is returned.
func parseBody(c *fiber.Ctx, v interface{}) bool {
	if err := c.BodyParser(v); err != nil {
		_ = fail(c, fiber.StatusBadRequest, "invalid-json")
		return false
	}
	if err := validate.Validate(v); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation",
			"message": i18n.T(middleware.Lang(c), "validation"),
			"fields":  utils.FieldErrors(err),
		})
		return false
	}
	return true
}

// formUpload opens a multipart file field as a service upload. The caller
// closes the returned file.
func formUpload(c *fiber.Ctx, field string) (*services.Upload, multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, f, nil
}

// pageParams reads ?page= and ?size=.
func pageParams(c *fiber.Ctx) (int, int) {
	return c.QueryInt("page", 1), c.QueryInt("size", 20)
}

func queryBool(c *fiber.Ctx, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}

// formInt reads an integer multipart field; missing or malformed is 0.
func formInt(c *fiber.Ctx, key string) int {
	n, err := strconv.Atoi(c.FormValue(key))
	if err != nil {
		return 0
	}
	return n
}
