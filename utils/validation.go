package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground validator with the platform's custom rules.
type Validator struct {
	validate *validator.Validate
}

var phoneRegex = regexp.MustCompile(`^\+?[0-9\- ]{7,20}$`)

var emailValidator = validator.New()

func NewValidator() *Validator {
	v := validator.New()
	// report fields by their json name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("position", validatePosition)
	v.RegisterValidation("foot", validateFoot)
	v.RegisterValidation("lang", validateLang)
	v.RegisterValidation("signup_role", validateSignupRole)
	v.RegisterValidation("password", validatePassword)
	v.RegisterValidation("phone", validatePhone)

	return &Validator{validate: v}
}

// Validate validates a struct
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// FieldErrors flattens validation errors into field → failed tag.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return out
}

func validatePosition(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "goalkeeper", "defender", "midfielder", "forward":
		return true
	}
	return false
}

func validateFoot(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "left", "right", "both":
		return true
	}
	return false
}

func validateLang(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "he", "en":
		return true
	}
	return false
}

// admins are bootstrapped from config, never self-registered
func validateSignupRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "player", "scout":
		return true
	}
	return false
}

func validatePassword(fl validator.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

func validatePhone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// IsStrongPassword: at least 8 characters with a letter and a digit, and no
// more than MaxPasswordBytes bytes.
func IsStrongPassword(pw string) bool {
	if len([]rune(pw)) < 8 || len(pw) > MaxPasswordBytes {
		return false
	}
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// NormalizeEmail trims, lower-cases and checks an address.
func NormalizeEmail(email string) (string, bool) {
	e := strings.ToLower(strings.TrimSpace(email))
	if err := emailValidator.Var(e, "required,email"); err != nil {
		return "", false
	}
	return e, true
}
