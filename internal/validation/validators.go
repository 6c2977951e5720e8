package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/benvon/day-planner/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("hhmm", validateClock); err != nil {
		panic(fmt.Sprintf("failed to register hhmm validator: %v", err))
	}
	if err := Validate.RegisterValidation("datekey", validateDateKey); err != nil {
		panic(fmt.Sprintf("failed to register datekey validator: %v", err))
	}
}

// validateClock accepts zero-padded 24-hour HH:MM clocks
func validateClock(fl validator.FieldLevel) bool {
	return models.IsClock(fl.Field().String())
}

// validateDateKey accepts YYYY-MM-DD calendar dates
func validateDateKey(fl validator.FieldLevel) bool {
	return models.IsDateKey(fl.Field().String())
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateClock validates an HH:MM value
func ValidateClock(field, value string) error {
	if !models.IsClock(value) {
		return fmt.Errorf("invalid %s: %q (must be HH:MM, 24-hour)", field, value)
	}
	return nil
}

// ValidateDateKey validates a YYYY-MM-DD value
func ValidateDateKey(field, value string) error {
	if !models.IsDateKey(value) {
		return fmt.Errorf("invalid %s: %q (must be YYYY-MM-DD)", field, value)
	}
	return nil
}

// Describe turns a validator error into a single client-facing message
func Describe(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "Validation failed"
	}
	fe := validationErrors[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "hhmm":
		return fmt.Sprintf("%s must be HH:MM, 24-hour", fe.Field())
	case "datekey":
		return fmt.Sprintf("%s must be YYYY-MM-DD", fe.Field())
	case "min", "max":
		return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("Validation failed: %s", fe.Error())
	}
}
