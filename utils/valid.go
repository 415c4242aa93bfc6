// utils/validation.go
package utils

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/ale-zgn/projet-semestriel/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SanitizeInput sanitizes user input to prevent XSS and injection attacks
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = html.EscapeString(input)

	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)

	return input
}

// SanitizeEmail sanitizes and validates an email address
func SanitizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	if !emailRegex.MatchString(email) {
		return "", errors.New("invalid email format")
	}

	return email, nil
}

// SanitizePhone sanitizes and validates a phone number. Phone is optional;
// an empty input stays empty.
func SanitizePhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", nil
	}

	phone = regexp.MustCompile(`[^\d+]`).ReplaceAllString(phone, "")
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	if len(phone) < 8 || len(phone) > 15 {
		return "", errors.New("invalid phone number length")
	}

	return phone, nil
}

// ValidationErrors converts validator failures into field-level envelope
// errors.
func ValidationErrors(err error) []models.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []models.FieldError{{Field: "", Message: err.Error()}}
	}

	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		field = strings.ToLower(field[:1]) + field[1:]
		fields = append(fields, models.FieldError{
			Field:   field,
			Message: fmt.Sprintf("failed on the %q rule", fe.Tag()),
		})
	}
	return fields
}
