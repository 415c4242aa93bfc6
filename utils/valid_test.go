package utils

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ale-zgn/projet-semestriel/models"
)

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello", SanitizeInput("  hello  "))
	assert.Equal(t, "&lt;script&gt;", SanitizeInput("<script>"))
	assert.Equal(t, "ab", SanitizeInput("a\x00b"))
	assert.Equal(t, "", SanitizeInput("   "))
}

func TestSanitizeEmail(t *testing.T) {
	email, err := SanitizeEmail("  User@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)

	_, err = SanitizeEmail("not-an-email")
	assert.Error(t, err)

	_, err = SanitizeEmail("")
	assert.Error(t, err)
}

func TestSanitizePhone(t *testing.T) {
	phone, err := SanitizePhone("+216 22 333 444")
	require.NoError(t, err)
	assert.Equal(t, "+21622333444", phone)

	phone, err = SanitizePhone("21622333444")
	require.NoError(t, err)
	assert.Equal(t, "+21622333444", phone)

	// Optional field: blank stays blank.
	phone, err = SanitizePhone("   ")
	require.NoError(t, err)
	assert.Equal(t, "", phone)

	_, err = SanitizePhone("12")
	assert.Error(t, err)
}

func TestValidationErrors(t *testing.T) {
	v := validator.New()
	err := v.Struct(&models.RegisterRequest{
		Username: "ab",
		Email:    "not-an-email",
		Password: "secret123",
	})
	require.Error(t, err)

	fields := ValidationErrors(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "username", fields[0].Field)
	assert.Contains(t, fields[0].Message, "min")
	assert.Equal(t, "email", fields[1].Field)
	assert.Contains(t, fields[1].Message, "email")
}
