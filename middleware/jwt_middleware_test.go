package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateAndParseToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	userID := primitive.NewObjectID().Hex()
	token, err := GenerateJWT(userID, "user@example.com", "user")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Greater(t, claims.ExpiresAt, claims.IssuedAt)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	token, err := GenerateJWT(primitive.NewObjectID().Hex(), "user@example.com", "admin")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "second-secret")
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestGenerateJWTRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := GenerateJWT(primitive.NewObjectID().Hex(), "user@example.com", "user")
	assert.Error(t, err)
}
