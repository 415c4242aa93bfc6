// utils/auth.go
package utils

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/ale-zgn/projet-semestriel/config"
	"github.com/ale-zgn/projet-semestriel/middleware"
	"github.com/ale-zgn/projet-semestriel/models"
)

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword compares a plaintext password against its bcrypt hash.
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GetUserIDFromToken extracts the authenticated user's ObjectID from the
// request context.
func GetUserIDFromToken(c echo.Context) (primitive.ObjectID, error) {
	userID := middleware.GetUserIDFromToken(c)
	if userID == "" {
		return primitive.NilObjectID, errors.New("no token found")
	}
	return primitive.ObjectIDFromHex(userID)
}

// CurrentUser loads the full user document for the authenticated request.
func CurrentUser(c echo.Context, db *mongo.Client) (*models.User, error) {
	userID, err := GetUserIDFromToken(c)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err = config.GetCollection(db, "users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("user not found")
		}
		return nil, errors.New("error retrieving user")
	}

	return &user, nil
}
