package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ale-zgn/projet-semestriel/config"
	"github.com/ale-zgn/projet-semestriel/models"
	"github.com/ale-zgn/projet-semestriel/repositories"
)

// UserController exposes the admin-facing customer directory.
type UserController struct {
	db      *mongo.Client
	rentals *repositories.RentalRepository
}

func NewUserController(db *mongo.Client, rentals *repositories.RentalRepository) *UserController {
	return &UserController{db: db, rentals: rentals}
}

// GetUsers lists customer accounts with their rental request counts.
// Admin accounts are excluded from the listing.
func (uc *UserController) GetUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(uc.db, "users")
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := collection.Find(ctx, bson.M{"role": models.RoleUser}, findOptions)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Error retrieving users",
		})
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Error decoding users",
		})
	}

	result := make([]models.UserWithRentals, len(users))
	for i, user := range users {
		count, err := uc.rentals.CountByUser(ctx, user.ID)
		if err != nil {
			log.Printf("Failed to count rentals for user %s: %v", user.ID.Hex(), err)
		}
		result[i] = models.UserWithRentals{
			UserView:    user.View(),
			RentalCount: count,
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Users retrieved successfully",
		Data: map[string]interface{}{
			"users": result,
			"count": len(result),
		},
	})
}
