package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ale-zgn/projet-semestriel/controllers"
	"github.com/ale-zgn/projet-semestriel/middleware"
	"github.com/ale-zgn/projet-semestriel/repositories"
)

// RegisterUserRoutes sets up the admin customer directory route
func RegisterUserRoutes(e *echo.Echo, db *mongo.Client, rentals *repositories.RentalRepository) {
	userController := controllers.NewUserController(db, rentals)

	userGroup := e.Group("/api/users")
	userGroup.Use(middleware.JWTMiddleware())
	userGroup.Use(middleware.RequireAdmin())

	userGroup.GET("", userController.GetUsers)
}
