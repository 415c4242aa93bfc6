package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ale-zgn/projet-semestriel/controllers"
	"github.com/ale-zgn/projet-semestriel/middleware"
	"github.com/ale-zgn/projet-semestriel/repositories"
	"github.com/ale-zgn/projet-semestriel/services"
)

// RegisterCarRoutes sets up the fleet routes. Listing is public so the
// catalog can be browsed without an account; mutations are admin only.
func RegisterCarRoutes(e *echo.Echo, db *mongo.Client, rentals *repositories.RentalRepository, notifier *services.Notifier) {
	carController := controllers.NewCarController(db, rentals, notifier)

	e.GET("/api/cars", carController.GetCars)

	adminGroup := e.Group("/api/cars")
	adminGroup.Use(middleware.JWTMiddleware())
	adminGroup.Use(middleware.RequireAdmin())
	adminGroup.POST("", carController.CreateCar)
	adminGroup.PUT("/:id", carController.UpdateCar)
	adminGroup.DELETE("/:id", carController.DeleteCar)
}
