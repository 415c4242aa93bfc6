package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ale-zgn/projet-semestriel/controllers"
	"github.com/ale-zgn/projet-semestriel/middleware"
	"github.com/ale-zgn/projet-semestriel/repositories"
	"github.com/ale-zgn/projet-semestriel/services"
)

// RegisterRentalRoutes sets up the rental request routes. All of them
// require authentication; updates enforce the ownership and transition
// rules in the controller, deletion is admin only.
func RegisterRentalRoutes(e *echo.Echo, db *mongo.Client, rentals *repositories.RentalRepository, notifier *services.Notifier) {
	rentalController := controllers.NewRentalController(db, rentals, notifier)

	rentalGroup := e.Group("/api/rentals")
	rentalGroup.Use(middleware.JWTMiddleware())

	rentalGroup.GET("", rentalController.GetRentals)
	rentalGroup.POST("", rentalController.CreateRental)
	rentalGroup.PUT("/:id", rentalController.UpdateRental)
	rentalGroup.DELETE("/:id", rentalController.DeleteRental, middleware.RequireAdmin())
}
