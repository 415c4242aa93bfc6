package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ale-zgn/projet-semestriel/controllers"
	"github.com/ale-zgn/projet-semestriel/services"
)

// RegisterAuthRoutes sets up the public authentication routes
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Client, notifier *services.Notifier) {
	authController := controllers.NewAuthController(db, notifier)

	e.POST("/api/auth/register", authController.Register)
	e.POST("/api/auth/login", authController.Login)
	e.POST("/api/auth/logout", authController.Logout)
	e.POST("/api/auth/remember-me/login", authController.RememberLogin)
}
