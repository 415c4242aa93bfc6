package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ale-zgn/projet-semestriel/controllers"
	"github.com/ale-zgn/projet-semestriel/middleware"
)

// RegisterNotificationRoutes sets up the per-user notification feed routes
func RegisterNotificationRoutes(e *echo.Echo, db *mongo.Client) {
	notificationController := controllers.NewNotificationController(db)

	notificationGroup := e.Group("/api/notifications")
	notificationGroup.Use(middleware.JWTMiddleware())

	notificationGroup.GET("", notificationController.GetUserNotifications)
	notificationGroup.PATCH("/:id/read", notificationController.MarkAsRead)
	notificationGroup.DELETE("/:id", notificationController.DeleteNotification)
	notificationGroup.DELETE("", notificationController.DeleteAllNotifications)
}
