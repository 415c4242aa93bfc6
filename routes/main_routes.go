package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ale-zgn/projet-semestriel/repositories"
	"github.com/ale-zgn/projet-semestriel/services"
	"github.com/ale-zgn/projet-semestriel/websocket"
)

// SetupRoutes configures all API routes by calling individual route
// registration functions.
func SetupRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub) {
	rentalRepo := repositories.NewRentalRepository(db)
	notifier := services.NewNotifier(db, hub)

	RegisterAuthRoutes(e, db, notifier)
	RegisterCarRoutes(e, db, rentalRepo, notifier)
	RegisterRentalRoutes(e, db, rentalRepo, notifier)
	RegisterNotificationRoutes(e, db)
	RegisterUserRoutes(e, db, rentalRepo)

	// WebSocket endpoint. Token auth happens inside the handler so that
	// unauthenticated clients can still receive broadcasts.
	e.GET("/api/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(c, hub)
	})
}
