package websocket

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ale-zgn/projet-semestriel/middleware"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the request and registers the connection with the
// hub. A valid bearer token (query parameter or Authorization header) binds
// the connection to its user for private pushes; anonymous connections still
// receive broadcasts.
func HandleWebSocket(c echo.Context, hub *Hub) error {
	userID := primitive.NilObjectID
	if token := bearerToken(c); token != "" {
		if claims, err := middleware.ParseToken(token); err == nil {
			if id, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
				userID = id
			}
		}
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		UserID: userID,
		ConnID: uuid.NewString(),
		conn:   conn,
	}
	hub.register <- client

	welcome := Event{Type: EventConnected, Payload: map[string]string{"connectionId": client.ConnID}}
	if client.Authenticated() {
		welcome.Payload = map[string]string{
			"connectionId": client.ConnID,
			"userId":       userID.Hex(),
		}
	}
	client.send(welcome)

	// Reader loop: the server never consumes client messages, but reading
	// until failure is how gorilla surfaces the disconnect.
	go func() {
		defer func() {
			hub.unregister <- client
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return nil
}

func bearerToken(c echo.Context) string {
	if token := c.QueryParam("token"); token != "" {
		return token
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
