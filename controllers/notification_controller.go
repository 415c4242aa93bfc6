package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ale-zgn/projet-semestriel/config"
	"github.com/ale-zgn/projet-semestriel/models"
	"github.com/ale-zgn/projet-semestriel/utils"
)

// NotificationController serves the per-user notification feed. Every
// operation is scoped to the authenticated user; nobody reads or mutates
// another account's notifications.
type NotificationController struct {
	db *mongo.Client
}

func NewNotificationController(db *mongo.Client) *NotificationController {
	return &NotificationController{db: db}
}

const notificationFeedLimit = 50

// GetUserNotifications returns the caller's notifications, newest first.
func (nc *NotificationController) GetUserNotifications(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Unauthorized",
		})
	}

	collection := config.GetCollection(nc.db, "notifications")
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(notificationFeedLimit)
	cursor, err := collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Error retrieving notifications",
		})
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Error decoding notifications",
		})
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Notifications retrieved successfully",
		Data: map[string]interface{}{
			"notifications": notifications,
			"count":         len(notifications),
		},
	})
}

// MarkAsRead flags one of the caller's notifications as opened.
func (nc *NotificationController) MarkAsRead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Unauthorized",
		})
	}

	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid notification ID",
		})
	}

	var updated models.Notification
	err = config.GetCollection(nc.db, "notifications").FindOneAndUpdate(ctx,
		bson.M{"_id": notificationID, "userId": userID},
		bson.M{"$set": bson.M{"isOpened": true, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Message: "Notification not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to update notification",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Notification marked as read",
		Data:    map[string]interface{}{"notification": updated},
	})
}

// DeleteNotification removes one of the caller's notifications.
func (nc *NotificationController) DeleteNotification(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Unauthorized",
		})
	}

	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid notification ID",
		})
	}

	result, err := config.GetCollection(nc.db, "notifications").DeleteOne(ctx,
		bson.M{"_id": notificationID, "userId": userID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to delete notification",
		})
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Success: false,
			Message: "Notification not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Notification deleted successfully",
	})
}

// DeleteAllNotifications clears the caller's feed.
func (nc *NotificationController) DeleteAllNotifications(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Unauthorized",
		})
	}

	result, err := config.GetCollection(nc.db, "notifications").DeleteMany(ctx,
		bson.M{"userId": userID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to delete notifications",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "All notifications deleted successfully",
		Data:    map[string]interface{}{"deletedCount": result.DeletedCount},
	})
}
