package services

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/gomail.v2"

	"github.com/ale-zgn/projet-semestriel/config"
	"github.com/ale-zgn/projet-semestriel/models"
	"github.com/ale-zgn/projet-semestriel/websocket"
)

// notificationStore persists notification rows and resolves the admin
// recipient set. The mongo implementation below is the only one outside
// tests.
type notificationStore interface {
	Insert(ctx context.Context, notification models.Notification) error
	FindAdmins(ctx context.Context) ([]models.User, error)
}

// Notifier persists notification records and pushes them over the WebSocket
// hub. Everything here is best-effort: the caller's mutation has already
// committed, so failures are logged and never propagated as operation
// failures.
type Notifier struct {
	store notificationStore
	hub   *websocket.Hub
}

// NewNotifier creates a notifier bound to the database and hub.
func NewNotifier(db *mongo.Client, hub *websocket.Hub) *Notifier {
	return &Notifier{store: &mongoNotificationStore{db: db}, hub: hub}
}

// NotifyUser persists one notification for the recipient and pushes it to
// their private channel.
func (n *Notifier) NotifyUser(ctx context.Context, userID primitive.ObjectID, title, location string, locationID primitive.ObjectID) {
	notification := n.save(ctx, userID, title, location, locationID)
	if notification == nil {
		return
	}
	if err := n.hub.SendToUser(userID, websocket.Event{
		Type:    websocket.EventNewNotification,
		Payload: notification,
	}); err != nil {
		// Recipient offline; they catch up on the next fetch.
		log.Printf("notification push to %s skipped: %v", userID.Hex(), err)
	}
}

// NotifyAdmins fans the notification out to every admin account: one
// persisted record per admin, one private push each.
func (n *Notifier) NotifyAdmins(ctx context.Context, title, location string, locationID primitive.ObjectID) {
	admins, err := n.store.FindAdmins(ctx)
	if err != nil {
		log.Printf("admin notification %q dropped: %v", title, err)
		return
	}
	for _, admin := range admins {
		n.NotifyUser(ctx, admin.ID, title, location, locationID)
	}
}

// Broadcast emits a coarse refresh signal to every connected client.
func (n *Notifier) Broadcast(event string, payload interface{}) {
	n.hub.Broadcast(websocket.Event{Type: event, Payload: payload})
}

// EmailAdmins sends a plain-text email to every admin. SMTP failures are
// logged; the in-app notification remains the authoritative copy.
func (n *Notifier) EmailAdmins(ctx context.Context, subject, body string) {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	if smtpHost == "" {
		return
	}
	smtpPort := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			smtpPort = port
		}
	}

	admins, err := n.store.FindAdmins(ctx)
	if err != nil {
		log.Printf("admin email %q dropped: %v", subject, err)
		return
	}
	recipients := make([]string, 0, len(admins))
	for _, admin := range admins {
		recipients = append(recipients, admin.Email)
	}
	if len(recipients) == 0 {
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("failed to email admins: %v", err)
	}
}

func (n *Notifier) save(ctx context.Context, userID primitive.ObjectID, title, location string, locationID primitive.ObjectID) *models.Notification {
	now := time.Now()
	notification := models.Notification{
		ID:         primitive.NewObjectID(),
		Title:      title,
		Location:   location,
		LocationID: locationID,
		UserID:     userID,
		IsOpened:   false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := n.store.Insert(ctx, notification); err != nil {
		log.Printf("failed to save notification for %s: %v", userID.Hex(), err)
		return nil
	}
	return &notification
}

type mongoNotificationStore struct {
	db *mongo.Client
}

func (s *mongoNotificationStore) Insert(ctx context.Context, notification models.Notification) error {
	_, err := config.GetCollection(s.db, "notifications").InsertOne(ctx, notification)
	return err
}

func (s *mongoNotificationStore) FindAdmins(ctx context.Context) ([]models.User, error) {
	cursor, err := config.GetCollection(s.db, "users").Find(ctx, bson.M{"role": models.RoleAdmin})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var admins []models.User
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}
