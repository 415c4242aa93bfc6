package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ale-zgn/projet-semestriel/models"
	"github.com/ale-zgn/projet-semestriel/websocket"
)

// fakeNotificationStore records inserts in place of the notifications
// collection. Pushes go through a hub with no connections and are dropped,
// which is exactly the offline-recipient path.
type fakeNotificationStore struct {
	saved     []models.Notification
	admins    []models.User
	findErr   error
	insertErr error
}

func (f *fakeNotificationStore) Insert(ctx context.Context, notification models.Notification) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.saved = append(f.saved, notification)
	return nil
}

func (f *fakeNotificationStore) FindAdmins(ctx context.Context) ([]models.User, error) {
	return f.admins, f.findErr
}

func TestNotifyAdminsFanOut(t *testing.T) {
	adminOne := models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	adminTwo := models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	store := &fakeNotificationStore{admins: []models.User{adminOne, adminTwo}}
	notifier := &Notifier{store: store, hub: websocket.NewHub()}

	newUserID := primitive.NewObjectID()
	notifier.NotifyAdmins(context.Background(), "New user registered: lina", models.LocationUser, newUserID)

	// One persisted row per admin, addressed to that admin.
	require.Len(t, store.saved, 2)
	recipients := []primitive.ObjectID{store.saved[0].UserID, store.saved[1].UserID}
	assert.ElementsMatch(t, []primitive.ObjectID{adminOne.ID, adminTwo.ID}, recipients)
	for _, notification := range store.saved {
		assert.Equal(t, "New user registered: lina", notification.Title)
		assert.Equal(t, models.LocationUser, notification.Location)
		assert.Equal(t, newUserID, notification.LocationID)
		assert.False(t, notification.IsOpened)
		assert.False(t, notification.CreatedAt.IsZero())
	}
}

func TestNotifyUserPersistsForOfflineRecipient(t *testing.T) {
	store := &fakeNotificationStore{}
	notifier := &Notifier{store: store, hub: websocket.NewHub()}

	userID := primitive.NewObjectID()
	rentalID := primitive.NewObjectID()
	notifier.NotifyUser(context.Background(), userID, "Your rental request has been approved", models.LocationRentalRequest, rentalID)

	require.Len(t, store.saved, 1)
	assert.Equal(t, userID, store.saved[0].UserID)
	assert.Equal(t, models.LocationRentalRequest, store.saved[0].Location)
	assert.Equal(t, rentalID, store.saved[0].LocationID)
}

func TestNotifyAdminsDroppedOnLookupFailure(t *testing.T) {
	store := &fakeNotificationStore{findErr: errors.New("users collection unavailable")}
	notifier := &Notifier{store: store, hub: websocket.NewHub()}

	notifier.NotifyAdmins(context.Background(), "New rental request from sami", models.LocationRentalRequest, primitive.NewObjectID())

	assert.Empty(t, store.saved)
}

func TestNotifyUserSwallowsInsertFailure(t *testing.T) {
	store := &fakeNotificationStore{insertErr: errors.New("write concern error")}
	notifier := &Notifier{store: store, hub: websocket.NewHub()}

	notifier.NotifyUser(context.Background(), primitive.NewObjectID(), "Your rental request has been rejected", models.LocationRentalRequest, primitive.NewObjectID())

	assert.Empty(t, store.saved)
}
