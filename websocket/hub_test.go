package websocket

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeConn records written events in place of a real WebSocket connection.
type fakeConn struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, v.(Event))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Event(nil), f.events...)
}

func newTestClient(userID primitive.ObjectID, connID string) (*Client, *fakeConn) {
	conn := &fakeConn{}
	return &Client{UserID: userID, ConnID: connID, conn: conn}, conn
}

func TestSendToUserReachesEveryConnection(t *testing.T) {
	hub := NewHub()
	userID := primitive.NewObjectID()

	phone, phoneConn := newTestClient(userID, "conn-1")
	laptop, laptopConn := newTestClient(userID, "conn-2")
	other, otherConn := newTestClient(primitive.NewObjectID(), "conn-3")

	hub.join(phone)
	hub.join(laptop)
	hub.join(other)

	event := Event{Type: EventNewNotification, Payload: "hello"}
	require.NoError(t, hub.SendToUser(userID, event))

	assert.Equal(t, []Event{event}, phoneConn.received())
	assert.Equal(t, []Event{event}, laptopConn.received())
	assert.Empty(t, otherConn.received())
}

func TestSendToUserNotConnected(t *testing.T) {
	hub := NewHub()
	err := hub.SendToUser(primitive.NewObjectID(), Event{Type: EventNewNotification})
	assert.Error(t, err)
}

func TestBroadcastIncludesAnonymousConnections(t *testing.T) {
	hub := NewHub()

	authed, authedConn := newTestClient(primitive.NewObjectID(), "conn-1")
	anon, anonConn := newTestClient(primitive.NilObjectID, "conn-2")

	hub.join(authed)
	hub.join(anon)

	assert.False(t, anon.Authenticated())
	assert.Equal(t, 2, hub.ConnectionCount())

	event := Event{Type: EventCarsUpdated}
	hub.Broadcast(event)

	assert.Equal(t, []Event{event}, authedConn.received())
	assert.Equal(t, []Event{event}, anonConn.received())
}

func TestLeaveRemovesConnection(t *testing.T) {
	hub := NewHub()
	userID := primitive.NewObjectID()

	phone, phoneConn := newTestClient(userID, "conn-1")
	laptop, laptopConn := newTestClient(userID, "conn-2")

	hub.join(phone)
	hub.join(laptop)
	hub.leave(phone)

	assert.True(t, phoneConn.closed)
	assert.Equal(t, 1, hub.ConnectionCount())

	// The remaining connection still receives private pushes.
	event := Event{Type: EventRentalsUpdated}
	require.NoError(t, hub.SendToUser(userID, event))
	assert.Empty(t, phoneConn.received())
	assert.Equal(t, []Event{event}, laptopConn.received())

	hub.leave(laptop)
	err := hub.SendToUser(userID, event)
	assert.Error(t, err)
	assert.Equal(t, 0, hub.ConnectionCount())
}
