package chat

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"platechat-server/internal/models"
	"platechat-server/internal/store"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string, plates ...string) *models.User {
	t.Helper()

	user := models.User{Email: email}
	require.NoError(t, user.SetPassword("secret-password"))
	require.NoError(t, db.Create(&user).Error)

	for i, plate := range plates {
		vehicle := models.Vehicle{
			UserID:    user.ID,
			Plate:     plate,
			IsPrimary: i == 0,
		}
		require.NoError(t, db.Create(&vehicle).Error)
	}
	return &user
}

// startHub runs a hub for the duration of the test.
func startHub(t *testing.T) *Hub {
	t.Helper()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.Run(ctx) }()
	return hub
}

// newTestClient attaches a connection-less session to the hub. Frames land
// in the buffered send channel where tests can inspect them.
func newTestClient(t *testing.T, hub *Hub, userID string) *Client {
	t.Helper()

	client := &Client{
		id:     clientIDCounter.Add(1),
		userID: userID,
		hub:    hub,
		send:   make(chan Frame, 16),
	}
	hub.Attach(client)
	return client
}

// drainFrames returns every frame currently buffered for the session.
func drainFrames(c *Client) []Frame {
	var frames []Frame
	for {
		select {
		case frame := <-c.send:
			frames = append(frames, frame)
		default:
			return frames
		}
	}
}

// fakeNotifier records push dispatches for assertions.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []fakeNotification
}

type fakeNotification struct {
	UserID  string
	Preview string
	Data    map[string]string
}

func (f *fakeNotifier) Notify(ctx context.Context, userID, preview string, data map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeNotification{UserID: userID, Preview: preview, Data: data})
}

func (f *fakeNotifier) Calls() []fakeNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeNotification(nil), f.calls...)
}

// newTestService wires a service against in-memory stores and a fake
// notifier.
func newTestService(t *testing.T, db *gorm.DB, hub *Hub) (*Service, *fakeNotifier) {
	t.Helper()

	notifier := &fakeNotifier{}
	service := NewService(
		store.NewConversationStore(db),
		store.NewBlockStore(db),
		store.NewRegistry(db),
		hub,
		notifier,
	)
	return service, notifier
}
