package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/achrafidrissi/urc/internal/chat"
	"github.com/achrafidrissi/urc/internal/models"
)

// ErrDuplicate is returned when a unique constraint rejects a write.
var ErrDuplicate = errors.New("already exists")

// validateContent enforces the append contract shared by every ChatStore:
// content is trimmed, and a message left empty by the trim is rejected
// before it reaches a scope.
func validateContent(msg *models.Message) error {
	msg.Content = strings.TrimSpace(msg.Content)
	if msg.Content == "" {
		return fmt.Errorf("%w: content is empty", chat.ErrValidation)
	}
	return nil
}

// DataStore defines the interface for persistent storage of user accounts.
// Both PostgresStore and SQLiteStore implement this interface.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// User operations
	CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, string, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
	CountUsers(ctx context.Context) (int64, error)
}

// ChatStore defines the interface for sessions, messages, and the room
// directory. RedisStore is the production implementation; MemoryStore backs
// development without Redis and the test suite.
//
// Message scopes are append-only lists in physical most-recent-first order.
// Appends trim content and reject messages left empty by the trim.
// Direct-message scopes carry a retention window refreshed on every append;
// the whole scope expires at once when the window elapses. Room scopes never
// expire.
type ChatStore interface {
	Close() error
	Ping(ctx context.Context) error

	// Sessions
	SaveSession(ctx context.Context, token string, p models.Principal, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*models.Principal, error)

	// Direct-message scopes, keyed by conversation key
	AppendDirect(ctx context.Context, key string, msg *models.Message) error
	ListDirect(ctx context.Context, key string) ([]models.Message, error)

	// Room message scopes
	AppendRoomMessage(ctx context.Context, roomID string, msg *models.Message) error
	ListRoomMessages(ctx context.Context, roomID string) ([]models.Message, error)

	// Room directory
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	CountRooms(ctx context.Context) (int64, error)
}
