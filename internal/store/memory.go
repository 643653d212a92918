package store

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/achrafidrissi/urc/internal/models"
)

// MemoryStore is an in-process ChatStore with the same contract as
// RedisStore, including the retention window on direct-message scopes. It
// backs development runs without Redis and the test suite.
type MemoryStore struct {
	mu        sync.Mutex
	retention time.Duration
	now       func() time.Time

	sessions map[string]memorySession
	direct   map[string]*memoryScope
	roomMsgs map[string][]models.Message
	rooms    []models.Room
}

type memorySession struct {
	principal models.Principal
	expiresAt time.Time
}

type memoryScope struct {
	messages  []models.Message
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory chat store.
func NewMemoryStore(retention time.Duration) *MemoryStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &MemoryStore{
		retention: retention,
		now:       time.Now,
		sessions:  make(map[string]memorySession),
		direct:    make(map[string]*memoryScope),
		roomMsgs:  make(map[string][]models.Message),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) SaveSession(ctx context.Context, token string, p models.Principal, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = memorySession{principal: p, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) GetSession(ctx context.Context, token string) (*models.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok || s.now().After(sess.expiresAt) {
		delete(s.sessions, token)
		return nil, nil
	}
	p := sess.principal
	return &p, nil
}

func (s *MemoryStore) AppendDirect(ctx context.Context, key string, msg *models.Message) error {
	if err := validateContent(msg); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stampLocked(msg)
	msg.ConversationKey = key

	scope := s.direct[key]
	if scope == nil || s.now().After(scope.expiresAt) {
		scope = &memoryScope{}
		s.direct[key] = scope
	}
	scope.messages = append([]models.Message{*msg}, scope.messages...)
	scope.expiresAt = s.now().Add(s.retention)
	return nil
}

func (s *MemoryStore) ListDirect(ctx context.Context, key string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope := s.direct[key]
	if scope == nil {
		return []models.Message{}, nil
	}
	if s.now().After(scope.expiresAt) {
		delete(s.direct, key)
		return []models.Message{}, nil
	}
	out := make([]models.Message, len(scope.messages))
	copy(out, scope.messages)
	return out, nil
}

func (s *MemoryStore) AppendRoomMessage(ctx context.Context, roomID string, msg *models.Message) error {
	if err := validateContent(msg); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stampLocked(msg)
	msg.RoomID = roomID
	s.roomMsgs[roomID] = append([]models.Message{*msg}, s.roomMsgs[roomID]...)
	return nil
}

func (s *MemoryStore) ListRoomMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Message, len(s.roomMsgs[roomID]))
	copy(out, s.roomMsgs[roomID])
	return out, nil
}

func (s *MemoryStore) CreateRoom(ctx context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room.ID == "" {
		room.ID = ulid.Make().String()
	}
	if room.CreatedAt == 0 {
		room.CreatedAt = s.now().UnixMilli()
	}
	s.rooms = append([]models.Room{*room}, s.rooms...)
	return nil
}

func (s *MemoryStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rooms {
		if s.rooms[i].ID == id {
			room := s.rooms[i]
			return &room, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListRooms(ctx context.Context) ([]models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Room, len(s.rooms))
	copy(out, s.rooms)
	return out, nil
}

func (s *MemoryStore) CountRooms(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.rooms)), nil
}

func (s *MemoryStore) stampLocked(msg *models.Message) {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = s.now().UnixMilli()
	}
}
