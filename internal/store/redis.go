package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/achrafidrissi/urc/internal/metrics"
	"github.com/achrafidrissi/urc/internal/models"
)

// DefaultRetention is the window after which an untouched direct-message
// scope expires. Every append pushes the deadline out again.
const DefaultRetention = 24 * time.Hour

// RedisStore handles Redis operations for sessions, messages, and rooms.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string, retention time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	if retention <= 0 {
		retention = DefaultRetention
	}

	return &RedisStore{client: client, retention: retention}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying client for the rate limiter.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// sessionKey returns the key holding a bearer token's principal.
func sessionKey(token string) string {
	return "session:" + token
}

// directMessagesKey returns the key for a conversation's message list.
func directMessagesKey(conversationKey string) string {
	return "messages:" + conversationKey
}

// roomMessagesKey returns the key for a room's message list.
func roomMessagesKey(roomID string) string {
	return fmt.Sprintf("rooms:%s:messages", roomID)
}

// roomDirectoryKey is the key of the room directory list.
const roomDirectoryKey = "rooms:list"

// SaveSession stores the principal resolved at login under its token.
func (s *RedisStore) SaveSession(ctx context.Context, token string, p models.Principal, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(token), data, ttl).Err()
}

// GetSession resolves a bearer token to its principal. Returns nil, nil when
// the token is unknown or the session has expired.
func (s *RedisStore) GetSession(ctx context.Context, token string) (*models.Principal, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p models.Principal
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, nil
	}
	return &p, nil
}

// stamp fills in the store-assigned identity: a ULID if the caller did not
// supply one, and the acceptance timestamp.
func stamp(msg *models.Message) {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
}

// AppendDirect prepends a message to a conversation scope and refreshes the
// scope's retention window. Push and expire travel in one pipeline so the
// window can never lag the append.
func (s *RedisStore) AppendDirect(ctx context.Context, key string, msg *models.Message) error {
	if err := validateContent(msg); err != nil {
		return err
	}
	stamp(msg)
	msg.ConversationKey = key

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	start := time.Now()
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, directMessagesKey(key), data)
	pipe.Expire(ctx, directMessagesKey(key), s.retention)
	_, err = pipe.Exec(ctx)
	metrics.RedisLatency.Observe(time.Since(start).Seconds())
	return err
}

// ListDirect returns all retained messages of a conversation in physical
// most-recent-first order. Unknown or expired scopes yield an empty slice.
func (s *RedisStore) ListDirect(ctx context.Context, key string) ([]models.Message, error) {
	return s.listMessages(ctx, directMessagesKey(key))
}

// AppendRoomMessage prepends a message to a room scope. Room scopes carry no
// retention window.
func (s *RedisStore) AppendRoomMessage(ctx context.Context, roomID string, msg *models.Message) error {
	if err := validateContent(msg); err != nil {
		return err
	}
	stamp(msg)
	msg.RoomID = roomID

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	start := time.Now()
	err = s.client.LPush(ctx, roomMessagesKey(roomID), data).Err()
	metrics.RedisLatency.Observe(time.Since(start).Seconds())
	return err
}

// ListRoomMessages returns all messages of a room, most recent first.
func (s *RedisStore) ListRoomMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	return s.listMessages(ctx, roomMessagesKey(roomID))
}

func (s *RedisStore) listMessages(ctx context.Context, key string) ([]models.Message, error) {
	results, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(results))
	for _, data := range results {
		msg, ok := parseMessage(data)
		if !ok {
			metrics.MalformedEntriesDropped.Inc()
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// parseMessage is the tagged parse step at the store boundary: an entry
// either yields a well-formed message or is discarded, never coerced.
func parseMessage(data string) (models.Message, bool) {
	var msg models.Message
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		return models.Message{}, false
	}
	if msg.ID == "" || msg.SenderID == "" || msg.Content == "" {
		return models.Message{}, false
	}
	return msg, true
}

// CreateRoom assigns the room its identity and prepends it to the directory.
func (s *RedisStore) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = ulid.Make().String()
	}
	if room.CreatedAt == 0 {
		room.CreatedAt = time.Now().UnixMilli()
	}

	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return s.client.LPush(ctx, roomDirectoryKey, data).Err()
}

// GetRoom scans the directory for a room. Returns nil, nil when absent.
func (s *RedisStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	rooms, err := s.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		if rooms[i].ID == id {
			return &rooms[i], nil
		}
	}
	return nil, nil
}

// ListRooms returns the directory in insertion order, most recent first.
func (s *RedisStore) ListRooms(ctx context.Context) ([]models.Room, error) {
	results, err := s.client.LRange(ctx, roomDirectoryKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	rooms := make([]models.Room, 0, len(results))
	for _, data := range results {
		var room models.Room
		if err := json.Unmarshal([]byte(data), &room); err != nil || room.ID == "" {
			metrics.MalformedEntriesDropped.Inc()
			continue
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// CountRooms returns the directory length.
func (s *RedisStore) CountRooms(ctx context.Context) (int64, error) {
	return s.client.LLen(ctx, roomDirectoryKey).Result()
}
