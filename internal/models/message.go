package models

// Message represents a chat message stored in Redis.
// Exactly one of RecipientID or RoomID is set, matching the scope the
// message was appended to.
type Message struct {
	ID              string `json:"id"` // ULID once persisted
	Content         string `json:"content"`
	SenderID        string `json:"sender_id"`
	SenderName      string `json:"sender_name"`
	RecipientID     string `json:"recipient_id,omitempty"`
	RoomID          string `json:"room_id,omitempty"`
	ConversationKey string `json:"conversation_key,omitempty"`
	Timestamp       int64  `json:"ts"` // Unix ms, stamped at acceptance
}
