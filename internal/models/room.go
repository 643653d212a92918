package models

// Room represents an entry in the room directory. Rooms are never mutated
// after creation and, unlike direct-message scopes, never expire.
type Room struct {
	ID            string `json:"id"` // ULID
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	CreatedBy     string `json:"created_by"`
	CreatedByName string `json:"created_by_name"`
	CreatedAt     int64  `json:"created_at"` // Unix ms
}
