package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
type User struct {
	ID        uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_on"`
	LastLogin time.Time `json:"last_login"`
}

// Principal is the resolved identity behind a bearer token. It is immutable
// for the lifetime of a session and threaded explicitly through every
// operation that needs one.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
