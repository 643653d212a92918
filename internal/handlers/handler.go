package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/achrafidrissi/urc/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	db         store.DataStore
	chat       store.ChatStore
	sessionTTL time.Duration
}

// NewHandler creates a new Handler with the given stores.
func NewHandler(db store.DataStore, chatStore store.ChatStore, sessionTTL time.Duration) *Handler {
	return &Handler{db: db, chat: chatStore, sessionTTL: sessionTTL}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// sanitizeName trims and limits a name to 100 characters, removing control
// characters.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)

	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	if len(name) > 100 {
		name = name[:100]
	}

	return name
}
