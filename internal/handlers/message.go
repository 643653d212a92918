package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/achrafidrissi/urc/internal/api/middleware"
	"github.com/achrafidrissi/urc/internal/chat"
	"github.com/achrafidrissi/urc/internal/metrics"
	"github.com/achrafidrissi/urc/internal/models"
)

const maxContentBytes = 4096

// SendMessageRequest represents the send direct message request body.
type SendMessageRequest struct {
	Content     string `json:"content"`
	RecipientID string `json:"recipient_id"`
}

// SendMessageResponse represents the send direct message response.
type SendMessageResponse struct {
	ID              string `json:"id"`
	Timestamp       int64  `json:"ts"`
	ConversationKey string `json:"conversation_key"`
}

// MessagesResponse represents the direct message read response. Messages
// are assembled: deduplicated, oldest first, annotated per viewer.
type MessagesResponse struct {
	ConversationKey string                `json:"conversation_key"`
	Messages        []chat.DisplayMessage `json:"messages"`
}

// SendDirectMessage handles sending a direct message.
func (h *Handler) SendDirectMessage(w http.ResponseWriter, r *http.Request) {
	sender := middleware.GetPrincipalFromContext(r.Context())
	if sender == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		h.Error(w, http.StatusBadRequest, "content is required")
		return
	}
	if len(content) > maxContentBytes {
		h.Error(w, http.StatusUnprocessableEntity, "content too long (max 4096 bytes)")
		return
	}
	if req.RecipientID == "" {
		h.Error(w, http.StatusBadRequest, "recipient_id is required")
		return
	}

	key, err := chat.DeriveKey(sender.ID, req.RecipientID)
	if err != nil {
		if errors.Is(err, chat.ErrValidation) {
			h.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Error(w, http.StatusInternalServerError, "failed to derive conversation key")
		return
	}

	// Check recipient exists
	recipientUUID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid recipient ID format")
		return
	}
	recipient, err := h.db.GetUserByID(r.Context(), recipientUUID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if recipient == nil {
		h.Error(w, http.StatusNotFound, "recipient not found")
		return
	}

	msg := &models.Message{
		Content:     content,
		SenderID:    sender.ID,
		SenderName:  sender.Username,
		RecipientID: req.RecipientID,
	}

	if err := h.chat.AppendDirect(r.Context(), key, msg); err != nil {
		if errors.Is(err, chat.ErrValidation) {
			h.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Error(w, http.StatusServiceUnavailable, "failed to store message")
		return
	}

	metrics.MessagesSent.WithLabelValues("direct").Inc()

	h.JSON(w, http.StatusCreated, SendMessageResponse{
		ID:              msg.ID,
		Timestamp:       msg.Timestamp,
		ConversationKey: key,
	})
}

// GetDirectMessages handles fetching the conversation with one recipient.
func (h *Handler) GetDirectMessages(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetPrincipalFromContext(r.Context())
	if viewer == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	recipientID := r.URL.Query().Get("recipient_id")
	if recipientID == "" {
		h.Error(w, http.StatusBadRequest, "recipient_id is required")
		return
	}

	key, err := chat.DeriveKey(viewer.ID, recipientID)
	if err != nil {
		if errors.Is(err, chat.ErrValidation) {
			h.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Error(w, http.StatusInternalServerError, "failed to derive conversation key")
		return
	}

	raw, err := h.chat.ListDirect(r.Context(), key)
	if err != nil {
		h.Error(w, http.StatusServiceUnavailable, "failed to fetch messages")
		return
	}

	h.JSON(w, http.StatusOK, MessagesResponse{
		ConversationKey: key,
		Messages:        chat.Assemble(raw, viewer.ID),
	})
}
