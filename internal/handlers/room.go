package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/achrafidrissi/urc/internal/api/middleware"
	"github.com/achrafidrissi/urc/internal/chat"
	"github.com/achrafidrissi/urc/internal/metrics"
	"github.com/achrafidrissi/urc/internal/models"
)

// CreateRoomRequest represents the room creation request.
type CreateRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	CreatedBy     string `json:"created_by"`
	CreatedByName string `json:"created_by_name"`
	CreatedAt     int64  `json:"created_at"`
}

// RoomListResponse represents the room directory response.
type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

// PostRoomMessageRequest represents the post room message request.
type PostRoomMessageRequest struct {
	Content string `json:"content"`
}

// PostRoomMessageResponse represents the post room message response.
type PostRoomMessageResponse struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// RoomMessagesResponse represents the room read response.
type RoomMessagesResponse struct {
	RoomID   string                `json:"room_id"`
	Messages []chat.DisplayMessage `json:"messages"`
}

// CreateRoom handles room creation. Room names are not unique; the
// directory accepts duplicates by design.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	creator := middleware.GetPrincipalFromContext(r.Context())
	if creator == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name := sanitizeName(req.Name)
	if name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	room := &models.Room{
		Name:          name,
		Description:   strings.TrimSpace(req.Description),
		CreatedBy:     creator.ID,
		CreatedByName: creator.Username,
	}

	if err := h.chat.CreateRoom(r.Context(), room); err != nil {
		h.Error(w, http.StatusServiceUnavailable, "failed to create room")
		return
	}

	metrics.RoomsCreated.Inc()

	h.JSON(w, http.StatusCreated, roomResponse(room))
}

// ListRooms handles listing the room directory, most recent first.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.chat.ListRooms(r.Context())
	if err != nil {
		h.Error(w, http.StatusServiceUnavailable, "failed to list rooms")
		return
	}

	out := make([]RoomResponse, len(rooms))
	for i := range rooms {
		out[i] = roomResponse(&rooms[i])
	}

	h.JSON(w, http.StatusOK, RoomListResponse{Rooms: out})
}

// PostRoomMessage handles posting a message to a room.
func (h *Handler) PostRoomMessage(w http.ResponseWriter, r *http.Request) {
	sender := middleware.GetPrincipalFromContext(r.Context())
	if sender == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	roomID := chi.URLParam(r, "id")
	room, err := h.chat.GetRoom(r.Context(), roomID)
	if err != nil {
		h.Error(w, http.StatusServiceUnavailable, "failed to look up room")
		return
	}
	if room == nil {
		h.Error(w, http.StatusNotFound, "room not found")
		return
	}

	var req PostRoomMessageRequest
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

	msg := &models.Message{
		Content:    content,
		SenderID:   sender.ID,
		SenderName: sender.Username,
	}

	if err := h.chat.AppendRoomMessage(r.Context(), room.ID, msg); err != nil {
		if errors.Is(err, chat.ErrValidation) {
			h.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Error(w, http.StatusServiceUnavailable, "failed to store message")
		return
	}

	metrics.MessagesSent.WithLabelValues("room").Inc()

	h.JSON(w, http.StatusCreated, PostRoomMessageResponse{
		ID:        msg.ID,
		Timestamp: msg.Timestamp,
	})
}

// GetRoomMessages handles fetching a room's timeline.
func (h *Handler) GetRoomMessages(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetPrincipalFromContext(r.Context())
	if viewer == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	roomID := chi.URLParam(r, "id")
	room, err := h.chat.GetRoom(r.Context(), roomID)
	if err != nil {
		h.Error(w, http.StatusServiceUnavailable, "failed to look up room")
		return
	}
	if room == nil {
		h.Error(w, http.StatusNotFound, "room not found")
		return
	}

	raw, err := h.chat.ListRoomMessages(r.Context(), room.ID)
	if err != nil {
		h.Error(w, http.StatusServiceUnavailable, "failed to fetch messages")
		return
	}

	h.JSON(w, http.StatusOK, RoomMessagesResponse{
		RoomID:   room.ID,
		Messages: chat.Assemble(raw, viewer.ID),
	})
}

func roomResponse(room *models.Room) RoomResponse {
	return RoomResponse{
		ID:            room.ID,
		Name:          room.Name,
		Description:   room.Description,
		CreatedBy:     room.CreatedBy,
		CreatedByName: room.CreatedByName,
		CreatedAt:     room.CreatedAt,
	}
}
