package handlers

import "net/http"

// StatsResponse represents the public stats response.
type StatsResponse struct {
	Users int64 `json:"users"`
	Rooms int64 `json:"rooms"`
}

// Stats handles the public statistics endpoint.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	users, err := h.db.CountUsers(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	rooms, err := h.chat.CountRooms(r.Context())
	if err != nil {
		h.Error(w, http.StatusServiceUnavailable, "failed to count rooms")
		return
	}

	h.JSON(w, http.StatusOK, StatsResponse{Users: users, Rooms: rooms})
}
