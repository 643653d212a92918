package handlers

import (
	"net/http"

	"github.com/achrafidrissi/urc/internal/api/middleware"
)

// UserInfo represents a user in the directory response.
type UserInfo struct {
	ID        string `json:"user_id"`
	Username  string `json:"username"`
	LastLogin string `json:"last_login"`
}

// UserListResponse represents the user directory response.
type UserListResponse struct {
	Users []UserInfo `json:"users"`
}

// ListUsers returns the directory of direct-message targets, excluding the
// viewer.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetPrincipalFromContext(r.Context())
	if viewer == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	users, err := h.db.ListUsers(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	out := make([]UserInfo, 0, len(users))
	for _, user := range users {
		if user.ID.String() == viewer.ID {
			continue
		}
		out = append(out, UserInfo{
			ID:        user.ID.String(),
			Username:  user.Username,
			LastLogin: user.LastLogin.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	h.JSON(w, http.StatusOK, UserListResponse{Users: out})
}
