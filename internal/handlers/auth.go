package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/achrafidrissi/urc/internal/metrics"
	"github.com/achrafidrissi/urc/internal/models"
	"github.com/achrafidrissi/urc/internal/store"
)

// emailRegex validates email addresses per RFC 5322 (simplified).
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse represents the registration response.
type RegisterResponse struct {
	ID       string `json:"user_id"`
	Username string `json:"username"`
}

// Register handles account creation.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	username := sanitizeName(req.Username)
	if username == "" || req.Email == "" || req.Password == "" {
		h.Error(w, http.StatusBadRequest, "username, email and password are required")
		return
	}
	if len(req.Email) > 254 || !emailRegex.MatchString(req.Email) {
		h.Error(w, http.StatusBadRequest, "invalid email format")
		return
	}
	if len(req.Password) < 8 {
		h.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := h.db.CreateUser(r.Context(), username, strings.ToLower(req.Email), string(hash))
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			h.Error(w, http.StatusConflict, "username or email already taken")
			return
		}
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	metrics.UsersRegistered.Inc()

	h.JSON(w, http.StatusCreated, RegisterResponse{
		ID:       user.ID.String(),
		Username: user.Username,
	})
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the login response.
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Login verifies credentials and issues a bearer token backed by a Redis
// session. The session holds the resolved principal for the token's
// lifetime.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Username == "" || req.Password == "" {
		h.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, hash, err := h.db.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		h.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := uuid.New().String()
	principal := models.Principal{ID: user.ID.String(), Username: user.Username}
	if err := h.chat.SaveSession(r.Context(), token, principal, h.sessionTTL); err != nil {
		h.Error(w, http.StatusServiceUnavailable, "session store unavailable")
		return
	}

	if err := h.db.TouchLastLogin(r.Context(), user.ID); err != nil {
		// Login still succeeded; last_login is advisory.
		zerolog.Ctx(r.Context()).Warn().Err(err).
			Str("user_id", user.ID.String()).
			Msg("failed to update last_login")
	}

	metrics.SessionsCreated.Inc()

	h.JSON(w, http.StatusOK, LoginResponse{
		Token:    token,
		UserID:   user.ID.String(),
		Username: user.Username,
	})
}
