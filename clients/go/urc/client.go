// Package urc provides a client for the URC chat API: an HTTP client and
// the conversation view state machine that keeps an optimistic local echo
// in sync with the server.
package urc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/achrafidrissi/urc/internal/chat"
)

// Client is a URC API client.
type Client struct {
	BaseURL    string
	Token      string
	UserID     string
	Username   string
	HTTPClient *http.Client
}

// NewClient creates a new URC client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("urc error %d: %s", e.Status, e.Message)
}

// Unwrap maps the HTTP status onto the shared error taxonomy, so callers can
// branch with errors.Is instead of matching status codes.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity:
		return chat.ErrValidation
	case e.Status == http.StatusUnauthorized:
		return chat.ErrUnauthenticated
	case e.Status == http.StatusNotFound:
		return chat.ErrNotFound
	case e.Status == http.StatusTooManyRequests || e.Status >= 500:
		return chat.ErrUnavailable
	}
	return nil
}

// doRequest performs an HTTP request, attaching the bearer token when one
// is held.
func (c *Client) doRequest(method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return nil, &APIError{Status: resp.StatusCode, Message: errResp.Error}
	}

	return respBody, nil
}

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the response from account registration.
type RegisterResponse struct {
	ID       string `json:"user_id"`
	Username string `json:"username"`
}

// Register creates a new account.
func (c *Client) Register(username, email, password string) (*RegisterResponse, error) {
	body, _ := json.Marshal(RegisterRequest{Username: username, Email: email, Password: password})
	respBody, err := c.doRequest("POST", "/register", body)
	if err != nil {
		return nil, err
	}

	var resp RegisterResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LoginResponse is the response from logging in.
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Login authenticates and stores the bearer token on the client.
func (c *Client) Login(username, password string) (*LoginResponse, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	respBody, err := c.doRequest("POST", "/login", body)
	if err != nil {
		return nil, err
	}

	var resp LoginResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}

	c.Token = resp.Token
	c.UserID = resp.UserID
	c.Username = resp.Username
	return &resp, nil
}

// User represents a direct-message target.
type User struct {
	ID        string `json:"user_id"`
	Username  string `json:"username"`
	LastLogin string `json:"last_login"`
}

// UsersResponse is the response from listing users.
type UsersResponse struct {
	Users []User `json:"users"`
}

// ListUsers lists direct-message targets.
func (c *Client) ListUsers() (*UsersResponse, error) {
	respBody, err := c.doRequest("GET", "/users", nil)
	if err != nil {
		return nil, err
	}

	var resp UsersResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendMessageResponse is the response from sending a direct message.
type SendMessageResponse struct {
	ID              string `json:"id"`
	Timestamp       int64  `json:"ts"`
	ConversationKey string `json:"conversation_key"`
}

// SendDirectMessage sends a direct message.
func (c *Client) SendDirectMessage(content, recipientID string) (*SendMessageResponse, error) {
	body, _ := json.Marshal(map[string]string{"content": content, "recipient_id": recipientID})
	respBody, err := c.doRequest("POST", "/message", body)
	if err != nil {
		return nil, err
	}

	var resp SendMessageResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MessagesResponse is the response from fetching a conversation.
type MessagesResponse struct {
	ConversationKey string                `json:"conversation_key"`
	Messages        []chat.DisplayMessage `json:"messages"`
}

// FetchDirectMessages fetches the conversation with one recipient.
func (c *Client) FetchDirectMessages(recipientID string) (*MessagesResponse, error) {
	respBody, err := c.doRequest("GET", "/messages?recipient_id="+url.QueryEscape(recipientID), nil)
	if err != nil {
		return nil, err
	}

	var resp MessagesResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Room represents a room directory entry.
type Room struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	CreatedBy     string `json:"created_by"`
	CreatedByName string `json:"created_by_name"`
	CreatedAt     int64  `json:"created_at"`
}

// RoomsResponse is the response from listing rooms.
type RoomsResponse struct {
	Rooms []Room `json:"rooms"`
}

// ListRooms lists the room directory.
func (c *Client) ListRooms() (*RoomsResponse, error) {
	respBody, err := c.doRequest("GET", "/rooms", nil)
	if err != nil {
		return nil, err
	}

	var resp RoomsResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateRoom creates a new room.
func (c *Client) CreateRoom(name, description string) (*Room, error) {
	body, _ := json.Marshal(map[string]string{"name": name, "description": description})
	respBody, err := c.doRequest("POST", "/rooms", body)
	if err != nil {
		return nil, err
	}

	var resp Room
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostRoomMessageResponse is the response from posting to a room.
type PostRoomMessageResponse struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PostRoomMessage posts a message to a room.
func (c *Client) PostRoomMessage(roomID, content string) (*PostRoomMessageResponse, error) {
	body, _ := json.Marshal(map[string]string{"content": content})
	respBody, err := c.doRequest("POST", "/rooms/"+roomID+"/messages", body)
	if err != nil {
		return nil, err
	}

	var resp PostRoomMessageResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RoomMessagesResponse is the response from fetching a room timeline.
type RoomMessagesResponse struct {
	RoomID   string                `json:"room_id"`
	Messages []chat.DisplayMessage `json:"messages"`
}

// FetchRoomMessages fetches a room's timeline.
func (c *Client) FetchRoomMessages(roomID string) (*RoomMessagesResponse, error) {
	respBody, err := c.doRequest("GET", "/rooms/"+roomID+"/messages", nil)
	if err != nil {
		return nil, err
	}

	var resp RoomMessagesResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HealthResponse is the response from the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health checks server health.
func (c *Client) Health() (*HealthResponse, error) {
	respBody, err := c.doRequest("GET", "/health", nil)
	if err != nil {
		return nil, err
	}

	var resp HealthResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
