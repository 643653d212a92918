package urc

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/achrafidrissi/urc/internal/chat"
)

func TestLoginStoresCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != "POST" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"token":    "tok-1",
			"user_id":  "u-1",
			"username": "alice",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.Login("alice", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token != "tok-1" {
		t.Fatalf("unexpected token %q", resp.Token)
	}
	if client.Token != "tok-1" || client.UserID != "u-1" || client.Username != "alice" {
		t.Fatalf("client did not store credentials: %+v", client)
	}
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{"users": []interface{}{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	client.Token = "tok-9"
	if _, err := client.ListUsers(); err != nil {
		t.Fatalf("list users: %v", err)
	}
	if gotAuth != "Bearer tok-9" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestAPIErrorSurfacesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "recipient not found"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.SendDirectMessage("hello", "nobody")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "recipient not found" {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
	if !errors.Is(err, chat.ErrNotFound) {
		t.Fatal("expected error to match chat.ErrNotFound")
	}
}

func TestSendDirectMessageRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/message" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["content"] != "hello" || body["recipient_id"] != "u-2" {
			t.Errorf("unexpected body: %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":               "01MSG",
			"ts":               int64(1700000000000),
			"conversation_key": "u-1_u-2",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.SendDirectMessage("hello", "u-2")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if resp.ID != "01MSG" || resp.ConversationKey != "u-1_u-2" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
