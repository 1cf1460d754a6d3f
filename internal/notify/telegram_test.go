package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewTelegramNilWithoutToken(t *testing.T) {
	if tg := NewTelegram("", ""); tg != nil {
		t.Error("empty token should yield a nil notifier")
	}
}

func TestNewMailerNilWithoutHost(t *testing.T) {
	if m := NewMailer("", "587", "user", "pass", "sender"); m != nil {
		t.Error("empty host should yield a nil mailer")
	}
}

func TestTelegramSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/bot123:abc/sendMessage") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req telegramRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ChatID != "chat-1" {
			t.Errorf("chat_id: got %q", req.ChatID)
		}
		// Subject folds into the message text.
		if !strings.HasPrefix(req.Text, "Habit reminder\n\n") {
			t.Errorf("text should start with the subject, got %q", req.Text)
		}
		json.NewEncoder(w).Encode(telegramResponse{OK: true})
	}))
	defer srv.Close()

	tg := NewTelegram("123:abc", srv.URL)
	err := tg.Send(context.Background(), "chat-1", "Habit reminder", "Time to meditate.")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestTelegramSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(telegramResponse{OK: false, Description: "chat not found"})
	}))
	defer srv.Close()

	tg := NewTelegram("123:abc", srv.URL)
	err := tg.Send(context.Background(), "bad-chat", "", "hello")
	if err == nil {
		t.Fatal("expected error for rejected send")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("error should carry the API description: %v", err)
	}
}

func TestTelegramSendHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"description":"Unauthorized"}`))
	}))
	defer srv.Close()

	tg := NewTelegram("bad-token", srv.URL)
	if err := tg.Send(context.Background(), "chat-1", "", "hello"); err == nil {
		t.Fatal("expected error for 401 response")
	}
}
