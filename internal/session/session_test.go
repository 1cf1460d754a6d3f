// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{keyPrefix + "*", flashPrefix + "*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// requestWithCookie clones the session cookie from a recorded response
// onto a fresh request, the way a browser would.
func requestWithCookie(rr *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client)
	ctx := context.Background()

	rr := httptest.NewRecorder()
	data := &Data{
		UserID:    uuid.New(),
		Email:     "session@test.local",
		Username:  "tester",
		Timezone:  "Europe/Bucharest",
		TwoFADone: true,
	}

	id, err := store.Create(ctx, rr, data)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("session id should not be empty")
	}

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == CookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	got, err := store.Get(ctx, requestWithCookie(rr))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("session should exist")
	}
	if got.UserID != data.UserID || got.Username != "tester" {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if got.Timezone != "Europe/Bucharest" {
		t.Errorf("timezone: got %q", got.Timezone)
	}
}

func TestSessionGetWithoutCookie(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	got, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Error("no cookie should mean no session, not an error")
	}
}

func TestSessionUpdate(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client)
	ctx := context.Background()

	rr := httptest.NewRecorder()
	data := &Data{UserID: uuid.New(), Username: "before", TwoFADone: false}
	if _, err := store.Create(ctx, rr, data); err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := requestWithCookie(rr)
	data.TwoFADone = true
	data.DriveState = "nonce123"
	if err := store.Update(ctx, req, data); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.Get(ctx, req)
	if err != nil || got == nil {
		t.Fatalf("Get after update: %v, %+v", err, got)
	}
	if !got.TwoFADone {
		t.Error("TwoFADone should persist across Update")
	}
	if got.DriveState != "nonce123" {
		t.Errorf("DriveState: got %q", got.DriveState)
	}
}

func TestSessionDestroy(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client)
	ctx := context.Background()

	rr := httptest.NewRecorder()
	if _, err := store.Create(ctx, rr, &Data{UserID: uuid.New()}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := requestWithCookie(rr)
	destroyRR := httptest.NewRecorder()
	if err := store.Destroy(ctx, destroyRR, req); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	got, err := store.Get(ctx, req)
	if err != nil {
		t.Fatalf("Get after destroy: %v", err)
	}
	if got != nil {
		t.Error("session should be gone after destroy")
	}

	// The cookie is expired on the response.
	for _, c := range destroyRR.Result().Cookies() {
		if c.Name == CookieName && c.MaxAge != -1 {
			t.Errorf("cookie MaxAge: got %d, want -1", c.MaxAge)
		}
	}
}

func TestFlashesAreOneShot(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client)
	ctx := context.Background()

	rr := httptest.NewRecorder()
	if _, err := store.Create(ctx, rr, &Data{UserID: uuid.New()}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	req := requestWithCookie(rr)

	if err := store.AddFlash(ctx, req, Flash{Type: "success", Message: "Saved."}); err != nil {
		t.Fatalf("AddFlash: %v", err)
	}
	if err := store.AddFlash(ctx, req, Flash{Type: "error", Message: "Nope."}); err != nil {
		t.Fatalf("AddFlash: %v", err)
	}

	flashes := store.PopFlashes(ctx, req)
	if len(flashes) != 2 {
		t.Fatalf("got %d flashes, want 2", len(flashes))
	}
	if flashes[0].Message != "Saved." || flashes[1].Type != "error" {
		t.Errorf("flash order or content wrong: %+v", flashes)
	}

	// Popped once, gone forever.
	if again := store.PopFlashes(ctx, req); len(again) != 0 {
		t.Errorf("second pop should be empty, got %d", len(again))
	}
}

func TestAddFlashWithoutSession(t *testing.T) {
	store := NewStore(nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	// No cookie means nowhere to show the flash; silently dropped.
	if err := store.AddFlash(context.Background(), req, Flash{Type: "info", Message: "hi"}); err != nil {
		t.Errorf("AddFlash without session: %v", err)
	}
}
