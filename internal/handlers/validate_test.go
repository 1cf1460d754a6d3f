package handlers

import (
	"strings"
	"testing"
)

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		username string
		password string
		wantErr  bool
	}{
		{"valid", "user@example.com", "tester", "longenough", false},
		{"missing email", "", "tester", "longenough", true},
		{"bad email", "not-an-email", "tester", "longenough", true},
		{"missing username", "user@example.com", "  ", "longenough", true},
		{"username too long", "user@example.com", strings.Repeat("a", 61), "longenough", true},
		{"short password", "user@example.com", "tester", "short", true},
		{"password exactly 8 chars", "user@example.com", "tester", "12345678", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validateRegistration(tt.email, tt.username, tt.password)
			if (msg != "") != tt.wantErr {
				t.Errorf("got %q, wantErr %v", msg, tt.wantErr)
			}
		})
	}
}

func TestValidateTitled(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		body    string
		wantErr bool
	}{
		{"valid", "Week 1", "some notes", false},
		{"empty body ok", "Week 1", "", false},
		{"missing title", "   ", "body", true},
		{"title too long", strings.Repeat("x", 301), "", true},
		{"title at limit", strings.Repeat("x", 300), "", false},
		{"body too long", "ok", strings.Repeat("x", 100_001), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validateTitled(tt.title, tt.body)
			if (msg != "") != tt.wantErr {
				t.Errorf("got %q, wantErr %v", msg, tt.wantErr)
			}
		})
	}
}

func TestValidateLabel(t *testing.T) {
	if msg := validateLabel("Buy milk"); msg != "" {
		t.Errorf("valid label rejected: %q", msg)
	}
	if msg := validateLabel("   "); msg == "" {
		t.Error("blank label should be rejected")
	}
	if msg := validateLabel(strings.Repeat("x", 501)); msg == "" {
		t.Error("overlong label should be rejected")
	}
}
