// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"
)

func TestUserStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	suffix := uuid.NewString()[:8]
	email := "create-" + suffix + "@store-test.local"
	username := "creator-" + suffix

	user, err := users.Create(email, username, "testpass123")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { users.Delete(user.ID) })

	if user.Email != email {
		t.Errorf("email: got %q, want %q", user.Email, email)
	}
	if user.PasswordHash == "testpass123" {
		t.Error("password must be stored hashed")
	}

	byEmail, err := users.FindByEmail(email)
	if err != nil || byEmail == nil {
		t.Fatalf("FindByEmail: %v, %+v", err, byEmail)
	}
	byUsername, err := users.FindByUsername(username)
	if err != nil || byUsername == nil {
		t.Fatalf("FindByUsername: %v, %+v", err, byUsername)
	}
	if byEmail.ID != user.ID || byUsername.ID != user.ID {
		t.Error("lookups should return the created user")
	}

	missing, err := users.FindByEmail("nobody-" + suffix + "@store-test.local")
	if err != nil {
		t.Fatalf("FindByEmail missing: %v", err)
	}
	if missing != nil {
		t.Error("missing user should be nil, not an error")
	}
}

func TestUserStoreCheckPassword(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	suffix := uuid.NewString()[:8]
	user, err := users.Create("pass-"+suffix+"@store-test.local", "pass-"+suffix, "correct-horse")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { users.Delete(user.ID) })

	if !users.CheckPassword(user, "correct-horse") {
		t.Error("correct password should verify")
	}
	if users.CheckPassword(user, "battery-staple") {
		t.Error("wrong password should fail")
	}
}

func TestUserStoreTOTPLifecycle(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	userID := testUser(t, db).ID

	if err := users.SetTOTPSecret(userID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("SetTOTPSecret: %v", err)
	}
	if err := users.EnableTOTP(userID); err != nil {
		t.Fatalf("EnableTOTP: %v", err)
	}

	user, err := users.FindByID(userID)
	if err != nil || user == nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !user.TOTPEnabled {
		t.Error("TOTP should be enabled")
	}
	if user.TOTPSecret == nil || *user.TOTPSecret != "JBSWY3DPEHPK3PXP" {
		t.Error("TOTP secret should be stored")
	}

	if err := users.ResetTOTP(userID); err != nil {
		t.Fatalf("ResetTOTP: %v", err)
	}
	user, err = users.FindByID(userID)
	if err != nil || user == nil {
		t.Fatalf("FindByID after reset: %v", err)
	}
	if user.TOTPEnabled || user.TOTPSecret != nil {
		t.Error("reset should clear the secret and disable TOTP")
	}
}

func TestUserStoreUpdateTimezone(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	userID := testUser(t, db).ID

	if err := users.UpdateTimezone(userID, "Europe/Bucharest"); err != nil {
		t.Fatalf("UpdateTimezone: %v", err)
	}
	user, err := users.FindByID(userID)
	if err != nil || user == nil {
		t.Fatalf("FindByID: %v", err)
	}
	if user.Timezone == nil || *user.Timezone != "Europe/Bucharest" {
		t.Errorf("timezone: got %v", user.Timezone)
	}
}
