// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"
	"time"

	"lifedash/internal/models"
)

func TestHabitStoreToggle(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	s := NewHabitStore(db)

	habit, err := s.Create(&models.Habit{
		UserID: user.ID, Name: "Morning run", Frequency: models.FrequencyDaily, Color: "#0d6efd",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	today := time.Now()

	done, err := s.Toggle(user.ID, habit.ID, today)
	if err != nil {
		t.Fatalf("Toggle on: %v", err)
	}
	if !done {
		t.Error("first toggle should mark the habit done")
	}

	list, err := s.List(user.ID, today)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || !list[0].DoneToday {
		t.Errorf("List: got %+v, want one habit done today", list)
	}

	done, err = s.Toggle(user.ID, habit.ID, today)
	if err != nil {
		t.Fatalf("Toggle off: %v", err)
	}
	if done {
		t.Error("second toggle should undo the completion")
	}
}

func TestHabitStoreFindByName(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	other := testUser(t, db)
	s := NewHabitStore(db)

	created, err := s.Create(&models.Habit{
		UserID: user.ID, Name: "Read", Frequency: models.FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := s.FindByName(user.ID, "Read")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Errorf("FindByName: got %+v, want habit %s", found, created.ID)
	}

	missing, err := s.FindByName(user.ID, "Sleep")
	if err != nil {
		t.Fatalf("FindByName (missing): %v", err)
	}
	if missing != nil {
		t.Errorf("unknown name should return nil, got %+v", missing)
	}

	// Names only match within the owning user.
	foreign, err := s.FindByName(other.ID, "Read")
	if err != nil {
		t.Fatalf("FindByName (foreign): %v", err)
	}
	if foreign != nil {
		t.Errorf("another user's habit must not be visible, got %+v", foreign)
	}
}

func TestHabitStoreStreak(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	s := NewHabitStore(db)

	habit, err := s.Create(&models.Habit{
		UserID: user.ID, Name: "Reading", Frequency: models.FrequencyDaily, Color: "#198754",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	today := time.Now()

	// Three consecutive days ending today.
	for i := 0; i < 3; i++ {
		if _, err := s.Toggle(user.ID, habit.ID, today.AddDate(0, 0, -i)); err != nil {
			t.Fatalf("Toggle day -%d: %v", i, err)
		}
	}

	streak, err := s.Streak(user.ID, habit.ID, today)
	if err != nil {
		t.Fatalf("Streak: %v", err)
	}
	if streak != 3 {
		t.Errorf("streak: got %d, want 3", streak)
	}

	// A gap ends the streak: a log five days back must not count.
	if _, err := s.Toggle(user.ID, habit.ID, today.AddDate(0, 0, -5)); err != nil {
		t.Fatalf("Toggle day -5: %v", err)
	}
	streak, err = s.Streak(user.ID, habit.ID, today)
	if err != nil {
		t.Fatalf("Streak: %v", err)
	}
	if streak != 3 {
		t.Errorf("streak after gap log: got %d, want 3", streak)
	}
}

func TestHabitStoreStreakEmpty(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	s := NewHabitStore(db)

	habit, err := s.Create(&models.Habit{
		UserID: user.ID, Name: "Stretching", Frequency: models.FrequencyDaily, Color: "#dc3545",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	streak, err := s.Streak(user.ID, habit.ID, time.Now())
	if err != nil {
		t.Fatalf("Streak: %v", err)
	}
	if streak != 0 {
		t.Errorf("streak: got %d, want 0", streak)
	}
}

func TestHabitDueOn(t *testing.T) {
	days := "1,3,5"
	custom := &models.Habit{Frequency: models.FrequencyCustom, CustomDays: &days}

	if !custom.DueOn(time.Monday) {
		t.Error("custom habit should be due on Monday (1)")
	}
	if custom.DueOn(time.Sunday) {
		t.Error("custom habit should not be due on Sunday (0)")
	}

	daily := &models.Habit{Frequency: models.FrequencyDaily}
	if !daily.DueOn(time.Sunday) {
		t.Error("daily habit is due every day")
	}
}
