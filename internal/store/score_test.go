// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"
	"time"

	"lifedash/internal/models"
)

func TestScoreStoreUpsertComputesTotal(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	s := NewScoreStore(db)

	day := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	saved, err := s.Upsert(&models.DailyScore{
		UserID: user.ID, Date: day,
		DoPoints: 3, DontPoints: 4, JournalPoint: 1, LearningPoint: 1,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if saved.TotalPoints != 9 {
		t.Errorf("total: got %d, want 9", saved.TotalPoints)
	}

	// Re-scoring the same day replaces the row.
	updated, err := s.Upsert(&models.DailyScore{
		UserID: user.ID, Date: day,
		DoPoints: 1, DontPoints: 1,
	})
	if err != nil {
		t.Fatalf("Upsert (update): %v", err)
	}
	if updated.ID != saved.ID {
		t.Errorf("upsert created a new row")
	}
	if updated.TotalPoints != 2 {
		t.Errorf("total after update: got %d, want 2", updated.TotalPoints)
	}
}

func TestScoreStoreAverage(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	s := NewScoreStore(db)

	now := time.Now()
	for i, pts := range [][2]int{{4, 0}, {4, 2}, {4, 4}} {
		if _, err := s.Upsert(&models.DailyScore{
			UserID: user.ID, Date: now.AddDate(0, 0, -i),
			DoPoints: pts[0], DontPoints: pts[1],
		}); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	avg, err := s.Average(user.ID, now.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("Average: %v", err)
	}
	if avg < 5.9 || avg > 6.1 {
		t.Errorf("average: got %f, want 6.0", avg)
	}
}

func TestScoreStoreAverageEmpty(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	s := NewScoreStore(db)

	avg, err := s.Average(user.ID, time.Now().AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("Average: %v", err)
	}
	if avg != 0 {
		t.Errorf("average with no scores: got %f, want 0", avg)
	}
}

func TestDailyScoreClampsComponents(t *testing.T) {
	s := models.DailyScore{
		DoPoints: 99, DontPoints: -7, JournalPoint: 5, LearningPoint: 5,
	}
	if got := s.CalculateTotal(); got != 6 {
		t.Errorf("total: got %d, want 6", got)
	}
	if s.DoPoints != 4 || s.DontPoints != 0 || s.JournalPoint != 1 || s.LearningPoint != 1 {
		t.Errorf("components not clamped: %+v", s)
	}
}

func TestScoreStoreUpsertClampsOutOfRange(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	s := NewScoreStore(db)

	saved, err := s.Upsert(&models.DailyScore{
		UserID: user.ID, Date: time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC),
		DoPoints: 40, DontPoints: -1, JournalPoint: 3, LearningPoint: -3,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if saved.DoPoints != 4 || saved.DontPoints != 0 || saved.JournalPoint != 1 || saved.LearningPoint != 0 {
		t.Errorf("persisted components not clamped: %+v", saved)
	}
	if saved.TotalPoints != 5 {
		t.Errorf("total: got %d, want 5", saved.TotalPoints)
	}
}

func TestDailyScoreColor(t *testing.T) {
	cases := []struct {
		total int
		want  string
	}{
		{9, "green"},
		{7, "green"},
		{5, "yellow"},
		{4, "yellow"},
		{3, "red"},
		{0, "red"},
	}
	for _, c := range cases {
		s := models.DailyScore{TotalPoints: c.total}
		if got := s.Color(); got != c.want {
			t.Errorf("Color(%d): got %q, want %q", c.total, got, c.want)
		}
	}
}
