// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"
	"time"
)

func TestJournalStoreUpsert(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	s := NewJournalStore(db)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	first, err := s.Upsert(user.ID, day, "Draft", "first version")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Saving the same date again overwrites in place.
	second, err := s.Upsert(user.ID, day, "Final", "second version")
	if err != nil {
		t.Fatalf("Upsert (update): %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert created a new row: %s != %s", second.ID, first.ID)
	}
	if second.Title != "Final" || second.Body != "second version" {
		t.Errorf("upsert did not overwrite: %+v", second)
	}

	found, err := s.FindByDate(user.ID, day)
	if err != nil {
		t.Fatalf("FindByDate: %v", err)
	}
	if found == nil || found.Title != "Final" {
		t.Fatalf("FindByDate: got %+v", found)
	}
}

func TestJournalStoreDatesWithEntries(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	s := NewJournalStore(db)

	for _, d := range []int{3, 17, 28} {
		day := time.Date(2026, 5, d, 0, 0, 0, 0, time.UTC)
		if _, err := s.Upsert(user.ID, day, "", "entry"); err != nil {
			t.Fatalf("Upsert day %d: %v", d, err)
		}
	}
	// An entry in another month must not appear.
	if _, err := s.Upsert(user.ID, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), "", "x"); err != nil {
		t.Fatalf("Upsert other month: %v", err)
	}

	dates, err := s.DatesWithEntries(user.ID, 2026, time.May)
	if err != nil {
		t.Fatalf("DatesWithEntries: %v", err)
	}
	if len(dates) != 3 {
		t.Fatalf("got %d dates, want 3", len(dates))
	}
}

func TestJournalStoreListLimit(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	s := NewJournalStore(db)

	for d := 1; d <= 5; d++ {
		day := time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
		if _, err := s.Upsert(user.ID, day, "", "entry"); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	limited, err := s.List(user.ID, 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(limited) != 3 {
		t.Errorf("limited list: got %d, want 3", len(limited))
	}

	all, err := s.List(user.ID, 0)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("full list: got %d, want 5", len(all))
	}
}
