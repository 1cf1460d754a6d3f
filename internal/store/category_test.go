// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"

	"lifedash/internal/models"
)

func TestCategoryStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	s := NewCategoryStore(db)

	created, err := s.Create(&models.Category{
		UserID:      user.ID,
		Title:       "Trading",
		Slug:        "trading",
		Description: "Market notes",
		Color:       "#ff8800",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if created.IsDeleted {
		t.Error("new category must not be deleted")
	}

	found, err := s.FindBySlug(user.ID, "trading")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("FindBySlug: got %+v, want id %s", found, created.ID)
	}
	if found.Description != "Market notes" {
		t.Errorf("description: got %q", found.Description)
	}
}

func TestCategoryStoreFindScopedToOwner(t *testing.T) {
	db := testDB(t)
	owner := testUser(t, db)
	other := testUser(t, db)
	s := NewCategoryStore(db)

	created, err := s.Create(&models.Category{UserID: owner.ID, Title: "Private", Slug: "private"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.FindByID(other.ID, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got != nil {
		t.Error("category must not be visible to another user")
	}
}

func TestCategoryStoreUniqueSlug(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	s := NewCategoryStore(db)

	first, err := s.UniqueSlug(user.ID, "My Notes")
	if err != nil {
		t.Fatalf("UniqueSlug: %v", err)
	}
	if first != "my-notes" {
		t.Errorf("slug: got %q, want %q", first, "my-notes")
	}

	if _, err := s.Create(&models.Category{UserID: user.ID, Title: "My Notes", Slug: first}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	second, err := s.UniqueSlug(user.ID, "My Notes")
	if err != nil {
		t.Fatalf("UniqueSlug (collision): %v", err)
	}
	if second != "my-notes-1" {
		t.Errorf("slug: got %q, want %q", second, "my-notes-1")
	}
}

func TestCategoryStoreListCountsActivePages(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	categories := NewCategoryStore(db)
	pages := NewPageStore(db)

	cat, err := categories.Create(&models.Category{UserID: user.ID, Title: "Work", Slug: "work"})
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}
	for _, slug := range []string{"one", "two"} {
		if _, err := pages.Create(&models.Page{
			UserID: user.ID, CategoryID: cat.ID, Title: slug, Slug: slug,
		}); err != nil {
			t.Fatalf("Create page %s: %v", slug, err)
		}
	}

	list, err := categories.List(user.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("List: got %d categories, want 1", len(list))
	}
	if list[0].PageCount != 2 {
		t.Errorf("page count: got %d, want 2", list[0].PageCount)
	}
}

func TestCategoryStoreUpdateMissingRow(t *testing.T) {
	db := testDB(t)
	user := testUser(t, db)
	s := NewCategoryStore(db)

	err := s.Update(&models.Category{ID: uuid.New(), UserID: user.ID, Title: "Ghost", Slug: "ghost"})
	if err == nil {
		t.Fatal("expected error updating a missing category")
	}
}
