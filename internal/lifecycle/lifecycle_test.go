// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Integration tests for the trash state machine. Tests are skipped if
// PostgreSQL is not available.
package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"lifedash/internal/database"
	"lifedash/internal/models"
	"lifedash/internal/store"
)

func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "lifedash")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "lifedash")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

func testUser(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()
	suffix := uuid.NewString()[:8]
	user, err := store.NewUserStore(db).Create(
		"trash-"+suffix+"@lifecycle-test.local", "trash-"+suffix, "testpass123")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM users WHERE id = $1", user.ID)
	})
	return user.ID
}

func mkCategory(t *testing.T, db *sql.DB, userID uuid.UUID, title, slug string) *models.Category {
	t.Helper()
	cat, err := store.NewCategoryStore(db).Create(&models.Category{
		UserID: userID, Title: title, Slug: slug,
	})
	if err != nil {
		t.Fatalf("create category %s: %v", slug, err)
	}
	return cat
}

func mkPage(t *testing.T, db *sql.DB, userID uuid.UUID, catID uuid.UUID, parentID *uuid.UUID, title, slug string) *models.Page {
	t.Helper()
	page, err := store.NewPageStore(db).Create(&models.Page{
		UserID: userID, CategoryID: catID, ParentID: parentID, Title: title, Slug: slug,
	})
	if err != nil {
		t.Fatalf("create page %s: %v", slug, err)
	}
	return page
}

func pageState(t *testing.T, db *sql.DB, id uuid.UUID) (deleted bool, deletedAt *time.Time) {
	t.Helper()
	err := db.QueryRow(`SELECT is_deleted, deleted_at FROM pages WHERE id = $1`, id).
		Scan(&deleted, &deletedAt)
	if err != nil {
		t.Fatalf("read page state: %v", err)
	}
	return deleted, deletedAt
}

// fakeRemover records deleted object keys in place of S3.
type fakeRemover struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeRemover) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return nil
}

func TestSoftDeleteCategoryCascades(t *testing.T) {
	db := testDB(t)
	userID := testUser(t, db)
	svc := New(db, nil)
	ctx := context.Background()

	cat := mkCategory(t, db, userID, "Trading", "trading")
	p1 := mkPage(t, db, userID, cat.ID, nil, "Week 1", "week-1")
	p2 := mkPage(t, db, userID, cat.ID, nil, "Week 2", "week-2")

	if err := svc.SoftDeleteCategory(ctx, userID, cat.ID); err != nil {
		t.Fatalf("SoftDeleteCategory: %v", err)
	}

	var catDeletedAt *time.Time
	var catDeleted bool
	if err := db.QueryRow(`SELECT is_deleted, deleted_at FROM categories WHERE id = $1`, cat.ID).
		Scan(&catDeleted, &catDeletedAt); err != nil {
		t.Fatalf("read category: %v", err)
	}
	if !catDeleted || catDeletedAt == nil {
		t.Fatal("category should be flagged deleted with a timestamp")
	}

	// Every page carries the exact same timestamp as the category.
	for _, p := range []*models.Page{p1, p2} {
		deleted, deletedAt := pageState(t, db, p.ID)
		if !deleted {
			t.Errorf("page %s should be deleted", p.Slug)
		}
		if deletedAt == nil || !deletedAt.Equal(*catDeletedAt) {
			t.Errorf("page %s timestamp differs from category", p.Slug)
		}
	}

	// The category disappears from active listings.
	active, err := store.NewCategoryStore(db).FindByID(userID, cat.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if active != nil {
		t.Error("deleted category must not be returned by active lookups")
	}
}

func TestSoftDeletePageSubtree(t *testing.T) {
	db := testDB(t)
	userID := testUser(t, db)
	svc := New(db, nil)
	ctx := context.Background()

	cat := mkCategory(t, db, userID, "Projects", "projects")
	root := mkPage(t, db, userID, cat.ID, nil, "Root", "root")
	child := mkPage(t, db, userID, cat.ID, &root.ID, "Child", "child")
	grandchild := mkPage(t, db, userID, cat.ID, &child.ID, "Grandchild", "grandchild")
	sibling := mkPage(t, db, userID, cat.ID, nil, "Sibling", "sibling")

	if err := svc.SoftDeletePage(ctx, userID, root.ID); err != nil {
		t.Fatalf("SoftDeletePage: %v", err)
	}

	for _, p := range []*models.Page{root, child, grandchild} {
		if deleted, _ := pageState(t, db, p.ID); !deleted {
			t.Errorf("page %s should be deleted with the subtree", p.Slug)
		}
	}
	if deleted, _ := pageState(t, db, sibling.ID); deleted {
		t.Error("sibling outside the subtree must stay active")
	}
}

func TestSoftDeleteTwiceReturnsNotFound(t *testing.T) {
	db := testDB(t)
	userID := testUser(t, db)
	svc := New(db, nil)
	ctx := context.Background()

	cat := mkCategory(t, db, userID, "Reading", "reading")
	page := mkPage(t, db, userID, cat.ID, nil, "Book log", "book-log")

	if err := svc.SoftDeleteCategory(ctx, userID, cat.ID); err != nil {
		t.Fatalf("SoftDeleteCategory: %v", err)
	}
	var firstStamp *time.Time
	if err := db.QueryRow(`SELECT deleted_at FROM categories WHERE id = $1`, cat.ID).
		Scan(&firstStamp); err != nil {
		t.Fatalf("read category: %v", err)
	}
	if firstStamp == nil {
		t.Fatal("deleted_at not set by first delete")
	}

	// A trashed category is invisible to a second delete.
	if err := svc.SoftDeleteCategory(ctx, userID, cat.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second SoftDeleteCategory: got %v, want ErrNotFound", err)
	}
	var secondStamp *time.Time
	if err := db.QueryRow(`SELECT deleted_at FROM categories WHERE id = $1`, cat.ID).
		Scan(&secondStamp); err != nil {
		t.Fatalf("re-read category: %v", err)
	}
	if secondStamp == nil || !secondStamp.Equal(*firstStamp) {
		t.Error("deleted_at must keep the first delete's timestamp")
	}

	// Same for a page that went down with the cascade.
	if err := svc.SoftDeletePage(ctx, userID, page.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SoftDeletePage on trashed page: got %v, want ErrNotFound", err)
	}
	_, pageStamp := pageState(t, db, page.ID)
	if pageStamp == nil || !pageStamp.Equal(*firstStamp) {
		t.Error("page deleted_at must keep the cascade timestamp")
	}
}

func TestRestoreCategoryIsNotRecursive(t *testing.T) {
	db := testDB(t)
	userID := testUser(t, db)
	svc := New(db, nil)
	ctx := context.Background()

	cat := mkCategory(t, db, userID, "Recipes", "recipes")
	page := mkPage(t, db, userID, cat.ID, nil, "Pasta", "pasta")

	if err := svc.SoftDeleteCategory(ctx, userID, cat.ID); err != nil {
		t.Fatalf("SoftDeleteCategory: %v", err)
	}
	if err := svc.RestoreCategory(ctx, userID, cat.ID); err != nil {
		t.Fatalf("RestoreCategory: %v", err)
	}

	restored, err := store.NewCategoryStore(db).FindByID(userID, cat.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if restored == nil {
		t.Fatal("category should be active again")
	}
	if restored.DeletedAt != nil {
		t.Error("restore must clear deleted_at")
	}

	// The page stays in the trash until restored on its own.
	if deleted, _ := pageState(t, db, page.ID); !deleted {
		t.Error("restoring a category must not restore its pages")
	}

	if err := svc.RestorePage(ctx, userID, page.ID); err != nil {
		t.Fatalf("RestorePage: %v", err)
	}
	if deleted, _ := pageState(t, db, page.ID); deleted {
		t.Error("page should be active after its own restore")
	}
}

func TestRestoreReslugsOnCollision(t *testing.T) {
	db := testDB(t)
	userID := testUser(t, db)
	svc := New(db, nil)
	ctx := context.Background()
	categories := store.NewCategoryStore(db)

	first := mkCategory(t, db, userID, "Notes", "notes")
	if err := svc.SoftDeleteCategory(ctx, userID, first.ID); err != nil {
		t.Fatalf("SoftDeleteCategory: %v", err)
	}

	// A new active category reclaims the freed slug.
	second := mkCategory(t, db, userID, "Notes", "notes")

	if err := svc.RestoreCategory(ctx, userID, first.ID); err != nil {
		t.Fatalf("RestoreCategory: %v", err)
	}

	restored, err := categories.FindByID(userID, first.ID)
	if err != nil || restored == nil {
		t.Fatalf("FindByID: %v, %+v", err, restored)
	}
	if restored.Slug != "notes-1" {
		t.Errorf("restored slug: got %q, want %q", restored.Slug, "notes-1")
	}

	// A second collision steps to the next suffix.
	if err := svc.SoftDeleteCategory(ctx, userID, second.ID); err != nil {
		t.Fatalf("SoftDeleteCategory second: %v", err)
	}
	third := mkCategory(t, db, userID, "Notes", "notes")
	_ = third
	if err := svc.RestoreCategory(ctx, userID, second.ID); err != nil {
		t.Fatalf("RestoreCategory second: %v", err)
	}
	restoredSecond, err := categories.FindByID(userID, second.ID)
	if err != nil || restoredSecond == nil {
		t.Fatalf("FindByID second: %v", err)
	}
	if restoredSecond.Slug != "notes-2" {
		t.Errorf("second restored slug: got %q, want %q", restoredSecond.Slug, "notes-2")
	}
}

func TestPurgeRequiresTrashedState(t *testing.T) {
	db := testDB(t)
	userID := testUser(t, db)
	svc := New(db, nil)
	ctx := context.Background()

	cat := mkCategory(t, db, userID, "Active", "active")

	// Active entities cannot be purged.
	if err := svc.PurgeCategory(ctx, userID, cat.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("PurgeCategory on active: got %v, want ErrNotFound", err)
	}

	if err := svc.SoftDeleteCategory(ctx, userID, cat.ID); err != nil {
		t.Fatalf("SoftDeleteCategory: %v", err)
	}
	if err := svc.PurgeCategory(ctx, userID, cat.ID); err != nil {
		t.Fatalf("PurgeCategory: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM categories WHERE id = $1`, cat.ID).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Error("purged category row should be gone")
	}

	// A second purge of the same id reports not found.
	if err := svc.PurgeCategory(ctx, userID, cat.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double purge: got %v, want ErrNotFound", err)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	db := testDB(t)
	owner := testUser(t, db)
	attacker := testUser(t, db)
	svc := New(db, nil)
	ctx := context.Background()

	cat := mkCategory(t, db, owner, "Secrets", "secrets")
	page := mkPage(t, db, owner, cat.ID, nil, "Hidden", "hidden")

	// Every operation against a foreign entity reports the same error as
	// a missing one.
	ops := []func() error{
		func() error { return svc.SoftDeleteCategory(ctx, attacker, cat.ID) },
		func() error { return svc.SoftDeletePage(ctx, attacker, page.ID) },
		func() error { return svc.RestoreCategory(ctx, attacker, cat.ID) },
		func() error { return svc.RestorePage(ctx, attacker, page.ID) },
		func() error { return svc.PurgeCategory(ctx, attacker, cat.ID) },
		func() error { return svc.PurgePage(ctx, attacker, page.ID) },
	}
	for i, op := range ops {
		if err := op(); !errors.Is(err, ErrNotFound) {
			t.Errorf("op %d on foreign entity: got %v, want ErrNotFound", i, err)
		}
	}

	// Nothing changed for the owner.
	if deleted, _ := pageState(t, db, page.ID); deleted {
		t.Error("foreign soft delete must not touch the page")
	}
}

func TestTrashListingOrder(t *testing.T) {
	db := testDB(t)
	userID := testUser(t, db)
	svc := New(db, nil)
	ctx := context.Background()

	catA := mkCategory(t, db, userID, "First deleted", "first-deleted")
	catB := mkCategory(t, db, userID, "Second deleted", "second-deleted")
	page := mkPage(t, db, userID, catB.ID, nil, "Orphan", "orphan")

	if err := svc.SoftDeleteCategory(ctx, userID, catA.ID); err != nil {
		t.Fatalf("delete catA: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := svc.SoftDeletePage(ctx, userID, page.ID); err != nil {
		t.Fatalf("delete page: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := svc.SoftDeleteCategory(ctx, userID, catB.ID); err != nil {
		t.Fatalf("delete catB: %v", err)
	}

	categories, pages, err := svc.Trash(ctx, userID)
	if err != nil {
		t.Fatalf("Trash: %v", err)
	}
	if len(categories) != 2 || len(pages) != 1 {
		t.Fatalf("got %d categories and %d pages, want 2 and 1", len(categories), len(pages))
	}

	// Newest deletion first within each list.
	if categories[0].ID != catB.ID || categories[1].ID != catA.ID {
		t.Errorf("categories out of order: %s, %s", categories[0].Title, categories[1].Title)
	}
	if pages[0].ID != page.ID {
		t.Errorf("pages: got %s", pages[0].Title)
	}
}

func TestPurgePageRemovesSubtreeAndObjects(t *testing.T) {
	db := testDB(t)
	userID := testUser(t, db)
	remover := &fakeRemover{}
	svc := New(db, remover)
	ctx := context.Background()

	cat := mkCategory(t, db, userID, "Docs", "docs")
	root := mkPage(t, db, userID, cat.ID, nil, "Manual", "manual")
	child := mkPage(t, db, userID, cat.ID, &root.ID, "Appendix", "appendix")

	files := store.NewFileAssetStore(db)
	for i, pageID := range []uuid.UUID{root.ID, child.ID} {
		key := "user_test/purge-" + uuid.NewString()[:8]
		if _, err := files.Create(&models.FileAsset{
			UserID: userID, PageID: &pageID,
			Filename: key, OriginalName: "doc.pdf",
			ContentType: "application/pdf", SizeBytes: int64(100 + i), S3Key: key,
		}); err != nil {
			t.Fatalf("create file asset: %v", err)
		}
	}

	if err := svc.SoftDeletePage(ctx, userID, root.ID); err != nil {
		t.Fatalf("SoftDeletePage: %v", err)
	}
	if err := svc.PurgePage(ctx, userID, root.ID); err != nil {
		t.Fatalf("PurgePage: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM pages WHERE id = $1 OR id = $2`,
		root.ID, child.ID).Scan(&count); err != nil {
		t.Fatalf("count pages: %v", err)
	}
	if count != 0 {
		t.Errorf("purge left %d pages behind", count)
	}

	remover.mu.Lock()
	got := len(remover.keys)
	remover.mu.Unlock()
	if got != 2 {
		t.Errorf("object deletions: got %d keys, want 2", got)
	}
}

func TestTrashLifecycleEndToEnd(t *testing.T) {
	db := testDB(t)
	userID := testUser(t, db)
	svc := New(db, nil)
	ctx := context.Background()
	pages := store.NewPageStore(db)

	// A category with a page is trashed, inspected, the page restored,
	// and the category purged.
	cat := mkCategory(t, db, userID, "Trading", "trading")
	week1 := mkPage(t, db, userID, cat.ID, nil, "Week 1", "week-1")

	if err := svc.SoftDeleteCategory(ctx, userID, cat.ID); err != nil {
		t.Fatalf("SoftDeleteCategory: %v", err)
	}

	categories, trashedPages, err := svc.Trash(ctx, userID)
	if err != nil {
		t.Fatalf("Trash: %v", err)
	}
	if len(categories) != 1 || len(trashedPages) != 1 {
		t.Fatalf("trash should hold the category and its page, got %d and %d",
			len(categories), len(trashedPages))
	}

	if err := svc.RestorePage(ctx, userID, week1.ID); err != nil {
		t.Fatalf("RestorePage: %v", err)
	}
	restored, err := pages.FindByID(userID, week1.ID)
	if err != nil || restored == nil {
		t.Fatalf("restored page lookup: %v, %+v", err, restored)
	}
	if restored.CategoryID != cat.ID {
		t.Error("restored page must keep its category")
	}

	// Purging the still-trashed category drops it; the restored page went
	// active, so the category cascade on purge takes the page row with it
	// only through the FK, which means the active page must be gone too
	// after the category row is deleted.
	if err := svc.PurgeCategory(ctx, userID, cat.ID); err != nil {
		t.Fatalf("PurgeCategory: %v", err)
	}

	var remaining int
	if err := db.QueryRow(`SELECT COUNT(*) FROM categories WHERE id = $1`, cat.ID).Scan(&remaining); err != nil {
		t.Fatalf("count: %v", err)
	}
	if remaining != 0 {
		t.Error("category should be fully gone after purge")
	}
}
