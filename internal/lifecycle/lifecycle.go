// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package lifecycle implements the trash state machine for categories and
// pages: soft-delete with cascade, single-entity restore, the trash
// listing, and gated permanent deletion. All operations are scoped to the
// owning user and run in one transaction per request.
package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an entity does not exist, is owned by a
// different user, or is not in the state the operation requires. Callers
// cannot distinguish those cases, and must not be able to.
var ErrNotFound = errors.New("lifecycle: not found")

// ObjectRemover deletes stored file bytes by key. Satisfied by the S3
// storage client; nil when object storage is not configured.
type ObjectRemover interface {
	Delete(ctx context.Context, key string) error
}

// TrashItem is one row in the trash view, a category or a page.
type TrashItem struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// Service owns every soft-delete, restore, and purge path. Handlers call
// it instead of touching the deletion columns themselves.
type Service struct {
	db      *sql.DB
	objects ObjectRemover
}

// New returns a lifecycle Service. objects may be nil if uploads are
// disabled; purge then skips object deletion.
func New(db *sql.DB, objects ObjectRemover) *Service {
	return &Service{db: db, objects: objects}
}

// SoftDeleteCategory flags a category and every page it owns as deleted,
// all stamped with the same timestamp. Already-deleted pages keep their
// original timestamp.
func (s *Service) SoftDeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.Exec(`
		UPDATE categories SET is_deleted = TRUE, deleted_at = $1
		WHERE id = $2 AND user_id = $3 AND is_deleted = FALSE
	`, now, id, userID)
	if err != nil {
		return fmt.Errorf("soft delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(`
		UPDATE pages SET is_deleted = TRUE, deleted_at = $1
		WHERE category_id = $2 AND user_id = $3 AND is_deleted = FALSE
	`, now, id, userID)
	if err != nil {
		return fmt.Errorf("cascade delete pages: %w", err)
	}

	return tx.Commit()
}

// SoftDeletePage flags a page and its whole descendant subtree as deleted.
// The subtree is walked iteratively by id, one generation per query, so
// arbitrarily deep nesting cannot overflow the stack.
func (s *Service) SoftDeletePage(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.Exec(`
		UPDATE pages SET is_deleted = TRUE, deleted_at = $1
		WHERE id = $2 AND user_id = $3 AND is_deleted = FALSE
	`, now, id, userID)
	if err != nil {
		return fmt.Errorf("soft delete page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	frontier := []uuid.UUID{id}
	for len(frontier) > 0 {
		var next []uuid.UUID
		for _, parent := range frontier {
			children, err := collectChildIDs(tx, userID, parent)
			if err != nil {
				return err
			}
			next = append(next, children...)
		}
		if len(next) == 0 {
			break
		}
		for _, child := range next {
			_, err := tx.Exec(`
				UPDATE pages SET is_deleted = TRUE, deleted_at = $1
				WHERE id = $2 AND is_deleted = FALSE
			`, now, child)
			if err != nil {
				return fmt.Errorf("cascade delete page %s: %w", child, err)
			}
		}
		frontier = next
	}

	return tx.Commit()
}

func collectChildIDs(tx *sql.Tx, userID, parentID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.Query(`
		SELECT id FROM pages
		WHERE parent_id = $1 AND user_id = $2 AND is_deleted = FALSE
	`, parentID, userID)
	if err != nil {
		return nil, fmt.Errorf("collect child pages: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan child page id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RestoreCategory clears a category's deleted flag. Pages cascaded into
// the trash with it stay there; each one is restored on its own.
// If the slug was reclaimed by a newer category while this one sat in the
// trash, the restored row gets a numbered suffix instead of colliding.
func (s *Service) RestoreCategory(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRow(`
		SELECT slug FROM categories
		WHERE id = $1 AND user_id = $2 AND is_deleted = TRUE
	`, id, userID).Scan(&current)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load trashed category: %w", err)
	}

	freed, err := freeSlug(tx, current, `
		SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE user_id = $1 AND slug = $2 AND is_deleted = FALSE
		)`, userID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		UPDATE categories SET is_deleted = FALSE, deleted_at = NULL, slug = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, freed, id, userID)
	if err != nil {
		return fmt.Errorf("restore category: %w", err)
	}

	return tx.Commit()
}

// RestorePage clears one page's deleted flag. Children stay trashed, and
// the parent is left untouched even if it is still in the trash.
func (s *Service) RestorePage(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current string
	var categoryID uuid.UUID
	err = tx.QueryRow(`
		SELECT slug, category_id FROM pages
		WHERE id = $1 AND user_id = $2 AND is_deleted = TRUE
	`, id, userID).Scan(&current, &categoryID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load trashed page: %w", err)
	}

	freed, err := freeSlug(tx, current, `
		SELECT EXISTS (
			SELECT 1 FROM pages
			WHERE category_id = $1 AND slug = $2 AND is_deleted = FALSE
		)`, categoryID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		UPDATE pages SET is_deleted = FALSE, deleted_at = NULL, slug = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, freed, id, userID)
	if err != nil {
		return fmt.Errorf("restore page: %w", err)
	}

	return tx.Commit()
}

// freeSlug returns the first of slug, slug-1, slug-2, ... that the scoped
// EXISTS query reports as available.
func freeSlug(tx *sql.Tx, base, existsQuery string, scope any) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		var taken bool
		if err := tx.QueryRow(existsQuery, scope, candidate).Scan(&taken); err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// Trash returns the user's soft-deleted categories and pages as two
// disjoint lists, each most recently deleted first.
func (s *Service) Trash(ctx context.Context, userID uuid.UUID) (categories, pages []TrashItem, err error) {
	categories, err = s.listTrashed(ctx, "categories", userID)
	if err != nil {
		return nil, nil, err
	}
	pages, err = s.listTrashed(ctx, "pages", userID)
	if err != nil {
		return nil, nil, err
	}
	return categories, pages, nil
}

func (s *Service) listTrashed(ctx context.Context, table string, userID uuid.UUID) ([]TrashItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, deleted_at FROM `+table+`
		WHERE user_id = $1 AND is_deleted = TRUE
		ORDER BY deleted_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list trashed %s: %w", table, err)
	}
	defer rows.Close()

	var items []TrashItem
	for rows.Next() {
		var t TrashItem
		if err := rows.Scan(&t.ID, &t.Title, &t.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan trash item: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// PurgeCategory permanently removes a soft-deleted category. Page and
// file rows go with it through the foreign keys; the uploaded bytes are
// removed from object storage after the transaction commits.
func (s *Service) PurgeCategory(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	keys, err := collectKeys(tx, `
		SELECT f.s3_key FROM file_assets f
		JOIN pages p ON p.id = f.page_id
		WHERE p.category_id = $1 AND p.user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}

	res, err := tx.Exec(`
		DELETE FROM categories
		WHERE id = $1 AND user_id = $2 AND is_deleted = TRUE
	`, id, userID)
	if err != nil {
		return fmt.Errorf("purge category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.removeObjects(ctx, keys)
	return nil
}

// PurgePage permanently removes a soft-deleted page and its subtree.
func (s *Service) PurgePage(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Subtree ids, root included, gathered breadth-first.
	subtree := []uuid.UUID{id}
	frontier := []uuid.UUID{id}
	for len(frontier) > 0 {
		var next []uuid.UUID
		for _, parent := range frontier {
			rows, err := tx.Query(`
				SELECT id FROM pages WHERE parent_id = $1 AND user_id = $2
			`, parent, userID)
			if err != nil {
				return fmt.Errorf("collect subtree: %w", err)
			}
			for rows.Next() {
				var child uuid.UUID
				if err := rows.Scan(&child); err != nil {
					rows.Close()
					return fmt.Errorf("scan subtree id: %w", err)
				}
				next = append(next, child)
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return err
			}
			rows.Close()
		}
		subtree = append(subtree, next...)
		frontier = next
	}

	var keys []string
	for _, pageID := range subtree {
		pageKeys, err := collectKeys(tx, `
			SELECT s3_key FROM file_assets WHERE page_id = $1 AND user_id = $2
		`, pageID, userID)
		if err != nil {
			return err
		}
		keys = append(keys, pageKeys...)
	}

	res, err := tx.Exec(`
		DELETE FROM pages
		WHERE id = $1 AND user_id = $2 AND is_deleted = TRUE
	`, id, userID)
	if err != nil {
		return fmt.Errorf("purge page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.removeObjects(ctx, keys)
	return nil
}

func collectKeys(tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("collect s3 keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan s3 key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// removeObjects deletes stored bytes best-effort. The rows are already
// gone; a failed object delete is logged and not retried.
func (s *Service) removeObjects(ctx context.Context, keys []string) {
	if s.objects == nil {
		return
	}
	for _, key := range keys {
		if err := s.objects.Delete(ctx, key); err != nil {
			slog.Error("failed to delete stored object after purge", "key", key, "error", err)
		}
	}
}
