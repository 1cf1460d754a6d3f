// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lifedash/internal/models"
	"lifedash/internal/slug"
)

// PageStore manages note pages. Pages nest via parent_id within a category
// and carry the same soft-delete columns as categories.
type PageStore struct {
	db *sql.DB
}

// NewPageStore returns a new PageStore.
func NewPageStore(db *sql.DB) *PageStore {
	return &PageStore{db: db}
}

const pageColumns = `id, user_id, category_id, parent_id, title, slug, icon, body, is_deleted, deleted_at, created_at, updated_at`

func scanPage(scanner interface{ Scan(...any) error }) (*models.Page, error) {
	var p models.Page
	err := scanner.Scan(
		&p.ID, &p.UserID, &p.CategoryID, &p.ParentID, &p.Title, &p.Slug,
		&p.Icon, &p.Body, &p.IsDeleted, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByCategory returns all active pages in a category ordered by title.
func (s *PageStore) ListByCategory(userID, categoryID uuid.UUID) ([]models.Page, error) {
	rows, err := s.db.Query(`
		SELECT `+pageColumns+` FROM pages
		WHERE user_id = $1 AND category_id = $2 AND is_deleted = FALSE
		ORDER BY title
	`, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()
	return collectPages(rows)
}

// ListChildren returns the active direct children of a page.
func (s *PageStore) ListChildren(userID, parentID uuid.UUID) ([]models.Page, error) {
	rows, err := s.db.Query(`
		SELECT `+pageColumns+` FROM pages
		WHERE user_id = $1 AND parent_id = $2 AND is_deleted = FALSE
		ORDER BY title
	`, userID, parentID)
	if err != nil {
		return nil, fmt.Errorf("list child pages: %w", err)
	}
	defer rows.Close()
	return collectPages(rows)
}

// ListRoots returns the active top-level pages of a category.
func (s *PageStore) ListRoots(userID, categoryID uuid.UUID) ([]models.Page, error) {
	rows, err := s.db.Query(`
		SELECT `+pageColumns+` FROM pages
		WHERE user_id = $1 AND category_id = $2 AND parent_id IS NULL AND is_deleted = FALSE
		ORDER BY title
	`, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list root pages: %w", err)
	}
	defer rows.Close()
	return collectPages(rows)
}

func collectPages(rows *sql.Rows) ([]models.Page, error) {
	var items []models.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves an active page owned by the user. Returns nil if not
// found, soft-deleted, or owned by someone else.
func (s *PageStore) FindByID(userID, id uuid.UUID) (*models.Page, error) {
	row := s.db.QueryRow(`
		SELECT `+pageColumns+` FROM pages
		WHERE id = $1 AND user_id = $2 AND is_deleted = FALSE
	`, id, userID)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves an active page by category and slug.
func (s *PageStore) FindBySlug(userID, categoryID uuid.UUID, pageSlug string) (*models.Page, error) {
	row := s.db.QueryRow(`
		SELECT `+pageColumns+` FROM pages
		WHERE user_id = $1 AND category_id = $2 AND slug = $3 AND is_deleted = FALSE
	`, userID, categoryID, pageSlug)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by slug: %w", err)
	}
	return p, nil
}

// UniqueSlug derives a slug from the title that no active page in the
// category currently holds.
func (s *PageStore) UniqueSlug(categoryID uuid.UUID, title string) (string, error) {
	return slug.Unique(title, func(candidate string) (bool, error) {
		var exists bool
		err := s.db.QueryRow(`
			SELECT EXISTS (
				SELECT 1 FROM pages
				WHERE category_id = $1 AND slug = $2 AND is_deleted = FALSE
			)
		`, categoryID, candidate).Scan(&exists)
		return exists, err
	})
}

// Create inserts a new page and returns it.
func (s *PageStore) Create(p *models.Page) (*models.Page, error) {
	row := s.db.QueryRow(`
		INSERT INTO pages (user_id, category_id, parent_id, title, slug, icon, body)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+pageColumns,
		p.UserID, p.CategoryID, p.ParentID, p.Title, p.Slug, p.Icon, p.Body,
	)
	result, err := scanPage(row)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return result, nil
}

// Update modifies an existing page's editable fields.
func (s *PageStore) Update(p *models.Page) error {
	res, err := s.db.Exec(`
		UPDATE pages SET
			title = $1, slug = $2, icon = $3, body = $4, parent_id = $5,
			updated_at = NOW()
		WHERE id = $6 AND user_id = $7 AND is_deleted = FALSE
	`, p.Title, p.Slug, p.Icon, p.Body, p.ParentID, p.ID, p.UserID)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Search matches active pages of the user against a query string on title
// and body, for the dashboard search box. Results carry the category slug
// so the view can link to /notes/{category}/{page}.
func (s *PageStore) Search(userID uuid.UUID, query string, limit int) ([]models.Page, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.user_id, p.category_id, p.parent_id, p.title, p.slug,
		       p.icon, p.body, p.is_deleted, p.deleted_at, p.created_at, p.updated_at,
		       c.slug
		FROM pages p
		JOIN categories c ON c.id = p.category_id
		WHERE p.user_id = $1 AND p.is_deleted = FALSE
		  AND (p.title ILIKE '%' || $2 || '%' OR p.body ILIKE '%' || $2 || '%')
		ORDER BY p.updated_at DESC
		LIMIT $3
	`, userID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search pages: %w", err)
	}
	defer rows.Close()

	var pages []models.Page
	for rows.Next() {
		var p models.Page
		err := rows.Scan(
			&p.ID, &p.UserID, &p.CategoryID, &p.ParentID, &p.Title, &p.Slug,
			&p.Icon, &p.Body, &p.IsDeleted, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt,
			&p.CategorySlug,
		)
		if err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}
