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

// CategoryStore manages note categories in the database. All queries are
// scoped by user_id and only return rows that are not soft-deleted.
// The trash lifecycle itself lives in the lifecycle package.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, user_id, title, slug, description, icon, color, is_deleted, deleted_at, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.UserID, &c.Title, &c.Slug, &c.Description, &c.Icon,
		&c.Color, &c.IsDeleted, &c.DeletedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns a user's active categories ordered by title, with the count
// of active pages in each.
func (s *CategoryStore) List(userID uuid.UUID) ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.user_id, c.title, c.slug, c.description, c.icon, c.color,
		       c.is_deleted, c.deleted_at, c.created_at, c.updated_at,
		       COUNT(p.id) FILTER (WHERE p.is_deleted = FALSE) AS page_count
		FROM categories c
		LEFT JOIN pages p ON p.category_id = c.id
		WHERE c.user_id = $1 AND c.is_deleted = FALSE
		GROUP BY c.id
		ORDER BY c.title
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.UserID, &c.Title, &c.Slug, &c.Description, &c.Icon,
			&c.Color, &c.IsDeleted, &c.DeletedAt, &c.CreatedAt, &c.UpdatedAt,
			&c.PageCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindByID retrieves an active category owned by the user. Returns nil if
// not found, soft-deleted, or owned by someone else.
func (s *CategoryStore) FindByID(userID, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`
		SELECT `+categoryColumns+` FROM categories
		WHERE id = $1 AND user_id = $2 AND is_deleted = FALSE
	`, id, userID)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves an active category by its slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(userID uuid.UUID, categorySlug string) (*models.Category, error) {
	row := s.db.QueryRow(`
		SELECT `+categoryColumns+` FROM categories
		WHERE user_id = $1 AND slug = $2 AND is_deleted = FALSE
	`, userID, categorySlug)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// UniqueSlug derives a slug from the title that no active category of the
// user currently holds. Slugs of soft-deleted categories are free to reuse.
func (s *CategoryStore) UniqueSlug(userID uuid.UUID, title string) (string, error) {
	return slug.Unique(title, func(candidate string) (bool, error) {
		var exists bool
		err := s.db.QueryRow(`
			SELECT EXISTS (
				SELECT 1 FROM categories
				WHERE user_id = $1 AND slug = $2 AND is_deleted = FALSE
			)
		`, userID, candidate).Scan(&exists)
		return exists, err
	})
}

// Create inserts a new category and returns it. The caller is expected to
// have assigned a slug, typically via UniqueSlug.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	row := s.db.QueryRow(`
		INSERT INTO categories (user_id, title, slug, description, icon, color)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+categoryColumns,
		c.UserID, c.Title, c.Slug, c.Description, c.Icon, c.Color,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category's editable fields. The slug is only
// reassigned when the caller passes a new one.
func (s *CategoryStore) Update(c *models.Category) error {
	res, err := s.db.Exec(`
		UPDATE categories SET
			title = $1, slug = $2, description = $3, icon = $4, color = $5,
			updated_at = NOW()
		WHERE id = $6 AND user_id = $7 AND is_deleted = FALSE
	`, c.Title, c.Slug, c.Description, c.Icon, c.Color, c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
