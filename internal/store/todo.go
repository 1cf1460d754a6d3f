// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lifedash/internal/models"
)

// TodoStore manages the to-do and not-to-do lists shown on the dashboard.
type TodoStore struct {
	db *sql.DB
}

// NewTodoStore returns a new TodoStore.
func NewTodoStore(db *sql.DB) *TodoStore {
	return &TodoStore{db: db}
}

const todoColumns = `id, user_id, label, kind, is_done, position, created_at`

func scanTodo(scanner interface{ Scan(...any) error }) (*models.TodoItem, error) {
	var t models.TodoItem
	err := scanner.Scan(
		&t.ID, &t.UserID, &t.Label, &t.Kind, &t.IsDone, &t.Position, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns a user's items of one kind ordered by position.
func (s *TodoStore) List(userID uuid.UUID, kind models.TodoKind) ([]models.TodoItem, error) {
	rows, err := s.db.Query(`
		SELECT `+todoColumns+` FROM todo_items
		WHERE user_id = $1 AND kind = $2
		ORDER BY position, created_at
	`, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("list todo items: %w", err)
	}
	defer rows.Close()

	var items []models.TodoItem
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo item: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// Create inserts a new item at the end of its list and returns it.
func (s *TodoStore) Create(userID uuid.UUID, label string, kind models.TodoKind) (*models.TodoItem, error) {
	row := s.db.QueryRow(`
		INSERT INTO todo_items (user_id, label, kind, position)
		VALUES ($1, $2, $3, (
			SELECT COALESCE(MAX(position), -1) + 1 FROM todo_items
			WHERE user_id = $1 AND kind = $3
		))
		RETURNING `+todoColumns,
		userID, label, kind,
	)
	t, err := scanTodo(row)
	if err != nil {
		return nil, fmt.Errorf("create todo item: %w", err)
	}
	return t, nil
}

// Toggle flips an item's done state and returns the new value.
func (s *TodoStore) Toggle(userID, id uuid.UUID) (bool, error) {
	var done bool
	err := s.db.QueryRow(`
		UPDATE todo_items SET is_done = NOT is_done
		WHERE id = $1 AND user_id = $2
		RETURNING is_done
	`, id, userID).Scan(&done)
	if err == sql.ErrNoRows {
		return false, sql.ErrNoRows
	}
	if err != nil {
		return false, fmt.Errorf("toggle todo item: %w", err)
	}
	return done, nil
}

// Delete removes an item.
func (s *TodoStore) Delete(userID, id uuid.UUID) error {
	res, err := s.db.Exec(`
		DELETE FROM todo_items WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("delete todo item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
