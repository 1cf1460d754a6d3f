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

// ReminderStore manages scheduled habit reminders.
type ReminderStore struct {
	db *sql.DB
}

// NewReminderStore returns a new ReminderStore.
func NewReminderStore(db *sql.DB) *ReminderStore {
	return &ReminderStore{db: db}
}

const reminderColumns = `id, user_id, habit_id, channel, when_time, weekdays, enabled, created_at`

func scanReminder(scanner interface{ Scan(...any) error }) (*models.Reminder, error) {
	var r models.Reminder
	err := scanner.Scan(
		&r.ID, &r.UserID, &r.HabitID, &r.Channel, &r.WhenTime,
		&r.Weekdays, &r.Enabled, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// List returns a user's reminders ordered by creation date.
func (s *ReminderStore) List(userID uuid.UUID) ([]models.Reminder, error) {
	rows, err := s.db.Query(`
		SELECT `+reminderColumns+` FROM reminders
		WHERE user_id = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()
	return collectReminders(rows)
}

// ListEnabled returns every enabled reminder across all users. The
// scheduler calls this once a minute.
func (s *ReminderStore) ListEnabled() ([]models.Reminder, error) {
	rows, err := s.db.Query(`
		SELECT ` + reminderColumns + ` FROM reminders WHERE enabled = TRUE
	`)
	if err != nil {
		return nil, fmt.Errorf("list enabled reminders: %w", err)
	}
	defer rows.Close()
	return collectReminders(rows)
}

func collectReminders(rows *sql.Rows) ([]models.Reminder, error) {
	var items []models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		items = append(items, *r)
	}
	return items, rows.Err()
}

// FindByID retrieves a reminder owned by the user. Returns nil if not found.
func (s *ReminderStore) FindByID(userID, id uuid.UUID) (*models.Reminder, error) {
	row := s.db.QueryRow(`
		SELECT `+reminderColumns+` FROM reminders
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find reminder by id: %w", err)
	}
	return r, nil
}

// Create inserts a new reminder and returns it.
func (s *ReminderStore) Create(r *models.Reminder) (*models.Reminder, error) {
	row := s.db.QueryRow(`
		INSERT INTO reminders (user_id, habit_id, channel, when_time, weekdays, enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+reminderColumns,
		r.UserID, r.HabitID, r.Channel, r.WhenTime, r.Weekdays, r.Enabled,
	)
	result, err := scanReminder(row)
	if err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}
	return result, nil
}

// SetEnabled turns a reminder on or off.
func (s *ReminderStore) SetEnabled(userID, id uuid.UUID, enabled bool) error {
	res, err := s.db.Exec(`
		UPDATE reminders SET enabled = $1 WHERE id = $2 AND user_id = $3
	`, enabled, id, userID)
	if err != nil {
		return fmt.Errorf("set reminder enabled: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a reminder.
func (s *ReminderStore) Delete(userID, id uuid.UUID) error {
	res, err := s.db.Exec(`
		DELETE FROM reminders WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
