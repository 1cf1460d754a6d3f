// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lifedash/internal/models"
)

// HabitStore manages habits and their completion logs.
type HabitStore struct {
	db *sql.DB
}

// NewHabitStore returns a new HabitStore.
func NewHabitStore(db *sql.DB) *HabitStore {
	return &HabitStore{db: db}
}

const habitColumns = `id, user_id, name, frequency, custom_days, category, color, icon, start_date, end_date, created_at`

func scanHabit(scanner interface{ Scan(...any) error }) (*models.Habit, error) {
	var h models.Habit
	err := scanner.Scan(
		&h.ID, &h.UserID, &h.Name, &h.Frequency, &h.CustomDays, &h.Category,
		&h.Color, &h.Icon, &h.StartDate, &h.EndDate, &h.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// List returns all of a user's habits ordered by creation date, with the
// DoneToday flag set for the given day.
func (s *HabitStore) List(userID uuid.UUID, today time.Time) ([]models.Habit, error) {
	rows, err := s.db.Query(`
		SELECT h.id, h.user_id, h.name, h.frequency, h.custom_days, h.category,
		       h.color, h.icon, h.start_date, h.end_date, h.created_at,
		       EXISTS (
		           SELECT 1 FROM habit_logs l
		           WHERE l.habit_id = h.id AND l.log_date = $2 AND l.completed
		       ) AS done_today
		FROM habits h
		WHERE h.user_id = $1
		ORDER BY h.created_at ASC
	`, userID, today.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var items []models.Habit
	for rows.Next() {
		var h models.Habit
		err := rows.Scan(
			&h.ID, &h.UserID, &h.Name, &h.Frequency, &h.CustomDays, &h.Category,
			&h.Color, &h.Icon, &h.StartDate, &h.EndDate, &h.CreatedAt,
			&h.DoneToday,
		)
		if err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

// FindByID retrieves a habit owned by the user. Returns nil if not found.
func (s *HabitStore) FindByID(userID, id uuid.UUID) (*models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT `+habitColumns+` FROM habits WHERE id = $1 AND user_id = $2
	`, id, userID)
	h, err := scanHabit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find habit by id: %w", err)
	}
	return h, nil
}

// FindByName retrieves a habit owned by the user by its exact name.
// Returns nil if not found.
func (s *HabitStore) FindByName(userID uuid.UUID, name string) (*models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT `+habitColumns+` FROM habits WHERE user_id = $1 AND name = $2
	`, userID, name)
	h, err := scanHabit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find habit by name: %w", err)
	}
	return h, nil
}

// Create inserts a new habit and returns it.
func (s *HabitStore) Create(h *models.Habit) (*models.Habit, error) {
	row := s.db.QueryRow(`
		INSERT INTO habits (user_id, name, frequency, custom_days, category, color, icon, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+habitColumns,
		h.UserID, h.Name, h.Frequency, h.CustomDays, h.Category,
		h.Color, h.Icon, h.StartDate, h.EndDate,
	)
	result, err := scanHabit(row)
	if err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return result, nil
}

// Update modifies an existing habit.
func (s *HabitStore) Update(h *models.Habit) error {
	res, err := s.db.Exec(`
		UPDATE habits SET
			name = $1, frequency = $2, custom_days = $3, category = $4,
			color = $5, icon = $6, start_date = $7, end_date = $8
		WHERE id = $9 AND user_id = $10
	`, h.Name, h.Frequency, h.CustomDays, h.Category, h.Color, h.Icon,
		h.StartDate, h.EndDate, h.ID, h.UserID)
	if err != nil {
		return fmt.Errorf("update habit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a habit and, via cascade, its logs and reminders.
func (s *HabitStore) Delete(userID, id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM habits WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Toggle flips a habit's completion for the given date. If a log exists it
// is removed, otherwise one is created. Returns the new completed state.
func (s *HabitStore) Toggle(userID, habitID uuid.UUID, day time.Time) (bool, error) {
	date := day.Format("2006-01-02")
	res, err := s.db.Exec(`
		DELETE FROM habit_logs
		WHERE user_id = $1 AND habit_id = $2 AND log_date = $3
	`, userID, habitID, date)
	if err != nil {
		return false, fmt.Errorf("toggle habit log: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return false, nil
	}

	_, err = s.db.Exec(`
		INSERT INTO habit_logs (user_id, habit_id, log_date, completed)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (user_id, habit_id, log_date) DO NOTHING
	`, userID, habitID, date)
	if err != nil {
		return false, fmt.Errorf("insert habit log: %w", err)
	}
	return true, nil
}

// LogsBetween returns a user's habit logs within a date range inclusive,
// for rendering the calendar heat map.
func (s *HabitStore) LogsBetween(userID uuid.UUID, from, to time.Time) ([]models.HabitLog, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, habit_id, log_date, completed, created_at
		FROM habit_logs
		WHERE user_id = $1 AND log_date BETWEEN $2 AND $3
		ORDER BY log_date ASC
	`, userID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("list habit logs: %w", err)
	}
	defer rows.Close()

	var items []models.HabitLog
	for rows.Next() {
		var l models.HabitLog
		err := rows.Scan(&l.ID, &l.UserID, &l.HabitID, &l.LogDate, &l.Completed, &l.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan habit log: %w", err)
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

// Streak counts how many consecutive days ending today (or yesterday, if
// today is not yet logged) the habit was completed.
func (s *HabitStore) Streak(userID, habitID uuid.UUID, today time.Time) (int, error) {
	rows, err := s.db.Query(`
		SELECT log_date FROM habit_logs
		WHERE user_id = $1 AND habit_id = $2 AND completed
		ORDER BY log_date DESC
		LIMIT 366
	`, userID, habitID)
	if err != nil {
		return 0, fmt.Errorf("streak query: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return 0, fmt.Errorf("scan streak date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(dates) == 0 {
		return 0, nil
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	// A streak may still be alive if today has not been logged yet.
	first := dates[0]
	if !sameDay(first, day) {
		day = day.AddDate(0, 0, -1)
		if !sameDay(first, day) {
			return 0, nil
		}
	}

	streak := 0
	for _, d := range dates {
		if !sameDay(d, day) {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
