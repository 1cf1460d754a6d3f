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

// JournalStore manages daily journal entries. Each user has at most one
// entry per calendar date.
type JournalStore struct {
	db *sql.DB
}

// NewJournalStore returns a new JournalStore.
func NewJournalStore(db *sql.DB) *JournalStore {
	return &JournalStore{db: db}
}

const journalColumns = `id, user_id, entry_date, title, body, created_at, updated_at`

func scanJournalEntry(scanner interface{ Scan(...any) error }) (*models.JournalEntry, error) {
	var e models.JournalEntry
	err := scanner.Scan(
		&e.ID, &e.UserID, &e.EntryDate, &e.Title, &e.Body, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns a user's journal entries, newest first. A limit of zero
// returns all of them.
func (s *JournalStore) List(userID uuid.UUID, limit int) ([]models.JournalEntry, error) {
	rows, err := s.db.Query(`
		SELECT `+journalColumns+` FROM journal_entries
		WHERE user_id = $1 ORDER BY entry_date DESC LIMIT NULLIF($2, 0)
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var items []models.JournalEntry
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		items = append(items, *e)
	}
	return items, rows.Err()
}

// FindByDate retrieves the entry for a given date. Returns nil if none exists.
func (s *JournalStore) FindByDate(userID uuid.UUID, day time.Time) (*models.JournalEntry, error) {
	row := s.db.QueryRow(`
		SELECT `+journalColumns+` FROM journal_entries
		WHERE user_id = $1 AND entry_date = $2
	`, userID, day.Format("2006-01-02"))
	e, err := scanJournalEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find journal entry by date: %w", err)
	}
	return e, nil
}

// FindByID retrieves an entry owned by the user. Returns nil if not found.
func (s *JournalStore) FindByID(userID, id uuid.UUID) (*models.JournalEntry, error) {
	row := s.db.QueryRow(`
		SELECT `+journalColumns+` FROM journal_entries
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	e, err := scanJournalEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find journal entry by id: %w", err)
	}
	return e, nil
}

// Upsert creates or replaces the entry for a date and returns it. Writing
// to an existing date overwrites title and body in place.
func (s *JournalStore) Upsert(userID uuid.UUID, day time.Time, title, body string) (*models.JournalEntry, error) {
	row := s.db.QueryRow(`
		INSERT INTO journal_entries (user_id, entry_date, title, body)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, entry_date)
		DO UPDATE SET title = EXCLUDED.title, body = EXCLUDED.body, updated_at = NOW()
		RETURNING `+journalColumns,
		userID, day.Format("2006-01-02"), title, body,
	)
	e, err := scanJournalEntry(row)
	if err != nil {
		return nil, fmt.Errorf("upsert journal entry: %w", err)
	}
	return e, nil
}

// Delete removes an entry by ID.
func (s *JournalStore) Delete(userID, id uuid.UUID) error {
	res, err := s.db.Exec(`
		DELETE FROM journal_entries WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DatesWithEntries returns the set of dates in a month that have an entry,
// for the calendar view.
func (s *JournalStore) DatesWithEntries(userID uuid.UUID, year int, month time.Month) ([]time.Time, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	rows, err := s.db.Query(`
		SELECT entry_date FROM journal_entries
		WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3
		ORDER BY entry_date
	`, userID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("list journal dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan journal date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
