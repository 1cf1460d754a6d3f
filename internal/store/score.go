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

// ScoreStore manages the daily self-assessment scores. One row per user
// per date; total_points is recomputed on every write.
type ScoreStore struct {
	db *sql.DB
}

// NewScoreStore returns a new ScoreStore.
func NewScoreStore(db *sql.DB) *ScoreStore {
	return &ScoreStore{db: db}
}

const scoreColumns = `id, user_id, date, do_points, dont_points, journal_point, learning_point, total_points, journal_text, learning_text, created_at, updated_at`

func scanScore(scanner interface{ Scan(...any) error }) (*models.DailyScore, error) {
	var d models.DailyScore
	err := scanner.Scan(
		&d.ID, &d.UserID, &d.Date, &d.DoPoints, &d.DontPoints,
		&d.JournalPoint, &d.LearningPoint, &d.TotalPoints,
		&d.JournalText, &d.LearningText, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByDate retrieves the score for a date. Returns nil if none exists.
func (s *ScoreStore) FindByDate(userID uuid.UUID, day time.Time) (*models.DailyScore, error) {
	row := s.db.QueryRow(`
		SELECT `+scoreColumns+` FROM daily_scores
		WHERE user_id = $1 AND date = $2
	`, userID, day.Format("2006-01-02"))
	d, err := scanScore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find daily score: %w", err)
	}
	return d, nil
}

// Upsert creates or replaces the score for a date. The total is computed
// from the parts before writing.
func (s *ScoreStore) Upsert(score *models.DailyScore) (*models.DailyScore, error) {
	score.CalculateTotal()
	row := s.db.QueryRow(`
		INSERT INTO daily_scores
			(user_id, date, do_points, dont_points, journal_point, learning_point,
			 total_points, journal_text, learning_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, date) DO UPDATE SET
			do_points = EXCLUDED.do_points,
			dont_points = EXCLUDED.dont_points,
			journal_point = EXCLUDED.journal_point,
			learning_point = EXCLUDED.learning_point,
			total_points = EXCLUDED.total_points,
			journal_text = EXCLUDED.journal_text,
			learning_text = EXCLUDED.learning_text,
			updated_at = NOW()
		RETURNING `+scoreColumns,
		score.UserID, score.Date.Format("2006-01-02"),
		score.DoPoints, score.DontPoints, score.JournalPoint, score.LearningPoint,
		score.TotalPoints, score.JournalText, score.LearningText,
	)
	d, err := scanScore(row)
	if err != nil {
		return nil, fmt.Errorf("upsert daily score: %w", err)
	}
	return d, nil
}

// Month returns all scores for a calendar month, for the color-coded
// calendar view.
func (s *ScoreStore) Month(userID uuid.UUID, year int, month time.Month) ([]models.DailyScore, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	rows, err := s.db.Query(`
		SELECT `+scoreColumns+` FROM daily_scores
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`, userID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("list month scores: %w", err)
	}
	defer rows.Close()

	var items []models.DailyScore
	for rows.Next() {
		d, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily score: %w", err)
		}
		items = append(items, *d)
	}
	return items, rows.Err()
}

// Average returns the mean total over the trailing n days, for the
// dashboard summary widget.
func (s *ScoreStore) Average(userID uuid.UUID, since time.Time) (float64, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRow(`
		SELECT AVG(total_points) FROM daily_scores
		WHERE user_id = $1 AND date >= $2
	`, userID, since.Format("2006-01-02")).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("average score: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}
