// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyScore is the daily checklist result: up to four "do" points, four
// "don't" points, and one point each for journaling and noting a learning.
// One row exists per user and date.
type DailyScore struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Date          time.Time `json:"date"`
	DoPoints      int       `json:"do_points"`
	DontPoints    int       `json:"dont_points"`
	JournalPoint  int       `json:"journal_point"`
	LearningPoint int       `json:"learning_point"`
	TotalPoints   int       `json:"total_points"`
	JournalText   string    `json:"journal_text"`
	LearningText  string    `json:"learning_text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func clampPoints(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}

// CalculateTotal clamps each component to its range (do and don't 0-4,
// journal and learning 0-1), then recomputes and stores the total.
func (s *DailyScore) CalculateTotal() int {
	s.DoPoints = clampPoints(s.DoPoints, 4)
	s.DontPoints = clampPoints(s.DontPoints, 4)
	s.JournalPoint = clampPoints(s.JournalPoint, 1)
	s.LearningPoint = clampPoints(s.LearningPoint, 1)
	s.TotalPoints = s.DoPoints + s.DontPoints + s.JournalPoint + s.LearningPoint
	return s.TotalPoints
}

// Color returns the calendar cell color for the day's total.
func (s *DailyScore) Color() string {
	switch {
	case s.TotalPoints >= 7:
		return "green"
	case s.TotalPoints >= 4:
		return "yellow"
	default:
		return "red"
	}
}
