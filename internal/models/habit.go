// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HabitFrequency describes how often a habit is expected to be done.
type HabitFrequency string

const (
	FrequencyDaily  HabitFrequency = "daily"
	FrequencyWeekly HabitFrequency = "weekly"
	FrequencyCustom HabitFrequency = "custom"
)

// Habit is a recurring activity the user tracks day by day.
// CustomDays holds a comma-separated weekday list ("1,3,5", 0=Sunday)
// and only applies to the custom frequency.
type Habit struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	Name       string         `json:"name"`
	Frequency  HabitFrequency `json:"frequency"`
	CustomDays *string        `json:"custom_days,omitempty"`
	Category   *string        `json:"category,omitempty"`
	Color      string         `json:"color"`
	Icon       *string        `json:"icon,omitempty"`
	StartDate  *time.Time     `json:"start_date,omitempty"`
	EndDate    *time.Time     `json:"end_date,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`

	// Virtual fields populated by list queries.
	DoneToday bool `json:"done_today"`
	Streak    int  `json:"streak"`
}

// DueOn reports whether the habit is expected on the given weekday
// (0=Sunday). Daily and weekly habits are always due; custom habits are
// due only on their configured days.
func (h *Habit) DueOn(weekday time.Weekday) bool {
	if h.Frequency != FrequencyCustom || h.CustomDays == nil {
		return true
	}
	for _, part := range strings.Split(*h.CustomDays, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err == nil && d == int(weekday) {
			return true
		}
	}
	return false
}

// HabitLog records one completed day for a habit. At most one log exists
// per user, habit, and date.
type HabitLog struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	HabitID   uuid.UUID `json:"habit_id"`
	LogDate   time.Time `json:"log_date"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}
