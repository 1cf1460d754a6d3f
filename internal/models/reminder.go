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

// ReminderChannel is the delivery mechanism for a reminder.
type ReminderChannel string

const (
	ChannelEmail    ReminderChannel = "email"
	ChannelTelegram ReminderChannel = "telegram"
)

// Reminder schedules a notification for a habit. WhenTime holds the
// wall-clock minute ("HH:MM"); Weekdays optionally restricts delivery to a
// comma-separated weekday list ("0,1,2", 0=Sunday). Empty Weekdays means
// every day.
type Reminder struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	HabitID   *uuid.UUID      `json:"habit_id,omitempty"`
	Channel   ReminderChannel `json:"channel"`
	WhenTime  *string         `json:"when_time,omitempty"`
	Weekdays  *string         `json:"weekdays,omitempty"`
	Enabled   bool            `json:"enabled"`
	CreatedAt time.Time       `json:"created_at"`
}

// DueAt reports whether the reminder fires at the given instant. The check
// matches to the minute, so a scanner ticking once a minute fires each
// reminder at most once.
func (r *Reminder) DueAt(t time.Time) bool {
	if r.WhenTime == nil {
		return false
	}
	parts := strings.SplitN(*r.WhenTime, ":", 2)
	if len(parts) != 2 {
		return false
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return false
	}
	if t.Hour() != hour || t.Minute() != minute {
		return false
	}
	if r.Weekdays == nil || *r.Weekdays == "" {
		return true
	}
	for _, part := range strings.Split(*r.Weekdays, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err == nil && d == int(t.Weekday()) {
			return true
		}
	}
	return false
}
