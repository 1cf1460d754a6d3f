// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scheduler runs the in-process background jobs: the per-minute
// reminder scan and the evening summary. Jobs run on a single goroutine;
// a tick that is still executing when the next one fires is skipped
// rather than overlapped.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"lifedash/internal/models"
	"lifedash/internal/notify"
	"lifedash/internal/store"
)

// summaryHour is the local hour at which the daily summary goes out.
const summaryHour = 21

// Scheduler drives the reminder and summary jobs off one ticker.
type Scheduler struct {
	reminders *store.ReminderStore
	habits    *store.HabitStore
	users     *store.UserStore

	mailer   notify.Notifier // nil when SMTP is not configured
	telegram notify.Notifier // nil when no bot token is set

	// telegramChatID is the chat reminders are posted to. The bot model
	// is single-chat; per-user chats would need their own column.
	telegramChatID string

	interval time.Duration
	running  atomic.Bool

	mu              sync.Mutex
	lastSummaryDate string

	stopCh chan struct{}
	done   chan struct{}
}

// New creates a Scheduler. Either notifier may be nil; reminders on a
// channel with no notifier are skipped with a warning.
func New(reminders *store.ReminderStore, habits *store.HabitStore, users *store.UserStore,
	mailer, telegram notify.Notifier, telegramChatID string) *Scheduler {
	return &Scheduler{
		reminders:      reminders,
		habits:         habits,
		users:          users,
		mailer:         mailer,
		telegram:       telegram,
		telegramChatID: telegramChatID,
		interval:       time.Minute,
		stopCh:         make(chan struct{}),
		done:           make(chan struct{}),
	}
}

// Start launches the ticker goroutine. It returns immediately.
func (s *Scheduler) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		slog.Info("scheduler started", "interval", s.interval.String())
		for {
			select {
			case now := <-ticker.C:
				s.tick(now)
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop shuts the scheduler down and waits for the goroutine to exit.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.done
	slog.Info("scheduler stopped")
}

// tick runs one scan. If the previous tick is somehow still running the
// new one is dropped, so a slow SMTP server cannot pile up goroutines.
func (s *Scheduler) tick(now time.Time) {
	if !s.running.CompareAndSwap(false, true) {
		slog.Warn("scheduler tick skipped, previous still running")
		return
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Second)
	defer cancel()

	s.scanReminders(ctx, now)
	s.maybeSendSummaries(ctx, now)
}

// scanReminders delivers every enabled reminder whose time matches the
// current minute.
func (s *Scheduler) scanReminders(ctx context.Context, now time.Time) {
	reminders, err := s.reminders.ListEnabled()
	if err != nil {
		slog.Error("reminder scan failed", "error", err)
		return
	}

	for _, r := range reminders {
		if !r.DueAt(now) {
			continue
		}
		if err := s.deliver(ctx, &r); err != nil {
			slog.Error("reminder delivery failed",
				"reminder", r.ID, "channel", r.Channel, "error", err)
		}
	}
}

// deliver sends one reminder over its configured channel.
func (s *Scheduler) deliver(ctx context.Context, r *models.Reminder) error {
	subject := "Habit reminder"
	body := "Time to check in on your habits."
	if r.HabitID != nil {
		habit, err := s.habits.FindByID(r.UserID, *r.HabitID)
		if err != nil {
			return err
		}
		if habit != nil {
			subject = "Reminder: " + habit.Name
			body = fmt.Sprintf("Don't forget %q today.", habit.Name)
		}
	}

	switch r.Channel {
	case models.ChannelEmail:
		if s.mailer == nil {
			slog.Warn("email reminder skipped, SMTP not configured", "reminder", r.ID)
			return nil
		}
		user, err := s.users.FindByID(r.UserID)
		if err != nil || user == nil {
			return fmt.Errorf("reminder user lookup: %w", err)
		}
		return s.mailer.Send(ctx, user.Email, subject, body)

	case models.ChannelTelegram:
		if s.telegram == nil || s.telegramChatID == "" {
			slog.Warn("telegram reminder skipped, bot not configured", "reminder", r.ID)
			return nil
		}
		return s.telegram.Send(ctx, s.telegramChatID, subject, body)
	}

	return fmt.Errorf("unknown reminder channel %q", r.Channel)
}

// maybeSendSummaries sends each user with reminders one evening recap of
// today's habit completion, once per day at the summary hour.
func (s *Scheduler) maybeSendSummaries(ctx context.Context, now time.Time) {
	if now.Hour() != summaryHour || now.Minute() != 0 {
		return
	}

	today := now.Format("2006-01-02")
	s.mu.Lock()
	if s.lastSummaryDate == today {
		s.mu.Unlock()
		return
	}
	s.lastSummaryDate = today
	s.mu.Unlock()

	reminders, err := s.reminders.ListEnabled()
	if err != nil {
		slog.Error("summary scan failed", "error", err)
		return
	}

	// One summary per user, regardless of how many reminders they have.
	seen := make(map[string]bool)
	for _, r := range reminders {
		key := r.UserID.String()
		if seen[key] {
			continue
		}
		seen[key] = true

		if err := s.sendSummary(ctx, &r, now); err != nil {
			slog.Error("summary delivery failed", "user", r.UserID, "error", err)
		}
	}
}

func (s *Scheduler) sendSummary(ctx context.Context, r *models.Reminder, now time.Time) error {
	habits, err := s.habits.List(r.UserID, now)
	if err != nil {
		return err
	}

	done := 0
	due := 0
	for _, h := range habits {
		if !h.DueOn(now.Weekday()) {
			continue
		}
		due++
		if h.DoneToday {
			done++
		}
	}

	subject := "Your day in review"
	body := fmt.Sprintf("You completed %d of %d habits today.", done, due)
	if due > 0 && done == due {
		body += " Full sweep, nice work."
	}

	switch r.Channel {
	case models.ChannelTelegram:
		if s.telegram != nil && s.telegramChatID != "" {
			return s.telegram.Send(ctx, s.telegramChatID, subject, body)
		}
	default:
		if s.mailer != nil {
			user, err := s.users.FindByID(r.UserID)
			if err != nil || user == nil {
				return fmt.Errorf("summary user lookup: %w", err)
			}
			return s.mailer.Send(ctx, user.Email, subject, body)
		}
	}
	return nil
}
