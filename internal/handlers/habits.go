// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lifedash/internal/middleware"
	"lifedash/internal/models"
	"lifedash/internal/render"
	"lifedash/internal/session"
	"lifedash/internal/store"
)

// Habits groups the habit tracking handlers.
type Habits struct {
	renderer  *render.Renderer
	sessions  *session.Store
	habits    *store.HabitStore
	reminders *store.ReminderStore
}

// NewHabits creates a new Habits handler group.
func NewHabits(renderer *render.Renderer, sessions *session.Store,
	habits *store.HabitStore, reminders *store.ReminderStore) *Habits {
	return &Habits{
		renderer:  renderer,
		sessions:  sessions,
		habits:    habits,
		reminders: reminders,
	}
}

// Index lists all habits with their streaks and today's state.
func (h *Habits) Index(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	now := userNow(sess)

	habits, err := h.habits.List(sess.UserID, now)
	if err != nil {
		slog.Error("list habits failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	for i := range habits {
		streak, err := h.habits.Streak(sess.UserID, habits[i].ID, now)
		if err == nil {
			habits[i].Streak = streak
		}
	}

	reminders, err := h.reminders.List(sess.UserID)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, r, "habits", &render.PageData{
		Title:   "Habits",
		Section: "habits",
		Data:    map[string]any{"Habits": habits, "Reminders": reminders},
		Flashes: h.sessions.PopFlashes(r.Context(), r),
	})
}

// Create handles the new-habit form.
func (h *Habits) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	name := strings.TrimSpace(r.FormValue("name"))
	if msg := validateTitled(name, ""); msg != "" {
		h.sessions.AddFlash(r.Context(), r, session.Flash{Type: "error", Message: msg})
		http.Redirect(w, r, "/habits", http.StatusSeeOther)
		return
	}

	frequency := models.HabitFrequency(r.FormValue("frequency"))
	switch frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyCustom:
	default:
		frequency = models.FrequencyDaily
	}

	habit := &models.Habit{
		UserID:    sess.UserID,
		Name:      name,
		Frequency: frequency,
		Color:     strings.TrimSpace(r.FormValue("color")),
	}
	if habit.Color == "" {
		habit.Color = "#0d6efd"
	}
	if days := strings.TrimSpace(r.FormValue("custom_days")); days != "" && frequency == models.FrequencyCustom {
		habit.CustomDays = &days
	}
	if cat := strings.TrimSpace(r.FormValue("category")); cat != "" {
		habit.Category = &cat
	}
	if icon := strings.TrimSpace(r.FormValue("icon")); icon != "" {
		habit.Icon = &icon
	}
	if raw := r.FormValue("start_date"); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			habit.StartDate = &d
		}
	}
	if raw := r.FormValue("end_date"); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			habit.EndDate = &d
		}
	}

	if _, err := h.habits.Create(habit); err != nil {
		slog.Error("create habit failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/habits", http.StatusSeeOther)
}

// Toggle flips a habit's completion for today. HTMX swaps the updated
// habit row back in.
func (h *Habits) Toggle(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	now := userNow(sess)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	habit, err := h.habits.FindByID(sess.UserID, id)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if habit == nil {
		http.NotFound(w, r)
		return
	}

	done, err := h.habits.Toggle(sess.UserID, id, now)
	if err != nil {
		slog.Error("toggle habit failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	habit.DoneToday = done
	if streak, err := h.habits.Streak(sess.UserID, id, now); err == nil {
		habit.Streak = streak
	}

	// Plain form posts (no JS) fall back to a full page reload.
	if r.Header.Get("HX-Request") != "true" {
		http.Redirect(w, r, "/habits", http.StatusSeeOther)
		return
	}

	h.renderer.Page(w, r, "habit_row", &render.PageData{
		Title: habit.Name,
		Data:  map[string]any{"Habit": habit},
	})
}

// Delete removes a habit with its logs and reminders.
func (h *Habits) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := h.habits.Delete(sess.UserID, id); err != nil {
		http.NotFound(w, r)
		return
	}

	h.sessions.AddFlash(r.Context(), r, session.Flash{Type: "success", Message: "Habit deleted."})
	http.Redirect(w, r, "/habits", http.StatusSeeOther)
}

// CreateReminder attaches a reminder to a habit.
func (h *Habits) CreateReminder(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	reminder := &models.Reminder{
		UserID:  sess.UserID,
		Channel: models.ReminderChannel(r.FormValue("channel")),
		Enabled: true,
	}
	switch reminder.Channel {
	case models.ChannelEmail, models.ChannelTelegram:
	default:
		reminder.Channel = models.ChannelEmail
	}

	if raw := r.FormValue("habit_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		habit, err := h.habits.FindByID(sess.UserID, id)
		if err != nil || habit == nil {
			http.NotFound(w, r)
			return
		}
		reminder.HabitID = &id
	}

	if when := strings.TrimSpace(r.FormValue("when_time")); when != "" {
		if _, err := time.Parse("15:04", when); err != nil {
			h.sessions.AddFlash(r.Context(), r, session.Flash{Type: "error", Message: "Reminder time must be HH:MM."})
			http.Redirect(w, r, "/habits", http.StatusSeeOther)
			return
		}
		reminder.WhenTime = &when
	}
	if days := strings.TrimSpace(r.FormValue("weekdays")); days != "" {
		reminder.Weekdays = &days
	}

	if _, err := h.reminders.Create(reminder); err != nil {
		slog.Error("create reminder failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/habits", http.StatusSeeOther)
}

// ToggleReminder enables or disables a reminder.
func (h *Habits) ToggleReminder(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	reminder, err := h.reminders.FindByID(sess.UserID, id)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if reminder == nil {
		http.NotFound(w, r)
		return
	}

	if err := h.reminders.SetEnabled(sess.UserID, id, !reminder.Enabled); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/habits", http.StatusSeeOther)
}

// DeleteReminder removes a reminder.
func (h *Habits) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := h.reminders.Delete(sess.UserID, id); err != nil {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/habits", http.StatusSeeOther)
}
