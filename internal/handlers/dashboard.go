// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"lifedash/internal/middleware"
	"lifedash/internal/models"
	"lifedash/internal/render"
	"lifedash/internal/session"
	"lifedash/internal/store"
)

// Dashboard renders the landing view: today's habits with streaks, the
// to-do lists, today's score, and the latest journal entries.
type Dashboard struct {
	renderer *render.Renderer
	sessions *session.Store
	habits   *store.HabitStore
	journal  *store.JournalStore
	todos    *store.TodoStore
	scores   *store.ScoreStore
	pages    *store.PageStore
}

// NewDashboard creates a new Dashboard handler group.
func NewDashboard(renderer *render.Renderer, sessions *session.Store,
	habits *store.HabitStore, journal *store.JournalStore,
	todos *store.TodoStore, scores *store.ScoreStore, pages *store.PageStore) *Dashboard {
	return &Dashboard{
		renderer: renderer,
		sessions: sessions,
		habits:   habits,
		journal:  journal,
		todos:    todos,
		scores:   scores,
		pages:    pages,
	}
}

// Home renders the dashboard.
func (d *Dashboard) Home(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	now := userNow(sess)

	habits, err := d.habits.List(sess.UserID, now)
	if err != nil {
		slog.Error("dashboard habits failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Only habits due today, each with its current streak.
	var due []models.Habit
	for _, h := range habits {
		if !h.DueOn(now.Weekday()) {
			continue
		}
		streak, err := d.habits.Streak(sess.UserID, h.ID, now)
		if err == nil {
			h.Streak = streak
		}
		due = append(due, h)
	}

	dos, err := d.todos.List(sess.UserID, models.TodoKindDo)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	donts, err := d.todos.List(sess.UserID, models.TodoKindDont)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	score, err := d.scores.FindByDate(sess.UserID, now)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	recent, err := d.journal.List(sess.UserID, 5)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	avg, _ := d.scores.Average(sess.UserID, now.AddDate(0, 0, -7))

	d.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"Habits":    due,
			"Todos":     dos,
			"NotTodos":  donts,
			"Score":     score,
			"Recent":    recent,
			"WeeklyAvg": avg,
			"Today":     now.Format("Monday, January 2"),
		},
		Flashes: d.sessions.PopFlashes(r.Context(), r),
	})
}

// Search matches the user's pages against a query string. HTMX renders
// the result list as a partial below the search box.
func (d *Dashboard) Search(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	query := r.URL.Query().Get("q")
	var results []models.Page
	if len(query) >= 2 {
		var err error
		results, err = d.pages.Search(sess.UserID, query, 20)
		if err != nil {
			slog.Error("search failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	d.renderer.Page(w, r, "search", &render.PageData{
		Title:   "Search",
		Section: "dashboard",
		Data:    map[string]any{"Query": query, "Results": results},
	})
}

// userNow returns the current time in the user's configured timezone,
// falling back to server time when the zone is missing or invalid.
func userNow(sess *session.Data) time.Time {
	if sess != nil && sess.Timezone != "" {
		if loc, err := time.LoadLocation(sess.Timezone); err == nil {
			return time.Now().In(loc)
		}
	}
	return time.Now()
}
