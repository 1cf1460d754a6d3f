// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lifedash/internal/drive"
	"lifedash/internal/middleware"
	"lifedash/internal/models"
	"lifedash/internal/render"
	"lifedash/internal/session"
	"lifedash/internal/store"
)

// Journal groups the daily journal and score calendar handlers.
type Journal struct {
	renderer *render.Renderer
	sessions *session.Store
	journal  *store.JournalStore
	scores   *store.ScoreStore
	backup   *drive.Service // nil when Drive is not configured
}

// NewJournal creates a new Journal handler group.
func NewJournal(renderer *render.Renderer, sessions *session.Store,
	journal *store.JournalStore, scores *store.ScoreStore, backup *drive.Service) *Journal {
	return &Journal{
		renderer: renderer,
		sessions: sessions,
		journal:  journal,
		scores:   scores,
		backup:   backup,
	}
}

// Index lists recent entries.
func (j *Journal) Index(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	entries, err := j.journal.List(sess.UserID, 30)
	if err != nil {
		slog.Error("list journal failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	j.renderer.Page(w, r, "journal", &render.PageData{
		Title:   "Journal",
		Section: "journal",
		Data: map[string]any{
			"Entries": entries,
			"Today":   userNow(sess).Format("2006-01-02"),
		},
		Flashes: j.sessions.PopFlashes(r.Context(), r),
	})
}

// Day renders the editor for one date's entry and score.
func (j *Journal) Day(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	day, ok := parseDay(w, chi.URLParam(r, "date"))
	if !ok {
		return
	}

	entry, err := j.journal.FindByDate(sess.UserID, day)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	score, err := j.scores.FindByDate(sess.UserID, day)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	j.renderer.Page(w, r, "journal_day", &render.PageData{
		Title:   "Journal " + day.Format("Jan 2, 2006"),
		Section: "journal",
		Data: map[string]any{
			"Date":  day.Format("2006-01-02"),
			"Entry": entry,
			"Score": score,
		},
		Flashes: j.sessions.PopFlashes(r.Context(), r),
	})
}

// Save creates or updates the entry for a date. When the account has
// Drive connected, the entry is backed up after saving.
func (j *Journal) Save(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	day, ok := parseDay(w, chi.URLParam(r, "date"))
	if !ok {
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	body := r.FormValue("body")
	if msg := validateTitled(title, body); msg != "" {
		j.sessions.AddFlash(r.Context(), r, session.Flash{Type: "error", Message: msg})
		http.Redirect(w, r, "/journal/"+day.Format("2006-01-02"), http.StatusSeeOther)
		return
	}

	entry, err := j.journal.Upsert(sess.UserID, day, title, body)
	if err != nil {
		slog.Error("save journal failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if j.backup != nil && j.backup.Connected(r.Context(), sess.UserID) {
		if err := j.backup.BackupJournalEntry(r.Context(), sess.UserID, entry); err != nil {
			slog.Warn("journal drive backup failed", "error", err)
		}
	}

	j.sessions.AddFlash(r.Context(), r, session.Flash{Type: "success", Message: "Entry saved."})
	http.Redirect(w, r, "/journal/"+day.Format("2006-01-02"), http.StatusSeeOther)
}

// Delete removes one entry.
func (j *Journal) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := j.journal.Delete(sess.UserID, id); err != nil {
		http.NotFound(w, r)
		return
	}

	j.sessions.AddFlash(r.Context(), r, session.Flash{Type: "success", Message: "Entry deleted."})
	http.Redirect(w, r, "/journal", http.StatusSeeOther)
}

// SaveScore writes the day's self-assessment points.
func (j *Journal) SaveScore(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	day, ok := parseDay(w, chi.URLParam(r, "date"))
	if !ok {
		return
	}

	score := &models.DailyScore{
		UserID:        sess.UserID,
		Date:          day,
		DoPoints:      formInt(r, "do_points"),
		DontPoints:    formInt(r, "dont_points"),
		JournalPoint:  formInt(r, "journal_point"),
		LearningPoint: formInt(r, "learning_point"),
		JournalText:   r.FormValue("journal_text"),
		LearningText:  r.FormValue("learning_text"),
	}

	if _, err := j.scores.Upsert(score); err != nil {
		slog.Error("save score failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	j.sessions.AddFlash(r.Context(), r, session.Flash{Type: "success", Message: "Score saved."})
	http.Redirect(w, r, "/journal/"+day.Format("2006-01-02"), http.StatusSeeOther)
}

// Calendar renders the month view with per-day score colors and entry markers.
func (j *Journal) Calendar(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	now := userNow(sess)

	year := now.Year()
	month := now.Month()
	if raw := r.URL.Query().Get("month"); raw != "" {
		if t, err := time.Parse("2006-01", raw); err == nil {
			year, month = t.Year(), t.Month()
		}
	}

	scores, err := j.scores.Month(sess.UserID, year, month)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	entryDates, err := j.journal.DatesWithEntries(sess.UserID, year, month)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	j.renderer.Page(w, r, "calendar", &render.PageData{
		Title:   "Calendar",
		Section: "journal",
		Data: map[string]any{
			"Month":      first.Format("January 2006"),
			"MonthParam": first.Format("2006-01"),
			"Prev":       first.AddDate(0, -1, 0).Format("2006-01"),
			"Next":       first.AddDate(0, 1, 0).Format("2006-01"),
			"Days":       buildCalendar(first, scores, entryDates),
		},
	})
}

// calendarDay is one cell of the month grid. Day 0 marks a leading blank
// cell before the first of the month.
type calendarDay struct {
	Day      int
	Date     string // YYYY-MM-DD link target
	Color    string // score color class, empty when no score
	Total    int
	HasScore bool
	HasEntry bool
}

func buildCalendar(first time.Time, scores []models.DailyScore, entryDates []time.Time) []calendarDay {
	scoreByDay := make(map[int]models.DailyScore, len(scores))
	for _, s := range scores {
		scoreByDay[s.Date.Day()] = s
	}
	entryByDay := make(map[int]bool, len(entryDates))
	for _, d := range entryDates {
		entryByDay[d.Day()] = true
	}

	var days []calendarDay
	for i := 0; i < int(first.Weekday()); i++ {
		days = append(days, calendarDay{})
	}
	last := first.AddDate(0, 1, -1).Day()
	for d := 1; d <= last; d++ {
		cell := calendarDay{
			Day:      d,
			Date:     time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			HasEntry: entryByDay[d],
		}
		if s, ok := scoreByDay[d]; ok {
			cell.HasScore = true
			cell.Total = s.TotalPoints
			cell.Color = s.Color()
		}
		days = append(days, cell)
	}
	return days
}

// parseDay parses a YYYY-MM-DD URL segment, writing a 400 on failure.
func parseDay(w http.ResponseWriter, raw string) (time.Time, bool) {
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return time.Time{}, false
	}
	return day, true
}

func formInt(r *http.Request, field string) int {
	n, _ := strconv.Atoi(r.FormValue(field))
	return n
}
