// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"lifedash/internal/drive"
	"lifedash/internal/middleware"
	"lifedash/internal/models"
	"lifedash/internal/render"
	"lifedash/internal/session"
	"lifedash/internal/store"
)

// exportLogWindow bounds how far back habit logs are included in exports.
const exportLogWindow = 2 * 365 * 24 * time.Hour

// exportPayload is the JSON document produced by Download and accepted
// (partially) by Upload.
type exportPayload struct {
	ExportedAt time.Time             `json:"exported_at"`
	Habits     []models.Habit        `json:"habits"`
	HabitLogs  []models.HabitLog     `json:"habit_logs"`
	Journal    []models.JournalEntry `json:"journal"`
	Todos      []models.TodoItem     `json:"todos"`
	Scores     []models.DailyScore   `json:"scores"`
	Categories []models.Category     `json:"categories"`
	Pages      []models.Page         `json:"pages"`
}

// Exports serves the data export and import surface.
type Exports struct {
	renderer   *render.Renderer
	sessions   *session.Store
	habits     *store.HabitStore
	journal    *store.JournalStore
	todos      *store.TodoStore
	scores     *store.ScoreStore
	categories *store.CategoryStore
	pages      *store.PageStore
	backup     *drive.Service // nil when Drive is not configured
}

// NewExports creates a new Exports handler group.
func NewExports(renderer *render.Renderer, sessions *session.Store,
	habits *store.HabitStore, journal *store.JournalStore, todos *store.TodoStore,
	scores *store.ScoreStore, categories *store.CategoryStore, pages *store.PageStore,
	backup *drive.Service) *Exports {
	return &Exports{
		renderer:   renderer,
		sessions:   sessions,
		habits:     habits,
		journal:    journal,
		todos:      todos,
		scores:     scores,
		categories: categories,
		pages:      pages,
		backup:     backup,
	}
}

// Index shows the export page.
func (e *Exports) Index(w http.ResponseWriter, r *http.Request) {
	e.renderer.Page(w, r, "export", &render.PageData{
		Title:   "Export",
		Section: "export",
		Data:    map[string]any{"DriveEnabled": e.backup != nil},
		Flashes: e.sessions.PopFlashes(r.Context(), r),
	})
}

// Download streams the user's full dataset as a JSON attachment.
func (e *Exports) Download(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	payload, err := e.collect(sess, time.Now())
	if err != nil {
		slog.Error("export failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	name := fmt.Sprintf("lifedash-export-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		slog.Error("encode export failed", "error", err)
	}
}

// ToDrive uploads a fresh export file to the connected Google Drive.
func (e *Exports) ToDrive(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	if e.backup == nil {
		http.Error(w, "Google Drive is not configured", http.StatusServiceUnavailable)
		return
	}
	if !e.backup.Connected(r.Context(), sess.UserID) {
		e.sessions.AddFlash(r.Context(), r, session.Flash{Type: "error", Message: "Connect Google Drive first."})
		http.Redirect(w, r, "/drive", http.StatusSeeOther)
		return
	}

	payload, err := e.collect(sess, time.Now())
	if err != nil {
		slog.Error("export failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := e.backup.BackupExport(r.Context(), sess.UserID, data); err != nil {
		slog.Error("drive export failed", "error", err)
		e.sessions.AddFlash(r.Context(), r, session.Flash{Type: "error", Message: "Drive upload failed."})
		http.Redirect(w, r, "/export", http.StatusSeeOther)
		return
	}

	e.sessions.AddFlash(r.Context(), r, session.Flash{Type: "success", Message: "Export uploaded to Google Drive."})
	http.Redirect(w, r, "/export", http.StatusSeeOther)
}

// Upload imports habits and journal entries from a previously exported
// file. Habits whose name already exists and journal entries whose date
// already has an entry are skipped, so re-importing the same file is a
// no-op.
func (e *Exports) Upload(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "File too large (max 25 MB)", http.StatusRequestEntityTooLarge)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var payload exportPayload
	if err := json.NewDecoder(file).Decode(&payload); err != nil {
		e.sessions.AddFlash(r.Context(), r, session.Flash{Type: "error", Message: "The file is not a valid export."})
		http.Redirect(w, r, "/export", http.StatusSeeOther)
		return
	}

	habitsAdded := 0
	for i := range payload.Habits {
		h := payload.Habits[i]
		existing, err := e.habits.FindByName(sess.UserID, h.Name)
		if err != nil {
			slog.Warn("import habit lookup failed", "name", h.Name, "error", err)
			continue
		}
		if existing != nil {
			continue
		}
		h.ID = uuid.Nil
		h.UserID = sess.UserID
		if h.Frequency == "" {
			h.Frequency = models.FrequencyDaily
		}
		if _, err := e.habits.Create(&h); err != nil {
			slog.Warn("import habit failed", "name", h.Name, "error", err)
			continue
		}
		habitsAdded++
	}

	entriesAdded := 0
	for i := range payload.Journal {
		entry := payload.Journal[i]
		existing, err := e.journal.FindByDate(sess.UserID, entry.EntryDate)
		if err != nil {
			slog.Warn("import journal lookup failed", "date", entry.EntryDate, "error", err)
			continue
		}
		if existing != nil {
			continue
		}
		if _, err := e.journal.Upsert(sess.UserID, entry.EntryDate, entry.Title, entry.Body); err != nil {
			slog.Warn("import journal entry failed", "date", entry.EntryDate, "error", err)
			continue
		}
		entriesAdded++
	}

	e.sessions.AddFlash(r.Context(), r, session.Flash{
		Type:    "success",
		Message: fmt.Sprintf("Imported %d habits and %d journal entries.", habitsAdded, entriesAdded),
	})
	http.Redirect(w, r, "/export", http.StatusSeeOther)
}

func (e *Exports) collect(sess *session.Data, now time.Time) (*exportPayload, error) {
	habits, err := e.habits.List(sess.UserID, now)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	logs, err := e.habits.LogsBetween(sess.UserID, now.Add(-exportLogWindow), now)
	if err != nil {
		return nil, fmt.Errorf("list habit logs: %w", err)
	}
	journal, err := e.journal.List(sess.UserID, 0)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	todos, err := e.todos.List(sess.UserID, models.TodoKindDo)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	donts, err := e.todos.List(sess.UserID, models.TodoKindDont)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	todos = append(todos, donts...)

	var scores []models.DailyScore
	for m := 0; m < 12; m++ {
		day := now.AddDate(0, -m, 0)
		monthScores, err := e.scores.Month(sess.UserID, day.Year(), day.Month())
		if err != nil {
			return nil, fmt.Errorf("list scores: %w", err)
		}
		scores = append(scores, monthScores...)
	}

	categories, err := e.categories.List(sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	var pages []models.Page
	for i := range categories {
		catPages, err := e.pages.ListByCategory(sess.UserID, categories[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list pages: %w", err)
		}
		pages = append(pages, catPages...)
	}

	return &exportPayload{
		ExportedAt: now,
		Habits:     habits,
		HabitLogs:  logs,
		Journal:    journal,
		Todos:      todos,
		Scores:     scores,
		Categories: categories,
		Pages:      pages,
	}, nil
}
