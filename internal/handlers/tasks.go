// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lifedash/internal/middleware"
	"lifedash/internal/models"
	"lifedash/internal/render"
	"lifedash/internal/session"
	"lifedash/internal/store"
)

// Tasks groups the to-do and not-to-do list handlers.
type Tasks struct {
	renderer *render.Renderer
	sessions *session.Store
	todos    *store.TodoStore
}

// NewTasks creates a new Tasks handler group.
func NewTasks(renderer *render.Renderer, sessions *session.Store, todos *store.TodoStore) *Tasks {
	return &Tasks{renderer: renderer, sessions: sessions, todos: todos}
}

// Create adds an item to one of the two lists.
func (t *Tasks) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	label := strings.TrimSpace(r.FormValue("label"))
	if msg := validateLabel(label); msg != "" {
		t.sessions.AddFlash(r.Context(), r, session.Flash{Type: "error", Message: msg})
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	kind := models.TodoKind(r.FormValue("kind"))
	if kind != models.TodoKindDo && kind != models.TodoKindDont {
		kind = models.TodoKindDo
	}

	if _, err := t.todos.Create(sess.UserID, label, kind); err != nil {
		slog.Error("create todo failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Toggle flips an item's done state.
func (t *Tasks) Toggle(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if _, err := t.todos.Toggle(sess.UserID, id); err != nil {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Delete removes an item.
func (t *Tasks) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := t.todos.Delete(sess.UserID, id); err != nil {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
