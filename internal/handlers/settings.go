// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"lifedash/internal/drive"
	"lifedash/internal/middleware"
	"lifedash/internal/render"
	"lifedash/internal/session"
	"lifedash/internal/store"
)

// Settings serves the account settings page.
type Settings struct {
	renderer *render.Renderer
	sessions *session.Store
	users    *store.UserStore
	backup   *drive.Service // nil when Drive is not configured
}

// NewSettings creates a new Settings handler group.
func NewSettings(renderer *render.Renderer, sessions *session.Store,
	users *store.UserStore, backup *drive.Service) *Settings {
	return &Settings{
		renderer: renderer,
		sessions: sessions,
		users:    users,
		backup:   backup,
	}
}

// Index shows the settings page.
func (s *Settings) Index(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	user, err := s.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("load user failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	driveConnected := s.backup != nil && s.backup.Connected(r.Context(), sess.UserID)

	s.renderer.Page(w, r, "settings", &render.PageData{
		Title:   "Settings",
		Section: "settings",
		Data: map[string]any{
			"User":           user,
			"TwoFAEnabled":   user.Has2FA(),
			"DriveEnabled":   s.backup != nil,
			"DriveConnected": driveConnected,
		},
		Flashes: s.sessions.PopFlashes(r.Context(), r),
	})
}

// UpdateTimezone saves the user's display timezone and refreshes the session.
func (s *Settings) UpdateTimezone(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	tz := r.FormValue("timezone")
	if _, err := time.LoadLocation(tz); err != nil {
		s.sessions.AddFlash(r.Context(), r, session.Flash{Type: "error", Message: "Unknown timezone."})
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}

	if err := s.users.UpdateTimezone(sess.UserID, tz); err != nil {
		slog.Error("update timezone failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sess.Timezone = tz
	if err := s.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("save session failed", "error", err)
	}

	s.sessions.AddFlash(r.Context(), r, session.Flash{Type: "success", Message: "Timezone updated."})
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}
