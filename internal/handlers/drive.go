// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"

	"lifedash/internal/drive"
	"lifedash/internal/middleware"
	"lifedash/internal/render"
	"lifedash/internal/session"
	"lifedash/internal/store"
)

// Drive handles the Google Drive OAuth flow and the backups page.
type Drive struct {
	renderer *render.Renderer
	sessions *session.Store
	backup   *drive.Service
	tokens   *store.DriveStore
}

// NewDrive creates a new Drive handler group.
func NewDrive(renderer *render.Renderer, sessions *session.Store,
	backup *drive.Service, tokens *store.DriveStore) *Drive {
	return &Drive{
		renderer: renderer,
		sessions: sessions,
		backup:   backup,
		tokens:   tokens,
	}
}

// Index shows the connection status and past backups.
func (d *Drive) Index(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	connected := d.backup != nil && d.backup.Connected(r.Context(), sess.UserID)

	var backups any
	if connected {
		list, err := d.tokens.ListBackups(sess.UserID)
		if err != nil {
			slog.Error("list backups failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		backups = list
	}

	d.renderer.Page(w, r, "drive", &render.PageData{
		Title:   "Google Drive",
		Section: "drive",
		Data: map[string]any{
			"Configured": d.backup != nil,
			"Connected":  connected,
			"Backups":    backups,
		},
		Flashes: d.sessions.PopFlashes(r.Context(), r),
	})
}

// Connect starts the OAuth consent flow. The state nonce is kept in the
// session and checked on the way back.
func (d *Drive) Connect(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	if d.backup == nil {
		http.Error(w, "Google Drive is not configured", http.StatusServiceUnavailable)
		return
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	state := hex.EncodeToString(buf)

	sess.DriveState = state
	if err := d.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("save session failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, d.backup.Client().AuthURL(state), http.StatusSeeOther)
}

// Callback completes the OAuth flow.
func (d *Drive) Callback(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	if d.backup == nil {
		http.Error(w, "Google Drive is not configured", http.StatusServiceUnavailable)
		return
	}

	state := r.URL.Query().Get("state")
	if sess.DriveState == "" ||
		subtle.ConstantTimeCompare([]byte(state), []byte(sess.DriveState)) != 1 {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}
	sess.DriveState = ""
	if err := d.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("save session failed", "error", err)
	}

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		d.sessions.AddFlash(r.Context(), r, session.Flash{Type: "error", Message: "Google Drive access was denied."})
		http.Redirect(w, r, "/drive", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	tok, err := d.backup.Client().Exchange(r.Context(), code)
	if err != nil {
		slog.Error("oauth exchange failed", "error", err)
		d.sessions.AddFlash(r.Context(), r, session.Flash{Type: "error", Message: "Could not connect Google Drive."})
		http.Redirect(w, r, "/drive", http.StatusSeeOther)
		return
	}

	if err := d.backup.SaveExchangedToken(sess.UserID, tok); err != nil {
		slog.Error("save drive token failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	d.sessions.AddFlash(r.Context(), r, session.Flash{Type: "success", Message: "Google Drive connected."})
	http.Redirect(w, r, "/drive", http.StatusSeeOther)
}

// Disconnect drops the stored token. Files already uploaded stay on Drive.
func (d *Drive) Disconnect(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	if d.backup == nil {
		http.Error(w, "Google Drive is not configured", http.StatusServiceUnavailable)
		return
	}

	if err := d.backup.Disconnect(r.Context(), sess.UserID); err != nil {
		slog.Error("drive disconnect failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	d.sessions.AddFlash(r.Context(), r, session.Flash{Type: "success", Message: "Google Drive disconnected."})
	http.Redirect(w, r, "/drive", http.StatusSeeOther)
}
