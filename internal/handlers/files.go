// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lifedash/internal/middleware"
	"lifedash/internal/models"
	"lifedash/internal/render"
	"lifedash/internal/session"
	"lifedash/internal/storage"
	"lifedash/internal/store"
)

// allowedExtensions lists the file types accepted by Upload.
var allowedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".pdf": true, ".doc": true, ".docx": true,
	".ppt": true, ".pptx": true, ".txt": true,
}

// allowedFile reports whether the filename carries an accepted extension.
func allowedFile(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Files groups the upload handlers. Bytes go to S3; rows go to the
// file_assets table. When storage is not configured the routes return 503.
type Files struct {
	renderer *render.Renderer
	sessions *session.Store
	files    *store.FileAssetStore
	pages    *store.PageStore
	storage  *storage.Client // nil when S3 is not configured
}

// NewFiles creates a new Files handler group.
func NewFiles(renderer *render.Renderer, sessions *session.Store,
	files *store.FileAssetStore, pages *store.PageStore, s3 *storage.Client) *Files {
	return &Files{
		renderer: renderer,
		sessions: sessions,
		files:    files,
		pages:    pages,
		storage:  s3,
	}
}

// Index lists the user's uploads.
func (f *Files) Index(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	assets, err := f.files.List(sess.UserID)
	if err != nil {
		slog.Error("list files failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	f.renderer.Page(w, r, "files", &render.PageData{
		Title:   "Files",
		Section: "files",
		Data:    map[string]any{"Files": assets, "StorageEnabled": f.storage != nil},
		Flashes: f.sessions.PopFlashes(r.Context(), r),
	})
}

// Upload stores a multipart upload in S3 and records its metadata. An
// optional page_id field attaches the file to a note page.
func (f *Files) Upload(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	if f.storage == nil {
		http.Error(w, "File storage is not configured", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "File too large (max 25 MB)", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !allowedFile(header.Filename) {
		f.sessions.AddFlash(r.Context(), r, session.Flash{Type: "error", Message: "File type not allowed."})
		http.Redirect(w, r, redirectTarget(r), http.StatusSeeOther)
		return
	}

	var pageID *uuid.UUID
	if raw := r.FormValue("page_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		page, err := f.pages.FindByID(sess.UserID, id)
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if page == nil {
			http.NotFound(w, r)
			return
		}
		pageID = &id
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.ObjectKey(sess.UserID, header.Filename)
	if err := f.storage.Upload(r.Context(), key, contentType, file, header.Size); err != nil {
		slog.Error("s3 upload failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	asset := &models.FileAsset{
		UserID:       sess.UserID,
		PageID:       pageID,
		Filename:     key,
		OriginalName: header.Filename,
		ContentType:  contentType,
		SizeBytes:    header.Size,
		S3Key:        key,
	}
	if _, err := f.files.Create(asset); err != nil {
		slog.Error("record file failed", "error", err)
		// Don't leave orphan bytes behind the failed row.
		f.storage.Delete(r.Context(), key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	f.sessions.AddFlash(r.Context(), r, session.Flash{Type: "success", Message: "File uploaded."})
	http.Redirect(w, r, redirectTarget(r), http.StatusSeeOther)
}

// Download redirects to a short-lived pre-signed S3 URL.
func (f *Files) Download(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	if f.storage == nil {
		http.Error(w, "File storage is not configured", http.StatusServiceUnavailable)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	asset, err := f.files.FindByID(sess.UserID, id)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if asset == nil {
		http.NotFound(w, r)
		return
	}

	url, err := f.storage.PresignedURL(r.Context(), asset.S3Key, 15*time.Minute)
	if err != nil {
		slog.Error("presign failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Delete removes a file's row and its stored bytes.
func (f *Files) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	asset, err := f.files.FindByID(sess.UserID, id)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if asset == nil {
		http.NotFound(w, r)
		return
	}

	if err := f.files.Delete(sess.UserID, id); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if f.storage != nil {
		if err := f.storage.Delete(r.Context(), asset.S3Key); err != nil {
			slog.Warn("s3 delete failed", "key", asset.S3Key, "error", err)
		}
	}

	f.sessions.AddFlash(r.Context(), r, session.Flash{Type: "success", Message: "File deleted."})
	http.Redirect(w, r, redirectTarget(r), http.StatusSeeOther)
}

// redirectTarget sends uploads attached from a note page back there, and
// everything else to the files index.
func redirectTarget(r *http.Request) string {
	if ref := r.FormValue("redirect"); ref != "" && ref[0] == '/' {
		return ref
	}
	return "/files"
}
