// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lifedash/internal/lifecycle"
	"lifedash/internal/middleware"
	"lifedash/internal/models"
	"lifedash/internal/render"
	"lifedash/internal/session"
	"lifedash/internal/store"
)

// Notes groups the category, page, and trash handlers. Soft-delete,
// restore, and purge all go through the lifecycle service; the stores
// only ever see active rows.
type Notes struct {
	renderer   *render.Renderer
	sessions   *session.Store
	categories *store.CategoryStore
	pages      *store.PageStore
	files      *store.FileAssetStore
	lifecycle  *lifecycle.Service
}

// NewNotes creates a new Notes handler group.
func NewNotes(renderer *render.Renderer, sessions *session.Store,
	categories *store.CategoryStore, pages *store.PageStore,
	files *store.FileAssetStore, lc *lifecycle.Service) *Notes {
	return &Notes{
		renderer:   renderer,
		sessions:   sessions,
		categories: categories,
		pages:      pages,
		files:      files,
		lifecycle:  lc,
	}
}

// Index lists the user's categories.
func (n *Notes) Index(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	cats, err := n.categories.List(sess.UserID)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	n.renderer.Page(w, r, "notes_index", &render.PageData{
		Title:   "Notes",
		Section: "notes",
		Data:    map[string]any{"Categories": cats},
		Flashes: n.sessions.PopFlashes(r.Context(), r),
	})
}

// CreateCategory handles the new-category form.
func (n *Notes) CreateCategory(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	title := strings.TrimSpace(r.FormValue("title"))
	if msg := validateTitled(title, ""); msg != "" {
		n.sessions.AddFlash(r.Context(), r, session.Flash{Type: "error", Message: msg})
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}

	catSlug, err := n.categories.UniqueSlug(sess.UserID, title)
	if err != nil {
		slog.Error("category slug failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	cat := &models.Category{
		UserID:      sess.UserID,
		Title:       title,
		Slug:        catSlug,
		Description: strings.TrimSpace(r.FormValue("description")),
		Icon:        strings.TrimSpace(r.FormValue("icon")),
		Color:       strings.TrimSpace(r.FormValue("color")),
	}
	created, err := n.categories.Create(cat)
	if err != nil {
		slog.Error("create category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/notes/"+created.Slug, http.StatusSeeOther)
}

// ShowCategory renders a category with its page tree.
func (n *Notes) ShowCategory(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	cat, err := n.categories.FindBySlug(sess.UserID, chi.URLParam(r, "categorySlug"))
	if err != nil {
		slog.Error("find category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if cat == nil {
		http.NotFound(w, r)
		return
	}

	pages, err := n.pages.ListByCategory(sess.UserID, cat.ID)
	if err != nil {
		slog.Error("list pages failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	n.renderer.Page(w, r, "notes_category", &render.PageData{
		Title:   cat.Title,
		Section: "notes",
		Data:    map[string]any{"Category": cat, "Pages": pages},
		Flashes: n.sessions.PopFlashes(r.Context(), r),
	})
}

// UpdateCategory handles the edit form. A changed title reassigns the
// slug, so the redirect targets the new location.
func (n *Notes) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	cat, err := n.categories.FindBySlug(sess.UserID, chi.URLParam(r, "categorySlug"))
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if cat == nil {
		http.NotFound(w, r)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if msg := validateTitled(title, ""); msg != "" {
		n.sessions.AddFlash(r.Context(), r, session.Flash{Type: "error", Message: msg})
		http.Redirect(w, r, "/notes/"+cat.Slug, http.StatusSeeOther)
		return
	}

	if title != cat.Title {
		newSlug, err := n.categories.UniqueSlug(sess.UserID, title)
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		cat.Slug = newSlug
	}
	cat.Title = title
	cat.Description = strings.TrimSpace(r.FormValue("description"))
	cat.Icon = strings.TrimSpace(r.FormValue("icon"))
	cat.Color = strings.TrimSpace(r.FormValue("color"))

	if err := n.categories.Update(cat); err != nil {
		slog.Error("update category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/notes/"+cat.Slug, http.StatusSeeOther)
}

// DeleteCategory moves a category and all its pages to the trash.
func (n *Notes) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	cat, err := n.categories.FindBySlug(sess.UserID, chi.URLParam(r, "categorySlug"))
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if cat == nil {
		http.NotFound(w, r)
		return
	}

	if err := n.lifecycle.SoftDeleteCategory(r.Context(), sess.UserID, cat.ID); err != nil {
		n.lifecycleError(w, err)
		return
	}

	n.sessions.AddFlash(r.Context(), r, session.Flash{Type: "success", Message: "Category moved to trash."})
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

// CreatePage handles the new-page form within a category. An optional
// parent_id nests the page under another one.
func (n *Notes) CreatePage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	cat, err := n.categories.FindBySlug(sess.UserID, chi.URLParam(r, "categorySlug"))
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if cat == nil {
		http.NotFound(w, r)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	body := r.FormValue("body")
	if msg := validateTitled(title, body); msg != "" {
		n.sessions.AddFlash(r.Context(), r, session.Flash{Type: "error", Message: msg})
		http.Redirect(w, r, "/notes/"+cat.Slug, http.StatusSeeOther)
		return
	}

	var parentID *uuid.UUID
	if raw := r.FormValue("parent_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		// The parent must be an active page of the same category.
		parent, err := n.pages.FindByID(sess.UserID, id)
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if parent == nil || parent.CategoryID != cat.ID {
			http.NotFound(w, r)
			return
		}
		parentID = &id
	}

	pageSlug, err := n.pages.UniqueSlug(cat.ID, title)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page := &models.Page{
		UserID:     sess.UserID,
		CategoryID: cat.ID,
		ParentID:   parentID,
		Title:      title,
		Slug:       pageSlug,
		Body:       body,
	}
	created, err := n.pages.Create(page)
	if err != nil {
		slog.Error("create page failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/notes/"+cat.Slug+"/"+created.Slug, http.StatusSeeOther)
}

// ShowPage renders a page with its children and attachments.
func (n *Notes) ShowPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	cat, page, ok := n.resolvePage(w, r)
	if !ok {
		return
	}

	children, err := n.pages.ListChildren(sess.UserID, page.ID)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	attachments, err := n.files.ListByPage(sess.UserID, page.ID)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	n.renderer.Page(w, r, "notes_page", &render.PageData{
		Title:   page.Title,
		Section: "notes",
		Data: map[string]any{
			"Category":    cat,
			"Page":        page,
			"Children":    children,
			"Attachments": attachments,
		},
		Flashes: n.sessions.PopFlashes(r.Context(), r),
	})
}

// UpdatePage handles the page edit form. A title change reassigns the
// slug and the redirect follows it.
func (n *Notes) UpdatePage(w http.ResponseWriter, r *http.Request) {
	cat, page, ok := n.resolvePage(w, r)
	if !ok {
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	body := r.FormValue("body")
	if msg := validateTitled(title, body); msg != "" {
		n.sessions.AddFlash(r.Context(), r, session.Flash{Type: "error", Message: msg})
		http.Redirect(w, r, "/notes/"+cat.Slug+"/"+page.Slug, http.StatusSeeOther)
		return
	}

	if title != page.Title {
		newSlug, err := n.pages.UniqueSlug(cat.ID, title)
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		page.Slug = newSlug
	}
	page.Title = title
	page.Body = body

	if err := n.pages.Update(page); err != nil {
		slog.Error("update page failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/notes/"+cat.Slug+"/"+page.Slug, http.StatusSeeOther)
}

// DeletePage moves a page and its descendants to the trash.
func (n *Notes) DeletePage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	cat, page, ok := n.resolvePage(w, r)
	if !ok {
		return
	}

	if err := n.lifecycle.SoftDeletePage(r.Context(), sess.UserID, page.ID); err != nil {
		n.lifecycleError(w, err)
		return
	}

	n.sessions.AddFlash(r.Context(), r, session.Flash{Type: "success", Message: "Page moved to trash."})
	http.Redirect(w, r, "/notes/"+cat.Slug, http.StatusSeeOther)
}

// resolvePage loads an active category+page pair from the URL, writing
// the error response itself when either is missing.
func (n *Notes) resolvePage(w http.ResponseWriter, r *http.Request) (*models.Category, *models.Page, bool) {
	sess := middleware.SessionFromCtx(r.Context())

	cat, err := n.categories.FindBySlug(sess.UserID, chi.URLParam(r, "categorySlug"))
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, nil, false
	}
	if cat == nil {
		http.NotFound(w, r)
		return nil, nil, false
	}

	page, err := n.pages.FindBySlug(sess.UserID, cat.ID, chi.URLParam(r, "pageSlug"))
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, nil, false
	}
	if page == nil {
		http.NotFound(w, r)
		return nil, nil, false
	}

	return cat, page, true
}

// Trash lists everything the user has soft-deleted.
func (n *Notes) Trash(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	categories, pages, err := n.lifecycle.Trash(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("list trash failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	n.renderer.Page(w, r, "trash", &render.PageData{
		Title:   "Trash",
		Section: "trash",
		Data:    map[string]any{"Categories": categories, "Pages": pages},
		Flashes: n.sessions.PopFlashes(r.Context(), r),
	})
}

// RestoreCategory brings one category back from the trash.
func (n *Notes) RestoreCategory(w http.ResponseWriter, r *http.Request) {
	n.trashAction(w, r, n.lifecycle.RestoreCategory, "Category restored.")
}

// RestorePage brings one page back from the trash.
func (n *Notes) RestorePage(w http.ResponseWriter, r *http.Request) {
	n.trashAction(w, r, n.lifecycle.RestorePage, "Page restored.")
}

// PurgeCategory permanently deletes a trashed category.
func (n *Notes) PurgeCategory(w http.ResponseWriter, r *http.Request) {
	n.trashAction(w, r, n.lifecycle.PurgeCategory, "Category permanently deleted.")
}

// PurgePage permanently deletes a trashed page.
func (n *Notes) PurgePage(w http.ResponseWriter, r *http.Request) {
	n.trashAction(w, r, n.lifecycle.PurgePage, "Page permanently deleted.")
}

// trashAction runs one restore/purge operation identified by the id URL
// parameter and redirects back to the trash view.
func (n *Notes) trashAction(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, userID, id uuid.UUID) error, message string) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := op(r.Context(), sess.UserID, id); err != nil {
		n.lifecycleError(w, err)
		return
	}

	n.sessions.AddFlash(r.Context(), r, session.Flash{Type: "success", Message: message})
	http.Redirect(w, r, "/trash", http.StatusSeeOther)
}

// lifecycleError maps service errors onto HTTP responses. Wrong owner,
// wrong state, and plain missing all come back as 404.
func (n *Notes) lifecycleError(w http.ResponseWriter, err error) {
	if errors.Is(err, lifecycle.ErrNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	slog.Error("lifecycle operation failed", "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
