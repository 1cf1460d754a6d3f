// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"lifedash/internal/lifecycle"
	"lifedash/internal/middleware"
	"lifedash/internal/models"
	"lifedash/internal/store"
)

// API serves the /api/v1 JSON endpoints. It reuses the session cookie for
// authentication; responses are plain JSON with {"error": ...} bodies on
// failure.
type API struct {
	categories *store.CategoryStore
	pages      *store.PageStore
	habits     *store.HabitStore
	lifecycle  *lifecycle.Service
}

// NewAPI creates a new API handler group.
func NewAPI(categories *store.CategoryStore, pages *store.PageStore,
	habits *store.HabitStore, lc *lifecycle.Service) *API {
	return &API{
		categories: categories,
		pages:      pages,
		habits:     habits,
		lifecycle:  lc,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (a *API) writeLifecycleError(w http.ResponseWriter, err error) {
	if errors.Is(err, lifecycle.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	slog.Error("lifecycle operation failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func parseIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

type createCategoryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

func (req *createCategoryRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, maxTitleLen)),
		validation.Field(&req.Description, validation.Length(0, maxBodyLen)),
		validation.Field(&req.Color, validation.Length(0, 20)),
		validation.Field(&req.Icon, validation.Length(0, 50)),
	)
}

type createPageRequest struct {
	CategoryID uuid.UUID  `json:"category_id"`
	ParentID   *uuid.UUID `json:"parent_id"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
}

func (req *createPageRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.CategoryID, validation.Required),
		validation.Field(&req.Title, validation.Required, validation.Length(1, maxTitleLen)),
		validation.Field(&req.Body, validation.Length(0, maxBodyLen)),
	)
}

// ListCategories returns the user's active categories.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	categories, err := a.categories.List(sess.UserID)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// CreateCategory creates a category from a JSON body.
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	categorySlug, err := a.categories.UniqueSlug(sess.UserID, req.Title)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	created, err := a.categories.Create(&models.Category{
		UserID:      sess.UserID,
		Title:       req.Title,
		Slug:        categorySlug,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		slog.Error("create category failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListPages returns the active pages of one category.
func (a *API) ListPages(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	categoryID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	category, err := a.categories.FindByID(sess.UserID, categoryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if category == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	pages, err := a.pages.ListByCategory(sess.UserID, categoryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

// CreatePage creates a page from a JSON body.
func (a *API) CreatePage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req createPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	category, err := a.categories.FindByID(sess.UserID, req.CategoryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if category == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	if req.ParentID != nil {
		parent, err := a.pages.FindByID(sess.UserID, *req.ParentID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if parent == nil || parent.CategoryID != category.ID {
			writeError(w, http.StatusNotFound, "parent page not found")
			return
		}
	}

	pageSlug, err := a.pages.UniqueSlug(category.ID, req.Title)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	created, err := a.pages.Create(&models.Page{
		UserID:     sess.UserID,
		CategoryID: category.ID,
		ParentID:   req.ParentID,
		Title:      req.Title,
		Slug:       pageSlug,
		Body:       req.Body,
	})
	if err != nil {
		slog.Error("create page failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// DeleteCategory moves a category and its pages to the trash.
func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := a.lifecycle.SoftDeleteCategory(r.Context(), sess.UserID, id); err != nil {
		a.writeLifecycleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeletePage moves a page and its descendants to the trash.
func (a *API) DeletePage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := a.lifecycle.SoftDeletePage(r.Context(), sess.UserID, id); err != nil {
		a.writeLifecycleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTrash returns the trashed categories and pages as two lists,
// each newest deletion first.
func (a *API) ListTrash(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	categories, pages, err := a.lifecycle.Trash(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("list trash failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories, "pages": pages})
}

// RestoreCategory brings one trashed category back.
func (a *API) RestoreCategory(w http.ResponseWriter, r *http.Request) {
	a.trashOp(w, r, a.lifecycle.RestoreCategory)
}

// RestorePage brings one trashed page back.
func (a *API) RestorePage(w http.ResponseWriter, r *http.Request) {
	a.trashOp(w, r, a.lifecycle.RestorePage)
}

// PurgeCategory permanently deletes a trashed category.
func (a *API) PurgeCategory(w http.ResponseWriter, r *http.Request) {
	a.trashOp(w, r, a.lifecycle.PurgeCategory)
}

// PurgePage permanently deletes a trashed page.
func (a *API) PurgePage(w http.ResponseWriter, r *http.Request) {
	a.trashOp(w, r, a.lifecycle.PurgePage)
}

func (a *API) trashOp(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, userID, id uuid.UUID) error) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := op(r.Context(), sess.UserID, id); err != nil {
		a.writeLifecycleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListHabits returns the user's habits with their done-today state.
func (a *API) ListHabits(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	habits, err := a.habits.List(sess.UserID, time.Now())
	if err != nil {
		slog.Error("list habits failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"habits": habits})
}
