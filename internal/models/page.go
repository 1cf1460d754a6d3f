// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Page is a note inside a category. Pages can nest under other pages via
// ParentID, forming a tree walked by id (never by object reference).
// The slug is unique among the non-deleted pages of the same category.
type Page struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	CategoryID uuid.UUID  `json:"category_id"`
	ParentID   *uuid.UUID `json:"parent_id,omitempty"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Icon       string     `json:"icon"`
	Body       string     `json:"body"`
	IsDeleted  bool       `json:"is_deleted"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Virtual field populated by search queries, for building page links.
	CategorySlug string `json:"-"`
}
