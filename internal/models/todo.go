// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// TodoKind separates the "do" list from the "not to do" list.
type TodoKind string

const (
	TodoKindDo   TodoKind = "todo"
	TodoKindDont TodoKind = "not_todo"
)

// TodoItem is an entry on the user's do / not-to-do lists, ordered by Position.
type TodoItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Label     string    `json:"label"`
	Kind      TodoKind  `json:"kind"`
	IsDone    bool      `json:"is_done"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
