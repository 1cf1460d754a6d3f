// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Week 1 — Trading Notes" → "week-1-trading-notes"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Unique derives a slug from title that does not collide with any active
// sibling. taken reports whether a candidate is already in use within the
// caller's scope (a user's categories, a category's pages); deleted rows
// must not count as taken, so their slugs become reusable. On collision an
// incrementing numeric suffix is appended: base, base-1, base-2, …
func Unique(title string, taken func(candidate string) (bool, error)) (string, error) {
	base := Generate(title)
	if base == "" {
		base = "untitled"
	}

	candidate := base
	for counter := 1; ; counter++ {
		inUse, err := taken(candidate)
		if err != nil {
			return "", fmt.Errorf("slug collision check: %w", err)
		}
		if !inUse {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}
