// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package web provides embedded static assets (CSS, JS) served at /static/.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree. HTMX is loaded from CDN
// in development and vendored into static/js/ for container builds.
//
//go:embed all:static
var StaticFS embed.FS
