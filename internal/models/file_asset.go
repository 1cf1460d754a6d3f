// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileAsset is a file uploaded to S3-compatible object storage and attached
// to a page. Metadata lives in PostgreSQL; the bytes live in the bucket.
// FileAssets carry no deletion flag of their own. Visibility follows the
// parent page's trash state, and purging the page removes them.
type FileAsset struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	PageID       *uuid.UUID `json:"page_id,omitempty"`
	Filename     string     `json:"filename"`
	OriginalName string     `json:"original_name"`
	ContentType  string     `json:"content_type"`
	SizeBytes    int64      `json:"size_bytes"`
	S3Key        string     `json:"s3_key"`
	CreatedAt    time.Time  `json:"created_at"`
}

// IsImage returns true if the asset is an image type.
func (f *FileAsset) IsImage() bool {
	return strings.HasPrefix(f.ContentType, "image/")
}

// HumanSize returns a human-readable file size string.
func (f *FileAsset) HumanSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case f.SizeBytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(f.SizeBytes)/float64(mb))
	case f.SizeBytes >= kb:
		return fmt.Sprintf("%.0f KB", float64(f.SizeBytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", f.SizeBytes)
	}
}
