// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DriveToken holds a user's Google Drive OAuth credentials. One row per user.
type DriveToken struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	AccessToken  string     `json:"-"`
	RefreshToken *string    `json:"-"`
	Scopes       string     `json:"scopes"`
	Expiry       *time.Time `json:"expiry,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsExpired returns true if the access token has expired or never carried
// an expiry. A small skew margin avoids using a token about to lapse.
func (t *DriveToken) IsExpired() bool {
	if t.Expiry == nil {
		return true
	}
	return time.Now().Add(30 * time.Second).After(*t.Expiry)
}

// DriveBackupStatus tracks the remote state of a backed-up file.
type DriveBackupStatus string

const (
	BackupActive  DriveBackupStatus = "active"
	BackupDeleted DriveBackupStatus = "deleted"
	BackupError   DriveBackupStatus = "error"
)

// DriveBackup records one file uploaded to the user's Drive. FileID is the
// Drive-side identifier; at most one row exists per user and file.
type DriveBackup struct {
	ID         uuid.UUID         `json:"id"`
	UserID     uuid.UUID         `json:"user_id"`
	BackupType string            `json:"backup_type"` // "journal", "file", "export"
	FileID     string            `json:"file_id"`
	FileName   string            `json:"file_name"`
	MimeType   string            `json:"mime_type"`
	SizeBytes  int64             `json:"size_bytes"`
	Status     DriveBackupStatus `json:"status"`
	BackupDate time.Time         `json:"backup_date"`
	LastSynced time.Time         `json:"last_synced"`
}
