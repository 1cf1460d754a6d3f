// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lifedash/internal/models"
)

// DriveStore persists Google Drive OAuth tokens and backup records.
type DriveStore struct {
	db *sql.DB
}

// NewDriveStore returns a new DriveStore.
func NewDriveStore(db *sql.DB) *DriveStore {
	return &DriveStore{db: db}
}

const driveTokenColumns = `id, user_id, access_token, refresh_token, scopes, expiry, created_at, updated_at`

// Token retrieves the user's stored OAuth token. Returns nil if the user
// has not connected Drive.
func (s *DriveStore) Token(userID uuid.UUID) (*models.DriveToken, error) {
	var t models.DriveToken
	err := s.db.QueryRow(`
		SELECT `+driveTokenColumns+` FROM drive_tokens WHERE user_id = $1
	`, userID).Scan(
		&t.ID, &t.UserID, &t.AccessToken, &t.RefreshToken,
		&t.Scopes, &t.Expiry, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find drive token: %w", err)
	}
	return &t, nil
}

// SaveToken creates or replaces the user's OAuth token.
func (s *DriveStore) SaveToken(t *models.DriveToken) error {
	_, err := s.db.Exec(`
		INSERT INTO drive_tokens (user_id, access_token, refresh_token, scopes, expiry)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(EXCLUDED.refresh_token, drive_tokens.refresh_token),
			scopes = EXCLUDED.scopes,
			expiry = EXCLUDED.expiry,
			updated_at = NOW()
	`, t.UserID, t.AccessToken, t.RefreshToken, t.Scopes, t.Expiry)
	if err != nil {
		return fmt.Errorf("save drive token: %w", err)
	}
	return nil
}

// DeleteToken disconnects the user from Drive.
func (s *DriveStore) DeleteToken(userID uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM drive_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete drive token: %w", err)
	}
	return nil
}

const driveBackupColumns = `id, user_id, backup_type, file_id, file_name, mime_type, size_bytes, status, backup_date, last_synced`

func scanDriveBackup(scanner interface{ Scan(...any) error }) (*models.DriveBackup, error) {
	var b models.DriveBackup
	err := scanner.Scan(
		&b.ID, &b.UserID, &b.BackupType, &b.FileID, &b.FileName,
		&b.MimeType, &b.SizeBytes, &b.Status, &b.BackupDate, &b.LastSynced,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBackups returns a user's backup records, newest first.
func (s *DriveStore) ListBackups(userID uuid.UUID) ([]models.DriveBackup, error) {
	rows, err := s.db.Query(`
		SELECT `+driveBackupColumns+` FROM drive_backups
		WHERE user_id = $1 ORDER BY backup_date DESC, last_synced DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list drive backups: %w", err)
	}
	defer rows.Close()

	var items []models.DriveBackup
	for rows.Next() {
		b, err := scanDriveBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan drive backup: %w", err)
		}
		items = append(items, *b)
	}
	return items, rows.Err()
}

// RecordBackup upserts a backup row keyed by the Drive file ID. Re-syncing
// the same file bumps last_synced and size.
func (s *DriveStore) RecordBackup(b *models.DriveBackup) error {
	_, err := s.db.Exec(`
		INSERT INTO drive_backups
			(user_id, backup_type, file_id, file_name, mime_type, size_bytes, status, backup_date, last_synced)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (user_id, file_id) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			size_bytes = EXCLUDED.size_bytes,
			status = EXCLUDED.status,
			last_synced = NOW()
	`, b.UserID, b.BackupType, b.FileID, b.FileName, b.MimeType,
		b.SizeBytes, b.Status, b.BackupDate.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("record drive backup: %w", err)
	}
	return nil
}

// MarkBackupStatus updates a backup row's status, typically to error or
// deleted after a failed sync.
func (s *DriveStore) MarkBackupStatus(userID uuid.UUID, fileID string, status models.DriveBackupStatus) error {
	_, err := s.db.Exec(`
		UPDATE drive_backups SET status = $1, last_synced = $2
		WHERE user_id = $3 AND file_id = $4
	`, status, time.Now(), userID, fileID)
	if err != nil {
		return fmt.Errorf("mark drive backup status: %w", err)
	}
	return nil
}
