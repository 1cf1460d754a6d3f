// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lifedash/internal/models"
)

// FileAssetStore manages uploaded file metadata. The bytes themselves live
// in S3; rows here only track ownership, the object key and display info.
// File assets have no soft-delete state of their own. A file attached to a
// trashed page disappears with the page and comes back on restore.
type FileAssetStore struct {
	db *sql.DB
}

// NewFileAssetStore returns a new FileAssetStore.
func NewFileAssetStore(db *sql.DB) *FileAssetStore {
	return &FileAssetStore{db: db}
}

const fileAssetColumns = `id, user_id, page_id, filename, original_name, content_type, size_bytes, s3_key, created_at`

func scanFileAsset(scanner interface{ Scan(...any) error }) (*models.FileAsset, error) {
	var f models.FileAsset
	err := scanner.Scan(
		&f.ID, &f.UserID, &f.PageID, &f.Filename, &f.OriginalName,
		&f.ContentType, &f.SizeBytes, &f.S3Key, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns all of a user's file assets, newest first.
func (s *FileAssetStore) List(userID uuid.UUID) ([]models.FileAsset, error) {
	rows, err := s.db.Query(`
		SELECT `+fileAssetColumns+` FROM file_assets
		WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list file assets: %w", err)
	}
	defer rows.Close()
	return collectFileAssets(rows)
}

// ListByPage returns the file assets attached to a page.
func (s *FileAssetStore) ListByPage(userID, pageID uuid.UUID) ([]models.FileAsset, error) {
	rows, err := s.db.Query(`
		SELECT `+fileAssetColumns+` FROM file_assets
		WHERE user_id = $1 AND page_id = $2 ORDER BY created_at DESC
	`, userID, pageID)
	if err != nil {
		return nil, fmt.Errorf("list page file assets: %w", err)
	}
	defer rows.Close()
	return collectFileAssets(rows)
}

func collectFileAssets(rows *sql.Rows) ([]models.FileAsset, error) {
	var items []models.FileAsset
	for rows.Next() {
		f, err := scanFileAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file asset: %w", err)
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

// FindByID retrieves a file asset owned by the user. Returns nil if not found.
func (s *FileAssetStore) FindByID(userID, id uuid.UUID) (*models.FileAsset, error) {
	row := s.db.QueryRow(`
		SELECT `+fileAssetColumns+` FROM file_assets
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	f, err := scanFileAsset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find file asset by id: %w", err)
	}
	return f, nil
}

// Create inserts file metadata after a successful upload and returns it.
func (s *FileAssetStore) Create(f *models.FileAsset) (*models.FileAsset, error) {
	row := s.db.QueryRow(`
		INSERT INTO file_assets (user_id, page_id, filename, original_name, content_type, size_bytes, s3_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+fileAssetColumns,
		f.UserID, f.PageID, f.Filename, f.OriginalName, f.ContentType, f.SizeBytes, f.S3Key,
	)
	result, err := scanFileAsset(row)
	if err != nil {
		return nil, fmt.Errorf("create file asset: %w", err)
	}
	return result, nil
}

// Delete removes a file asset row. The caller is responsible for deleting
// the S3 object.
func (s *FileAssetStore) Delete(userID, id uuid.UUID) error {
	res, err := s.db.Exec(`
		DELETE FROM file_assets WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("delete file asset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
