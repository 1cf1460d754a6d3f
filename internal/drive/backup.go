// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package drive

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"

	"lifedash/internal/cache"
	"lifedash/internal/models"
	"lifedash/internal/store"
)

// ErrNotConnected is returned when the user has not linked a Google
// account or their refresh token no longer works.
var ErrNotConnected = errors.New("drive: account not connected")

// appFolderName is the root folder created in the user's Drive. All
// backups live under appFolderName/<year>/<month>.
const appFolderName = "LifeDash"

// Service runs backups against Drive and records them in the database.
type Service struct {
	client  *Client
	drive   *store.DriveStore
	folders *cache.FolderCache
}

// NewService wires the Drive API client to token storage and the folder
// ID cache. folders may be nil; lookups then hit the API every time.
func NewService(client *Client, driveStore *store.DriveStore, folders *cache.FolderCache) *Service {
	return &Service{client: client, drive: driveStore, folders: folders}
}

// Client exposes the underlying API client for the OAuth handlers.
func (s *Service) Client() *Client {
	return s.client
}

// Connected reports whether the user has a stored Drive token.
func (s *Service) Connected(ctx context.Context, userID uuid.UUID) bool {
	tok, err := s.drive.Token(userID)
	return err == nil && tok != nil
}

// SaveExchangedToken persists a token obtained from the OAuth callback.
func (s *Service) SaveExchangedToken(userID uuid.UUID, tok *Token) error {
	var refresh *string
	if tok.RefreshToken != "" {
		refresh = &tok.RefreshToken
	}
	expiry := tok.Expiry
	return s.drive.SaveToken(&models.DriveToken{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: refresh,
		Scopes:       Scope,
		Expiry:       &expiry,
	})
}

// Disconnect removes the stored token and cached folder IDs.
func (s *Service) Disconnect(ctx context.Context, userID uuid.UUID) error {
	if s.folders != nil {
		s.folders.InvalidateUser(ctx, userID)
	}
	return s.drive.DeleteToken(userID)
}

// accessToken returns a valid access token for the user, refreshing it
// first when expired.
func (s *Service) accessToken(ctx context.Context, userID uuid.UUID) (string, error) {
	tok, err := s.drive.Token(userID)
	if err != nil {
		return "", err
	}
	if tok == nil {
		return "", ErrNotConnected
	}
	if !tok.IsExpired() {
		return tok.AccessToken, nil
	}
	if tok.RefreshToken == nil {
		return "", ErrNotConnected
	}

	fresh, err := s.client.Refresh(ctx, *tok.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("refresh drive token: %w", err)
	}
	if err := s.SaveExchangedToken(userID, fresh); err != nil {
		return "", err
	}
	return fresh.AccessToken, nil
}

// monthFolder resolves (or creates) the appFolderName/<year>/<month>
// folder chain for a date and returns the month folder's ID.
func (s *Service) monthFolder(ctx context.Context, userID uuid.UUID, accessToken string, day time.Time) (string, error) {
	segments := []string{
		appFolderName,
		day.Format("2006"),
		day.Format("01-January"),
	}

	parentID := ""
	path := ""
	for _, segment := range segments {
		if path == "" {
			path = segment
		} else {
			path = path + "/" + segment
		}

		if s.folders != nil {
			if id, ok := s.folders.Get(ctx, userID, path); ok {
				parentID = id
				continue
			}
		}

		folder, err := s.client.FindFolder(ctx, accessToken, segment, parentID)
		if err != nil {
			return "", err
		}
		if folder == nil {
			folder, err = s.client.CreateFolder(ctx, accessToken, segment, parentID)
			if err != nil {
				return "", err
			}
		}

		if s.folders != nil {
			s.folders.Set(ctx, userID, path, folder.ID)
		}
		parentID = folder.ID
	}

	return parentID, nil
}

// journalTemplate formats one entry as a small standalone HTML document.
var journalTemplate = template.Must(template.New("entry").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p><em>{{.Date}}</em></p>
<div>{{.Body}}</div>
</body>
</html>
`))

// BackupJournalEntry uploads one journal entry as an HTML file into the
// month folder for its date. Re-backing up the same entry overwrites the
// previous Drive copy.
func (s *Service) BackupJournalEntry(ctx context.Context, userID uuid.UUID, entry *models.JournalEntry) error {
	accessToken, err := s.accessToken(ctx, userID)
	if err != nil {
		return err
	}

	folderID, err := s.monthFolder(ctx, userID, accessToken, entry.EntryDate)
	if err != nil {
		return err
	}

	title := entry.Title
	if title == "" {
		title = "Journal " + entry.EntryDate.Format("2006-01-02")
	}

	var buf strings.Builder
	err = journalTemplate.Execute(&buf, map[string]string{
		"Title": title,
		"Date":  entry.EntryDate.Format("Monday, January 2, 2006"),
		"Body":  entry.Body,
	})
	if err != nil {
		return fmt.Errorf("render journal backup: %w", err)
	}

	name := "journal-" + entry.EntryDate.Format("2006-01-02") + ".html"
	existingID := s.existingFileID(userID, name)

	file, err := s.client.Upload(ctx, accessToken, existingID, name, "text/html", folderID, []byte(buf.String()))
	if err != nil {
		if existingID != "" {
			s.drive.MarkBackupStatus(userID, existingID, models.BackupError)
		}
		return err
	}

	return s.drive.RecordBackup(&models.DriveBackup{
		UserID:     userID,
		BackupType: "journal",
		FileID:     file.ID,
		FileName:   file.Name,
		MimeType:   "text/html",
		SizeBytes:  int64(len(buf.String())),
		Status:     models.BackupActive,
		BackupDate: entry.EntryDate,
	})
}

// BackupExport uploads a full JSON export into the app root folder.
func (s *Service) BackupExport(ctx context.Context, userID uuid.UUID, data []byte) error {
	accessToken, err := s.accessToken(ctx, userID)
	if err != nil {
		return err
	}

	// The export lives directly under the app folder, not a month folder.
	appID := ""
	if s.folders != nil {
		if id, ok := s.folders.Get(ctx, userID, appFolderName); ok {
			appID = id
		}
	}
	if appID == "" {
		folder, err := s.client.FindFolder(ctx, accessToken, appFolderName, "")
		if err != nil {
			return err
		}
		if folder == nil {
			folder, err = s.client.CreateFolder(ctx, accessToken, appFolderName, "")
			if err != nil {
				return err
			}
		}
		appID = folder.ID
		if s.folders != nil {
			s.folders.Set(ctx, userID, appFolderName, appID)
		}
	}

	now := time.Now()
	name := "lifedash-export-" + now.Format("2006-01-02") + ".json"
	existingID := s.existingFileID(userID, name)

	file, err := s.client.Upload(ctx, accessToken, existingID, name, "application/json", appID, data)
	if err != nil {
		return err
	}

	return s.drive.RecordBackup(&models.DriveBackup{
		UserID:     userID,
		BackupType: "export",
		FileID:     file.ID,
		FileName:   file.Name,
		MimeType:   "application/json",
		SizeBytes:  int64(len(data)),
		Status:     models.BackupActive,
		BackupDate: now,
	})
}

// existingFileID returns the Drive file ID of a previous backup with the
// same name, so re-backups update in place. Empty string when none exists.
func (s *Service) existingFileID(userID uuid.UUID, name string) string {
	backups, err := s.drive.ListBackups(userID)
	if err != nil {
		return ""
	}
	for _, b := range backups {
		if b.FileName == name && b.Status == models.BackupActive {
			return b.FileID
		}
	}
	return ""
}
