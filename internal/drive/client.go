// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package drive backs up journal entries and data exports to the user's
// Google Drive. It talks to the Drive v3 REST API directly over HTTP and
// handles the OAuth authorization-code flow and token refresh itself.
package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

// Scope is the only Drive permission the app requests: access to files it
// created, nothing else in the user's Drive.
const Scope = "https://www.googleapis.com/auth/drive.file"

// Client is a minimal Google Drive v3 API client.
type Client struct {
	clientID     string
	clientSecret string
	redirectURL  string

	apiBase    string
	uploadBase string
	tokenBase  string
	authBase   string

	http *http.Client
}

// NewClient creates a Drive client. The base URL arguments override the
// Google hosts in tests; pass empty strings for production.
func NewClient(clientID, clientSecret, redirectURL, apiBase, uploadBase, tokenBase string) *Client {
	if apiBase == "" {
		apiBase = "https://www.googleapis.com"
	}
	if uploadBase == "" {
		uploadBase = "https://www.googleapis.com"
	}
	if tokenBase == "" {
		tokenBase = "https://oauth2.googleapis.com"
	}
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		apiBase:      apiBase,
		uploadBase:   uploadBase,
		tokenBase:    tokenBase,
		authBase:     "https://accounts.google.com",
		http:         &http.Client{Timeout: 30 * time.Second},
	}
}

// AuthURL builds the consent-screen URL. state is the anti-forgery nonce
// stored in the session before redirecting.
func (c *Client) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURL)
	q.Set("response_type", "code")
	q.Set("scope", Scope)
	q.Set("access_type", "offline")
	q.Set("prompt", "consent")
	q.Set("state", state)
	return c.authBase + "/o/oauth2/v2/auth?" + q.Encode()
}

// Token is an OAuth access token with its expiry and optional refresh token.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Exchange trades an authorization code for a token.
func (c *Client) Exchange(ctx context.Context, code string) (*Token, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("redirect_uri", c.redirectURL)
	form.Set("grant_type", "authorization_code")
	return c.tokenRequest(ctx, form)
}

// Refresh obtains a fresh access token using a refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{}
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "refresh_token")
	tok, err := c.tokenRequest(ctx, form)
	if err != nil {
		return nil, err
	}
	// Google omits the refresh token on refresh responses; keep the old one.
	if tok.RefreshToken == "" {
		tok.RefreshToken = refreshToken
	}
	return tok, nil
}

func (c *Client) tokenRequest(ctx context.Context, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.tokenBase+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("drive token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drive token http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("drive token read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("drive token error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("drive token unmarshal: %w", err)
	}

	return &Token{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Expiry:       time.Now().Add(time.Duration(result.ExpiresIn) * time.Second),
	}, nil
}

// File is the subset of Drive file metadata the app uses.
type File struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size,string,omitempty"`
}

// FindFolder looks up a folder by name under a parent. parentID may be
// empty for the Drive root. Returns nil when no folder matches.
func (c *Client) FindFolder(ctx context.Context, accessToken, name, parentID string) (*File, error) {
	query := fmt.Sprintf("name = '%s' and mimeType = 'application/vnd.google-apps.folder' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`))
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", parentID)
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("fields", "files(id,name,mimeType)")
	q.Set("pageSize", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.apiBase+"/drive/v3/files?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("drive find folder: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var result struct {
		Files []File `json:"files"`
	}
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	if len(result.Files) == 0 {
		return nil, nil
	}
	return &result.Files[0], nil
}

// CreateFolder creates a folder under a parent. parentID may be empty for
// the Drive root.
func (c *Client) CreateFolder(ctx context.Context, accessToken, name, parentID string) (*File, error) {
	meta := map[string]any{
		"name":     name,
		"mimeType": "application/vnd.google-apps.folder",
	}
	if parentID != "" {
		meta["parents"] = []string{parentID}
	}

	payload, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("drive create folder marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+"/drive/v3/files?fields=id,name,mimeType", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("drive create folder: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	var folder File
	if err := c.do(req, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// Upload sends file content with its metadata in one multipart request.
// existingID, when non-empty, updates that file in place instead of
// creating a new one.
func (c *Client) Upload(ctx context.Context, accessToken, existingID, name, mimeType, parentID string, content []byte) (*File, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	meta := map[string]any{"name": name}
	if existingID == "" && parentID != "" {
		meta["parents"] = []string{parentID}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("drive upload marshal: %w", err)
	}

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	part, err := mw.CreatePart(metaHeader)
	if err != nil {
		return nil, fmt.Errorf("drive upload meta part: %w", err)
	}
	part.Write(metaJSON)

	contentHeader := textproto.MIMEHeader{}
	contentHeader.Set("Content-Type", mimeType)
	part, err = mw.CreatePart(contentHeader)
	if err != nil {
		return nil, fmt.Errorf("drive upload content part: %w", err)
	}
	part.Write(content)
	mw.Close()

	method := http.MethodPost
	endpoint := c.uploadBase + "/upload/drive/v3/files?uploadType=multipart&fields=id,name,mimeType,size"
	if existingID != "" {
		method = http.MethodPatch
		endpoint = c.uploadBase + "/upload/drive/v3/files/" + existingID + "?uploadType=multipart&fields=id,name,mimeType,size"
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("drive upload: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "multipart/related; boundary="+mw.Boundary())

	var file File
	if err := c.do(req, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// DeleteFile permanently removes a file from Drive.
func (c *Client) DeleteFile(ctx context.Context, accessToken, fileID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.apiBase+"/drive/v3/files/"+fileID, nil)
	if err != nil {
		return fmt.Errorf("drive delete file: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("drive delete http: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("drive delete error (status %d)", resp.StatusCode)
	}
	return nil
}

// do runs a request and decodes a JSON response into out.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("drive http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("drive read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("drive API error (status %d): %s", resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("drive unmarshal: %w", err)
	}
	return nil
}
