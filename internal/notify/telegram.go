// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Telegram delivers notifications through the Telegram Bot API
// (POST /bot<token>/sendMessage).
type Telegram struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewTelegram creates a Telegram notifier. Returns nil if the bot token is
// empty. baseURL overrides the API host in tests; pass "" for production.
func NewTelegram(token, baseURL string) *Telegram {
	if token == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &Telegram{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Send posts a message to the chat identified by recipient. The subject is
// folded into the message text; Telegram has no subject line.
func (t *Telegram) Send(ctx context.Context, recipient, subject, body string) error {
	text := body
	if subject != "" {
		text = subject + "\n\n" + body
	}

	payload, err := json.Marshal(telegramRequest{
		ChatID: recipient,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("telegram marshal: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result telegramResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("telegram unmarshal: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram: send rejected: %s", result.Description)
	}
	return nil
}

// --- Telegram Bot API types ---

type telegramRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}
