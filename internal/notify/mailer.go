// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package notify delivers habit reminders and daily summaries over email
// and Telegram. Both channels share the Notifier interface so the
// scheduler does not care which one a reminder uses.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Notifier sends a short text message to a single recipient.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Mailer delivers notifications over SMTP.
type Mailer struct {
	host   string
	port   string
	user   string
	pass   string
	sender string
}

// NewMailer creates an SMTP mailer. Returns nil if the host is empty,
// allowing the app to run with email notifications disabled.
func NewMailer(host, port, user, pass, sender string) *Mailer {
	if host == "" {
		return nil
	}
	return &Mailer{host: host, port: port, user: user, pass: pass, sender: sender}
}

// Send delivers one plain-text email.
func (m *Mailer) Send(_ context.Context, recipient, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.sender,
		"To: " + recipient,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, auth, m.sender, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", recipient, err)
	}
	return nil
}
