package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validation limits for form fields.
const (
	maxTitleLen    = 300
	maxBodyLen     = 100_000
	maxLabelLen    = 500
	maxUsernameLen = 60
	minPasswordLen = 8
	maxUploadBytes = 25 << 20 // 25 MB
)

// validateRegistration checks signup inputs and returns the first error found.
func validateRegistration(email, username, password string) string {
	if email == "" {
		return "Email is required."
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "Email address is not valid."
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return "Username is required."
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return "Username is too long (max 60 characters)."
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 8 characters."
	}
	return ""
}

// validateTitled checks a title/body pair shared by categories, pages,
// and journal entries.
func validateTitled(title, body string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "Body is too long (max 100,000 characters)."
	}
	return ""
}

// validateLabel checks a todo label.
func validateLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "Label is required."
	}
	if utf8.RuneCountInString(label) > maxLabelLen {
		return "Label is too long (max 500 characters)."
	}
	return ""
}
