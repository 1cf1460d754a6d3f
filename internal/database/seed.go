package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaswdr/faker"
	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with development data: a demo user plus a
// handful of faker-generated habits, journal entries and todo items so
// the dashboard has something to show on first run.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (email, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`, "demo@lifedash.local", "demo", string(hash)).Scan(&userID)
	if err != nil {
		return fmt.Errorf("seed insert user: %w", err)
	}

	f := faker.New()

	habits := []struct {
		name      string
		frequency string
		color     string
	}{
		{"Morning run", "daily", "#198754"},
		{"Read 30 minutes", "daily", "#0d6efd"},
		{"Weekly review", "weekly", "#6f42c1"},
	}
	for _, h := range habits {
		_, err = db.Exec(`
			INSERT INTO habits (user_id, name, frequency, color, start_date)
			VALUES ($1, $2, $3, $4, CURRENT_DATE - INTERVAL '30 days')
		`, userID, h.name, h.frequency, h.color)
		if err != nil {
			return fmt.Errorf("seed insert habit: %w", err)
		}
	}

	// A week of journal entries with faker prose.
	for i := 0; i < 7; i++ {
		day := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
		_, err = db.Exec(`
			INSERT INTO journal_entries (user_id, entry_date, title, body)
			VALUES ($1, $2, $3, $4)
		`, userID, day, f.Lorem().Sentence(4), f.Lorem().Paragraph(3))
		if err != nil {
			return fmt.Errorf("seed insert journal entry: %w", err)
		}
	}

	for i := 0; i < 5; i++ {
		kind := "todo"
		if i%2 == 1 {
			kind = "not_todo"
		}
		_, err = db.Exec(`
			INSERT INTO todo_items (user_id, label, kind, position)
			VALUES ($1, $2, $3, $4)
		`, userID, f.Lorem().Sentence(3), kind, i)
		if err != nil {
			return fmt.Errorf("seed insert todo: %w", err)
		}
	}

	_, err = db.Exec(`
		INSERT INTO categories (user_id, title, slug, description, icon)
		VALUES ($1, 'Notes', 'notes', 'General notes', 'bi-journal-text')
	`, userID)
	if err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	slog.Info("database seeded with demo user",
		"email", "demo@lifedash.local",
		"password", "demo",
	)

	return nil
}
