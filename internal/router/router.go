// Package router sets up all HTTP routes and middleware chains for the
// LifeDash web app. Routes are organized into public auth pages, the
// authenticated app, and the /api/v1 JSON surface.
package router

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"lifedash/internal/handlers"
	"lifedash/internal/middleware"
	"lifedash/internal/session"
	"lifedash/web"
)

// Handlers bundles the handler groups the router wires up.
type Handlers struct {
	Auth      *handlers.Auth
	Dashboard *handlers.Dashboard
	Notes     *handlers.Notes
	Habits    *handlers.Habits
	Journal   *handlers.Journal
	Tasks     *handlers.Tasks
	Files     *handlers.Files
	Exports   *handlers.Exports
	Drive     *handlers.Drive
	Settings  *handlers.Settings
	API       *handlers.API
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, loginLimiter *middleware.RateLimiter,
	corsOrigins string, h *Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check. No auth, no CSRF.
	r.Get("/health", healthHandler)

	// Static assets embedded in the binary.
	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Web UI routes with CSRF protection.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF)

		// Auth pages, accessible without a session. Login and register
		// submissions are rate limited per IP.
		r.Get("/login", h.Auth.LoginPage)
		r.With(loginLimiter.Middleware).Post("/login", h.Auth.LoginSubmit)
		r.Get("/register", h.Auth.RegisterPage)
		r.With(loginLimiter.Middleware).Post("/register", h.Auth.RegisterSubmit)
		r.Post("/logout", h.Auth.Logout)

		// 2FA pages require auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", h.Auth.TwoFASetupPage)
			r.Get("/2fa/verify", h.Auth.TwoFAVerifyPage)
			r.Post("/2fa/verify", h.Auth.TwoFAVerifySubmit)
		})

		// Authenticated, 2FA-verified app.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/", rootRedirect)
			r.Get("/dashboard", h.Dashboard.Home)
			r.Get("/search", h.Dashboard.Search)

			// Notes: categories and pages addressed by slug.
			r.Route("/notes", func(r chi.Router) {
				r.Get("/", h.Notes.Index)
				r.Post("/categories", h.Notes.CreateCategory)
				r.Get("/{categorySlug}", h.Notes.ShowCategory)
				r.Post("/{categorySlug}", h.Notes.UpdateCategory)
				r.Post("/{categorySlug}/delete", h.Notes.DeleteCategory)
				r.Post("/{categorySlug}/pages", h.Notes.CreatePage)
				r.Get("/{categorySlug}/{pageSlug}", h.Notes.ShowPage)
				r.Post("/{categorySlug}/{pageSlug}", h.Notes.UpdatePage)
				r.Post("/{categorySlug}/{pageSlug}/delete", h.Notes.DeletePage)
			})

			// Trash lifecycle. Restore brings an item back; purge is final.
			r.Route("/trash", func(r chi.Router) {
				r.Get("/", h.Notes.Trash)
				r.Post("/categories/{id}/restore", h.Notes.RestoreCategory)
				r.Post("/categories/{id}/purge", h.Notes.PurgeCategory)
				r.Post("/pages/{id}/restore", h.Notes.RestorePage)
				r.Post("/pages/{id}/purge", h.Notes.PurgePage)
			})

			// Habits and their reminders.
			r.Route("/habits", func(r chi.Router) {
				r.Get("/", h.Habits.Index)
				r.Post("/", h.Habits.Create)
				r.Post("/reminders", h.Habits.CreateReminder)
				r.Post("/reminders/{id}/toggle", h.Habits.ToggleReminder)
				r.Post("/reminders/{id}/delete", h.Habits.DeleteReminder)
				r.Post("/{id}/toggle", h.Habits.Toggle)
				r.Post("/{id}/delete", h.Habits.Delete)
			})

			// Journal and the daily score calendar.
			r.Route("/journal", func(r chi.Router) {
				r.Get("/", h.Journal.Index)
				r.Post("/entries/{id}/delete", h.Journal.Delete)
				r.Get("/{date}", h.Journal.Day)
				r.Post("/{date}", h.Journal.Save)
				r.Post("/{date}/score", h.Journal.SaveScore)
			})
			r.Get("/calendar", h.Journal.Calendar)

			// Do / don't lists.
			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", h.Tasks.Create)
				r.Post("/{id}/toggle", h.Tasks.Toggle)
				r.Post("/{id}/delete", h.Tasks.Delete)
			})

			// File uploads.
			r.Route("/files", func(r chi.Router) {
				r.Get("/", h.Files.Index)
				r.Post("/", h.Files.Upload)
				r.Get("/{id}/download", h.Files.Download)
				r.Post("/{id}/delete", h.Files.Delete)
			})

			// Data export and import.
			r.Route("/export", func(r chi.Router) {
				r.Get("/", h.Exports.Index)
				r.Get("/download", h.Exports.Download)
				r.Post("/drive", h.Exports.ToDrive)
				r.Post("/import", h.Exports.Upload)
			})

			// Google Drive connection.
			r.Route("/drive", func(r chi.Router) {
				r.Get("/", h.Drive.Index)
				r.Post("/connect", h.Drive.Connect)
				r.Get("/callback", h.Drive.Callback)
				r.Post("/disconnect", h.Drive.Disconnect)
			})

			// Settings and 2FA management.
			r.Get("/settings", h.Settings.Index)
			r.Post("/settings/timezone", h.Settings.UpdateTimezone)
			r.Post("/2fa/disable", h.Auth.TwoFADisable)
		})
	})

	// JSON API. Session-cookie auth; CORS restricted to configured origins.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   strings.Split(corsOrigins, ","),
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
		}).Handler)
		r.Use(middleware.RequireAuth)
		r.Use(middleware.Require2FA)

		r.Get("/categories", h.API.ListCategories)
		r.Post("/categories", h.API.CreateCategory)
		r.Get("/categories/{id}/pages", h.API.ListPages)
		r.Delete("/categories/{id}", h.API.DeleteCategory)
		r.Post("/pages", h.API.CreatePage)
		r.Delete("/pages/{id}", h.API.DeletePage)

		r.Get("/trash", h.API.ListTrash)
		r.Post("/trash/categories/{id}/restore", h.API.RestoreCategory)
		r.Delete("/trash/categories/{id}", h.API.PurgeCategory)
		r.Post("/trash/pages/{id}/restore", h.API.RestorePage)
		r.Delete("/trash/pages/{id}", h.API.PurgePage)

		r.Get("/habits", h.API.ListHabits)
	})

	return r
}

func rootRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
