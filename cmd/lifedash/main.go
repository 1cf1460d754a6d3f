// Package main is the entry point for the LifeDash server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lifedash/internal/cache"
	"lifedash/internal/config"
	"lifedash/internal/database"
	"lifedash/internal/drive"
	"lifedash/internal/handlers"
	"lifedash/internal/lifecycle"
	"lifedash/internal/middleware"
	"lifedash/internal/notify"
	"lifedash/internal/render"
	"lifedash/internal/router"
	"lifedash/internal/scheduler"
	"lifedash/internal/session"
	"lifedash/internal/storage"
	"lifedash/internal/store"
)

func main() {
	// Load .env if present; production containers set real env vars.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	// Connect to PostgreSQL and run pending migrations.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions, flash messages, Drive folder cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient)

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Data stores.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	pageStore := store.NewPageStore(db)
	fileStore := store.NewFileAssetStore(db)
	habitStore := store.NewHabitStore(db)
	journalStore := store.NewJournalStore(db)
	todoStore := store.NewTodoStore(db)
	scoreStore := store.NewScoreStore(db)
	reminderStore := store.NewReminderStore(db)
	driveStore := store.NewDriveStore(db)

	// S3-compatible object storage (optional; uploads are disabled without it).
	var storageClient *storage.Client
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, file uploads disabled")
	}

	// Trash lifecycle over categories, pages, and their files. A nil object
	// remover means purges only delete rows.
	var remover lifecycle.ObjectRemover
	if storageClient != nil {
		remover = storageClient
	}
	lifecycleService := lifecycle.New(db, remover)

	// Google Drive backups (optional).
	var backupService *drive.Service
	if cfg.DriveConfigured() {
		driveClient := drive.NewClient(
			cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL,
			"", "", "",
		)
		folderCache := cache.NewFolderCache(valkeyClient, cache.DefaultFolderTTL)
		backupService = drive.NewService(driveClient, driveStore, folderCache)
		slog.Info("google drive backups enabled")
	} else {
		slog.Warn("google drive not configured, backups disabled")
	}

	// Notification channels for the reminder scheduler.
	var mailer notify.Notifier
	if m := notify.NewMailer(cfg.MailHost, cfg.MailPort, cfg.MailUsername, cfg.MailPassword, cfg.MailSender); m != nil {
		mailer = m
	}
	var telegram notify.Notifier
	if t := notify.NewTelegram(cfg.TelegramBotToken, ""); t != nil {
		telegram = t
	}

	sched := scheduler.New(reminderStore, habitStore, userStore, mailer, telegram, cfg.TelegramChatID)
	sched.Start()
	defer sched.Stop()

	// Handler groups.
	h := &router.Handlers{
		Auth:      handlers.NewAuth(renderer, sessionStore, userStore),
		Dashboard: handlers.NewDashboard(renderer, sessionStore, habitStore, journalStore, todoStore, scoreStore, pageStore),
		Notes:     handlers.NewNotes(renderer, sessionStore, categoryStore, pageStore, fileStore, lifecycleService),
		Habits:    handlers.NewHabits(renderer, sessionStore, habitStore, reminderStore),
		Journal:   handlers.NewJournal(renderer, sessionStore, journalStore, scoreStore, backupService),
		Tasks:     handlers.NewTasks(renderer, sessionStore, todoStore),
		Files:     handlers.NewFiles(renderer, sessionStore, fileStore, pageStore, storageClient),
		Exports:   handlers.NewExports(renderer, sessionStore, habitStore, journalStore, todoStore, scoreStore, categoryStore, pageStore, backupService),
		Drive:     handlers.NewDrive(renderer, sessionStore, backupService, driveStore),
		Settings:  handlers.NewSettings(renderer, sessionStore, userStore, backupService),
		API:       handlers.NewAPI(categoryStore, pageStore, habitStore, lifecycleService),
	}

	// Per-IP limiter for login and register submissions.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer loginLimiter.Stop()

	r := router.New(sessionStore, loginLimiter, cfg.CORSOrigins, h)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
