package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"tgstore/internal/bot"
	"tgstore/internal/config"
	"tgstore/internal/database"
	"tgstore/internal/filestore"
	"tgstore/internal/webhook"
)

// App is the application layer between the CLI and the service. It
// constructs all dependencies from config, manages the database and log
// file lifecycle, and exposes the operations the CLI commands run.
type App struct {
	cfg     *config.Config
	store   *database.SQLiteStore
	service *filestore.Service
	bot     *bot.Bot
	logger  filestore.Logger
	logFile *os.File
}

// New creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "Run", "Serve"). The caller
// must call Close when done.
func New(cfg *config.Config, operation string) (*App, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token not configured (set bot_token or TELEGRAM_BOT_TOKEN)")
	}

	limits := limitsFromConfig(cfg.Limits)

	store, err := database.NewStoreFromConfig(cfg.Database, limits.MaxFilesPerOwner)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	if err := store.CheckMigrations(); err != nil {
		store.Close()
		return nil, fmt.Errorf("database schema out of date (run 'tgstore db migrate'): %w", err)
	}

	opID := operation + "-" + time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	svc := filestore.NewService(store, limits, logger)

	b, err := bot.New(cfg.BotToken, svc, logger)
	if err != nil {
		store.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating bot: %w", err)
	}

	return &App{
		cfg:     cfg,
		store:   store,
		service: svc,
		bot:     b,
		logger:  logger,
		logFile: logFile,
	}, nil
}

// limitsFromConfig converts the TOML limits section into the core's
// immutable Limits value.
func limitsFromConfig(c config.LimitsConfig) filestore.Limits {
	return filestore.Limits{
		MaxUploadBytes:   c.MaxUploadBytes,
		MaxDownloadBytes: c.MaxDownloadBytes,
		PlatformMaxBytes: c.PlatformMaxBytes,
		MaxFilesPerOwner: c.MaxFilesPerOwner,
		StatsTopN:        c.StatsTopN,
	}
}

// RunPolling runs the bot in long-polling mode until ctx is cancelled.
func (a *App) RunPolling(ctx context.Context) error {
	return a.bot.Run(ctx)
}

// RunWebhookServer runs the webhook HTTP server until ctx is cancelled.
func (a *App) RunWebhookServer(ctx context.Context) error {
	srv := webhook.NewServer(a.cfg.Server.Addr, a.bot, a.logger)
	return srv.Run(ctx)
}

// SetWebhook registers the given URL as the bot's webhook endpoint.
func (a *App) SetWebhook(url string) error {
	return a.bot.SetWebhook(url)
}

// WebhookInfo returns a human-readable summary of the current webhook
// registration.
func (a *App) WebhookInfo() (string, error) {
	info, err := a.bot.WebhookInfo()
	if err != nil {
		return "", err
	}

	summary := fmt.Sprintf("URL: %s\nPending updates: %d\nMax connections: %d",
		info.URL, info.PendingUpdateCount, info.MaxConnections)
	if info.LastErrorMessage != "" {
		summary += fmt.Sprintf("\nLast error: %s (%s)",
			info.LastErrorMessage, time.Unix(int64(info.LastErrorDate), 0).UTC().Format(time.RFC3339))
	}
	return summary, nil
}

// DeleteWebhook removes the webhook registration.
func (a *App) DeleteWebhook() error {
	return a.bot.DeleteWebhook()
}

// Close releases the database and the log file.
func (a *App) Close() error {
	var firstErr error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			firstErr = err
		}
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// MigrateStore opens the configured database and brings its schema up to
// date. Used by the CLI migrate command, which must work before the rest
// of the app can be constructed.
func MigrateStore(cfg *config.Config) error {
	store, err := database.NewStoreFromConfig(cfg.Database, cfg.Limits.MaxFilesPerOwner)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer store.Close()

	if err := store.MigrateUp(); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}
