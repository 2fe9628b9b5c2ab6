package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/statusnotifier/internal/config"
	"github.com/hamed0406/statusnotifier/internal/httpapi"
	"github.com/hamed0406/statusnotifier/internal/logging"
	"github.com/hamed0406/statusnotifier/internal/notify"
	"github.com/hamed0406/statusnotifier/internal/notify/discord"
	"github.com/hamed0406/statusnotifier/internal/probe"
	"github.com/hamed0406/statusnotifier/internal/render"
	"github.com/hamed0406/statusnotifier/internal/repo"
	"github.com/hamed0406/statusnotifier/internal/repo/file"
	"github.com/hamed0406/statusnotifier/internal/repo/postgres"
	"github.com/hamed0406/statusnotifier/internal/scheduler"
	"github.com/hamed0406/statusnotifier/internal/uptime"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("exit", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) (err error) {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	display, err := config.LoadDisplay(cfg.DisplayFile)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeStore()) }()

	bot, err := discord.New(cfg.DiscordToken, cfg.CommandPrefix, display, logger)
	if err != nil {
		return err
	}

	loop := scheduler.New(
		logger,
		cfg.Targets(),
		probe.NewProber(cfg.HTTPTimeout),
		uptime.New(ctx, store, logger),
		render.Renderer{Emoji: display.Emoji},
		notify.NewUpserter(bot, logger),
		scheduler.Intervals{Calm: cfg.CheckOnline, Alert: cfg.CheckProblem},
	)
	loop.Resolver = net.DefaultResolver
	var notifiers notify.Multi
	if cfg.SlackWebhook != "" {
		notifiers = append(notifiers, notify.NewSlack(cfg.SlackWebhook))
	}
	if len(notifiers) > 0 {
		loop.Notifier = notifiers
	}
	bot.OnStatus(loop.Watch)

	if err := bot.Open(ctx); err != nil {
		logger.Error("session_open_failed", zap.Error(err))
		return err
	}
	defer func() { err = multierr.Append(err, bot.Close()) }()

	var srv *http.Server
	if cfg.APIAddr != "" {
		api := httpapi.NewServer(logger, loop, cfg.APIKeys, cfg.APIRPM, cfg.APIBurst)
		srv = &http.Server{Addr: cfg.APIAddr, Handler: api.Router(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("api_listen", zap.String("addr", cfg.APIAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("api_failed", zap.Error(err))
			}
		}()
	}

	logger.Info("statusbot_started",
		zap.String("web_url", cfg.WebURL),
		zap.String("app_status_url", cfg.AppStatusURL),
		zap.Bool("api", srv != nil),
	)
	loop.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = multierr.Append(err, srv.Shutdown(shutdownCtx))
	}
	logger.Info("statusbot_stopped")
	return err
}

// openStore picks Postgres when DATABASE_URL is set and the JSON file
// otherwise.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.UptimeStore, func() error, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("uptime_store", zap.String("kind", "file"), zap.String("path", cfg.UptimeFile))
		return file.New(cfg.UptimeFile), func() error { return nil }, nil
	}
	pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("uptime store: %w", err)
	}
	logger.Info("uptime_store", zap.String("kind", "postgres"))
	return pg, pg.Close, nil
}
