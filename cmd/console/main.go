// Command console управляет сессией и ресурсами консоли площадки из терминала.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/magabrotheeeer/venue-console/internal/app/console"
	"github.com/magabrotheeeer/venue-console/internal/cli"
	"github.com/magabrotheeeer/venue-console/internal/config"
	"github.com/magabrotheeeer/venue-console/internal/lib/sl"
	"github.com/magabrotheeeer/venue-console/internal/notify"
)

func main() {
	cfg := config.MustLoad()

	level := slog.LevelWarn
	if cfg.Env == "local" || cfg.Env == "dev" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printer := notify.ReporterFunc(func(kind notify.Kind, title, message string) {
		out := os.Stdout
		if kind == notify.KindError {
			out = os.Stderr
		}
		fmt.Fprintf(out, "%s: %s\n", title, message)
	})

	app, err := console.New(ctx, cfg, logger, printer)
	if err != nil {
		logger.Error("failed to initialize console", sl.Err(err))
		os.Exit(1)
	}

	runner := &cli.Runner{
		Session:     app.Session,
		Gateway:     app.Gateway,
		CountryCode: cfg.CRM.DefaultCountryCode,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Now:         time.Now,
	}
	if cfg.Notifications.AMQPURL != "" {
		runner.Tail = app.TailNotifications
	}
	err = runner.Run(ctx, os.Args[1:])
	_ = app.Close()

	switch {
	case err == nil:
	case errors.Is(err, cli.ErrUsage):
		os.Exit(2)
	default:
		if !errors.Is(err, cli.ErrFailed) {
			logger.Error("command failed", sl.Err(err))
		}
		os.Exit(1)
	}
}
