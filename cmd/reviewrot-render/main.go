package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/robfig/cron/v3"

	webhandler "github.com/ericfisherdev/reviewrot/internal/adapter/driving/web"
	"github.com/ericfisherdev/reviewrot/internal/application"
	"github.com/ericfisherdev/reviewrot/internal/bootstrap"
	"github.com/ericfisherdev/reviewrot/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"feed_source", cfg.FeedSource,
		"feed_url", cfg.FeedURL,
		"output", cfg.Output,
		"schedule", cfg.RenderSchedule,
	)

	opts, err := application.PageOptionsFromQuery(cfg.RenderOptions)
	if err != nil {
		return fmt.Errorf("REVIEWROT_RENDER_OPTIONS: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Open(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if cfg.RenderSchedule == "" {
		return render(ctx, rt.FeedService, opts, cfg.Output)
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.RenderSchedule, func() {
		if err := render(ctx, rt.FeedService, opts, cfg.Output); err != nil {
			slog.Error("scheduled render failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule render: %w", err)
	}

	// Render once up front so the file exists before the first tick.
	if err := render(ctx, rt.FeedService, opts, cfg.Output); err != nil {
		slog.Error("initial render failed", "error", err)
	}

	c.Start()
	slog.Info("render scheduler started", "schedule", cfg.RenderSchedule)

	<-ctx.Done()
	slog.Info("shutting down")

	// Wait for a render in progress to finish.
	<-c.Stop().Done()

	slog.Info("shutdown complete")
	return nil
}

// render runs one page load and atomically replaces output with the page.
// A feed failure still writes a page showing the error indicator, matching
// what the server returns.
func render(ctx context.Context, svc *application.FeedService, opts application.PageOptions, output string) error {
	page, err := svc.Load(ctx, opts)
	if err != nil {
		slog.Warn("feed unavailable, rendering error page", "error", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(output), ".reviewrot-*.html")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := webhandler.RenderPage(ctx, tmp, page, svc.Now()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("render page: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return fmt.Errorf("replace %s: %w", output, err)
	}

	slog.Info("page rendered",
		"output", output,
		"entries", len(page.Entries),
		"skipped", page.Skipped,
		"state", page.State,
	)
	return nil
}
