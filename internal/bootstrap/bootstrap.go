// Package bootstrap wires the adapters and services shared by the reviewrot
// commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	feedadapter "github.com/ericfisherdev/reviewrot/internal/adapter/driven/feed"
	githubadapter "github.com/ericfisherdev/reviewrot/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/reviewrot/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/reviewrot/internal/application"
	"github.com/ericfisherdev/reviewrot/internal/config"
	"github.com/ericfisherdev/reviewrot/internal/domain/port/driven"
)

// Runtime holds the wired dependencies of a running command.
type Runtime struct {
	DB             *sqliteadapter.DB
	RepoStore      *sqliteadapter.RepoRepo
	ThresholdStore *sqliteadapter.ThresholdRepo
	FeedService    *application.FeedService
}

// Open opens and migrates the database, seeds the configured repositories and
// builds the FeedService for cfg.FeedSource. The caller must Close the
// returned Runtime.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	wip, err := application.ParseWIPMatch(cfg.WIPMatch)
	if err != nil {
		return nil, err
	}

	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	logger.Info("database opened", "path", cfg.DBPath)

	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", cfg.DBPath, err)
	}
	logger.Info("migrations complete", "schema_version", version)

	rt := &Runtime{
		DB:             db,
		RepoStore:      sqliteadapter.NewRepoRepo(db),
		ThresholdStore: sqliteadapter.NewThresholdRepo(db),
	}

	if err := application.SeedRepositories(ctx, rt.RepoStore, cfg.GitHubRepos, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	var source driven.FeedSource
	switch cfg.FeedSource {
	case config.SourceGitHub:
		if cfg.GitHubToken == "" {
			logger.Warn("no github token configured, using unauthenticated requests")
		}
		source = application.NewGitHubFeed(
			githubadapter.NewClient(cfg.GitHubToken),
			rt.RepoStore,
			cfg.GitHubLastComment,
			time.Now,
			logger,
		)
	case config.SourceURL:
		source = feedadapter.NewClient(cfg.FeedURL, cfg.FetchTimeout)
	default:
		_ = db.Close()
		return nil, fmt.Errorf("unsupported feed source %q", cfg.FeedSource)
	}

	rt.FeedService = application.NewFeedService(
		source,
		rt.ThresholdStore,
		cfg.Thresholds,
		application.Transformer{Rules: application.HostRules(cfg.HostRules), WIP: wip},
		time.Now,
		logger,
	)

	return rt, nil
}

// Close releases the database connections.
func (rt *Runtime) Close() error {
	return rt.DB.Close()
}
