package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/reviewrot/internal/domain/model"
	"github.com/ericfisherdev/reviewrot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.FeedSource = (*GitHubFeed)(nil)

// GitHubFeed builds the review-request feed from the open pull requests of
// every watched repository.
type GitHubFeed struct {
	client      driven.GitHubClient
	repoStore   driven.RepoStore
	lastComment bool
	now         func() time.Time
	logger      *slog.Logger
}

// NewGitHubFeed creates a GitHubFeed. client may be nil when no token is
// configured; Fetch then always fails with model.ErrFeedUnavailable.
func NewGitHubFeed(
	client driven.GitHubClient,
	repoStore driven.RepoStore,
	lastComment bool,
	now func() time.Time,
	logger *slog.Logger,
) *GitHubFeed {
	return &GitHubFeed{
		client:      client,
		repoStore:   repoStore,
		lastComment: lastComment,
		now:         now,
		logger:      logger,
	}
}

// Fetch lists every watched repository and collects its open pull requests
// in repository order. A failure on any repository fails the whole fetch.
func (f *GitHubFeed) Fetch(ctx context.Context) (model.FeedSnapshot, error) {
	if f.client == nil {
		return model.FeedSnapshot{}, fmt.Errorf("github feed: no client configured: %w", model.ErrFeedUnavailable)
	}

	repos, err := f.repoStore.ListAll(ctx)
	if err != nil {
		return model.FeedSnapshot{}, fmt.Errorf("github feed: list repositories: %w: %w", model.ErrFeedUnavailable, err)
	}

	start := f.now()
	requests := []model.ReviewRequest{}

	for _, repo := range repos {
		reqs, err := f.client.FetchOpenReviewRequests(ctx, repo.FullName, f.lastComment)
		if err != nil {
			return model.FeedSnapshot{}, fmt.Errorf("github feed: %s: %w: %w", repo.FullName, model.ErrFeedUnavailable, err)
		}
		requests = append(requests, reqs...)
	}

	f.logger.Info("github feed fetched",
		"repos", len(repos),
		"requests", len(requests),
		"duration", f.now().Sub(start).Round(time.Millisecond),
	)

	return model.FeedSnapshot{Requests: requests, GeneratedAt: start}, nil
}

// IsValidRepoName reports whether name has the "owner/repo" form.
func IsValidRepoName(name string) bool {
	parts := strings.Split(name, "/")
	return len(parts) == 2 && parts[0] != "" && parts[1] != ""
}

// SeedRepositories adds every name to the store, ignoring repositories that
// are already watched. Used to apply the configured repository list at
// startup.
func SeedRepositories(ctx context.Context, store driven.RepoStore, names []string, logger *slog.Logger) error {
	for _, name := range names {
		if !IsValidRepoName(name) {
			return fmt.Errorf("seed repositories: invalid repository name %q", name)
		}

		parts := strings.SplitN(name, "/", 2)
		repo := model.Repository{
			FullName: name,
			Owner:    parts[0],
			Name:     parts[1],
			AddedAt:  time.Now().UTC(),
		}

		if err := store.Add(ctx, repo); err != nil {
			if errors.Is(err, driven.ErrRepoAlreadyExists) {
				continue
			}
			return fmt.Errorf("seed repositories: %w", err)
		}
		logger.Info("watching repository", "repo", name)
	}
	return nil
}
