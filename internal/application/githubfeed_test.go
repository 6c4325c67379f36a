package application_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewrot/internal/application"
	"github.com/ericfisherdev/reviewrot/internal/domain/model"
	"github.com/ericfisherdev/reviewrot/internal/domain/port/driven"
)

type mockGitHubClient struct {
	byRepo      map[string][]model.ReviewRequest
	err         error
	lastComment []bool
}

func (m *mockGitHubClient) FetchOpenReviewRequests(_ context.Context, repoFullName string, withLastComment bool) ([]model.ReviewRequest, error) {
	m.lastComment = append(m.lastComment, withLastComment)
	if m.err != nil {
		return nil, m.err
	}
	return m.byRepo[repoFullName], nil
}

type mockRepoStore struct {
	repos  []model.Repository
	err    error
	added  []model.Repository
	addErr map[string]error
}

func (m *mockRepoStore) Add(_ context.Context, repo model.Repository) error {
	if err := m.addErr[repo.FullName]; err != nil {
		return err
	}
	m.added = append(m.added, repo)
	return nil
}

func (m *mockRepoStore) Remove(_ context.Context, _ string) error { return nil }

func (m *mockRepoStore) GetByFullName(_ context.Context, _ string) (*model.Repository, error) {
	return nil, nil
}

func (m *mockRepoStore) ListAll(_ context.Context) ([]model.Repository, error) {
	return m.repos, m.err
}

func TestGitHubFeed_Fetch(t *testing.T) {
	client := &mockGitHubClient{byRepo: map[string][]model.ReviewRequest{
		"org/a": {request("A1", "https://github.com/org/a/pull/1", time.Hour)},
		"org/b": {
			request("B1", "https://github.com/org/b/pull/1", time.Hour),
			request("B2", "https://github.com/org/b/pull/2", time.Hour),
		},
	}}
	store := &mockRepoStore{repos: []model.Repository{{FullName: "org/a"}, {FullName: "org/b"}}}
	feed := application.NewGitHubFeed(client, store, true, func() time.Time { return fixedNow }, slog.Default())

	snapshot, err := feed.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, snapshot.Requests, 3)
	assert.Equal(t, "A1", snapshot.Requests[0].Title)
	assert.Equal(t, "B2", snapshot.Requests[2].Title)
	assert.Equal(t, fixedNow, snapshot.GeneratedAt)
	assert.Equal(t, []bool{true, true}, client.lastComment)
}

func TestGitHubFeed_Fetch_NoRepos(t *testing.T) {
	feed := application.NewGitHubFeed(&mockGitHubClient{}, &mockRepoStore{}, false, func() time.Time { return fixedNow }, slog.Default())

	snapshot, err := feed.Fetch(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, snapshot.Requests)
	assert.Empty(t, snapshot.Requests)
}

func TestGitHubFeed_Fetch_Errors(t *testing.T) {
	now := func() time.Time { return fixedNow }

	t.Run("nil client", func(t *testing.T) {
		feed := application.NewGitHubFeed(nil, &mockRepoStore{}, false, now, slog.Default())
		_, err := feed.Fetch(context.Background())
		assert.ErrorIs(t, err, model.ErrFeedUnavailable)
	})

	t.Run("repo store failure", func(t *testing.T) {
		storeErr := errors.New("db closed")
		feed := application.NewGitHubFeed(&mockGitHubClient{}, &mockRepoStore{err: storeErr}, false, now, slog.Default())
		_, err := feed.Fetch(context.Background())
		assert.ErrorIs(t, err, model.ErrFeedUnavailable)
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("client failure", func(t *testing.T) {
		apiErr := errors.New("502 bad gateway")
		store := &mockRepoStore{repos: []model.Repository{{FullName: "org/a"}}}
		feed := application.NewGitHubFeed(&mockGitHubClient{err: apiErr}, store, false, now, slog.Default())
		_, err := feed.Fetch(context.Background())
		assert.ErrorIs(t, err, model.ErrFeedUnavailable)
		assert.ErrorIs(t, err, apiErr)
		assert.Contains(t, err.Error(), "org/a")
	})
}

func TestSeedRepositories(t *testing.T) {
	store := &mockRepoStore{addErr: map[string]error{
		"org/existing": driven.ErrRepoAlreadyExists,
	}}

	err := application.SeedRepositories(context.Background(), store, []string{"org/new", "org/existing"}, slog.Default())

	require.NoError(t, err)
	require.Len(t, store.added, 1)
	assert.Equal(t, "org/new", store.added[0].FullName)
	assert.Equal(t, "org", store.added[0].Owner)
	assert.Equal(t, "new", store.added[0].Name)
}

func TestSeedRepositories_Invalid(t *testing.T) {
	err := application.SeedRepositories(context.Background(), &mockRepoStore{}, []string{"not-a-repo"}, slog.Default())
	assert.Error(t, err)
}

func TestIsValidRepoName(t *testing.T) {
	assert.True(t, application.IsValidRepoName("owner/repo"))
	assert.False(t, application.IsValidRepoName("owner"))
	assert.False(t, application.IsValidRepoName("owner/"))
	assert.False(t, application.IsValidRepoName("a/b/c"))
}
