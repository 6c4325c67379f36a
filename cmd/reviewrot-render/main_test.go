package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewrot/internal/application"
	"github.com/ericfisherdev/reviewrot/internal/domain/model"
)

type staticSource struct {
	snapshot model.FeedSnapshot
	err      error
}

func (s staticSource) Fetch(_ context.Context) (model.FeedSnapshot, error) {
	return s.snapshot, s.err
}

var renderNow = time.Date(2026, 5, 15, 12, 0, 0, 0, time.UTC)

func newService(src staticSource) *application.FeedService {
	return application.NewFeedService(
		src,
		nil,
		nil,
		application.Transformer{WIP: application.WIPMatchSubstring},
		func() time.Time { return renderNow },
		slog.Default(),
	)
}

func TestRender_WritesStandalonePage(t *testing.T) {
	src := staticSource{snapshot: model.FeedSnapshot{
		GeneratedAt: renderNow.Add(-time.Hour),
		Requests: []model.ReviewRequest{
			{Title: "Older change", URL: "https://github.com/org/repo/pull/1", Time: renderNow.Add(-72 * time.Hour)},
			{Title: "WIP: sketch", URL: "https://github.com/org/repo/pull/2", Time: renderNow.Add(-time.Hour)},
			{Title: "Newer change", URL: "https://github.com/org/repo/pull/3", Time: renderNow.Add(-2 * time.Hour)},
		},
	}}
	output := filepath.Join(t.TempDir(), "index.html")
	opts := application.PageOptions{Sort: application.SortSubmitted, Reverse: true, IgnoreWIP: true}

	require.NoError(t, render(context.Background(), newService(src), opts, output))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	page := string(data)

	assert.NotContains(t, page, "/static/")
	assert.Contains(t, page, `role="alert" hidden>`)
	assert.Contains(t, page, `id="wip-header" hidden>`)
	assert.NotContains(t, page, "sketch")
	require.Contains(t, page, "Newer change")
	require.Contains(t, page, "Older change")
	assert.Less(t, strings.Index(page, "Newer change"), strings.Index(page, "Older change"))

	info, err := os.Stat(output)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestRender_FeedUnavailableWritesErrorPage(t *testing.T) {
	src := staticSource{err: errors.Join(model.ErrFeedUnavailable, errors.New("connection refused"))}
	output := filepath.Join(t.TempDir(), "index.html")

	require.NoError(t, render(context.Background(), newService(src), application.PageOptions{}, output))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `role="alert">The review feed could not be loaded`)
}
