package application_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewrot/internal/application"
	"github.com/ericfisherdev/reviewrot/internal/domain/model"
)

func TestPageOptionsFromQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    application.PageOptions
		wantErr error
	}{
		{name: "empty", query: "", want: application.PageOptions{}},
		{
			name:  "all options",
			query: "older=3d&sort=updated&reverse=true&ignore_wip=1&last_comment_days=2",
			want: application.PageOptions{
				Age:             &application.AgeFilter{State: application.AgeOlder, Value: 3, Unit: application.UnitDay},
				Sort:            application.SortUpdated,
				Reverse:         true,
				IgnoreWIP:       true,
				LastCommentDays: 2,
			},
		},
		{name: "bare flags", query: "reverse&ignore_wip", want: application.PageOptions{Reverse: true, IgnoreWIP: true}},
		{name: "explicit false", query: "reverse=false", want: application.PageOptions{}},
		{name: "sort commented", query: "sort=commented", want: application.PageOptions{Sort: application.SortCommented}},
		{name: "unknown sort", query: "sort=title", wantErr: application.ErrInvalidPageOptions},
		{name: "bad reverse", query: "reverse=maybe", wantErr: application.ErrInvalidPageOptions},
		{name: "negative days", query: "last_comment_days=-1", wantErr: application.ErrInvalidPageOptions},
		{name: "non-numeric days", query: "last_comment_days=two", wantErr: application.ErrInvalidPageOptions},
		{name: "bad age", query: "older=3w", wantErr: application.ErrInvalidAgeFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := application.PageOptionsFromQuery(q)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageOptions_String(t *testing.T) {
	assert.Empty(t, application.PageOptions{}.String())
	assert.True(t, application.PageOptions{}.IsZero())

	opts := application.PageOptions{
		Age:             &application.AgeFilter{State: application.AgeNewer, Value: 12, Unit: application.UnitHour},
		Sort:            application.SortSubmitted,
		Reverse:         true,
		IgnoreWIP:       true,
		LastCommentDays: 5,
	}
	assert.Equal(t, "newer=12h sort=submitted reverse ignore_wip last_comment_days=5", opts.String())
	assert.False(t, opts.IsZero())
}

func rendered(title string, submittedAgo time.Duration) model.RenderedRequest {
	return model.RenderedRequest{ReviewRequest: model.ReviewRequest{Title: title, Time: fixedNow.Add(-submittedAgo)}}
}

func titles(entries []model.RenderedRequest) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Title)
	}
	return out
}

func TestPageOptions_Order(t *testing.T) {
	build := func() []model.RenderedRequest {
		a := rendered("a", 2*time.Hour)
		b := rendered("b", 5*time.Hour)
		c := rendered("c", 3*time.Hour)

		updatedA := fixedNow.Add(-10 * time.Hour)
		a.UpdatedTime = &updatedA
		b.LastComment = &model.LastComment{CreatedAt: fixedNow.Add(-time.Minute)}
		c.LastComment = &model.LastComment{CreatedAt: fixedNow.Add(-time.Hour)}
		return []model.RenderedRequest{a, b, c}
	}

	tests := []struct {
		name string
		opts application.PageOptions
		want []string
	}{
		{name: "feed order", opts: application.PageOptions{}, want: []string{"a", "b", "c"}},
		{name: "feed order reversed", opts: application.PageOptions{Reverse: true}, want: []string{"c", "b", "a"}},
		{name: "submitted", opts: application.PageOptions{Sort: application.SortSubmitted}, want: []string{"b", "c", "a"}},
		{name: "submitted reversed", opts: application.PageOptions{Sort: application.SortSubmitted, Reverse: true}, want: []string{"a", "c", "b"}},
		{name: "updated falls back to submitted", opts: application.PageOptions{Sort: application.SortUpdated}, want: []string{"a", "b", "c"}},
		{name: "commented falls back to submitted", opts: application.PageOptions{Sort: application.SortCommented}, want: []string{"a", "c", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := build()
			tt.opts.Order(entries)
			assert.Equal(t, tt.want, titles(entries))
		})
	}
}

func TestPageOptions_Keep(t *testing.T) {
	wip := rendered("wip", time.Hour)
	wip.IsWIP = true

	fresh := rendered("fresh comment", 10*24*time.Hour)
	fresh.LastComment = &model.LastComment{CreatedAt: fixedNow.Add(-24 * time.Hour)}

	stale := rendered("stale comment", 10*24*time.Hour)
	stale.LastComment = &model.LastComment{CreatedAt: fixedNow.Add(-5 * 24 * time.Hour)}

	silent := rendered("no comment", 10*24*time.Hour)

	none := application.PageOptions{}
	assert.True(t, none.Keep(wip, fixedNow))
	assert.True(t, none.Keep(fresh, fixedNow))

	ignoreWIP := application.PageOptions{IgnoreWIP: true}
	assert.False(t, ignoreWIP.Keep(wip, fixedNow))
	assert.True(t, ignoreWIP.Keep(silent, fixedNow))

	lastComment := application.PageOptions{LastCommentDays: 3}
	assert.False(t, lastComment.Keep(fresh, fixedNow))
	assert.True(t, lastComment.Keep(stale, fixedNow))
	assert.True(t, lastComment.Keep(silent, fixedNow))

	older := application.PageOptions{Age: &application.AgeFilter{State: application.AgeOlder, Value: 3, Unit: application.UnitDay}}
	assert.False(t, older.Keep(wip, fixedNow))
	assert.True(t, older.Keep(silent, fixedNow))
}

func TestFeedService_Load_PageOptions(t *testing.T) {
	lastWeek := fixedNow.Add(-7 * 24 * time.Hour)
	yesterday := fixedNow.Add(-24 * time.Hour)

	source := &mockFeedSource{snapshot: model.FeedSnapshot{
		Requests: []model.ReviewRequest{
			request("Newest", "https://github.com/org/repo/pull/3", time.Hour),
			{
				Title:       "Recently discussed",
				URL:         "https://github.com/org/repo/pull/2",
				Time:        fixedNow.Add(-48 * time.Hour),
				LastComment: &model.LastComment{Author: "bob", CreatedAt: yesterday},
			},
			request("WIP: draft", "https://github.com/org/repo/pull/4", 2*time.Hour),
			{
				Title:       "Oldest",
				URL:         "https://github.com/org/repo/pull/1",
				Time:        fixedNow.Add(-96 * time.Hour),
				LastComment: &model.LastComment{Author: "carol", CreatedAt: lastWeek},
			},
		},
	}}
	svc := newFeedService(source, nil, nil)

	page, err := svc.Load(context.Background(), application.PageOptions{
		Sort:            application.SortSubmitted,
		IgnoreWIP:       true,
		LastCommentDays: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Oldest", "Newest"}, titles(page.Entries))
	assert.Equal(t, "2 days", page.Summary.Label)

	page, err = svc.Load(context.Background(), application.PageOptions{Sort: application.SortSubmitted, Reverse: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"Newest", "WIP: draft", "Recently discussed", "Oldest"}, titles(page.Entries))
}
