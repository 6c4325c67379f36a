// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/reviewrot/internal/domain/model"
	"github.com/ericfisherdev/reviewrot/internal/domain/port/driven"
)

// FeedService runs one page load: fetch the feed, transform every record,
// aggregate the ages and hand back a model.Page for a presenter.
type FeedService struct {
	source         driven.FeedSource
	thresholdStore driven.ThresholdStore
	defaults       model.SeverityTable
	transformer    Transformer
	now            func() time.Time
	logger         *slog.Logger
}

// NewFeedService creates a FeedService. thresholdStore may be nil, in which
// case the defaults table is always used. now is the clock used for every
// relative label on the page.
func NewFeedService(
	source driven.FeedSource,
	thresholdStore driven.ThresholdStore,
	defaults model.SeverityTable,
	transformer Transformer,
	now func() time.Time,
	logger *slog.Logger,
) *FeedService {
	return &FeedService{
		source:         source,
		thresholdStore: thresholdStore,
		defaults:       defaults,
		transformer:    transformer,
		now:            now,
		logger:         logger,
	}
}

// Load performs a single page load. A fetch failure aborts the pipeline:
// the returned page is in the errored state with no entries and the error
// wraps model.ErrFeedUnavailable. Malformed records are skipped and
// counted. opts filters and orders the entries; the summary covers only the
// entries that are shown.
func (s *FeedService) Load(ctx context.Context, opts PageOptions) (model.Page, error) {
	state, err := model.PageIdle.Transition(model.PageLoading)
	if err != nil {
		return model.Page{State: model.PageIdle}, err
	}

	snapshot, fetchErr := s.source.Fetch(ctx)
	if fetchErr != nil {
		state, err = state.Transition(model.PageErrored)
		if err != nil {
			return model.Page{State: state}, err
		}
		s.logger.Error("feed fetch failed", "error", fetchErr)
		return model.Page{State: state, Err: fetchErr}, fetchErr
	}

	now := s.now()
	entries := make([]model.RenderedRequest, 0, len(snapshot.Requests))
	skipped := 0

	for i, req := range snapshot.Requests {
		rendered, err := s.transformer.Transform(req, now)
		if err != nil {
			skipped++
			s.logger.Warn("skipping review request", "index", i, "url", req.URL, "error", err)
			continue
		}
		if !opts.Keep(rendered, now) {
			continue
		}
		entries = append(entries, rendered)
	}
	opts.Order(entries)

	reqs := make([]model.ReviewRequest, 0, len(entries))
	for _, e := range entries {
		reqs = append(reqs, e.ReviewRequest)
	}
	summary := Aggregate(reqs, s.severityTable(ctx), now)

	state, err = state.Transition(model.PageRendered)
	if err != nil {
		return model.Page{State: state}, err
	}

	s.logger.Debug("feed rendered",
		"entries", len(entries),
		"skipped", skipped,
		"mean_age", summary.MeanAge.Round(time.Second),
		"severity", summary.Severity,
	)

	return model.Page{
		State:       state,
		Entries:     entries,
		Summary:     summary,
		GeneratedAt: snapshot.GeneratedAt,
		Skipped:     skipped,
	}, nil
}

// Now returns the service clock's current time. Presenters use it so every
// relative label on a page is computed against the same clock.
func (s *FeedService) Now() time.Time {
	return s.now()
}

// severityTable returns the stored threshold table, falling back to the
// configured defaults when nothing is stored or the store fails.
func (s *FeedService) severityTable(ctx context.Context) model.SeverityTable {
	if s.thresholdStore == nil {
		return s.defaults
	}

	stored, err := s.thresholdStore.List(ctx)
	if err != nil {
		s.logger.Warn("failed to load severity thresholds, using defaults", "error", err)
		return s.defaults
	}
	if len(stored) == 0 {
		return s.defaults
	}
	return stored
}
