package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrFeedUnavailable is the single user-facing failure of a page load. It
// covers network errors, non-2xx responses and undecodable feeds.
var ErrFeedUnavailable = errors.New("feed unavailable")

// ErrInvalidTransition is returned when a page load moves between states in
// an order the lifecycle does not allow.
var ErrInvalidTransition = errors.New("invalid page state transition")

// PageState is the lifecycle of a single page load.
type PageState string

const (
	PageIdle     PageState = "idle"
	PageLoading  PageState = "loading"
	PageRendered PageState = "rendered"
	PageErrored  PageState = "errored"
)

// Transition validates moving from s to next. The lifecycle is one-shot:
// idle -> loading -> (rendered | errored).
func (s PageState) Transition(next PageState) (PageState, error) {
	switch {
	case s == PageIdle && next == PageLoading,
		s == PageLoading && next == PageRendered,
		s == PageLoading && next == PageErrored:
		return next, nil
	default:
		return s, fmt.Errorf("%s -> %s: %w", s, next, ErrInvalidTransition)
	}
}

// Page is everything a presenter needs to draw one page load.
type Page struct {
	State       PageState
	Entries     []RenderedRequest
	Summary     AgeSummary
	GeneratedAt time.Time
	Skipped     int
	Err         error
}
