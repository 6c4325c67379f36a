package application

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/reviewrot/internal/domain/model"
)

// ErrInvalidPageOptions indicates a sort, reverse, ignore_wip or
// last_comment_days parameter could not be parsed.
var ErrInvalidPageOptions = errors.New("invalid page options")

// SortKey selects the event time entries are ordered by.
type SortKey string

const (
	// SortFeed keeps the order the feed published.
	SortFeed      SortKey = ""
	SortSubmitted SortKey = "submitted"
	SortUpdated   SortKey = "updated"
	SortCommented SortKey = "commented"
)

// ParseSortKey validates a sort parameter. The empty string is SortFeed.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortFeed, SortSubmitted, SortUpdated, SortCommented:
		return k, nil
	default:
		return "", fmt.Errorf("%w: sort %q (want submitted, updated or commented)", ErrInvalidPageOptions, s)
	}
}

// PageOptions are the per-load display options of a page. The zero value
// shows every transformed request in feed order.
type PageOptions struct {
	Age     *AgeFilter
	Sort    SortKey
	Reverse bool
	// IgnoreWIP drops work-in-progress requests from the page.
	IgnoreWIP bool
	// LastCommentDays drops requests whose last comment is newer than that
	// many days. Zero disables the filter.
	LastCommentDays int
}

// PageOptionsFromQuery builds the options of a page load from its query
// parameters: older, newer, sort, reverse, ignore_wip and last_comment_days.
// A boolean given without a value ("?reverse") is true.
func PageOptionsFromQuery(q url.Values) (PageOptions, error) {
	var opts PageOptions

	age, err := AgeFilterFromQuery(q.Get("older"), q.Get("newer"))
	if err != nil {
		return PageOptions{}, err
	}
	opts.Age = age

	if opts.Sort, err = ParseSortKey(q.Get("sort")); err != nil {
		return PageOptions{}, err
	}
	if opts.Reverse, err = queryBool(q, "reverse"); err != nil {
		return PageOptions{}, err
	}
	if opts.IgnoreWIP, err = queryBool(q, "ignore_wip"); err != nil {
		return PageOptions{}, err
	}

	if v := q.Get("last_comment_days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			return PageOptions{}, fmt.Errorf("%w: last_comment_days %q (want a non-negative integer)", ErrInvalidPageOptions, v)
		}
		opts.LastCommentDays = days
	}

	return opts, nil
}

func queryBool(q url.Values, key string) (bool, error) {
	if !q.Has(key) {
		return false, nil
	}
	v := q.Get(key)
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s %q", ErrInvalidPageOptions, key, v)
	}
	return b, nil
}

// IsZero reports whether the options leave the page untouched.
func (o PageOptions) IsZero() bool {
	return o.Age == nil && o.Sort == SortFeed && !o.Reverse && !o.IgnoreWIP && o.LastCommentDays == 0
}

// String renders the active options the way they are written in a query
// string, separated by spaces. It is empty for the zero value.
func (o PageOptions) String() string {
	var parts []string
	if o.Age != nil {
		parts = append(parts, o.Age.String())
	}
	if o.Sort != SortFeed {
		parts = append(parts, "sort="+string(o.Sort))
	}
	if o.Reverse {
		parts = append(parts, "reverse")
	}
	if o.IgnoreWIP {
		parts = append(parts, "ignore_wip")
	}
	if o.LastCommentDays > 0 {
		parts = append(parts, "last_comment_days="+strconv.Itoa(o.LastCommentDays))
	}
	return strings.Join(parts, " ")
}

// Keep reports whether a transformed request survives the age, WIP and
// last-comment filters.
func (o PageOptions) Keep(r model.RenderedRequest, now time.Time) bool {
	if o.Age != nil && !o.Age.Keep(r.ReviewRequest, now) {
		return false
	}
	if o.IgnoreWIP && r.IsWIP {
		return false
	}
	if o.LastCommentDays > 0 && r.LastComment != nil {
		if r.LastComment.CreatedAt.After(now.AddDate(0, 0, -o.LastCommentDays)) {
			return false
		}
	}
	return true
}

// Order sorts entries in place by the selected event time, oldest first,
// then reverses them when Reverse is set. The sort is stable so ties keep
// feed order. Requests that were never updated or commented on sort by
// their submission time.
func (o PageOptions) Order(entries []model.RenderedRequest) {
	if o.Sort != SortFeed {
		slices.SortStableFunc(entries, func(a, b model.RenderedRequest) int {
			return o.eventTime(a).Compare(o.eventTime(b))
		})
	}
	if o.Reverse {
		slices.Reverse(entries)
	}
}

func (o PageOptions) eventTime(r model.RenderedRequest) time.Time {
	switch o.Sort {
	case SortUpdated:
		if r.UpdatedTime != nil {
			return *r.UpdatedTime
		}
	case SortCommented:
		if r.LastComment != nil {
			return r.LastComment.CreatedAt
		}
	}
	return r.Time
}
