package model

import "time"

// ReviewRequest is a single code-review request as published by the feed.
// Time is when the request was filed; UpdatedTime is nil when the feed did
// not carry an updated_time for the record.
type ReviewRequest struct {
	Title       string
	URL         string
	Time        time.Time
	UpdatedTime *time.Time

	// Optional fields emitted by the review-rot backend.
	User        string
	Comments    int
	Image       string
	LastComment *LastComment
	ProjectName string
	ProjectURL  string
}

// LastComment is the most recent comment left on a review request.
type LastComment struct {
	Author    string
	Body      string
	CreatedAt time.Time
}

// RenderedRequest is a ReviewRequest annotated with the fields derived for
// display.
type RenderedRequest struct {
	ReviewRequest

	PrettyRepo          string
	RepoURL             string
	RelativeUpdatedTime string // Empty when UpdatedTime is nil.
	IsWIP               bool
}

// FeedSnapshot is the result of one successful feed fetch. GeneratedAt is
// the zero time when the source did not say when the feed was produced.
type FeedSnapshot struct {
	Requests    []ReviewRequest
	GeneratedAt time.Time
}
