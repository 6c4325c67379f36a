package driven

import (
	"context"

	"github.com/ericfisherdev/reviewrot/internal/domain/model"
)

// FeedSource defines the driven port that produces the review-request feed.
// Implementations wrap every failure with model.ErrFeedUnavailable.
type FeedSource interface {
	Fetch(ctx context.Context) (model.FeedSnapshot, error)
}
