package driven

import (
	"context"

	"github.com/ericfisherdev/reviewrot/internal/domain/model"
)

// GitHubClient defines the driven port for reading open review requests
// from the GitHub API.
type GitHubClient interface {
	// FetchOpenReviewRequests returns every open pull request of the
	// repository as a review request. When withLastComment is set, the most
	// recent review or issue comment is attached to each request.
	FetchOpenReviewRequests(ctx context.Context, repoFullName string, withLastComment bool) ([]model.ReviewRequest, error)
}
