// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/reviewrot/internal/domain/model"
	"github.com/ericfisherdev/reviewrot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// Client implements the driven.GitHubClient port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
//
// An empty token makes unauthenticated requests, which GitHub limits to 60
// per hour.
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// FetchOpenReviewRequests retrieves the open pull requests of a repository,
// oldest first, and maps them to review requests. The list endpoint carries
// no comment counts, so every pull request costs one more call: its detail
// when withLastComment is unset, or its review and issue comment listings
// (count plus most recent comment) when it is set.
func (c *Client) FetchOpenReviewRequests(ctx context.Context, repoFullName string, withLastComment bool) ([]model.ReviewRequest, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.PullRequestListOptions{
		State:     "open",
		Sort:      "created",
		Direction: "asc",
		ListOptions: gh.ListOptions{
			PerPage: 100,
		},
	}

	requests := []model.ReviewRequest{}

	for {
		prs, resp, err := c.gh.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing pull requests for %s (page %d): %w", repoFullName, opts.Page, err)
		}

		logRateLimit(resp, repoFullName, opts.Page, len(prs))

		for _, pr := range prs {
			req := mapReviewRequest(pr, repoFullName)
			if withLastComment {
				count, last, err := c.fetchComments(ctx, owner, repo, pr.GetNumber())
				if err != nil {
					return nil, fmt.Errorf("comments for %s#%d: %w", repoFullName, pr.GetNumber(), err)
				}
				req.Comments = count
				req.LastComment = last
			} else {
				count, err := c.fetchCommentCount(ctx, owner, repo, pr.GetNumber())
				if err != nil {
					return nil, fmt.Errorf("comment count for %s#%d: %w", repoFullName, pr.GetNumber(), err)
				}
				req.Comments = count
			}
			requests = append(requests, req)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return requests, nil
}

// fetchComments lists review comments and issue comments of a pull request
// and returns their total count and the newest of them (nil when there are
// none).
func (c *Client) fetchComments(ctx context.Context, owner, repo string, number int) (int, *model.LastComment, error) {
	var newest *model.LastComment
	count := 0

	consider := func(author, body string, createdAt time.Time) {
		count++
		if newest == nil || createdAt.After(newest.CreatedAt) {
			newest = &model.LastComment{Author: author, Body: body, CreatedAt: createdAt}
		}
	}

	reviewOpts := &gh.PullRequestListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		comments, resp, err := c.gh.PullRequests.ListComments(ctx, owner, repo, number, reviewOpts)
		if err != nil {
			return 0, nil, fmt.Errorf("listing review comments (page %d): %w", reviewOpts.Page, err)
		}
		for _, cm := range comments {
			consider(cm.GetUser().GetLogin(), cm.GetBody(), cm.GetCreatedAt().Time)
		}
		if resp.NextPage == 0 {
			break
		}
		reviewOpts.Page = resp.NextPage
	}

	issueOpts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, number, issueOpts)
		if err != nil {
			return 0, nil, fmt.Errorf("listing issue comments (page %d): %w", issueOpts.Page, err)
		}
		for _, cm := range comments {
			consider(cm.GetUser().GetLogin(), cm.GetBody(), cm.GetCreatedAt().Time)
		}
		if resp.NextPage == 0 {
			break
		}
		issueOpts.Page = resp.NextPage
	}

	return count, newest, nil
}

// fetchCommentCount reads the issue and review comment counts from the pull
// request detail.
func (c *Client) fetchCommentCount(ctx context.Context, owner, repo string, number int) (int, error) {
	pr, resp, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return 0, fmt.Errorf("getting pull request: %w", err)
	}
	logRateLimit(resp, fmt.Sprintf("%s/%s#%d", owner, repo, number), 0, 1)
	return pr.GetComments() + pr.GetReviewComments(), nil
}

// mapReviewRequest converts a go-github PullRequest to a domain ReviewRequest.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapReviewRequest(pr *gh.PullRequest, repoFullName string) model.ReviewRequest {
	projectURL := pr.GetBase().GetRepo().GetHTMLURL()
	if projectURL == "" {
		projectURL = "https://github.com/" + repoFullName
	}

	req := model.ReviewRequest{
		Title:       pr.GetTitle(),
		URL:         pr.GetHTMLURL(),
		Time:        pr.GetCreatedAt().Time,
		User:        pr.GetUser().GetLogin(),
		Image:       pr.GetUser().GetAvatarURL(),
		ProjectName: repoFullName,
		ProjectURL:  projectURL,
	}

	if updated := pr.GetUpdatedAt(); !updated.IsZero() {
		t := updated.Time
		req.UpdatedTime = &t
	}

	return req
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
