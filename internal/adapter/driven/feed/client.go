// Package feed implements the FeedSource port by fetching the review-rot
// JSON document over HTTP(S) or from a file:// URL.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/reviewrot/internal/domain/model"
	"github.com/ericfisherdev/reviewrot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.FeedSource = (*Client)(nil)

// maxFeedBytes bounds how much of a response body is decoded.
const maxFeedBytes = 32 << 20

// Client fetches the feed document from a fixed URL.
type Client struct {
	http    *http.Client
	feedURL string
}

// NewClient creates a feed Client with the following transport stack:
//  1. httpcache (stores the last response; every request is sent with
//     Cache-Control: max-age=0 so a stored copy is never served without
//     an ETag / Last-Modified revalidation upstream)
//  2. http.Transport with a file:// protocol handler for local feeds
//
// timeout bounds a whole fetch including reading the body; zero disables it.
func NewClient(feedURL string, timeout time.Duration) *Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	cacheTransport := httpcache.NewMemoryCacheTransport()
	cacheTransport.Transport = base

	return &Client{
		http:    &http.Client{Transport: cacheTransport, Timeout: timeout},
		feedURL: feedURL,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, feedURL string) *Client {
	return &Client{http: httpClient, feedURL: feedURL}
}

// Fetch retrieves and decodes the feed. GeneratedAt is taken from the
// Last-Modified response header and is zero when the header is missing.
// Every failure wraps model.ErrFeedUnavailable.
func (c *Client) Fetch(ctx context.Context) (model.FeedSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return model.FeedSnapshot{}, fmt.Errorf("fetch feed: build request: %w: %w", model.ErrFeedUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "max-age=0")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.FeedSnapshot{}, fmt.Errorf("fetch feed: %w: %w", model.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.FeedSnapshot{}, fmt.Errorf("fetch feed: status %d: %w", resp.StatusCode, model.ErrFeedUnavailable)
	}

	requests, err := decodeFeed(io.LimitReader(resp.Body, maxFeedBytes))
	// httpcache stores the response once its body has been read to EOF.
	_, _ = io.Copy(io.Discard, resp.Body)
	if err != nil {
		return model.FeedSnapshot{}, fmt.Errorf("fetch feed: %w: %w", model.ErrFeedUnavailable, err)
	}

	slog.Debug("feed fetched",
		"url", c.feedURL,
		"requests", len(requests),
		"from_cache", resp.Header.Get(httpcache.XFromCache) == "1",
	)

	return model.FeedSnapshot{
		Requests:    requests,
		GeneratedAt: parseLastModified(resp.Header.Get("Last-Modified")),
	}, nil
}

// parseLastModified returns the zero time for a missing or invalid header.
func parseLastModified(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := http.ParseTime(v)
	if err != nil {
		slog.Warn("ignoring invalid Last-Modified header", "value", v, "error", err)
		return time.Time{}
	}
	return t.UTC()
}

// decodeFeed decodes the top-level array strictly and each record leniently:
// a record that does not match the schema becomes an empty ReviewRequest so
// that the pipeline skips and counts it instead of failing the whole page.
// A null document or anything after the array is an error.
func decodeFeed(r io.Reader) ([]model.ReviewRequest, error) {
	dec := json.NewDecoder(r)

	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	if raw == nil {
		return nil, errors.New("decode feed: document is null, want an array")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode feed: unexpected data after the array")
	}

	requests := make([]model.ReviewRequest, 0, len(raw))
	for i, msg := range raw {
		var rec recordJSON
		if err := json.Unmarshal(msg, &rec); err != nil {
			slog.Warn("undecodable feed record", "index", i, "error", err)
			requests = append(requests, model.ReviewRequest{})
			continue
		}
		requests = append(requests, rec.toModel())
	}

	return requests, nil
}
