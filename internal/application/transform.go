package application

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ericfisherdev/reviewrot/internal/domain/model"
)

// defaultTrailingSegments is the length of the request-identifying path
// suffix on hosts without a rule, e.g. "pull/63" or "merge_requests/29".
const defaultTrailingSegments = 2

var (
	// ErrMalformedRecord indicates a feed record is missing a required field.
	ErrMalformedRecord = errors.New("malformed review request")

	// ErrUnrecognizedURL indicates a review URL is not absolute or its path
	// is too short to hold a repository plus the request suffix.
	ErrUnrecognizedURL = errors.New("unrecognized review url")
)

// HostRules maps a URL host to the number of trailing path segments that
// identify the review request on that host. Hosts not present use
// defaultTrailingSegments.
type HostRules map[string]int

// TrailingSegments returns the suffix length for host.
func (r HostRules) TrailingSegments(host string) int {
	if n, ok := r[strings.ToLower(host)]; ok && n > 0 {
		return n
	}
	return defaultTrailingSegments
}

// splitReviewURL parses raw and returns it together with the path segments
// that name the repository.
func (r HostRules) splitReviewURL(raw string) (*url.URL, []string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %q: %v", ErrUnrecognizedURL, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, nil, fmt.Errorf("%w: %q is not absolute", ErrUnrecognizedURL, raw)
	}

	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	n := r.TrailingSegments(u.Hostname())
	if len(segments) <= n {
		return nil, nil, fmt.Errorf("%w: %q has %d path segments, need more than %d", ErrUnrecognizedURL, raw, len(segments), n)
	}

	kept := segments[:len(segments)-n]
	// GitLab separates the project path from its sub-resources with "/-/".
	if len(kept) > 1 && kept[len(kept)-1] == "-" {
		kept = kept[:len(kept)-1]
	}

	return u, kept, nil
}

// PrettifyRepo returns the short repository label of a review URL:
// "https://github.com/org/repo/pull/63" becomes "org/repo".
func (r HostRules) PrettifyRepo(raw string) (string, error) {
	_, kept, err := r.splitReviewURL(raw)
	if err != nil {
		return "", err
	}
	return strings.Join(kept, "/"), nil
}

// RepoURL returns the review URL with the request suffix, query and
// fragment removed: "https://github.com/org/repo/pull/63" becomes
// "https://github.com/org/repo".
func (r HostRules) RepoURL(raw string) (string, error) {
	u, kept, err := r.splitReviewURL(raw)
	if err != nil {
		return "", err
	}
	base := url.URL{
		Scheme: u.Scheme,
		User:   u.User,
		Host:   u.Host,
		Path:   "/" + strings.Join(kept, "/"),
	}
	return base.String(), nil
}

// WIPMatch selects how a title is recognized as work in progress.
type WIPMatch string

const (
	// WIPMatchSubstring flags any title whose upper-cased form contains "WIP".
	WIPMatchSubstring WIPMatch = "substring"
	// WIPMatchPrefix flags titles that start with WIP or Draft, optionally
	// bracketed, followed by a colon, whitespace or the end of the title.
	WIPMatchPrefix WIPMatch = "prefix"
)

var wipPrefixPattern = regexp.MustCompile(`(?i)^(\[(WIP|Draft)\]|(WIP|Draft)(:|\s|$))`)

// ParseWIPMatch validates a WIP match mode name.
func ParseWIPMatch(s string) (WIPMatch, error) {
	switch WIPMatch(s) {
	case WIPMatchSubstring, WIPMatchPrefix:
		return WIPMatch(s), nil
	default:
		return "", fmt.Errorf("unknown wip match mode %q (want %q or %q)", s, WIPMatchSubstring, WIPMatchPrefix)
	}
}

// IsWIP reports whether title marks a work-in-progress request.
func (m WIPMatch) IsWIP(title string) bool {
	if m == WIPMatchPrefix {
		return wipPrefixPattern.MatchString(strings.TrimSpace(title))
	}
	return strings.Contains(strings.ToUpper(title), "WIP")
}

// Transformer derives the display fields of a review request.
type Transformer struct {
	Rules HostRules
	WIP   WIPMatch
}

// Transform validates req and annotates it with its repository label,
// repository URL, relative update time and WIP classification. It never
// mutates req.
func (t Transformer) Transform(req model.ReviewRequest, now time.Time) (model.RenderedRequest, error) {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return model.RenderedRequest{}, fmt.Errorf("%w: missing title", ErrMalformedRecord)
	case strings.TrimSpace(req.URL) == "":
		return model.RenderedRequest{}, fmt.Errorf("%w: missing url", ErrMalformedRecord)
	case req.Time.IsZero():
		return model.RenderedRequest{}, fmt.Errorf("%w: missing time", ErrMalformedRecord)
	}

	pretty, err := t.Rules.PrettifyRepo(req.URL)
	if err != nil {
		return model.RenderedRequest{}, err
	}
	repoURL, err := t.Rules.RepoURL(req.URL)
	if err != nil {
		return model.RenderedRequest{}, err
	}

	rendered := model.RenderedRequest{
		ReviewRequest: req,
		PrettyRepo:    pretty,
		RepoURL:       repoURL,
		IsWIP:         t.WIP.IsWIP(req.Title),
	}
	if req.UpdatedTime != nil {
		rendered.RelativeUpdatedTime = RelativeTime(*req.UpdatedTime, now)
	}

	return rendered, nil
}
