package github_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	ghAdapter "github.com/ericfisherdev/reviewrot/internal/adapter/driven/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) (*ghAdapter.Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/")
	require.NoError(t, err)

	return client, server
}

// prJSON is a helper struct for building GitHub API pull request responses.
type prJSON struct {
	Number  int      `json:"number"`
	Title   string   `json:"title"`
	State   string   `json:"state"`
	HTMLURL string   `json:"html_url"`
	User    userJSON `json:"user"`
	Base    baseJSON `json:"base"`
	Created string   `json:"created_at"`
	Updated string   `json:"updated_at,omitempty"`
}

// prDetailJSON is the single pull request response. Unlike the list
// response it carries the comment counts.
type prDetailJSON struct {
	prJSON
	Comments       int `json:"comments"`
	ReviewComments int `json:"review_comments"`
}

type userJSON struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type baseJSON struct {
	Ref  string   `json:"ref"`
	Repo repoJSON `json:"repo"`
}

type repoJSON struct {
	HTMLURL string `json:"html_url,omitempty"`
}

type commentJSON struct {
	ID      int64    `json:"id"`
	Body    string   `json:"body"`
	User    userJSON `json:"user"`
	Created string   `json:"created_at"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestFetchOpenReviewRequests_SinglePage(t *testing.T) {
	prs := []prJSON{
		{
			Number:  42,
			Title:   "Add feature X",
			State:   "open",
			HTMLURL: "https://github.com/owner/repo/pull/42",
			User:    userJSON{Login: "alice", AvatarURL: "https://avatars.example.com/alice"},
			Base:    baseJSON{Ref: "main", Repo: repoJSON{HTMLURL: "https://github.com/owner/repo"}},
			Created: "2026-01-01T00:00:00Z",
			Updated: "2026-01-02T12:00:00Z",
		},
		{
			Number:  43,
			Title:   "[WIP] Fix bug Y",
			State:   "open",
			HTMLURL: "https://github.com/owner/repo/pull/43",
			User:    userJSON{Login: "bob"},
			Created: "2026-01-03T00:00:00Z",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		assert.Equal(t, "created", r.URL.Query().Get("sort"))
		assert.Equal(t, "asc", r.URL.Query().Get("direction"))
		writeJSON(w, prs)
	})
	mux.HandleFunc("/repos/owner/repo/pulls/42", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, prDetailJSON{prJSON: prs[0], Comments: 2, ReviewComments: 3})
	})
	mux.HandleFunc("/repos/owner/repo/pulls/43", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, prDetailJSON{prJSON: prs[1]})
	})

	client, _ := newTestClient(t, mux)
	result, err := client.FetchOpenReviewRequests(context.Background(), "owner/repo", false)

	require.NoError(t, err)
	require.Len(t, result, 2)

	first := result[0]
	assert.Equal(t, "Add feature X", first.Title)
	assert.Equal(t, "https://github.com/owner/repo/pull/42", first.URL)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), first.Time.UTC())
	require.NotNil(t, first.UpdatedTime)
	assert.Equal(t, time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC), first.UpdatedTime.UTC())
	assert.Equal(t, "alice", first.User)
	assert.Equal(t, "https://avatars.example.com/alice", first.Image)
	assert.Equal(t, 5, first.Comments)
	assert.Equal(t, "owner/repo", first.ProjectName)
	assert.Equal(t, "https://github.com/owner/repo", first.ProjectURL)
	assert.Nil(t, first.LastComment)

	second := result[1]
	assert.Nil(t, second.UpdatedTime)
	assert.Zero(t, second.Comments)
	assert.Equal(t, "https://github.com/owner/repo", second.ProjectURL, "falls back to github.com when base repo is missing")
}

func TestFetchOpenReviewRequests_CommentCountFromDetail(t *testing.T) {
	var detailCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/pulls", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []prJSON{{Number: 1, Title: "Busy", HTMLURL: "https://github.com/owner/repo/pull/1", Created: "2026-01-01T00:00:00Z"}})
	})
	mux.HandleFunc("/repos/owner/repo/pulls/1", func(w http.ResponseWriter, _ *http.Request) {
		detailCalls.Add(1)
		writeJSON(w, prDetailJSON{
			prJSON:         prJSON{Number: 1, Title: "Busy", Created: "2026-01-01T00:00:00Z"},
			Comments:       4,
			ReviewComments: 3,
		})
	})

	client, _ := newTestClient(t, mux)
	result, err := client.FetchOpenReviewRequests(context.Background(), "owner/repo", false)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 7, result[0].Comments)
	assert.Equal(t, int32(1), detailCalls.Load())
}

func TestFetchOpenReviewRequests_DetailError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/pulls", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []prJSON{{Number: 9, Title: "Gone", HTMLURL: "https://github.com/owner/repo/pull/9", Created: "2026-01-01T00:00:00Z"}})
	})
	mux.HandleFunc("/repos/owner/repo/pulls/9", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Server Error"}`, http.StatusInternalServerError)
	})

	client, _ := newTestClient(t, mux)
	_, err := client.FetchOpenReviewRequests(context.Background(), "owner/repo", false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner/repo#9")
}

func TestFetchOpenReviewRequests_Pagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/pulls", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")

		if page == "" || page == "1" {
			// Page 1: include Link header pointing to page 2
			w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, "http://"+r.Host+r.URL.Path))
			writeJSON(w, []prJSON{{Number: 1, Title: "PR One", HTMLURL: "https://github.com/owner/repo/pull/1", Created: "2026-01-01T00:00:00Z"}})
			return
		}
		// Page 2: no Link header (last page)
		writeJSON(w, []prJSON{{Number: 2, Title: "PR Two", HTMLURL: "https://github.com/owner/repo/pull/2", Created: "2026-01-02T00:00:00Z"}})
	})
	mux.HandleFunc("/repos/owner/repo/pulls/{number}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, prDetailJSON{Comments: 1})
	})

	client, _ := newTestClient(t, mux)
	result, err := client.FetchOpenReviewRequests(context.Background(), "owner/repo", false)

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "PR One", result[0].Title)
	assert.Equal(t, "PR Two", result[1].Title)
	assert.Equal(t, 1, result[1].Comments)
}

func TestFetchOpenReviewRequests_LastComment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/pulls", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []prJSON{{Number: 7, Title: "Needs eyes", HTMLURL: "https://github.com/owner/repo/pull/7", Created: "2026-01-01T00:00:00Z"}})
	})
	mux.HandleFunc("/repos/owner/repo/pulls/7/comments", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []commentJSON{
			{ID: 1, Body: "nit: rename", User: userJSON{Login: "carol"}, Created: "2026-01-02T00:00:00Z"},
		})
	})
	mux.HandleFunc("/repos/owner/repo/issues/7/comments", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []commentJSON{
			{ID: 2, Body: "ping", User: userJSON{Login: "dave"}, Created: "2026-01-04T00:00:00Z"},
			{ID: 3, Body: "older", User: userJSON{Login: "erin"}, Created: "2026-01-01T12:00:00Z"},
		})
	})

	client, _ := newTestClient(t, mux)
	result, err := client.FetchOpenReviewRequests(context.Background(), "owner/repo", true)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 3, result[0].Comments)
	require.NotNil(t, result[0].LastComment)
	assert.Equal(t, "dave", result[0].LastComment.Author)
	assert.Equal(t, "ping", result[0].LastComment.Body)
	assert.Equal(t, time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC), result[0].LastComment.CreatedAt.UTC())
}

func TestFetchOpenReviewRequests_NoComments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/pulls", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []prJSON{{Number: 8, Title: "Quiet", HTMLURL: "https://github.com/owner/repo/pull/8", Created: "2026-01-01T00:00:00Z"}})
	})
	mux.HandleFunc("/repos/owner/repo/pulls/8/comments", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []commentJSON{})
	})
	mux.HandleFunc("/repos/owner/repo/issues/8/comments", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []commentJSON{})
	})

	client, _ := newTestClient(t, mux)
	result, err := client.FetchOpenReviewRequests(context.Background(), "owner/repo", true)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Zero(t, result[0].Comments)
	assert.Nil(t, result[0].LastComment)
}

func TestFetchOpenReviewRequests_EmptyRepo(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []prJSON{})
	})

	client, _ := newTestClient(t, handler)
	result, err := client.FetchOpenReviewRequests(context.Background(), "owner/repo", false)

	require.NoError(t, err)
	assert.NotNil(t, result, "should return empty slice, not nil")
	assert.Empty(t, result)
}

func TestFetchOpenReviewRequests_APIError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})

	client, _ := newTestClient(t, handler)
	_, err := client.FetchOpenReviewRequests(context.Background(), "owner/missing", false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner/missing")
}

func TestFetchOpenReviewRequests_InvalidRepoName(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server should not be called for invalid repo name")
	})

	client, _ := newTestClient(t, handler)

	tests := []struct {
		name string
		repo string
	}{
		{name: "no slash", repo: "invalid"},
		{name: "empty owner", repo: "/repo"},
		{name: "empty repo", repo: "owner/"},
		{name: "empty string", repo: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.FetchOpenReviewRequests(context.Background(), tc.repo, false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid repo name")
		})
	}
}
