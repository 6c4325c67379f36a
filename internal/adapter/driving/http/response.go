package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/reviewrot/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// FeedResponse is the JSON representation of one page load.
type FeedResponse struct {
	Entries     []EntryResponse `json:"entries"`
	WIPEntries  []EntryResponse `json:"wip_entries"`
	Summary     SummaryResponse `json:"summary"`
	GeneratedAt *string         `json:"generated_at"`
	Skipped     int             `json:"skipped"`
}

// EntryResponse is the JSON representation of a rendered review request.
// Times are Unix seconds, matching the input feed.
type EntryResponse struct {
	Title               string           `json:"title"`
	URL                 string           `json:"url"`
	Time                int64            `json:"time"`
	UpdatedTime         *int64           `json:"updated_time,omitempty"`
	User                string           `json:"user,omitempty"`
	Comments            int              `json:"comments"`
	Image               string           `json:"image,omitempty"`
	LastComment         *CommentResponse `json:"last_comment,omitempty"`
	ProjectName         string           `json:"project_name,omitempty"`
	ProjectURL          string           `json:"project_url,omitempty"`
	PrettyRepo          string           `json:"pretty_repo"`
	RepoURL             string           `json:"repo_url"`
	RelativeUpdatedTime string           `json:"relative_updated_time,omitempty"`
	IsWIP               bool             `json:"is_wip"`
}

// CommentResponse is the JSON representation of the most recent comment.
type CommentResponse struct {
	Author    string `json:"author"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"created_at"`
}

// SummaryResponse is the JSON representation of the average-age header.
type SummaryResponse struct {
	Label          string  `json:"label"`
	Severity       string  `json:"severity"`
	MeanAgeSeconds float64 `json:"mean_age_seconds"`
	Empty          bool    `json:"empty"`
}

// ThresholdResponse is one row of the severity threshold table.
type ThresholdResponse struct {
	Severity string `json:"severity"`
	MinAge   string `json:"min_age"`
}

// ThresholdsResponse is the JSON representation of the threshold table.
// Source is "stored" when the table comes from the database and "config"
// when it falls back to the configured defaults.
type ThresholdsResponse struct {
	Source     string              `json:"source"`
	Thresholds []ThresholdResponse `json:"thresholds"`
}

// PutThresholdsRequest is the JSON body for replacing the threshold table.
type PutThresholdsRequest struct {
	Thresholds []ThresholdResponse `json:"thresholds"`
}

// RepoResponse is the JSON representation of a watched repository.
type RepoResponse struct {
	FullName string `json:"full_name"`
	Owner    string `json:"owner"`
	Name     string `json:"name"`
	AddedAt  string `json:"added_at"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// AddRepoRequest is the JSON body for the add repository endpoint.
type AddRepoRequest struct {
	FullName string `json:"full_name"`
}

// toFeedResponse splits a rendered page into main and WIP entries.
func toFeedResponse(page model.Page) FeedResponse {
	resp := FeedResponse{
		Entries:    []EntryResponse{},
		WIPEntries: []EntryResponse{},
		Summary: SummaryResponse{
			Label:          page.Summary.Label,
			Severity:       string(page.Summary.Severity),
			MeanAgeSeconds: page.Summary.MeanAge.Seconds(),
			Empty:          page.Summary.Empty,
		},
		Skipped: page.Skipped,
	}

	if !page.GeneratedAt.IsZero() {
		s := page.GeneratedAt.UTC().Format(time.RFC3339)
		resp.GeneratedAt = &s
	}

	for _, e := range page.Entries {
		entry := toEntryResponse(e)
		if e.IsWIP {
			resp.WIPEntries = append(resp.WIPEntries, entry)
		} else {
			resp.Entries = append(resp.Entries, entry)
		}
	}

	return resp
}

// toEntryResponse converts a rendered request to its JSON representation.
func toEntryResponse(r model.RenderedRequest) EntryResponse {
	resp := EntryResponse{
		Title:               r.Title,
		URL:                 r.URL,
		Time:                r.Time.Unix(),
		User:                r.User,
		Comments:            r.Comments,
		Image:               r.Image,
		ProjectName:         r.ProjectName,
		ProjectURL:          r.ProjectURL,
		PrettyRepo:          r.PrettyRepo,
		RepoURL:             r.RepoURL,
		RelativeUpdatedTime: r.RelativeUpdatedTime,
		IsWIP:               r.IsWIP,
	}

	if r.UpdatedTime != nil {
		u := r.UpdatedTime.Unix()
		resp.UpdatedTime = &u
	}
	if r.LastComment != nil {
		resp.LastComment = &CommentResponse{
			Author:    r.LastComment.Author,
			Body:      r.LastComment.Body,
			CreatedAt: r.LastComment.CreatedAt.Unix(),
		}
	}

	return resp
}

// toThresholdResponses converts a severity table to its JSON representation.
func toThresholdResponses(table model.SeverityTable) []ThresholdResponse {
	resp := make([]ThresholdResponse, 0, len(table))
	for _, th := range table {
		resp = append(resp, ThresholdResponse{
			Severity: string(th.Severity),
			MinAge:   th.MinAge.String(),
		})
	}
	return resp
}

// toRepoResponse converts a domain Repository to its JSON response representation.
func toRepoResponse(repo model.Repository) RepoResponse {
	return RepoResponse{
		FullName: repo.FullName,
		Owner:    repo.Owner,
		Name:     repo.Name,
		AddedAt:  repo.AddedAt.UTC().Format(time.RFC3339),
	}
}
