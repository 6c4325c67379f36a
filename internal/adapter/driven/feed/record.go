package feed

import (
	"math"
	"time"

	"github.com/ericfisherdev/reviewrot/internal/domain/model"
)

// recordJSON is the wire form of one review request. Timestamps are Unix
// seconds and may carry a fractional part.
type recordJSON struct {
	Title       string           `json:"title"`
	URL         string           `json:"url"`
	Time        *float64         `json:"time"`
	UpdatedTime *float64         `json:"updated_time"`
	User        string           `json:"user"`
	Comments    int              `json:"comments"`
	Image       string           `json:"image"`
	LastComment *lastCommentJSON `json:"last_comment"`
	ProjectName string           `json:"project_name"`
	ProjectURL  string           `json:"project_url"`
}

type lastCommentJSON struct {
	Author    string   `json:"author"`
	Body      string   `json:"body"`
	CreatedAt *float64 `json:"created_at"`
}

func (r recordJSON) toModel() model.ReviewRequest {
	req := model.ReviewRequest{
		Title:       r.Title,
		URL:         r.URL,
		User:        r.User,
		Comments:    r.Comments,
		Image:       r.Image,
		ProjectName: r.ProjectName,
		ProjectURL:  r.ProjectURL,
	}

	if r.Time != nil {
		req.Time = unixSeconds(*r.Time)
	}
	if r.UpdatedTime != nil {
		updated := unixSeconds(*r.UpdatedTime)
		req.UpdatedTime = &updated
	}
	if r.LastComment != nil {
		lc := &model.LastComment{Author: r.LastComment.Author, Body: r.LastComment.Body}
		if r.LastComment.CreatedAt != nil {
			lc.CreatedAt = unixSeconds(*r.LastComment.CreatedAt)
		}
		req.LastComment = lc
	}

	return req
}

func unixSeconds(f float64) time.Time {
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
