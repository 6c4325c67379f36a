package web

import (
	"time"

	vm "github.com/ericfisherdev/reviewrot/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/reviewrot/internal/application"
	"github.com/ericfisherdev/reviewrot/internal/domain/model"
)

const pageTitle = "Review Rot"

// Present converts a loaded page into the dashboard view model. It is pure:
// now is the clock every relative label is computed against.
//
// An errored page yields only the error indicator. Otherwise every entry
// lands in exactly one of Entries or WIPEntries according to its IsWIP flag.
func Present(page model.Page, now time.Time) vm.DashboardViewModel {
	dash := vm.DashboardViewModel{
		Title:      pageTitle,
		Entries:    []vm.EntryViewModel{},
		WIPEntries: []vm.EntryViewModel{},
	}

	if page.State == model.PageErrored || page.Err != nil {
		dash.ErrorVisible = true
		return dash
	}

	for _, e := range page.Entries {
		entry := toEntryViewModel(e, now)
		if entry.IsWIP {
			dash.WIPEntries = append(dash.WIPEntries, entry)
		} else {
			dash.Entries = append(dash.Entries, entry)
		}
	}
	dash.ShowWIPHeader = len(dash.WIPEntries) > 0

	dash.Header = toHeaderViewModel(page.Summary, len(page.Entries))
	dash.Footer = &vm.FooterViewModel{
		Generated: generatedLabel(page.GeneratedAt, now),
		Skipped:   page.Skipped,
	}

	return dash
}

func toEntryViewModel(r model.RenderedRequest, now time.Time) vm.EntryViewModel {
	entry := vm.EntryViewModel{
		Title:       r.Title,
		TitleHTML:   RenderInlineMarkdown(r.Title),
		URL:         r.URL,
		User:        r.User,
		Image:       r.Image,
		Comments:    r.Comments,
		PrettyRepo:  r.PrettyRepo,
		RepoURL:     r.RepoURL,
		Age:         application.RelativeTime(r.Time, now),
		Updated:     r.RelativeUpdatedTime,
		ProjectName: r.ProjectName,
		ProjectURL:  r.ProjectURL,
		IsWIP:       r.IsWIP,
	}

	if r.LastComment != nil {
		entry.LastComment = &vm.CommentViewModel{
			Author:   r.LastComment.Author,
			BodyHTML: RenderMarkdown(r.LastComment.Body),
			Age:      application.RelativeTime(r.LastComment.CreatedAt, now),
		}
	}

	return entry
}

func toHeaderViewModel(s model.AgeSummary, count int) *vm.HeaderViewModel {
	severity := s.Severity
	if severity == "" {
		severity = model.SeverityNeutral
	}

	return &vm.HeaderViewModel{
		Label:         s.Label,
		Severity:      string(severity),
		SeverityClass: severityClass(severity),
		Empty:         s.Empty,
		Count:         count,
	}
}

func severityClass(s model.Severity) string {
	switch s {
	case model.SeverityWarning:
		return "age-warning"
	case model.SeverityDanger:
		return "age-danger"
	default:
		return "age-neutral"
	}
}

// generatedLabel returns "unknown" when the feed did not say when it was
// produced.
func generatedLabel(generatedAt, now time.Time) string {
	if generatedAt.IsZero() {
		return "unknown"
	}
	return application.RelativeTime(generatedAt, now)
}
