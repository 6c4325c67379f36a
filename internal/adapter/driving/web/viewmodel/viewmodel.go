// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// EntryViewModel holds presentation-ready data for one review request.
type EntryViewModel struct {
	Title     string
	TitleHTML string
	URL       string
	User      string
	Image     string
	Comments  int

	PrettyRepo string
	RepoURL    string

	// Age is the relative creation time, e.g. "3 days ago".
	Age string
	// Updated is empty when the request carries no updated time.
	Updated string

	ProjectName string
	ProjectURL  string

	LastComment *CommentViewModel
	IsWIP       bool
}

// CommentViewModel holds presentation-ready data for the most recent comment.
type CommentViewModel struct {
	Author   string
	BodyHTML string
	Age      string
}

// HeaderViewModel holds the average-age header.
type HeaderViewModel struct {
	Label         string
	Severity      string
	SeverityClass string
	Empty         bool
	Count         int
}

// FooterViewModel holds the "generated" footer.
type FooterViewModel struct {
	Generated string
	Skipped   int
}

// DashboardViewModel holds all data needed to render the review page.
type DashboardViewModel struct {
	Title string

	Entries       []EntryViewModel
	WIPEntries    []EntryViewModel
	ShowWIPHeader bool

	// Header and Footer are nil when the feed could not be loaded.
	Header *HeaderViewModel
	Footer *FooterViewModel

	ErrorVisible bool
	Filter       string
}
