// Package components holds the fragments the review page is assembled from.
package components

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/reviewrot/internal/adapter/driving/web/viewmodel"
)

// PageHeader renders the average-age header.
func PageHeader(title string, h *vm.HeaderViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<header class="page-header"><h1>`)
		b.WriteString(templ.EscapeString(title))
		b.WriteString(`</h1>`)

		if h != nil {
			if h.Empty {
				b.WriteString(`<p class="age age-neutral" id="average-age">No open review requests</p>`)
			} else {
				fmt.Fprintf(&b, `<p class="age %s" id="average-age" data-severity="%s">Average age of %d requests: <strong>%s</strong></p>`,
					templ.EscapeString(h.SeverityClass),
					templ.EscapeString(h.Severity),
					h.Count,
					templ.EscapeString(h.Label),
				)
			}
		}

		b.WriteString(`</header>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Entry renders one review request.
func Entry(e vm.EntryViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder

		class := "entry"
		if e.IsWIP {
			class += " entry-wip"
		}
		fmt.Fprintf(&b, `<li class="%s">`, class)

		if e.Image != "" {
			fmt.Fprintf(&b, `<img class="avatar" src="%s" alt="%s" width="40" height="40">`,
				safeURL(e.Image), templ.EscapeString(e.User))
		}

		fmt.Fprintf(&b, `<div class="entry-body"><a class="entry-title" href="%s">%s</a>`,
			safeURL(e.URL), e.TitleHTML)

		b.WriteString(`<div class="entry-meta">`)
		if e.PrettyRepo != "" {
			fmt.Fprintf(&b, `<a class="repo" href="%s">%s</a> `, safeURL(e.RepoURL), templ.EscapeString(e.PrettyRepo))
		}
		if e.User != "" {
			fmt.Fprintf(&b, `<span class="user">by %s</span> `, templ.EscapeString(e.User))
		}
		fmt.Fprintf(&b, `<span class="age">opened %s</span>`, templ.EscapeString(e.Age))
		if e.Updated != "" {
			fmt.Fprintf(&b, ` <span class="updated">updated %s</span>`, templ.EscapeString(e.Updated))
		}
		if e.Comments > 0 {
			fmt.Fprintf(&b, ` <span class="comments">%d comments</span>`, e.Comments)
		}
		b.WriteString(`</div>`)

		if c := e.LastComment; c != nil {
			fmt.Fprintf(&b, `<blockquote class="last-comment"><span class="author">%s</span> <span class="age">%s</span>%s</blockquote>`,
				templ.EscapeString(c.Author), templ.EscapeString(c.Age), c.BodyHTML)
		}

		b.WriteString(`</div></li>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// EntryList renders entries into the list with the given id.
func EntryList(id string, entries []vm.EntryViewModel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<ul class="entries" id="%s">`, templ.EscapeString(id)); err != nil {
			return err
		}
		for _, e := range entries {
			if err := Entry(e).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul>`)
		return err
	})
}

// Footer renders the "generated" footer.
func Footer(f *vm.FooterViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if f == nil {
			_, err := io.WriteString(w, `<footer class="footer"></footer>`)
			return err
		}

		var b strings.Builder
		fmt.Fprintf(&b, `<footer class="footer"><p>Generated %s</p>`, templ.EscapeString(f.Generated))
		if f.Skipped > 0 {
			fmt.Fprintf(&b, `<p class="skipped">%d malformed requests were skipped</p>`, f.Skipped)
		}
		b.WriteString(`</footer>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ErrorIndicator renders the feed error message. When visible is false the
// element carries the hidden attribute and needs no stylesheet to stay out
// of sight.
func ErrorIndicator(visible bool) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="error-message" id="error-message" role="alert"%s>The review feed could not be loaded. Try again later.</div>`,
			HiddenAttr(!visible))
		return err
	})
}

// HiddenAttr returns the boolean hidden attribute, with its leading space,
// when hidden is set.
func HiddenAttr(hidden bool) string {
	if hidden {
		return " hidden"
	}
	return ""
}

func safeURL(u string) string {
	return templ.EscapeString(string(templ.URL(u)))
}
