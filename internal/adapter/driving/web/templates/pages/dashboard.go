// Package pages holds full-page templ components.
package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/reviewrot/internal/adapter/driving/web/templates/components"
	vm "github.com/ericfisherdev/reviewrot/internal/adapter/driving/web/viewmodel"
)

// Dashboard renders the review page body: header, error indicator, the main
// and WIP entry lists and the footer.
func Dashboard(d vm.DashboardViewModel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := components.PageHeader(d.Title, d.Header).Render(ctx, w); err != nil {
			return err
		}
		if err := components.ErrorIndicator(d.ErrorVisible).Render(ctx, w); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<main>`); err != nil {
			return err
		}
		if d.Filter != "" {
			if _, err := fmt.Fprintf(w, `<p class="filter">Showing requests %s <a href="?">clear</a></p>`, templ.EscapeString(d.Filter)); err != nil {
				return err
			}
		}
		if err := components.EntryList("reviews", d.Entries).Render(ctx, w); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, `<h2 class="wip-header" id="wip-header"%s>Work in progress</h2>`,
			components.HiddenAttr(!d.ShowWIPHeader)); err != nil {
			return err
		}
		if err := components.EntryList("wip-reviews", d.WIPEntries).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</main>`); err != nil {
			return err
		}

		return components.Footer(d.Footer).Render(ctx, w)
	})
}
