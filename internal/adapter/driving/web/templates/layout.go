// Package templates holds the page shell shared by every rendered page.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps body in the HTML document shell. With an empty inlineCSS the
// page links the stylesheet served under /static/; otherwise inlineCSS is
// embedded in a style element so the document stands alone.
func Layout(title, inlineCSS string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		stylesheet := `<link rel="stylesheet" href="/static/css/site.css">`
		if inlineCSS != "" {
			stylesheet = "<style>" + inlineCSS + "</style>"
		}

		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>`+templ.EscapeString(title)+`</title>`+
			stylesheet+`</head><body>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
