// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/reviewrot/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/reviewrot/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/reviewrot/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/reviewrot/internal/application"
	"github.com/ericfisherdev/reviewrot/internal/domain/model"
)

// PageLoader runs one page load. *application.FeedService satisfies it.
type PageLoader interface {
	Load(ctx context.Context, opts application.PageOptions) (model.Page, error)
	Now() time.Time
}

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	loader PageLoader
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(loader PageLoader, logger *slog.Logger) *Handler {
	return &Handler{
		loader: loader,
		logger: logger,
	}
}

// Dashboard renders the review page. A feed failure still answers 200 with
// the error indicator visible; only unparsable page options are a 400.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	opts, err := application.PageOptionsFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := h.loader.Load(r.Context(), opts)
	if err != nil && !errors.Is(err, model.ErrFeedUnavailable) {
		h.logger.Warn("page load failed", "error", err)
	}

	dash := Present(page, h.loader.Now())
	dash.Filter = opts.String()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := RenderDashboard(r.Context(), w, dash); err != nil {
		h.logger.Error("failed to render dashboard", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// RenderPage presents page and writes a self-contained HTML document to w:
// the site stylesheet is inlined so the file renders without the server.
func RenderPage(ctx context.Context, w io.Writer, page model.Page, now time.Time) error {
	css, err := fs.ReadFile(StaticFS, siteStylesheet)
	if err != nil {
		return fmt.Errorf("reading stylesheet: %w", err)
	}

	dash := Present(page, now)
	return templates.Layout(dash.Title, string(css), pages.Dashboard(dash)).Render(ctx, w)
}

// RenderDashboard writes the full HTML document for an already presented
// page, linking the stylesheet served under /static/.
func RenderDashboard(ctx context.Context, w io.Writer, dash vm.DashboardViewModel) error {
	return templates.Layout(dash.Title, "", pages.Dashboard(dash)).Render(ctx, w)
}
