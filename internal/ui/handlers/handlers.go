package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/multiplica-sam/sam/internal/logger"
	"github.com/multiplica-sam/sam/internal/ui/client"
	"github.com/multiplica-sam/sam/internal/ui/config"
	"github.com/multiplica-sam/sam/internal/ui/dashboard"
	"github.com/multiplica-sam/sam/internal/ui/report"
	"github.com/multiplica-sam/sam/internal/ui/store"
	"github.com/multiplica-sam/sam/internal/ui/templates"
)

type HandlerService struct {
	ApiClient   *client.Client
	Pages       store.PageStore
	Reports     store.ReportStore
	Buttons     *report.Buttons
	Environment string
	ButtonReset time.Duration
	SessionTTL  time.Duration
}

// render writes a component and logs render failures
func (h *HandlerService) render(w http.ResponseWriter, r *http.Request, name string, component templ.Component) {
	if err := component.Render(r.Context(), w); err != nil {
		reqLogger := logger.ContextRequestLogger(r.Context())
		reqLogger.Error("Failed to render "+name, slog.String("error", err.Error()))
	}
}

// RenderError renders the error alert fragment. htmx only swaps 2xx responses, so the status stays 200.
func (h *HandlerService) RenderError(w http.ResponseWriter, r *http.Request, message string) {
	h.render(w, r, "error alert", templates.ErrorAlert(message))
}

// session returns the session id of the browser, issuing a new session cookie when there is none
func (h *HandlerService) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(config.SessionCookieName); err == nil && store.ValidToken(c.Value) {
		return c.Value
	}

	id := store.NewToken()
	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Environment == "prod" || h.Environment == "staging",
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// currentPage returns the page saved for the session, nil when the session has none
func (h *HandlerService) currentPage(ctx context.Context, sessionID string) *dashboard.Page {
	page, err := h.Pages.GetPage(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.ContextRequestLogger(ctx).Error("Failed to load page state", slog.String("error", err.Error()))
		}
		return nil
	}
	return page
}

func (h *HandlerService) savePage(ctx context.Context, sessionID string, page *dashboard.Page) {
	if err := h.Pages.SavePage(ctx, sessionID, page); err != nil {
		logger.ContextRequestLogger(ctx).Error("Failed to save page state", slog.String("error", err.Error()))
	}
}

// RedirectToDashboard sends the browser back to the dashboard, used when the session has no page state
func (h *HandlerService) RedirectToDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
	} else {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
