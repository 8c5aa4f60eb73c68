package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/multiplica-sam/sam/internal/logger"
	"github.com/multiplica-sam/sam/internal/ui/dashboard"
	"github.com/multiplica-sam/sam/internal/ui/templates"
)

// HandleDashboard bootstraps a new page for the session and renders it.
// A reload starts from scratch: the previous selection is discarded.
func (h *HandlerService) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	page := dashboard.Bootstrap(r.Context(), h.ApiClient)
	h.savePage(r.Context(), sessionID, page)

	logger.ContextWithLogAttrs(r.Context(),
		slog.Bool("api_online", page.APIOnline),
		slog.Int("localities", len(page.Localities)),
	)

	h.render(w, r, "dashboard page", templates.DashboardPage(templates.DashboardData{
		Environment: h.Environment,
		Page:        page,
	}))
}

// HandleSelectLocality selects the card at {index} and returns the selection panel
func (h *HandlerService) HandleSelectLocality(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.RenderError(w, r, "Localidade inválida.")
		return
	}

	page := h.currentPage(r.Context(), sessionID)
	if page == nil {
		h.RedirectToDashboard(w, r)
		return
	}

	sel, err := page.Select(r.Context(), h.ApiClient, index)
	if err != nil {
		logger.ContextRequestLogger(r.Context()).Warn("Invalid locality selection", slog.String("error", err.Error()))
		h.RenderError(w, r, "Localidade não encontrada.")
		return
	}
	h.savePage(r.Context(), sessionID, page)

	logger.ContextWithLogAttrs(r.Context(),
		slog.Int("id_igreja", sel.ChurchID),
		slog.Bool("detailed", sel.Detailed),
	)

	h.render(w, r, "selection panel", templates.SelectionPanel(sel))
}

// HandleModal renders the data modal for the current selection
func (h *HandlerService) HandleModal(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	data := templates.ModalData{}
	if page := h.currentPage(r.Context(), sessionID); page != nil && page.Selected != nil {
		data.Selected = page.Selected
		data.Button = h.reportButton(sessionID, page.Selected.ChurchID)
	}

	h.render(w, r, "locality modal", templates.LocalityModal(data))
}
