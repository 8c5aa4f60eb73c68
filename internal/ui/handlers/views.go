package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/multiplica-sam/sam/internal/logger"
	"github.com/multiplica-sam/sam/internal/response"
	"github.com/multiplica-sam/sam/internal/ui/client"
	"github.com/multiplica-sam/sam/internal/ui/config"
	"github.com/multiplica-sam/sam/internal/ui/dashboard"
	"github.com/multiplica-sam/sam/internal/ui/templates"
	"github.com/multiplica-sam/sam/internal/ui/types"
)

// maxLogLimit caps the ?limit= of the scraping log view
const maxLogLimit = 500

// HandleStudents lists the students of the card at {index}
func (h *HandlerService) HandleStudents(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.RedirectToDashboard(w, r)
		return
	}

	page := h.currentPage(r.Context(), sessionID)
	if page == nil {
		h.RedirectToDashboard(w, r)
		return
	}
	card, ok := page.Card(index)
	if !ok {
		h.RedirectToDashboard(w, r)
		return
	}

	data := templates.StudentsData{Environment: h.Environment, Locality: card}

	students, err := h.ApiClient.StudentSummaries(r.Context(), card.ChurchID)
	if err != nil {
		data.Error = client.UserMessage(err)
	} else {
		data.Students = students
	}

	logger.ContextWithLogAttrs(r.Context(),
		slog.Int("id_igreja", card.ChurchID),
		slog.Int("students", len(data.Students)),
	)

	h.render(w, r, "students page", templates.StudentsPage(data))
}

// HandleStudent shows one student with the size of each history section
func (h *HandlerService) HandleStudent(w http.ResponseWriter, r *http.Request) {
	data := templates.StudentData{Environment: h.Environment}

	studentID, err := types.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		data.Error = "Aluno inválido."
		h.render(w, r, "student page", templates.StudentPage(data))
		return
	}

	logger.ContextWithLogAttrs(r.Context(), slog.Int("id_aluno", studentID))

	student, err := h.ApiClient.Student(r.Context(), studentID)
	if err != nil {
		data.Error = client.UserMessage(err)
	} else {
		data.Student = student
	}

	h.render(w, r, "student page", templates.StudentPage(data))
}

// HandleLogs shows the latest scraping runs. ?limit= defaults to 50.
func (h *HandlerService) HandleLogs(w http.ResponseWriter, r *http.Request) {
	limit := client.DefaultLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxLogLimit)
		}
	}

	data := templates.LogsData{Environment: h.Environment, Limit: limit}

	logs, err := h.ApiClient.ScrapingLogs(r.Context(), limit)
	if err != nil {
		data.Error = client.UserMessage(err)
	} else {
		data.Logs = logs
	}

	h.render(w, r, "logs page", templates.LogsPage(data))
}

// HandleState returns the page state of the session as json.
// Callers without a session (cross-origin embeds) get a freshly loaded page that is not stored.
func (h *HandlerService) HandleState(w http.ResponseWriter, r *http.Request) {
	var page *dashboard.Page
	if c, err := r.Cookie(config.SessionCookieName); err == nil {
		page = h.currentPage(r.Context(), c.Value)
	}
	if page == nil {
		page = dashboard.Bootstrap(r.Context(), h.ApiClient)
	}
	response.RespondWithJSON(w, http.StatusOK, page)
}

// HandleLive reports that the ui server is up. It does not call the SAM api.
func (h *HandlerService) HandleLive(w http.ResponseWriter, r *http.Request) {
	response.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
