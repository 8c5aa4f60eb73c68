package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"unicode/utf16"

	"github.com/go-chi/chi/v5"

	"github.com/multiplica-sam/sam/internal/apperrors"
	"github.com/multiplica-sam/sam/internal/logger"
	"github.com/multiplica-sam/sam/internal/response"
	"github.com/multiplica-sam/sam/internal/ui/client"
	"github.com/multiplica-sam/sam/internal/ui/dashboard"
	"github.com/multiplica-sam/sam/internal/ui/report"
	"github.com/multiplica-sam/sam/internal/ui/store"
	"github.com/multiplica-sam/sam/internal/ui/templates"
	"github.com/multiplica-sam/sam/internal/ui/types"
)

// ReportErrorMessage is shown in a browser alert when a report could not be generated
const ReportErrorMessage = "Erro ao gerar PDF. Verifique se a API está rodando."

func buttonKey(sessionID string, churchID int) string {
	return sessionID + "/" + strconv.Itoa(churchID)
}

func (h *HandlerService) reportButton(sessionID string, churchID int) templates.ReportButtonData {
	return templates.ReportButtonData{
		ChurchID:   churchID,
		State:      h.Buttons.State(buttonKey(sessionID, churchID)),
		ResetDelay: h.ButtonReset,
	}
}

// localityCode finds the code of the church in the session page: the selection first, then the cards.
func localityCode(page *dashboard.Page, churchID int) (string, bool) {
	if page == nil {
		return "", false
	}
	if page.Selected != nil && page.Selected.ChurchID == churchID {
		return page.Selected.Code, true
	}
	for _, card := range page.Localities {
		if card.ChurchID == churchID {
			return card.Code, true
		}
	}
	return "", false
}

// HandleGenerateReport runs the PDF button of the locality {id}.
//
// On success the report is parked in the report store and the returned fragment carries a one-shot download link.
// On failure the fragment shows the error state and an HX-Trigger header raises the browser alert.
// Both fragments fetch the idle button again after the reset delay.
func (h *HandlerService) HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	reqLogger := logger.ContextRequestLogger(r.Context())
	sessionID := h.session(w, r)

	churchID, err := types.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.RenderError(w, r, "Localidade inválida.")
		return
	}

	code, ok := localityCode(h.currentPage(r.Context(), sessionID), churchID)
	if !ok {
		// the file name falls back to the church id when the page state is gone
		code = strconv.Itoa(churchID)
	}

	logger.ContextWithLogAttrs(r.Context(), slog.Int("id_igreja", churchID))

	var token, fileName string
	err = h.Buttons.Run(r.Context(), buttonKey(sessionID, churchID), func(ctx context.Context) error {
		rep, err := h.ApiClient.LocalityReport(ctx, churchID, code)
		if err != nil {
			return err
		}
		token, err = h.Reports.PutReport(ctx, rep)
		if err != nil {
			return fmt.Errorf("storing report: %w", err)
		}
		fileName = rep.FileName
		return nil
	})

	data := templates.ReportButtonData{
		ChurchID:   churchID,
		ResetDelay: h.ButtonReset,
	}

	switch {
	case errors.Is(err, report.ErrBusy):
		reqLogger.Info("Report already being generated", slog.Int("id_igreja", churchID))
		data.State = report.Generating
	case err != nil:
		reqLogger.Error("Failed to generate report",
			slog.Int("id_igreja", churchID),
			slog.String("error", err.Error()),
		)
		setAlertTrigger(w, ReportErrorMessage)
		data.State = report.Failed
	default:
		reqLogger.Info("Report generated", slog.String("file_name", fileName))
		data.State = report.Succeeded
		data.DownloadURL = "/reports/" + token
		data.FileName = fileName
	}

	h.render(w, r, "report button", templates.ReportButton(data))
}

// HandleReportButton renders the button of the locality {id} in its current state, used to reset it after a run
func (h *HandlerService) HandleReportButton(w http.ResponseWriter, r *http.Request) {
	sessionID := h.session(w, r)

	churchID, err := types.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.RenderError(w, r, "Localidade inválida.")
		return
	}

	h.render(w, r, "report button", templates.ReportButton(h.reportButton(sessionID, churchID)))
}

// HandleDownloadReport serves a generated report once. The token is deleted as it is read.
func (h *HandlerService) HandleDownloadReport(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if !store.ValidToken(token) {
		response.RespondWithError(w, r, http.StatusNotFound, apperrors.ErrCodeReportNotFound, "Relatório não encontrado.")
		return
	}

	rep, err := h.Reports.TakeReport(r.Context(), token)
	if errors.Is(err, store.ErrNotFound) {
		response.RespondWithError(w, r, http.StatusNotFound, apperrors.ErrCodeReportNotFound, "Relatório expirado ou já baixado.")
		return
	}
	if err != nil {
		logger.ContextRequestLogger(r.Context()).Error("Failed to read report", slog.String("error", err.Error()))
		response.RespondWithError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternalError, client.UserMessage(err))
		return
	}

	logger.ContextWithLogAttrs(r.Context(),
		slog.Int("id_igreja", rep.ChurchID),
		slog.String("file_name", rep.FileName),
	)

	w.Header().Set("Content-Type", rep.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": rep.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(rep.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rep.Data)
}

// setAlertTrigger asks htmx to fire the sam:alert event with message.
// Header values are read as latin-1 by browsers so non-ascii characters are sent as json escapes.
func setAlertTrigger(w http.ResponseWriter, message string) {
	data, err := json.Marshal(map[string]string{"sam:alert": message})
	if err != nil {
		return
	}
	var buf bytes.Buffer
	for _, r := range string(data) {
		if r < 0x80 {
			buf.WriteRune(r)
			continue
		}
		if r > 0xffff {
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&buf, `\u%04x\u%04x`, r1, r2)
			continue
		}
		fmt.Fprintf(&buf, `\u%04x`, r)
	}
	w.Header().Set("HX-Trigger", buf.String())
}
