package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/checks"
	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
	"github.com/junkusano/famille-shift-matching-sub002/internal/report"
	"github.com/junkusano/famille-shift-matching-sub002/internal/service"
)

// AlertReader is the alert feed as the HTTP surface sees it.
type AlertReader interface {
	ListAlerts(ctx context.Context, status string, limit int) ([]*models.Alert, error)
}

// ComplianceHandler serves the batch and alert endpoints. Authentication is
// upstream; the handler only enforces the cron shared secret and the manual
// role gate.
type ComplianceHandler struct {
	batch     *service.BatchService
	alerts    AlertReader
	cronToken string
	logger    *zap.Logger
}

func NewComplianceHandler(batch *service.BatchService, alerts AlertReader, cronToken string, logger *zap.Logger) *ComplianceHandler {
	return &ComplianceHandler{
		batch:     batch,
		alerts:    alerts,
		cronToken: cronToken,
		logger:    logger,
	}
}

type manualRunRequest struct {
	TriggeredBy string `json:"triggered_by"`
	OnlyCheck   string `json:"only_check,omitempty"`
	DryRun      bool   `json:"dry_run,omitempty"`
	TargetID    string `json:"target_id,omitempty"`
	FromDate    string `json:"from_date,omitempty"` // YYYY-MM-DD
}

// RunManual handles POST /compliance/api/v1/batch/{checkset}.
func (h *ComplianceHandler) RunManual(w http.ResponseWriter, req *http.Request, checkset string) {
	role := req.Header.Get("X-Role")
	if role != "manager" && role != "admin" {
		writeJSON(w, http.StatusForbidden, map[string]any{"ok": false, "error": "insufficient role"})
		return
	}

	var body manualRunRequest
	if req.Body != nil {
		// an empty body is fine; a malformed one is not
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid request body"})
			return
		}
	}

	opts := checks.Options{
		DryRun:   body.DryRun,
		TargetID: body.TargetID,
	}
	if body.FromDate != "" {
		from, err := time.Parse("2006-01-02", body.FromDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid from_date"})
			return
		}
		opts.FromDate = &from
	}

	h.run(w, req, service.RunParams{
		RunType:     models.RunTypeManual,
		TriggeredBy: body.TriggeredBy,
		Checkset:    checkset,
		OnlyCheck:   body.OnlyCheck,
		Options:     opts,
	})
}

// RunScheduled handles GET /compliance/api/v1/cron/{checkset}?token=...
func (h *ComplianceHandler) RunScheduled(w http.ResponseWriter, req *http.Request, checkset string) {
	token := req.URL.Query().Get("token")
	if h.cronToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.cronToken)) != 1 {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "invalid token"})
		return
	}

	h.run(w, req, service.RunParams{
		RunType:     models.RunTypeScheduled,
		TriggeredBy: "cron",
		Checkset:    checkset,
	})
}

func (h *ComplianceHandler) run(w http.ResponseWriter, req *http.Request, params service.RunParams) {
	result, err := h.batch.Run(req.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownCheckset):
			writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": err.Error()})
		case errors.Is(err, service.ErrRunInProgress):
			writeJSON(w, http.StatusConflict, map[string]any{"ok": false, "error": err.Error()})
		default:
			h.logger.Error("batch run failed to start", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
		}
		return
	}

	status := http.StatusOK
	if !result.OK {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}

// ListAlerts handles GET /compliance/api/v1/alerts?status=&limit=
func (h *ComplianceHandler) ListAlerts(w http.ResponseWriter, req *http.Request) {
	status := req.URL.Query().Get("status")
	limit := 0
	if raw := req.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	alerts, err := h.alerts.ListAlerts(req.Context(), status, limit)
	if err != nil {
		h.logger.Error("failed to list alerts", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "failed to list alerts"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "alerts": alerts})
}

// ExportAlerts handles GET /compliance/api/v1/alerts/export
func (h *ComplianceHandler) ExportAlerts(w http.ResponseWriter, req *http.Request) {
	alerts, err := h.alerts.ListAlerts(req.Context(), req.URL.Query().Get("status"), 10000)
	if err != nil {
		h.logger.Error("failed to list alerts for export", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "failed to list alerts"})
		return
	}

	workbook, err := report.GenerateAlertsWorkbook(alerts)
	if err != nil {
		h.logger.Error("failed to generate alert workbook", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "failed to generate workbook"})
		return
	}

	filename := "alerts_" + time.Now().Format("20060102_150405") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
