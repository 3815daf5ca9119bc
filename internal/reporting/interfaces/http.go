package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"treasury-cloud/internal/audit"
	"treasury-cloud/internal/auth"
	"treasury-cloud/internal/observability/metrics"
	"treasury-cloud/internal/reporting/application"
	reporting "treasury-cloud/internal/reporting/domain"
)

var errMissingTenant = errors.New("missing tenant id")

// ReportsHandler serves the transfer history and statement exports.
type ReportsHandler struct {
	history       *application.HistoryService
	auditLogger   audit.Logger
	defaultTenant string
}

// NewReportsHandler constructs a handler.
func NewReportsHandler(history *application.HistoryService, auditLogger audit.Logger, defaultTenant string) (*ReportsHandler, error) {
	if history == nil {
		return nil, errors.New("reports handler: nil history service")
	}
	return &ReportsHandler{history: history, auditLogger: auditLogger, defaultTenant: defaultTenant}, nil
}

// ServeHTTP handles routes under /api/v1/reports.
func (h *ReportsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/reports/history":
		h.handleHistory(w, r)
	case "/api/v1/reports/statement.xlsx":
		h.handleStatement(w, r, "xlsx")
	case "/api/v1/reports/statement.pdf":
		h.handleStatement(w, r, "pdf")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ReportsHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	tenantID, err := h.resolveTenant(r)
	if err != nil {
		respondError(w, err)
		return
	}
	query := r.URL.Query()
	filter := reporting.HistoryFilter{
		TenantID:   tenantID,
		TransferID: query.Get("transfer_id"),
		Kind:       query.Get("kind"),
	}
	if raw := query.Get("from"); raw != "" {
		from, err := parseTime(raw)
		if err != nil {
			http.Error(w, "invalid from", http.StatusBadRequest)
			return
		}
		filter.From = from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := parseTime(raw)
		if err != nil {
			http.Error(w, "invalid to", http.StatusBadRequest)
			return
		}
		filter.To = to
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	entries, err := h.history.List(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	if entries == nil {
		entries = []reporting.HistoryEntry{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

func (h *ReportsHandler) handleStatement(w http.ResponseWriter, r *http.Request, format string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveStatementExport(format, result, time.Since(start))
	}()

	tenantID, err := h.resolveTenant(r)
	if err != nil {
		result = metrics.ResultError
		respondError(w, err)
		return
	}
	from, to, err := statementPeriod(r)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stmt, err := h.history.BuildStatement(r.Context(), tenantID, from, to)
	if err != nil {
		result = metrics.ResultError
		respondError(w, err)
		return
	}

	var data []byte
	var contentType string
	switch format {
	case "pdf":
		data, err = BuildStatementPDF(stmt)
		contentType = "application/pdf"
	default:
		data, err = BuildStatementXLSX(stmt)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export "+format+" error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, tenantID, map[string]any{
		"format": format,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	})
}

func (h *ReportsHandler) resolveTenant(r *http.Request) (string, error) {
	tenantID, err := auth.EnsureTenant(r.Context(), r.URL.Query().Get("tenant_id"))
	if err != nil {
		return "", err
	}
	if tenantID == "" {
		tenantID = h.defaultTenant
	}
	if tenantID == "" {
		return "", errMissingTenant
	}
	return tenantID, nil
}

func (h *ReportsHandler) logAudit(r *http.Request, tenantID string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		TenantID:     tenantID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "statement.export",
		ResourceType: "statement",
		ResourceID:   tenantID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func statementPeriod(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := parseTime(raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from")
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := parseTime(raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to")
		}
		to = parsed
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, errors.New("to must be after from")
	}
	return from, to, nil
}

func parseTime(value string) (time.Time, error) {
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrTenantMismatch):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, reporting.ErrInvalidEntry):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, errMissingTenant):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
