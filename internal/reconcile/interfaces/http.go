package interfaces

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"treasury-cloud/internal/audit"
	"treasury-cloud/internal/auth"
	"treasury-cloud/internal/reconcile/application"
	treasury "treasury-cloud/internal/treasury/domain"
)

const runPath = "/api/v1/reconcile/run"

// Handler triggers on-demand reconcile passes.
type Handler struct {
	runner        *application.Runner
	auditLogger   audit.Logger
	defaultTenant string
}

// NewHandler constructs a handler.
func NewHandler(runner *application.Runner, auditLogger audit.Logger, defaultTenant string) (*Handler, error) {
	if runner == nil {
		return nil, errors.New("reconcile handler: nil runner")
	}
	return &Handler{runner: runner, auditLogger: auditLogger, defaultTenant: defaultTenant}, nil
}

// ServeHTTP routes /api/v1/reconcile/run requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != runPath {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.handleRun(w, r)
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TenantID string `json:"tenant_id"`
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
	}

	tenantID, err := auth.EnsureTenant(r.Context(), req.TenantID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	if tenantID == "" {
		tenantID = h.defaultTenant
	}
	if tenantID == "" {
		http.Error(w, "tenant_id required", http.StatusBadRequest)
		return
	}

	report, err := h.runner.Run(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, treasury.ErrTreasuryNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)

	meta, _ := json.Marshal(map[string]any{"drifted": report.Drifted})
	h.logAudit(r, tenantID, meta)
}

func (h *Handler) logAudit(r *http.Request, tenantID string, meta json.RawMessage) {
	if h.auditLogger == nil || tenantID == "" {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		TenantID:     tenantID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "reconcile.run",
		ResourceType: "treasury",
		ResourceID:   tenantID,
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}
