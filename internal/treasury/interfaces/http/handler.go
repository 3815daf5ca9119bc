package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"treasury-cloud/internal/audit"
	"treasury-cloud/internal/auth"
	"treasury-cloud/internal/observability/metrics"
	"treasury-cloud/internal/treasury/application"
	treasury "treasury-cloud/internal/treasury/domain"
)

const basePath = "/api/v1/treasury"

// Handler provides the treasury HTTP endpoints.
type Handler struct {
	service     *application.Service
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *application.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("treasury handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes /api/v1/treasury requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case basePath, basePath + "/":
		h.require(w, r, http.MethodGet, h.handleOverview)
	case basePath + "/transfers":
		switch r.Method {
		case http.MethodPost:
			h.handleSubmit(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case basePath + "/transfers/get":
		h.require(w, r, http.MethodGet, h.handleGet)
	case basePath + "/transfers/approve":
		h.require(w, r, http.MethodPost, h.handleApprove)
	case basePath + "/transfers/execute":
		h.require(w, r, http.MethodPost, h.handleExecute)
	case basePath + "/transfers/reject":
		h.require(w, r, http.MethodPost, h.handleReject)
	case basePath + "/transfers/cancel":
		h.require(w, r, http.MethodPost, h.handleCancel)
	case basePath + "/funds":
		h.require(w, r, http.MethodPost, h.handleAddFunds)
	case basePath + "/allocation":
		switch r.Method {
		case http.MethodGet:
			h.handleOverview(w, r)
		case http.MethodPost:
			h.handleUpdateAllocation(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case basePath + "/shutdown":
		h.require(w, r, http.MethodPost, h.handleShutdown)
	case basePath + "/limits":
		h.require(w, r, http.MethodPost, h.handleUpdateLimits)
	case basePath + "/stats":
		h.require(w, r, http.MethodGet, h.handleStats)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) require(w http.ResponseWriter, r *http.Request, method string, next http.HandlerFunc) {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	next(w, r)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRequest("transfers.submit", result, time.Since(start))
	}()

	var req application.SubmitTransferRequest
	if !decodeBody(w, r, &req) {
		result = metrics.ResultError
		return
	}
	resp, err := h.service.SubmitTransfer(r.Context(), req)
	if err != nil {
		result = metrics.ResultError
		respondError(w, err)
		return
	}
	respondJSON(w, resp)

	meta, _ := json.Marshal(map[string]any{
		"destination":  resp.Destination,
		"amount":       resp.Amount,
		"is_emergency": resp.IsEmergency,
		"status":       resp.Status,
	})
	h.logAudit(r, resp.TenantID, "transfer.submit", resp.TransferID, meta)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRequest("transfers.approve", result, time.Since(start))
	}()

	var req application.ApproveTransferRequest
	if !decodeBody(w, r, &req) {
		result = metrics.ResultError
		return
	}
	resp, err := h.service.ApproveTransfer(r.Context(), req)
	if err != nil {
		result = metrics.ResultError
		respondError(w, err)
		return
	}
	respondJSON(w, resp)

	meta, _ := json.Marshal(map[string]any{
		"approvals":          resp.Approvals,
		"required_approvals": resp.RequiredApprovals,
		"status":             resp.Status,
	})
	h.logAudit(r, resp.TenantID, "transfer.approve", resp.TransferID, meta)
}

func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRequest("transfers.execute", result, time.Since(start))
	}()

	var req application.ExecuteTransferRequest
	if !decodeBody(w, r, &req) {
		result = metrics.ResultError
		return
	}
	resp, err := h.service.ExecuteTransfer(r.Context(), req)
	if err != nil {
		result = metrics.ResultError
		respondError(w, err)
		return
	}
	respondJSON(w, resp)

	meta, _ := json.Marshal(map[string]any{"amount": resp.Amount, "destination": resp.Destination})
	h.logAudit(r, resp.TenantID, "transfer.execute", resp.TransferID, meta)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRequest("transfers.reject", result, time.Since(start))
	}()

	var req application.RejectTransferRequest
	if !decodeBody(w, r, &req) {
		result = metrics.ResultError
		return
	}
	resp, err := h.service.RejectTransfer(r.Context(), req)
	if err != nil {
		result = metrics.ResultError
		respondError(w, err)
		return
	}
	respondJSON(w, resp)

	meta, _ := json.Marshal(map[string]any{"note": req.Note})
	h.logAudit(r, resp.TenantID, "transfer.reject", resp.TransferID, meta)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRequest("transfers.cancel", result, time.Since(start))
	}()

	var req application.CancelTransferRequest
	if !decodeBody(w, r, &req) {
		result = metrics.ResultError
		return
	}
	resp, err := h.service.CancelTransfer(r.Context(), req)
	if err != nil {
		result = metrics.ResultError
		respondError(w, err)
		return
	}
	respondJSON(w, resp)

	meta, _ := json.Marshal(map[string]any{"note": req.Note})
	h.logAudit(r, resp.TenantID, "transfer.cancel", resp.TransferID, meta)
}

func (h *Handler) handleAddFunds(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRequest("treasury.funds", result, time.Since(start))
	}()

	var req application.AddFundsRequest
	if !decodeBody(w, r, &req) {
		result = metrics.ResultError
		return
	}
	resp, err := h.service.AddFunds(r.Context(), req)
	if err != nil {
		result = metrics.ResultError
		respondError(w, err)
		return
	}
	respondJSON(w, resp)

	meta, _ := json.Marshal(map[string]any{"amount": req.Amount, "total_balance": resp.TotalBalance})
	h.logAudit(r, resp.TenantID, "treasury.add_funds", "", meta)
}

func (h *Handler) handleUpdateAllocation(w http.ResponseWriter, r *http.Request) {
	var req application.UpdateAllocationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.service.UpdateAllocation(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, resp)

	meta, _ := json.Marshal(resp.Allocation)
	h.logAudit(r, resp.TenantID, "treasury.allocation.update", "", meta)
}

func (h *Handler) handleShutdown(w http.ResponseWriter, r *http.Request) {
	var req application.ShutdownRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.service.SetShutdown(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, resp)

	meta, _ := json.Marshal(map[string]any{"enabled": req.Enabled, "reason": req.Reason})
	h.logAudit(r, resp.TenantID, "treasury.shutdown", "", meta)
}

func (h *Handler) handleUpdateLimits(w http.ResponseWriter, r *http.Request) {
	var req application.UpdateLimitsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.service.UpdateLimits(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, resp)

	meta, _ := json.Marshal(map[string]any{
		"max_transfer_amount": resp.MaxTransferAmount,
		"cooldown_seconds":    resp.CooldownSeconds,
	})
	h.logAudit(r, resp.TenantID, "treasury.limits.update", "", meta)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetOverview(r.Context(), r.URL.Query().Get("tenant_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, resp)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context(), r.URL.Query().Get("tenant_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, stats)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	transferID := r.URL.Query().Get("id")
	if transferID == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	resp, err := h.service.GetTransfer(r.Context(), r.URL.Query().Get("tenant_id"), transferID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, resp)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPendingTransfers(r.Context(), r.URL.Query().Get("tenant_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, list)
}

func (h *Handler) logAudit(r *http.Request, tenantID, action, transferID string, meta json.RawMessage) {
	if h.auditLogger == nil || tenantID == "" {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		TenantID:     tenantID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "treasury",
		ResourceID:   tenantID,
		TransferID:   transferID,
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return false
	}
	defer r.Body.Close()
	if err := json.Unmarshal(body, target); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, treasury.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, treasury.ErrUnauthorized), errors.Is(err, auth.ErrTenantMismatch):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, treasury.ErrTransferNotFound), errors.Is(err, treasury.ErrTreasuryNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, treasury.ErrInvalidState),
		errors.Is(err, treasury.ErrAlreadyApproved),
		errors.Is(err, treasury.ErrNotYetAuthorized),
		errors.Is(err, treasury.ErrCooldownActive),
		errors.Is(err, treasury.ErrInsufficientBalance),
		errors.Is(err, treasury.ErrVersionConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
