package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"treasury-cloud/internal/audit"
	"treasury-cloud/internal/auth"
	provisioning "treasury-cloud/internal/provisioning/application"
	treasury "treasury-cloud/internal/treasury/domain"
)

// ProvisioningHandler handles tenant treasury provisioning requests.
type ProvisioningHandler struct {
	service     *provisioning.Service
	auditLogger audit.Logger
}

// NewProvisioningHandler constructs a handler.
func NewProvisioningHandler(service *provisioning.Service, auditLogger audit.Logger) (*ProvisioningHandler, error) {
	if service == nil {
		return nil, errors.New("provisioning handler: nil service")
	}
	return &ProvisioningHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP handles POST /api/v1/provision.
func (h *ProvisioningHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req provisioning.ProvisionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if tenantID != "" && req.TenantID != "" && req.TenantID != tenantID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if tenantID != "" {
		req.TenantID = tenantID
	}

	resp, err := h.service.ProvisionTreasury(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, treasury.ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, treasury.ErrUnauthorized):
			http.Error(w, err.Error(), http.StatusForbidden)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)

	meta, _ := json.Marshal(map[string]any{
		"created":        resp.Created,
		"approver_count": resp.ApproverCount,
	})
	h.logAudit(r, resp.TenantID, meta)
}

func (h *ProvisioningHandler) logAudit(r *http.Request, tenantID string, meta json.RawMessage) {
	if h.auditLogger == nil || tenantID == "" {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		TenantID:     tenantID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "treasury.provision",
		ResourceType: "treasury",
		ResourceID:   tenantID,
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}
