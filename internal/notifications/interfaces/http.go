package interfaces

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"treasury-cloud/internal/audit"
	"treasury-cloud/internal/auth"
	"treasury-cloud/internal/notifications/application"
	notifications "treasury-cloud/internal/notifications/domain"
)

const rulesPath = "/api/v1/notifications/rules"

// RulesHandler exposes notification rule management over HTTP.
type RulesHandler struct {
	rules       *application.RuleService
	auditLogger audit.Logger
}

// NewRulesHandler constructs a handler.
func NewRulesHandler(rules *application.RuleService, auditLogger audit.Logger) (*RulesHandler, error) {
	if rules == nil {
		return nil, errors.New("rules handler: nil service")
	}
	return &RulesHandler{rules: rules, auditLogger: auditLogger}, nil
}

// ServeHTTP routes /api/v1/notifications/rules requests.
func (h *RulesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != rulesPath {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleUpsert(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *RulesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.ListRules(r.Context(), r.URL.Query().Get("tenant_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if rules == nil {
		rules = []notifications.Rule{}
	}
	respondJSON(w, rules)
}

func (h *RulesHandler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var req application.UpsertRuleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rule, err := h.rules.UpsertRule(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, rule)

	meta, _ := json.Marshal(map[string]any{
		"name":           rule.Name,
		"event_kind":     rule.EventKind,
		"emergency_only": rule.EmergencyOnly,
		"enabled":        rule.Enabled,
	})
	h.logAudit(r, rule.TenantID, rule.RuleID, meta)
}

func (h *RulesHandler) logAudit(r *http.Request, tenantID, ruleID string, meta json.RawMessage) {
	if h.auditLogger == nil || tenantID == "" {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		TenantID:     tenantID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "notification.rule.upsert",
		ResourceType: "notification_rule",
		ResourceID:   ruleID,
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
	case errors.Is(err, notifications.ErrInvalidRule):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, auth.ErrTenantMismatch):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
