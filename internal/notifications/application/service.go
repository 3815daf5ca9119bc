package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"treasury-cloud/internal/auth"
	notifications "treasury-cloud/internal/notifications/domain"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// UpsertRuleRequest creates or replaces a notification rule.
type UpsertRuleRequest struct {
	TenantID      string           `json:"tenant_id"`
	RuleID        string           `json:"rule_id"`
	Name          string           `json:"name"`
	EventKind     string           `json:"event_kind"`
	MinAmount     *decimal.Decimal `json:"min_amount,omitempty"`
	EmergencyOnly bool             `json:"emergency_only"`
	Enabled       *bool            `json:"enabled,omitempty"`
}

// RuleService manages notification rules.
type RuleService struct {
	repo          notifications.RuleRepository
	clock         Clock
	defaultTenant string
}

// NewRuleService constructs a rule service.
func NewRuleService(repo notifications.RuleRepository, clock Clock, defaultTenant string) (*RuleService, error) {
	if repo == nil {
		return nil, errors.New("rule service: nil repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &RuleService{repo: repo, clock: clock, defaultTenant: defaultTenant}, nil
}

// UpsertRule stores the rule, generating an id when the request omits one.
// Rules default to enabled.
func (s *RuleService) UpsertRule(ctx context.Context, req UpsertRuleRequest) (*notifications.Rule, error) {
	tenantID, err := s.resolveTenant(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	ruleID := req.RuleID
	if ruleID == "" {
		ruleID = "rule-" + uuid.NewString()
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	now := s.clock.Now().UTC()
	rule := notifications.Rule{
		RuleID:        ruleID,
		TenantID:      tenantID,
		Name:          req.Name,
		EventKind:     req.EventKind,
		MinAmount:     req.MinAmount,
		EmergencyOnly: req.EmergencyOnly,
		Enabled:       enabled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// ListRules returns the tenant's rules.
func (s *RuleService) ListRules(ctx context.Context, tenantID string) ([]notifications.Rule, error) {
	resolved, err := s.resolveTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByTenant(ctx, resolved)
}

func (s *RuleService) resolveTenant(ctx context.Context, requested string) (string, error) {
	tenantID, err := auth.EnsureTenant(ctx, requested)
	if err != nil {
		return "", err
	}
	if tenantID == "" {
		tenantID = s.defaultTenant
	}
	if tenantID == "" {
		return "", fmt.Errorf("%w: missing tenant id", notifications.ErrInvalidRule)
	}
	return tenantID, nil
}
