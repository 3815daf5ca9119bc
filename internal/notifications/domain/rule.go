package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Event kinds a rule can subscribe to.
const (
	KindTransferSubmitted = "transfer.submitted"
	KindTransferApproved  = "transfer.approved"
	KindTransferExecuted  = "transfer.executed"
	KindTransferRejected  = "transfer.rejected"
	KindTransferCancelled = "transfer.cancelled"
	KindFundsAdded        = "funds.added"
	KindShutdownToggled   = "shutdown.toggled"
)

// ErrInvalidRule indicates a rule that cannot be stored.
var ErrInvalidRule = errors.New("notification rule: invalid")

// Rule selects which treasury events produce outbound notifications.
// MinAmount and EmergencyOnly narrow transfer kinds; both are ignored for
// kinds that carry no transfer.
type Rule struct {
	RuleID        string           `json:"rule_id"`
	TenantID      string           `json:"tenant_id"`
	Name          string           `json:"name"`
	EventKind     string           `json:"event_kind"`
	MinAmount     *decimal.Decimal `json:"min_amount,omitempty"`
	EmergencyOnly bool             `json:"emergency_only"`
	Enabled       bool             `json:"enabled"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Validate checks the rule fields.
func (r Rule) Validate() error {
	if r.RuleID == "" {
		return fmt.Errorf("%w: missing rule id", ErrInvalidRule)
	}
	if r.TenantID == "" {
		return fmt.Errorf("%w: missing tenant id", ErrInvalidRule)
	}
	if !KnownKind(r.EventKind) {
		return fmt.Errorf("%w: unknown event kind %q", ErrInvalidRule, r.EventKind)
	}
	if r.MinAmount != nil && r.MinAmount.IsNegative() {
		return fmt.Errorf("%w: min amount must not be negative", ErrInvalidRule)
	}
	return nil
}

// Matches reports whether the rule fires for a transfer event with the
// given amount and emergency flag.
func (r Rule) Matches(amount decimal.Decimal, isEmergency bool) bool {
	if !r.Enabled {
		return false
	}
	if r.EmergencyOnly && !isEmergency {
		return false
	}
	if r.MinAmount != nil && amount.LessThan(*r.MinAmount) {
		return false
	}
	return true
}

// KnownKind reports whether the kind names a subscribable event.
func KnownKind(kind string) bool {
	switch kind {
	case KindTransferSubmitted, KindTransferApproved, KindTransferExecuted,
		KindTransferRejected, KindTransferCancelled, KindFundsAdded, KindShutdownToggled:
		return true
	default:
		return false
	}
}

// RuleRepository stores notification rules.
type RuleRepository interface {
	Upsert(ctx context.Context, rule Rule) error
	ListByTenant(ctx context.Context, tenantID string) ([]Rule, error)
	ListEnabledByKind(ctx context.Context, tenantID, kind string) ([]Rule, error)
}
