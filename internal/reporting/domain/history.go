package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Lifecycle kinds recorded in the transfer history.
const (
	KindSubmitted = "submitted"
	KindApproved  = "approved"
	KindExecuted  = "executed"
	KindRejected  = "rejected"
	KindCancelled = "cancelled"
)

// ErrInvalidEntry indicates a history entry that cannot be recorded.
var ErrInvalidEntry = errors.New("history: invalid entry")

// HistoryEntry is one recorded transfer lifecycle outcome. The history is
// append-only; the event id keys replays so projection retries stay
// idempotent.
type HistoryEntry struct {
	EventID           string          `json:"event_id"`
	TenantID          string          `json:"tenant_id"`
	TransferID        string          `json:"transfer_id"`
	Kind              string          `json:"kind"`
	Actor             string          `json:"actor"`
	Destination       string          `json:"destination,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Reason            string          `json:"reason,omitempty"`
	Approvals         int             `json:"approvals"`
	RequiredApprovals int             `json:"required_approvals"`
	IsEmergency       bool            `json:"is_emergency"`
	Note              string          `json:"note,omitempty"`
	OccurredAt        time.Time       `json:"occurred_at"`
}

// Validate checks the fields every entry must carry.
func (e HistoryEntry) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("%w: missing event id", ErrInvalidEntry)
	}
	if e.TenantID == "" {
		return fmt.Errorf("%w: missing tenant id", ErrInvalidEntry)
	}
	if e.TransferID == "" {
		return fmt.Errorf("%w: missing transfer id", ErrInvalidEntry)
	}
	switch e.Kind {
	case KindSubmitted, KindApproved, KindExecuted, KindRejected, KindCancelled:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEntry, e.Kind)
	}
	return nil
}

// HistoryFilter narrows history queries. Zero time bounds are open ended.
type HistoryFilter struct {
	TenantID   string
	TransferID string
	Kind       string
	From       time.Time
	To         time.Time
	Limit      int
}

// HistorySummary aggregates executed activity for reconciliation.
type HistorySummary struct {
	ExecutedCount    int64
	TotalTransferred decimal.Decimal
}

// HistoryRepository stores the transfer history read model.
type HistoryRepository interface {
	Append(ctx context.Context, entry HistoryEntry) error
	List(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, error)
	Summary(ctx context.Context, tenantID string) (HistorySummary, error)
}
