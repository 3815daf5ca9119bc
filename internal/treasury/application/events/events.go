package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferSubmitted is emitted when a transfer enters the pending index.
type TransferSubmitted struct {
	EventID           string          `json:"event_id"`
	TenantID          string          `json:"tenant_id"`
	TransferID        string          `json:"transfer_id"`
	Submitter         string          `json:"submitter"`
	Destination       string          `json:"destination"`
	Amount            decimal.Decimal `json:"amount"`
	Reason            string          `json:"reason"`
	Approvals         int             `json:"approvals"`
	RequiredApprovals int             `json:"required_approvals"`
	IsEmergency       bool            `json:"is_emergency"`
	OccurredAt        time.Time       `json:"occurred_at"`
}

// TransferApproved is emitted for every approval that sticks.
type TransferApproved struct {
	EventID           string          `json:"event_id"`
	TenantID          string          `json:"tenant_id"`
	TransferID        string          `json:"transfer_id"`
	Approver          string          `json:"approver"`
	Note              string          `json:"note"`
	Amount            decimal.Decimal `json:"amount"`
	Approvals         int             `json:"approvals"`
	RequiredApprovals int             `json:"required_approvals"`
	OccurredAt        time.Time       `json:"occurred_at"`
}

// TransferExecuted is emitted when funds leave the pool. It carries the full
// record because the pending index drops executed transfers.
type TransferExecuted struct {
	EventID           string          `json:"event_id"`
	TenantID          string          `json:"tenant_id"`
	TransferID        string          `json:"transfer_id"`
	Submitter         string          `json:"submitter"`
	Destination       string          `json:"destination"`
	Amount            decimal.Decimal `json:"amount"`
	Reason            string          `json:"reason"`
	Approvals         int             `json:"approvals"`
	RequiredApprovals int             `json:"required_approvals"`
	IsEmergency       bool            `json:"is_emergency"`
	CreatedAt         time.Time       `json:"created_at"`
	ExecutedAt        time.Time       `json:"executed_at"`
	OccurredAt        time.Time       `json:"occurred_at"`
}

// TransferRejected is emitted when an approver vetoes a pending transfer.
type TransferRejected struct {
	EventID           string          `json:"event_id"`
	TenantID          string          `json:"tenant_id"`
	TransferID        string          `json:"transfer_id"`
	RejectedBy        string          `json:"rejected_by"`
	Note              string          `json:"note"`
	Submitter         string          `json:"submitter"`
	Destination       string          `json:"destination"`
	Amount            decimal.Decimal `json:"amount"`
	Reason            string          `json:"reason"`
	Approvals         int             `json:"approvals"`
	RequiredApprovals int             `json:"required_approvals"`
	IsEmergency       bool            `json:"is_emergency"`
	CreatedAt         time.Time       `json:"created_at"`
	OccurredAt        time.Time       `json:"occurred_at"`
}

// TransferCancelled is emitted when the submitter or the owner withdraws a
// pending transfer.
type TransferCancelled struct {
	EventID           string          `json:"event_id"`
	TenantID          string          `json:"tenant_id"`
	TransferID        string          `json:"transfer_id"`
	CancelledBy       string          `json:"cancelled_by"`
	Note              string          `json:"note"`
	Submitter         string          `json:"submitter"`
	Destination       string          `json:"destination"`
	Amount            decimal.Decimal `json:"amount"`
	Reason            string          `json:"reason"`
	Approvals         int             `json:"approvals"`
	RequiredApprovals int             `json:"required_approvals"`
	IsEmergency       bool            `json:"is_emergency"`
	CreatedAt         time.Time       `json:"created_at"`
	OccurredAt        time.Time       `json:"occurred_at"`
}

// FundsAdded is emitted when the pool is credited.
type FundsAdded struct {
	EventID      string          `json:"event_id"`
	TenantID     string          `json:"tenant_id"`
	From         string          `json:"from"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// AllocationUpdated is emitted when the owner replaces the sub-fund split.
type AllocationUpdated struct {
	EventID        string    `json:"event_id"`
	TenantID       string    `json:"tenant_id"`
	InsurancePct   int       `json:"insurance_pct"`
	OperationalPct int       `json:"operational_pct"`
	EmergencyPct   int       `json:"emergency_pct"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ShutdownToggled is emitted when the owner flips the circuit breaker.
type ShutdownToggled struct {
	EventID    string    `json:"event_id"`
	TenantID   string    `json:"tenant_id"`
	Actor      string    `json:"actor"`
	Enabled    bool      `json:"enabled"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
