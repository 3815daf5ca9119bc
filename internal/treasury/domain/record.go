package treasury

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusExecuted  = "executed"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// TransferRecord is one in-flight authorization request. Records live in the
// treasury pending index only while status is pending; the approved status is
// transient inside a call and terminal records survive only in events and the
// reporting history.
type TransferRecord struct {
	TransferID        string
	Submitter         string
	Destination       string
	Amount            decimal.Decimal
	Reason            string
	Approvals         int
	RequiredApprovals int
	Approvers         []string
	CreatedAt         time.Time
	ExecutedAt        *time.Time
	IsEmergency       bool
	Status            string
}

// HasApproved reports whether the account already approved this transfer.
func (r *TransferRecord) HasApproved(account string) bool {
	for _, a := range r.Approvers {
		if a == account {
			return true
		}
	}
	return false
}

// AddApproval records one approval. Each account counts at most once.
func (r *TransferRecord) AddApproval(account string) error {
	if r.HasApproved(account) {
		return fmt.Errorf("%w: %s already approved transfer %s", ErrAlreadyApproved, account, r.TransferID)
	}
	r.Approvers = append(r.Approvers, account)
	r.Approvals++
	return nil
}

// QuorumMet reports whether the collected approvals satisfy the frozen quorum.
func (r *TransferRecord) QuorumMet() bool {
	return r.Approvals >= r.RequiredApprovals
}

// Age returns the elapsed time since the record was created.
func (r *TransferRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.CreatedAt)
}

// MarkApproved transitions the record to approved.
func (r *TransferRecord) MarkApproved() {
	r.Status = StatusApproved
}

// MarkExecuted transitions the record to executed and stamps the time.
func (r *TransferRecord) MarkExecuted(now time.Time) {
	r.Status = StatusExecuted
	executedAt := now
	r.ExecutedAt = &executedAt
}

// MarkRejected transitions the record to rejected.
func (r *TransferRecord) MarkRejected() {
	r.Status = StatusRejected
}

// MarkCancelled transitions the record to cancelled.
func (r *TransferRecord) MarkCancelled() {
	r.Status = StatusCancelled
}

// Clone returns a detached copy of the record.
func (r *TransferRecord) Clone() *TransferRecord {
	if r == nil {
		return nil
	}
	copy := *r
	copy.Approvers = append([]string(nil), r.Approvers...)
	if r.ExecutedAt != nil {
		executedAt := *r.ExecutedAt
		copy.ExecutedAt = &executedAt
	}
	return &copy
}
