package treasury

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Default policy values applied when a treasury is provisioned.
const (
	DefaultMaxTransferAmount = 10000
	DefaultCooldown          = time.Hour
)

// TransferParams carries the submitter-supplied arguments of a new transfer.
// RequiredApprovals overrides the quorum policy when set.
type TransferParams struct {
	TransferID        string
	Destination       string
	Amount            decimal.Decimal
	Reason            string
	RequiredApprovals *int
	IsEmergency       bool
}

// Treasury is the aggregate root for one tenant's pooled funds. All mutation
// funnels through its methods; a method that returns an error leaves the
// aggregate observably unchanged.
//
// Invariants:
//   - total balance never goes negative
//   - the pending index holds exactly the records with status pending
//   - stats equal what a full scan of the records would compute
//   - a record's quorum is frozen at submission
//   - sub-fund balances are derived views over the total, never stored
type Treasury struct {
	tenantID string
	owner    string

	pending map[string]*TransferRecord

	totalBalance decimal.Decimal
	allocation   FundAllocation
	stats        Stats

	maxTransferAmount decimal.Decimal
	cooldown          time.Duration
	shutdown          bool

	version int64
	isNew   bool
}

// NewTreasury creates a fresh treasury for a tenant with default policy.
func NewTreasury(tenantID, owner string) (*Treasury, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: empty tenant id", ErrInvalidInput)
	}
	if owner == "" {
		return nil, fmt.Errorf("%w: empty owner account", ErrInvalidInput)
	}
	return &Treasury{
		tenantID:          tenantID,
		owner:             owner,
		pending:           make(map[string]*TransferRecord),
		totalBalance:      decimal.Zero,
		allocation:        DefaultAllocation(),
		stats:             NewStats(),
		maxTransferAmount: decimal.NewFromInt(DefaultMaxTransferAmount),
		cooldown:          DefaultCooldown,
		isNew:             true,
	}, nil
}

// SubmitTransfer validates the parameters, freezes the quorum and adds a
// pending record. When the submitter is the owner and the amount is within
// the ceiling, the owner's approval is recorded in the same call; if that
// satisfies the quorum the record executes immediately, and a failed
// execution fails the whole submission.
func (t *Treasury) SubmitTransfer(submitter string, params TransferParams, approverCount int, now time.Time) (*TransferRecord, error) {
	if t.shutdown && !params.IsEmergency {
		return nil, fmt.Errorf("%w: emergency shutdown is active", ErrInvalidState)
	}
	if params.TransferID == "" {
		return nil, fmt.Errorf("%w: empty transfer id", ErrInvalidInput)
	}
	if _, exists := t.pending[params.TransferID]; exists {
		return nil, fmt.Errorf("%w: transfer id %s already in use", ErrInvalidInput, params.TransferID)
	}
	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if params.Amount.GreaterThan(t.maxTransferAmount) && !params.IsEmergency {
		return nil, fmt.Errorf("%w: amount exceeds the transfer ceiling", ErrInvalidInput)
	}
	if params.Destination == "" {
		return nil, fmt.Errorf("%w: empty destination account", ErrInvalidInput)
	}

	quorum, err := RequiredApprovals(approverCount, params.IsEmergency, params.RequiredApprovals)
	if err != nil {
		return nil, err
	}

	record := &TransferRecord{
		TransferID:        params.TransferID,
		Submitter:         submitter,
		Destination:       params.Destination,
		Amount:            params.Amount,
		Reason:            params.Reason,
		RequiredApprovals: quorum,
		CreatedAt:         now,
		IsEmergency:       params.IsEmergency,
		Status:            StatusPending,
	}

	if submitter == t.owner && !params.Amount.GreaterThan(t.maxTransferAmount) {
		_ = record.AddApproval(submitter)
		if record.QuorumMet() {
			record.MarkApproved()
			if err := t.checkExecutable(record, now); err != nil {
				return nil, err
			}
			t.pending[record.TransferID] = record
			t.stats.PendingTransfers++
			t.applyExecution(record, now)
			return record.Clone(), nil
		}
	}

	t.pending[record.TransferID] = record
	t.stats.PendingTransfers++
	return record.Clone(), nil
}

// ApproveTransfer adds one approval to a pending record. Reaching quorum
// transitions the record to approved and executes it in the same call; if
// execution fails the approval does not stick.
func (t *Treasury) ApproveTransfer(approver, transferID string, now time.Time) (*TransferRecord, error) {
	current, ok := t.pending[transferID]
	if !ok {
		return nil, fmt.Errorf("%w: transfer %s is not pending", ErrInvalidState, transferID)
	}

	record := current.Clone()
	if err := record.AddApproval(approver); err != nil {
		return nil, err
	}
	if record.QuorumMet() {
		record.MarkApproved()
		if err := t.checkExecutable(record, now); err != nil {
			return nil, err
		}
		t.applyExecution(record, now)
		return record.Clone(), nil
	}

	t.pending[transferID] = record
	return record.Clone(), nil
}

// ExecuteTransfer finalizes a record that has already reached quorum. The
// approved status only exists inside the call that reaches quorum, so a
// record still sitting in the pending index surfaces ErrNotYetAuthorized.
func (t *Treasury) ExecuteTransfer(transferID string, now time.Time) (*TransferRecord, error) {
	current, ok := t.pending[transferID]
	if !ok {
		return nil, fmt.Errorf("%w: transfer %s is not pending", ErrInvalidState, transferID)
	}
	if current.Status != StatusApproved || !current.QuorumMet() {
		return nil, fmt.Errorf("%w: transfer %s has %d of %d approvals", ErrNotYetAuthorized,
			transferID, current.Approvals, current.RequiredApprovals)
	}

	record := current.Clone()
	if err := t.checkExecutable(record, now); err != nil {
		return nil, err
	}
	t.applyExecution(record, now)
	return record.Clone(), nil
}

// RejectTransfer terminates a pending record without moving funds.
func (t *Treasury) RejectTransfer(transferID string) (*TransferRecord, error) {
	current, ok := t.pending[transferID]
	if !ok {
		return nil, fmt.Errorf("%w: transfer %s is not pending", ErrInvalidState, transferID)
	}

	record := current.Clone()
	record.MarkRejected()
	delete(t.pending, transferID)
	t.stats.PendingTransfers--
	return record.Clone(), nil
}

// CancelTransfer terminates a pending record on behalf of its submitter or
// the owner.
func (t *Treasury) CancelTransfer(caller, transferID string) (*TransferRecord, error) {
	current, ok := t.pending[transferID]
	if !ok {
		return nil, fmt.Errorf("%w: transfer %s is not pending", ErrInvalidState, transferID)
	}
	if caller != current.Submitter && caller != t.owner {
		return nil, fmt.Errorf("%w: only the submitter or the owner may cancel", ErrUnauthorized)
	}

	record := current.Clone()
	record.MarkCancelled()
	delete(t.pending, transferID)
	t.stats.PendingTransfers--
	return record.Clone(), nil
}

// AddFunds credits the pool and returns the new total balance.
func (t *Treasury) AddFunds(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	t.totalBalance = t.totalBalance.Add(amount)
	return t.totalBalance, nil
}

// UpdateAllocation replaces the sub-fund percentages. Owner only.
func (t *Treasury) UpdateAllocation(caller string, allocation FundAllocation) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if err := allocation.Validate(); err != nil {
		return err
	}
	t.allocation = allocation
	return nil
}

// SetShutdown toggles the circuit breaker. While active, new non-emergency
// submissions are rejected; operations on already-pending records continue.
// Owner only.
func (t *Treasury) SetShutdown(caller string, enabled bool) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	t.shutdown = enabled
	return nil
}

// UpdateTransferCeiling replaces the no-quorum ceiling. Owner only.
func (t *Treasury) UpdateTransferCeiling(caller string, amount decimal.Decimal) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: ceiling must be positive", ErrInvalidInput)
	}
	t.maxTransferAmount = amount
	return nil
}

// UpdateCooldown replaces the execution cooldown window. Owner only.
func (t *Treasury) UpdateCooldown(caller string, cooldown time.Duration) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if cooldown < 0 {
		return fmt.Errorf("%w: cooldown must not be negative", ErrInvalidInput)
	}
	t.cooldown = cooldown
	return nil
}

func (t *Treasury) requireOwner(caller string) error {
	if caller != t.owner {
		return fmt.Errorf("%w: owner-only operation", ErrUnauthorized)
	}
	return nil
}

func (t *Treasury) checkExecutable(r *TransferRecord, now time.Time) error {
	if !r.IsEmergency && r.Age(now) < t.cooldown {
		return fmt.Errorf("%w: transfer %s executable after %s", ErrCooldownActive,
			r.TransferID, r.CreatedAt.Add(t.cooldown).Format(time.RFC3339))
	}
	if t.totalBalance.LessThan(r.Amount) {
		return fmt.Errorf("%w: balance %s cannot cover %s", ErrInsufficientBalance,
			t.totalBalance.String(), r.Amount.String())
	}
	return nil
}

func (t *Treasury) applyExecution(r *TransferRecord, now time.Time) {
	t.totalBalance = t.totalBalance.Sub(r.Amount)
	r.MarkExecuted(now)
	delete(t.pending, r.TransferID)
	t.stats.PendingTransfers--
	t.stats.ExecutedTransfers++
	t.stats.TotalTransferred = t.stats.TotalTransferred.Add(r.Amount)
}

// PendingTransfer returns a copy of one pending record.
func (t *Treasury) PendingTransfer(transferID string) (*TransferRecord, error) {
	record, ok := t.pending[transferID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTransferNotFound, transferID)
	}
	return record.Clone(), nil
}

// PendingTransfers returns copies of all pending records ordered by creation
// time, then id.
func (t *Treasury) PendingTransfers() []*TransferRecord {
	records := make([]*TransferRecord, 0, len(t.pending))
	for _, record := range t.pending {
		records = append(records, record.Clone())
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].TransferID < records[j].TransferID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records
}

// TenantID returns the owning tenant.
func (t *Treasury) TenantID() string { return t.tenantID }

// Owner returns the owner account.
func (t *Treasury) Owner() string { return t.owner }

// TotalBalance returns the pooled balance.
func (t *Treasury) TotalBalance() decimal.Decimal { return t.totalBalance }

// Allocation returns the sub-fund percentages.
func (t *Treasury) Allocation() FundAllocation { return t.allocation }

// SubFundBalances returns the derived insurance, operational and emergency
// balances for the current total.
func (t *Treasury) SubFundBalances() (insurance, operational, emergency decimal.Decimal) {
	return t.allocation.Split(t.totalBalance)
}

// Stats returns the activity counters.
func (t *Treasury) Stats() Stats { return t.stats }

// MaxTransferAmount returns the no-quorum ceiling.
func (t *Treasury) MaxTransferAmount() decimal.Decimal { return t.maxTransferAmount }

// Cooldown returns the execution cooldown window.
func (t *Treasury) Cooldown() time.Duration { return t.cooldown }

// ShutdownActive reports whether the circuit breaker is on.
func (t *Treasury) ShutdownActive() bool { return t.shutdown }

// Version returns the persisted snapshot version.
func (t *Treasury) Version() int64 { return t.version }

// IsNew reports whether the aggregate was created in this call and has never
// been persisted.
func (t *Treasury) IsNew() bool { return t.isNew }

// MarkPersisted marks the aggregate as persisted.
func (t *Treasury) MarkPersisted() {
	if t != nil {
		t.isNew = false
	}
}

// Clone returns a detached deep copy marked as persisted.
func (t *Treasury) Clone() *Treasury {
	if t == nil {
		return nil
	}
	copy := *t
	copy.pending = make(map[string]*TransferRecord, len(t.pending))
	for id, record := range t.pending {
		copy.pending[id] = record.Clone()
	}
	copy.isNew = false
	return &copy
}
