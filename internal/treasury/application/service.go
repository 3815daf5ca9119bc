package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"treasury-cloud/internal/auth"
	"treasury-cloud/internal/eventing"
	"treasury-cloud/internal/observability/metrics"
	treasuryevents "treasury-cloud/internal/treasury/application/events"
	treasury "treasury-cloud/internal/treasury/domain"
)

// SubmitTransferRequest asks for a new transfer authorization.
type SubmitTransferRequest struct {
	TenantID          string          `json:"tenant_id"`
	TransferID        string          `json:"transfer_id"`
	Destination       string          `json:"destination"`
	Amount            decimal.Decimal `json:"amount"`
	Reason            string          `json:"reason"`
	RequiredApprovals *int            `json:"required_approvals,omitempty"`
	IsEmergency       bool            `json:"is_emergency"`
}

// ApproveTransferRequest adds the caller's approval to a pending transfer.
type ApproveTransferRequest struct {
	TenantID   string `json:"tenant_id"`
	TransferID string `json:"transfer_id"`
	Note       string `json:"note"`
}

// ExecuteTransferRequest asks to finalize a transfer that reached quorum.
type ExecuteTransferRequest struct {
	TenantID   string `json:"tenant_id"`
	TransferID string `json:"transfer_id"`
}

// RejectTransferRequest vetoes a pending transfer.
type RejectTransferRequest struct {
	TenantID   string `json:"tenant_id"`
	TransferID string `json:"transfer_id"`
	Note       string `json:"note"`
}

// CancelTransferRequest withdraws a pending transfer.
type CancelTransferRequest struct {
	TenantID   string `json:"tenant_id"`
	TransferID string `json:"transfer_id"`
	Note       string `json:"note"`
}

// AddFundsRequest credits the pool.
type AddFundsRequest struct {
	TenantID string          `json:"tenant_id"`
	Amount   decimal.Decimal `json:"amount"`
	Reason   string          `json:"reason"`
}

// UpdateAllocationRequest replaces the sub-fund percentages.
type UpdateAllocationRequest struct {
	TenantID       string `json:"tenant_id"`
	InsurancePct   int    `json:"insurance_pct"`
	OperationalPct int    `json:"operational_pct"`
	EmergencyPct   int    `json:"emergency_pct"`
}

// ShutdownRequest toggles the circuit breaker.
type ShutdownRequest struct {
	TenantID string `json:"tenant_id"`
	Enabled  bool   `json:"enabled"`
	Reason   string `json:"reason"`
}

// UpdateLimitsRequest changes the transfer ceiling and/or the cooldown.
// Fields left nil keep their current value.
type UpdateLimitsRequest struct {
	TenantID          string           `json:"tenant_id"`
	MaxTransferAmount *decimal.Decimal `json:"max_transfer_amount,omitempty"`
	CooldownSeconds   *int64           `json:"cooldown_seconds,omitempty"`
}

// TransferResponse is the API view of a transfer record.
type TransferResponse struct {
	TransferID        string          `json:"transfer_id"`
	TenantID          string          `json:"tenant_id"`
	Submitter         string          `json:"submitter"`
	Destination       string          `json:"destination"`
	Amount            decimal.Decimal `json:"amount"`
	Reason            string          `json:"reason"`
	Approvals         int             `json:"approvals"`
	RequiredApprovals int             `json:"required_approvals"`
	Approvers         []string        `json:"approvers"`
	Status            string          `json:"status"`
	IsEmergency       bool            `json:"is_emergency"`
	CreatedAt         time.Time       `json:"created_at"`
	ExecutedAt        *time.Time      `json:"executed_at,omitempty"`
}

// BalanceResponse is the ledger view after a credit.
type BalanceResponse struct {
	TenantID           string          `json:"tenant_id"`
	TotalBalance       decimal.Decimal `json:"total_balance"`
	InsuranceBalance   decimal.Decimal `json:"insurance_balance"`
	OperationalBalance decimal.Decimal `json:"operational_balance"`
	EmergencyBalance   decimal.Decimal `json:"emergency_balance"`
}

// OverviewResponse is the full treasury view.
type OverviewResponse struct {
	TenantID           string                  `json:"tenant_id"`
	Owner              string                  `json:"owner"`
	TotalBalance       decimal.Decimal         `json:"total_balance"`
	InsuranceBalance   decimal.Decimal         `json:"insurance_balance"`
	OperationalBalance decimal.Decimal         `json:"operational_balance"`
	EmergencyBalance   decimal.Decimal         `json:"emergency_balance"`
	Allocation         treasury.FundAllocation `json:"allocation"`
	Stats              treasury.Stats          `json:"stats"`
	MaxTransferAmount  decimal.Decimal         `json:"max_transfer_amount"`
	CooldownSeconds    int64                   `json:"cooldown_seconds"`
	Shutdown           bool                    `json:"shutdown"`
}

// EventPublisher emits treasury lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Service handles treasury use cases. Mutating calls are serialized so each
// one observes the previous call's committed state; the repository's version
// guard backs this up across processes.
type Service struct {
	mu        sync.Mutex
	repo      treasury.Repository
	approvals treasury.ApprovalSet
	publisher EventPublisher
	clock     Clock
	tenantID  string
}

// NewService constructs a treasury service. A nil publisher disables events;
// a nil clock falls back to the system clock.
func NewService(repo treasury.Repository, approvals treasury.ApprovalSet, publisher EventPublisher, clock Clock, tenantID string) (*Service, error) {
	if repo == nil {
		return nil, errors.New("treasury service: nil repository")
	}
	if approvals == nil {
		return nil, errors.New("treasury service: nil approval set")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{
		repo:      repo,
		approvals: approvals,
		publisher: publisher,
		clock:     clock,
		tenantID:  tenantID,
	}, nil
}

// SubmitTransfer creates a pending transfer, generating an id when the
// request omits one. The owner bootstrap path can execute in the same call.
func (s *Service) SubmitTransfer(ctx context.Context, req SubmitTransferRequest) (*TransferResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID, actor, err := s.resolveCaller(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if err := s.requireApprover(ctx, tenantID, actor); err != nil {
		return nil, err
	}
	approverCount, err := s.approvals.ApproverCount(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	agg, err := s.repo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	transferID := req.TransferID
	if transferID == "" {
		transferID = "tr-" + uuid.NewString()
	}
	now := s.clock.Now().UTC()
	record, err := agg.SubmitTransfer(actor, treasury.TransferParams{
		TransferID:        transferID,
		Destination:       req.Destination,
		Amount:            req.Amount,
		Reason:            req.Reason,
		RequiredApprovals: req.RequiredApprovals,
		IsEmergency:       req.IsEmergency,
	}, approverCount, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, agg); err != nil {
		return nil, err
	}
	metrics.IncTransferSubmitted()
	metrics.SetPendingTransfers(float64(agg.Stats().PendingTransfers))

	if err := s.publish(ctx, tenantID, treasuryevents.TransferSubmitted{
		EventID:           eventing.NewEventID(),
		TenantID:          tenantID,
		TransferID:        record.TransferID,
		Submitter:         record.Submitter,
		Destination:       record.Destination,
		Amount:            record.Amount,
		Reason:            record.Reason,
		Approvals:         record.Approvals,
		RequiredApprovals: record.RequiredApprovals,
		IsEmergency:       record.IsEmergency,
		OccurredAt:        now,
	}); err != nil {
		return nil, err
	}
	if record.Status == treasury.StatusExecuted {
		if err := s.publishExecuted(ctx, tenantID, record, now); err != nil {
			return nil, err
		}
	}
	return newTransferResponse(tenantID, record), nil
}

// ApproveTransfer records the caller's approval. Reaching quorum executes the
// transfer within the same call; a failed execution fails the approval too.
func (s *Service) ApproveTransfer(ctx context.Context, req ApproveTransferRequest) (*TransferResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID, actor, err := s.resolveCaller(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if err := s.requireApprover(ctx, tenantID, actor); err != nil {
		return nil, err
	}

	agg, err := s.repo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	record, err := agg.ApproveTransfer(actor, req.TransferID, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, agg); err != nil {
		return nil, err
	}
	metrics.IncTransferApproved()
	metrics.SetPendingTransfers(float64(agg.Stats().PendingTransfers))

	if err := s.publish(ctx, tenantID, treasuryevents.TransferApproved{
		EventID:           eventing.NewEventID(),
		TenantID:          tenantID,
		TransferID:        record.TransferID,
		Approver:          actor,
		Note:              req.Note,
		Amount:            record.Amount,
		Approvals:         record.Approvals,
		RequiredApprovals: record.RequiredApprovals,
		OccurredAt:        now,
	}); err != nil {
		return nil, err
	}
	if record.Status == treasury.StatusExecuted {
		if err := s.publishExecuted(ctx, tenantID, record, now); err != nil {
			return nil, err
		}
	}
	return newTransferResponse(tenantID, record), nil
}

// ExecuteTransfer finalizes a transfer that already reached quorum.
func (s *Service) ExecuteTransfer(ctx context.Context, req ExecuteTransferRequest) (*TransferResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID, actor, err := s.resolveCaller(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if err := s.requireApprover(ctx, tenantID, actor); err != nil {
		return nil, err
	}

	agg, err := s.repo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	record, err := agg.ExecuteTransfer(req.TransferID, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, agg); err != nil {
		return nil, err
	}
	metrics.SetPendingTransfers(float64(agg.Stats().PendingTransfers))

	if err := s.publishExecuted(ctx, tenantID, record, now); err != nil {
		return nil, err
	}
	return newTransferResponse(tenantID, record), nil
}

// RejectTransfer vetoes a pending transfer.
func (s *Service) RejectTransfer(ctx context.Context, req RejectTransferRequest) (*TransferResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID, actor, err := s.resolveCaller(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if err := s.requireApprover(ctx, tenantID, actor); err != nil {
		return nil, err
	}

	agg, err := s.repo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	record, err := agg.RejectTransfer(req.TransferID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, agg); err != nil {
		return nil, err
	}
	metrics.IncTransferRejected()
	metrics.SetPendingTransfers(float64(agg.Stats().PendingTransfers))

	now := s.clock.Now().UTC()
	if err := s.publish(ctx, tenantID, treasuryevents.TransferRejected{
		EventID:           eventing.NewEventID(),
		TenantID:          tenantID,
		TransferID:        record.TransferID,
		RejectedBy:        actor,
		Note:              req.Note,
		Submitter:         record.Submitter,
		Destination:       record.Destination,
		Amount:            record.Amount,
		Reason:            record.Reason,
		Approvals:         record.Approvals,
		RequiredApprovals: record.RequiredApprovals,
		IsEmergency:       record.IsEmergency,
		CreatedAt:         record.CreatedAt,
		OccurredAt:        now,
	}); err != nil {
		return nil, err
	}
	return newTransferResponse(tenantID, record), nil
}

// CancelTransfer withdraws a pending transfer on behalf of its submitter or
// the owner.
func (s *Service) CancelTransfer(ctx context.Context, req CancelTransferRequest) (*TransferResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID, actor, err := s.resolveCaller(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if err := s.requireApprover(ctx, tenantID, actor); err != nil {
		return nil, err
	}

	agg, err := s.repo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	record, err := agg.CancelTransfer(actor, req.TransferID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, agg); err != nil {
		return nil, err
	}
	metrics.IncTransferCancelled()
	metrics.SetPendingTransfers(float64(agg.Stats().PendingTransfers))

	now := s.clock.Now().UTC()
	if err := s.publish(ctx, tenantID, treasuryevents.TransferCancelled{
		EventID:           eventing.NewEventID(),
		TenantID:          tenantID,
		TransferID:        record.TransferID,
		CancelledBy:       actor,
		Note:              req.Note,
		Submitter:         record.Submitter,
		Destination:       record.Destination,
		Amount:            record.Amount,
		Reason:            record.Reason,
		Approvals:         record.Approvals,
		RequiredApprovals: record.RequiredApprovals,
		IsEmergency:       record.IsEmergency,
		CreatedAt:         record.CreatedAt,
		OccurredAt:        now,
	}); err != nil {
		return nil, err
	}
	return newTransferResponse(tenantID, record), nil
}

// AddFunds credits the pool. Any authenticated caller may donate.
func (s *Service) AddFunds(ctx context.Context, req AddFundsRequest) (*BalanceResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID, actor, err := s.resolveCaller(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	agg, err := s.repo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	total, err := agg.AddFunds(req.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, agg); err != nil {
		return nil, err
	}
	metrics.SetTotalBalance(total.InexactFloat64())

	now := s.clock.Now().UTC()
	if err := s.publish(ctx, tenantID, treasuryevents.FundsAdded{
		EventID:      eventing.NewEventID(),
		TenantID:     tenantID,
		From:         actor,
		Amount:       req.Amount,
		Reason:       req.Reason,
		TotalBalance: total,
		OccurredAt:   now,
	}); err != nil {
		return nil, err
	}

	insurance, operational, emergency := agg.SubFundBalances()
	return &BalanceResponse{
		TenantID:           tenantID,
		TotalBalance:       total,
		InsuranceBalance:   insurance,
		OperationalBalance: operational,
		EmergencyBalance:   emergency,
	}, nil
}

// UpdateAllocation replaces the sub-fund percentages. Owner only.
func (s *Service) UpdateAllocation(ctx context.Context, req UpdateAllocationRequest) (*OverviewResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID, actor, err := s.resolveCaller(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	agg, err := s.repo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	allocation := treasury.FundAllocation{
		InsurancePct:   req.InsurancePct,
		OperationalPct: req.OperationalPct,
		EmergencyPct:   req.EmergencyPct,
	}
	if err := agg.UpdateAllocation(actor, allocation); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, agg); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	if err := s.publish(ctx, tenantID, treasuryevents.AllocationUpdated{
		EventID:        eventing.NewEventID(),
		TenantID:       tenantID,
		InsurancePct:   allocation.InsurancePct,
		OperationalPct: allocation.OperationalPct,
		EmergencyPct:   allocation.EmergencyPct,
		OccurredAt:     now,
	}); err != nil {
		return nil, err
	}
	return newOverviewResponse(agg), nil
}

// SetShutdown toggles the circuit breaker. Owner only.
func (s *Service) SetShutdown(ctx context.Context, req ShutdownRequest) (*OverviewResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID, actor, err := s.resolveCaller(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	agg, err := s.repo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := agg.SetShutdown(actor, req.Enabled); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, agg); err != nil {
		return nil, err
	}
	metrics.SetShutdownActive(req.Enabled)

	now := s.clock.Now().UTC()
	if err := s.publish(ctx, tenantID, treasuryevents.ShutdownToggled{
		EventID:    eventing.NewEventID(),
		TenantID:   tenantID,
		Actor:      actor,
		Enabled:    req.Enabled,
		Reason:     req.Reason,
		OccurredAt: now,
	}); err != nil {
		return nil, err
	}
	return newOverviewResponse(agg), nil
}

// UpdateLimits changes the transfer ceiling and/or the cooldown. Owner only.
func (s *Service) UpdateLimits(ctx context.Context, req UpdateLimitsRequest) (*OverviewResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID, actor, err := s.resolveCaller(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if req.MaxTransferAmount == nil && req.CooldownSeconds == nil {
		return nil, fmt.Errorf("%w: nothing to update", treasury.ErrInvalidInput)
	}

	agg, err := s.repo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if req.MaxTransferAmount != nil {
		if err := agg.UpdateTransferCeiling(actor, *req.MaxTransferAmount); err != nil {
			return nil, err
		}
	}
	if req.CooldownSeconds != nil {
		if err := agg.UpdateCooldown(actor, time.Duration(*req.CooldownSeconds)*time.Second); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, agg); err != nil {
		return nil, err
	}
	return newOverviewResponse(agg), nil
}

// GetTransfer returns one pending transfer.
func (s *Service) GetTransfer(ctx context.Context, tenantID, transferID string) (*TransferResponse, error) {
	resolved, err := s.resolveTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	agg, err := s.repo.FindByTenant(ctx, resolved)
	if err != nil {
		return nil, err
	}
	record, err := agg.PendingTransfer(transferID)
	if err != nil {
		return nil, err
	}
	return newTransferResponse(resolved, record), nil
}

// ListPendingTransfers returns the pending index ordered by creation time.
func (s *Service) ListPendingTransfers(ctx context.Context, tenantID string) ([]TransferResponse, error) {
	resolved, err := s.resolveTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	agg, err := s.repo.FindByTenant(ctx, resolved)
	if err != nil {
		return nil, err
	}
	records := agg.PendingTransfers()
	result := make([]TransferResponse, 0, len(records))
	for _, record := range records {
		result = append(result, *newTransferResponse(resolved, record))
	}
	return result, nil
}

// GetStats returns the activity counters.
func (s *Service) GetStats(ctx context.Context, tenantID string) (treasury.Stats, error) {
	resolved, err := s.resolveTenant(ctx, tenantID)
	if err != nil {
		return treasury.Stats{}, err
	}
	agg, err := s.repo.FindByTenant(ctx, resolved)
	if err != nil {
		return treasury.Stats{}, err
	}
	return agg.Stats(), nil
}

// GetOverview returns the full treasury view.
func (s *Service) GetOverview(ctx context.Context, tenantID string) (*OverviewResponse, error) {
	resolved, err := s.resolveTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	agg, err := s.repo.FindByTenant(ctx, resolved)
	if err != nil {
		return nil, err
	}
	return newOverviewResponse(agg), nil
}

func (s *Service) resolveTenant(ctx context.Context, requested string) (string, error) {
	tenantID := auth.TenantIDFromContext(ctx)
	if tenantID == "" {
		tenantID = requested
	}
	if tenantID == "" {
		tenantID = s.tenantID
	}
	if tenantID != "" && requested != "" && requested != tenantID {
		return "", auth.ErrTenantMismatch
	}
	if tenantID == "" {
		return "", fmt.Errorf("%w: missing tenant id", treasury.ErrInvalidInput)
	}
	return tenantID, nil
}

func (s *Service) resolveCaller(ctx context.Context, requested string) (string, string, error) {
	tenantID, err := s.resolveTenant(ctx, requested)
	if err != nil {
		return "", "", err
	}
	actor := auth.SubjectFromContext(ctx)
	if actor == "" {
		return "", "", fmt.Errorf("%w: missing caller identity", treasury.ErrUnauthorized)
	}
	return tenantID, actor, nil
}

func (s *Service) requireApprover(ctx context.Context, tenantID, actor string) error {
	authorized, err := s.approvals.IsAuthorized(ctx, tenantID, actor)
	if err != nil {
		return err
	}
	if !authorized {
		return fmt.Errorf("%w: account %s is not an approver", treasury.ErrUnauthorized, actor)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, tenantID string, event any) error {
	if s.publisher == nil {
		return nil
	}
	ctx = eventing.WithTenantID(ctx, tenantID)
	return s.publisher.Publish(ctx, event)
}

func (s *Service) publishExecuted(ctx context.Context, tenantID string, record *treasury.TransferRecord, now time.Time) error {
	metrics.IncTransferExecuted()
	metrics.AddTransferredTotal(record.Amount.InexactFloat64())
	executedAt := now
	if record.ExecutedAt != nil {
		executedAt = *record.ExecutedAt
	}
	return s.publish(ctx, tenantID, treasuryevents.TransferExecuted{
		EventID:           eventing.NewEventID(),
		TenantID:          tenantID,
		TransferID:        record.TransferID,
		Submitter:         record.Submitter,
		Destination:       record.Destination,
		Amount:            record.Amount,
		Reason:            record.Reason,
		Approvals:         record.Approvals,
		RequiredApprovals: record.RequiredApprovals,
		IsEmergency:       record.IsEmergency,
		CreatedAt:         record.CreatedAt,
		ExecutedAt:        executedAt,
		OccurredAt:        now,
	})
}

func newTransferResponse(tenantID string, record *treasury.TransferRecord) *TransferResponse {
	approvers := append([]string(nil), record.Approvers...)
	return &TransferResponse{
		TransferID:        record.TransferID,
		TenantID:          tenantID,
		Submitter:         record.Submitter,
		Destination:       record.Destination,
		Amount:            record.Amount,
		Reason:            record.Reason,
		Approvals:         record.Approvals,
		RequiredApprovals: record.RequiredApprovals,
		Approvers:         approvers,
		Status:            record.Status,
		IsEmergency:       record.IsEmergency,
		CreatedAt:         record.CreatedAt,
		ExecutedAt:        record.ExecutedAt,
	}
}

func newOverviewResponse(agg *treasury.Treasury) *OverviewResponse {
	insurance, operational, emergency := agg.SubFundBalances()
	return &OverviewResponse{
		TenantID:           agg.TenantID(),
		Owner:              agg.Owner(),
		TotalBalance:       agg.TotalBalance(),
		InsuranceBalance:   insurance,
		OperationalBalance: operational,
		EmergencyBalance:   emergency,
		Allocation:         agg.Allocation(),
		Stats:              agg.Stats(),
		MaxTransferAmount:  agg.MaxTransferAmount(),
		CooldownSeconds:    int64(agg.Cooldown() / time.Second),
		Shutdown:           agg.ShutdownActive(),
	}
}
