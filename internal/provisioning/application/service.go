package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	treasury "treasury-cloud/internal/treasury/domain"
)

// ApproverRegistry is the slice of the approval set the provisioner needs.
type ApproverRegistry interface {
	RegisterApprovers(ctx context.Context, tenantID string, accounts []string) error
	ApproverCount(ctx context.Context, tenantID string) (int, error)
}

// AllocationInput overrides the default sub-fund split.
type AllocationInput struct {
	InsurancePct   int `json:"insurance_pct"`
	OperationalPct int `json:"operational_pct"`
	EmergencyPct   int `json:"emergency_pct"`
}

// ProvisionRequest defines tenant provisioning payload.
type ProvisionRequest struct {
	TenantID          string           `json:"tenant_id"`
	Owner             string           `json:"owner"`
	Approvers         []string         `json:"approvers"`
	InitialBalance    *decimal.Decimal `json:"initial_balance,omitempty"`
	MaxTransferAmount *decimal.Decimal `json:"max_transfer_amount,omitempty"`
	CooldownSeconds   *int64           `json:"cooldown_seconds,omitempty"`
	Allocation        *AllocationInput `json:"allocation,omitempty"`
}

// ProvisionResponse summarizes the provisioned treasury.
type ProvisionResponse struct {
	TenantID          string                  `json:"tenant_id"`
	Owner             string                  `json:"owner"`
	Created           bool                    `json:"created"`
	ApproverCount     int                     `json:"approver_count"`
	TotalBalance      decimal.Decimal         `json:"total_balance"`
	MaxTransferAmount decimal.Decimal         `json:"max_transfer_amount"`
	CooldownSeconds   int64                   `json:"cooldown_seconds"`
	Allocation        treasury.FundAllocation `json:"allocation"`
}

// Service provisions tenant treasuries and their approver rosters.
type Service struct {
	treasuries treasury.Repository
	approvals  ApproverRegistry
	logger     *log.Logger
}

// NewService constructs a provisioning service.
func NewService(treasuries treasury.Repository, approvals ApproverRegistry, logger *log.Logger) (*Service, error) {
	if treasuries == nil {
		return nil, errors.New("provisioning: nil treasury repository")
	}
	if approvals == nil {
		return nil, errors.New("provisioning: nil approver registry")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{treasuries: treasuries, approvals: approvals, logger: logger}, nil
}

// ProvisionTreasury creates the tenant's treasury and registers approver
// accounts. A tenant that already has a treasury keeps its policy untouched;
// only new approvers are registered.
func (s *Service) ProvisionTreasury(ctx context.Context, req ProvisionRequest) (*ProvisionResponse, error) {
	if err := validateProvision(req); err != nil {
		return nil, err
	}

	existing, err := s.treasuries.FindByTenant(ctx, req.TenantID)
	switch {
	case err == nil:
		return s.registerOnExisting(ctx, existing, req)
	case errors.Is(err, treasury.ErrTreasuryNotFound):
	default:
		return nil, err
	}

	agg, err := treasury.NewTreasury(req.TenantID, req.Owner)
	if err != nil {
		return nil, err
	}
	if req.MaxTransferAmount != nil {
		if err := agg.UpdateTransferCeiling(req.Owner, *req.MaxTransferAmount); err != nil {
			return nil, err
		}
	}
	if req.CooldownSeconds != nil {
		if err := agg.UpdateCooldown(req.Owner, time.Duration(*req.CooldownSeconds)*time.Second); err != nil {
			return nil, err
		}
	}
	if req.Allocation != nil {
		allocation := treasury.FundAllocation{
			InsurancePct:   req.Allocation.InsurancePct,
			OperationalPct: req.Allocation.OperationalPct,
			EmergencyPct:   req.Allocation.EmergencyPct,
		}
		if err := agg.UpdateAllocation(req.Owner, allocation); err != nil {
			return nil, err
		}
	}
	if req.InitialBalance != nil && req.InitialBalance.IsPositive() {
		if _, err := agg.AddFunds(*req.InitialBalance); err != nil {
			return nil, err
		}
	}

	if err := s.treasuries.Save(ctx, agg); err != nil {
		return nil, err
	}
	accounts := append([]string{req.Owner}, req.Approvers...)
	if err := s.approvals.RegisterApprovers(ctx, req.TenantID, accounts); err != nil {
		return nil, err
	}
	count, err := s.approvals.ApproverCount(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("event=treasury_provisioned tenant_id=%s owner=%s approvers=%d", req.TenantID, req.Owner, count)
	return buildResponse(agg, true, count), nil
}

func (s *Service) registerOnExisting(ctx context.Context, agg *treasury.Treasury, req ProvisionRequest) (*ProvisionResponse, error) {
	if agg.Owner() != req.Owner {
		return nil, fmt.Errorf("%w: tenant %s is owned by another account", treasury.ErrUnauthorized, req.TenantID)
	}
	if len(req.Approvers) > 0 {
		if err := s.approvals.RegisterApprovers(ctx, req.TenantID, req.Approvers); err != nil {
			return nil, err
		}
	}
	count, err := s.approvals.ApproverCount(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	return buildResponse(agg, false, count), nil
}

func buildResponse(agg *treasury.Treasury, created bool, approverCount int) *ProvisionResponse {
	return &ProvisionResponse{
		TenantID:          agg.TenantID(),
		Owner:             agg.Owner(),
		Created:           created,
		ApproverCount:     approverCount,
		TotalBalance:      agg.TotalBalance(),
		MaxTransferAmount: agg.MaxTransferAmount(),
		CooldownSeconds:   int64(agg.Cooldown() / time.Second),
		Allocation:        agg.Allocation(),
	}
}

func validateProvision(req ProvisionRequest) error {
	if req.TenantID == "" {
		return fmt.Errorf("%w: missing tenant_id", treasury.ErrInvalidInput)
	}
	if req.Owner == "" {
		return fmt.Errorf("%w: missing owner", treasury.ErrInvalidInput)
	}
	for _, account := range req.Approvers {
		if account == "" {
			return fmt.Errorf("%w: empty approver account", treasury.ErrInvalidInput)
		}
	}
	if req.InitialBalance != nil && req.InitialBalance.IsNegative() {
		return fmt.Errorf("%w: initial balance must not be negative", treasury.ErrInvalidInput)
	}
	return nil
}
