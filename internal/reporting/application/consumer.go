package application

import (
	"context"
	"errors"
	"log"

	reporting "treasury-cloud/internal/reporting/domain"
	treasuryevents "treasury-cloud/internal/treasury/application/events"
)

// ProjectionHandler projects transfer lifecycle events into the history
// read model. Terminal outcomes survive only here; the pending index drops
// them the moment they leave pending.
type ProjectionHandler struct {
	history *HistoryService
	logger  *log.Logger
}

// NewProjectionHandler constructs the handler.
func NewProjectionHandler(history *HistoryService, logger *log.Logger) (*ProjectionHandler, error) {
	if history == nil {
		return nil, errors.New("history projection: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ProjectionHandler{history: history, logger: logger}, nil
}

// Handle records the lifecycle outcome carried by the event. Unknown event
// types are ignored.
func (h *ProjectionHandler) Handle(ctx context.Context, event any) error {
	if h == nil {
		return errors.New("history projection: nil handler")
	}

	switch e := event.(type) {
	case treasuryevents.TransferSubmitted:
		return h.history.Record(ctx, reporting.HistoryEntry{
			EventID:           e.EventID,
			TenantID:          e.TenantID,
			TransferID:        e.TransferID,
			Kind:              reporting.KindSubmitted,
			Actor:             e.Submitter,
			Destination:       e.Destination,
			Amount:            e.Amount,
			Reason:            e.Reason,
			Approvals:         e.Approvals,
			RequiredApprovals: e.RequiredApprovals,
			IsEmergency:       e.IsEmergency,
			OccurredAt:        e.OccurredAt,
		})
	case treasuryevents.TransferApproved:
		return h.history.Record(ctx, reporting.HistoryEntry{
			EventID:           e.EventID,
			TenantID:          e.TenantID,
			TransferID:        e.TransferID,
			Kind:              reporting.KindApproved,
			Actor:             e.Approver,
			Amount:            e.Amount,
			Approvals:         e.Approvals,
			RequiredApprovals: e.RequiredApprovals,
			Note:              e.Note,
			OccurredAt:        e.OccurredAt,
		})
	case treasuryevents.TransferExecuted:
		return h.history.Record(ctx, reporting.HistoryEntry{
			EventID:           e.EventID,
			TenantID:          e.TenantID,
			TransferID:        e.TransferID,
			Kind:              reporting.KindExecuted,
			Actor:             e.Submitter,
			Destination:       e.Destination,
			Amount:            e.Amount,
			Reason:            e.Reason,
			Approvals:         e.Approvals,
			RequiredApprovals: e.RequiredApprovals,
			IsEmergency:       e.IsEmergency,
			OccurredAt:        e.OccurredAt,
		})
	case treasuryevents.TransferRejected:
		return h.history.Record(ctx, reporting.HistoryEntry{
			EventID:           e.EventID,
			TenantID:          e.TenantID,
			TransferID:        e.TransferID,
			Kind:              reporting.KindRejected,
			Actor:             e.RejectedBy,
			Destination:       e.Destination,
			Amount:            e.Amount,
			Reason:            e.Reason,
			Approvals:         e.Approvals,
			RequiredApprovals: e.RequiredApprovals,
			IsEmergency:       e.IsEmergency,
			Note:              e.Note,
			OccurredAt:        e.OccurredAt,
		})
	case treasuryevents.TransferCancelled:
		return h.history.Record(ctx, reporting.HistoryEntry{
			EventID:           e.EventID,
			TenantID:          e.TenantID,
			TransferID:        e.TransferID,
			Kind:              reporting.KindCancelled,
			Actor:             e.CancelledBy,
			Destination:       e.Destination,
			Amount:            e.Amount,
			Reason:            e.Reason,
			Approvals:         e.Approvals,
			RequiredApprovals: e.RequiredApprovals,
			IsEmergency:       e.IsEmergency,
			Note:              e.Note,
			OccurredAt:        e.OccurredAt,
		})
	default:
		return nil
	}
}
