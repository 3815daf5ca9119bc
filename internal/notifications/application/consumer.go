package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	notifications "treasury-cloud/internal/notifications/domain"
	"treasury-cloud/internal/notifications/notify"
	"treasury-cloud/internal/observability/metrics"
	treasuryevents "treasury-cloud/internal/treasury/application/events"
)

// Notifier turns treasury events into outbound notifications. A notification
// goes out once per event when at least one enabled rule matches it.
type Notifier struct {
	rules    notifications.RuleRepository
	channel  notify.Channel
	template *notify.Template
	logger   *log.Logger
}

// NewNotifier constructs a notifier.
func NewNotifier(rules notifications.RuleRepository, channel notify.Channel, template *notify.Template, logger *log.Logger) (*Notifier, error) {
	if rules == nil {
		return nil, errors.New("notifier: nil rule repository")
	}
	if channel == nil {
		return nil, errors.New("notifier: nil channel")
	}
	if template == nil {
		defaultTemplate, err := notify.NewTemplate("")
		if err != nil {
			return nil, err
		}
		template = defaultTemplate
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Notifier{rules: rules, channel: channel, template: template, logger: logger}, nil
}

// HandleEvent delivers a notification when a rule matches. A failed send
// returns the error so the dispatcher can retry or dead-letter the envelope.
func (n *Notifier) HandleEvent(ctx context.Context, event any) error {
	if n == nil {
		return errors.New("notifier: nil notifier")
	}

	tenantID, kind, amount, emergency, data, ok := describeEvent(event)
	if !ok {
		return nil
	}
	rules, err := n.rules.ListEnabledByKind(ctx, tenantID, kind)
	if err != nil {
		return err
	}
	matched := false
	for _, rule := range rules {
		if rule.Matches(amount, emergency) {
			matched = true
			break
		}
	}
	if !matched {
		return nil
	}

	content, err := n.template.Render(data)
	if err != nil {
		return err
	}
	if err := n.channel.Send(ctx, content); err != nil {
		metrics.IncNotificationSent(metrics.ResultError)
		return err
	}
	metrics.IncNotificationSent(metrics.ResultSuccess)
	n.logger.Printf("notification sent: tenant=%s kind=%s", tenantID, kind)
	return nil
}

func describeEvent(event any) (tenantID, kind string, amount decimal.Decimal, emergency bool, data notify.TemplateData, ok bool) {
	switch e := event.(type) {
	case treasuryevents.TransferSubmitted:
		data = notify.TemplateData{
			Event:             notifications.KindTransferSubmitted,
			EventLabel:        "Transfer Submitted",
			Tenant:            e.TenantID,
			Transfer:          e.TransferID,
			Actor:             e.Submitter,
			Destination:       e.Destination,
			Amount:            e.Amount.String(),
			Reason:            e.Reason,
			Approvals:         e.Approvals,
			RequiredApprovals: e.RequiredApprovals,
			Emergency:         e.IsEmergency,
			OccurredAt:        e.OccurredAt.UTC().Format(time.RFC3339),
		}
		return e.TenantID, notifications.KindTransferSubmitted, e.Amount, e.IsEmergency, data, true
	case treasuryevents.TransferApproved:
		data = notify.TemplateData{
			Event:             notifications.KindTransferApproved,
			EventLabel:        "Transfer Approved",
			Tenant:            e.TenantID,
			Transfer:          e.TransferID,
			Actor:             e.Approver,
			Amount:            e.Amount.String(),
			Approvals:         e.Approvals,
			RequiredApprovals: e.RequiredApprovals,
			OccurredAt:        e.OccurredAt.UTC().Format(time.RFC3339),
			Note:              e.Note,
		}
		return e.TenantID, notifications.KindTransferApproved, e.Amount, false, data, true
	case treasuryevents.TransferExecuted:
		data = notify.TemplateData{
			Event:             notifications.KindTransferExecuted,
			EventLabel:        "Transfer Executed",
			Tenant:            e.TenantID,
			Transfer:          e.TransferID,
			Actor:             e.Submitter,
			Destination:       e.Destination,
			Amount:            e.Amount.String(),
			Reason:            e.Reason,
			Approvals:         e.Approvals,
			RequiredApprovals: e.RequiredApprovals,
			Emergency:         e.IsEmergency,
			OccurredAt:        e.OccurredAt.UTC().Format(time.RFC3339),
		}
		return e.TenantID, notifications.KindTransferExecuted, e.Amount, e.IsEmergency, data, true
	case treasuryevents.TransferRejected:
		data = notify.TemplateData{
			Event:             notifications.KindTransferRejected,
			EventLabel:        "Transfer Rejected",
			Tenant:            e.TenantID,
			Transfer:          e.TransferID,
			Actor:             e.RejectedBy,
			Destination:       e.Destination,
			Amount:            e.Amount.String(),
			Reason:            e.Reason,
			Approvals:         e.Approvals,
			RequiredApprovals: e.RequiredApprovals,
			Emergency:         e.IsEmergency,
			OccurredAt:        e.OccurredAt.UTC().Format(time.RFC3339),
			Note:              e.Note,
		}
		return e.TenantID, notifications.KindTransferRejected, e.Amount, e.IsEmergency, data, true
	case treasuryevents.TransferCancelled:
		data = notify.TemplateData{
			Event:             notifications.KindTransferCancelled,
			EventLabel:        "Transfer Cancelled",
			Tenant:            e.TenantID,
			Transfer:          e.TransferID,
			Actor:             e.CancelledBy,
			Destination:       e.Destination,
			Amount:            e.Amount.String(),
			Reason:            e.Reason,
			Approvals:         e.Approvals,
			RequiredApprovals: e.RequiredApprovals,
			Emergency:         e.IsEmergency,
			OccurredAt:        e.OccurredAt.UTC().Format(time.RFC3339),
			Note:              e.Note,
		}
		return e.TenantID, notifications.KindTransferCancelled, e.Amount, e.IsEmergency, data, true
	case treasuryevents.FundsAdded:
		data = notify.TemplateData{
			Event:      notifications.KindFundsAdded,
			EventLabel: "Funds Added",
			Tenant:     e.TenantID,
			Actor:      e.From,
			Amount:     e.Amount.String(),
			Reason:     e.Reason,
			OccurredAt: e.OccurredAt.UTC().Format(time.RFC3339),
		}
		return e.TenantID, notifications.KindFundsAdded, e.Amount, false, data, true
	case treasuryevents.ShutdownToggled:
		label := "Shutdown Disabled"
		if e.Enabled {
			label = "Shutdown Enabled"
		}
		data = notify.TemplateData{
			Event:      notifications.KindShutdownToggled,
			EventLabel: label,
			Tenant:     e.TenantID,
			Actor:      e.Actor,
			Reason:     e.Reason,
			OccurredAt: e.OccurredAt.UTC().Format(time.RFC3339),
		}
		return e.TenantID, notifications.KindShutdownToggled, decimal.Zero, false, data, true
	default:
		return "", "", decimal.Zero, false, notify.TemplateData{}, false
	}
}
