package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	reporting "treasury-cloud/internal/reporting/domain"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// HistoryService records and queries the transfer history read model.
type HistoryService struct {
	repo  reporting.HistoryRepository
	clock Clock
}

// NewHistoryService constructs a history service.
func NewHistoryService(repo reporting.HistoryRepository, clock Clock) (*HistoryService, error) {
	if repo == nil {
		return nil, errors.New("history service: nil repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &HistoryService{repo: repo, clock: clock}, nil
}

// Record appends one lifecycle outcome to the history.
func (s *HistoryService) Record(ctx context.Context, entry reporting.HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = s.clock.Now()
	}
	entry.OccurredAt = entry.OccurredAt.UTC()
	return s.repo.Append(ctx, entry)
}

// List returns history entries matching the filter.
func (s *HistoryService) List(ctx context.Context, filter reporting.HistoryFilter) ([]reporting.HistoryEntry, error) {
	if filter.TenantID == "" {
		return nil, fmt.Errorf("%w: missing tenant id", reporting.ErrInvalidEntry)
	}
	return s.repo.List(ctx, filter)
}

// Summary returns the executed totals used by reconciliation.
func (s *HistoryService) Summary(ctx context.Context, tenantID string) (reporting.HistorySummary, error) {
	if tenantID == "" {
		return reporting.HistorySummary{}, fmt.Errorf("%w: missing tenant id", reporting.ErrInvalidEntry)
	}
	return s.repo.Summary(ctx, tenantID)
}

// Statement summarizes a tenant's transfer activity over [from, to).
type Statement struct {
	TenantID       string                   `json:"tenant_id"`
	From           time.Time                `json:"from"`
	To             time.Time                `json:"to"`
	GeneratedAt    time.Time                `json:"generated_at"`
	SubmittedCount int                      `json:"submitted_count"`
	ApprovedCount  int                      `json:"approved_count"`
	ExecutedCount  int                      `json:"executed_count"`
	RejectedCount  int                      `json:"rejected_count"`
	CancelledCount int                      `json:"cancelled_count"`
	TotalExecuted  decimal.Decimal          `json:"total_executed"`
	Executed       []reporting.HistoryEntry `json:"executed"`
	Daily          []DailyActivity          `json:"daily"`
}

// DailyActivity is one day's executed volume, with the running total of the
// executed amount up to and including that day.
type DailyActivity struct {
	Day            string          `json:"day"`
	ExecutedCount  int             `json:"executed_count"`
	ExecutedAmount decimal.Decimal `json:"executed_amount"`
	RunningTotal   decimal.Decimal `json:"running_total"`
}

// BuildStatement assembles the statement for one tenant and period.
func (s *HistoryService) BuildStatement(ctx context.Context, tenantID string, from, to time.Time) (*Statement, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: missing tenant id", reporting.ErrInvalidEntry)
	}
	entries, err := s.repo.List(ctx, reporting.HistoryFilter{TenantID: tenantID, From: from, To: to})
	if err != nil {
		return nil, err
	}

	stmt := &Statement{
		TenantID:      tenantID,
		From:          from.UTC(),
		To:            to.UTC(),
		GeneratedAt:   s.clock.Now().UTC(),
		TotalExecuted: decimal.Zero,
	}
	for _, entry := range entries {
		switch entry.Kind {
		case reporting.KindSubmitted:
			stmt.SubmittedCount++
		case reporting.KindApproved:
			stmt.ApprovedCount++
		case reporting.KindExecuted:
			stmt.ExecutedCount++
			stmt.TotalExecuted = stmt.TotalExecuted.Add(entry.Amount)
			stmt.Executed = append(stmt.Executed, entry)
		case reporting.KindRejected:
			stmt.RejectedCount++
		case reporting.KindCancelled:
			stmt.CancelledCount++
		}
	}
	stmt.Daily = buildDaily(stmt.Executed)
	return stmt, nil
}

// buildDaily folds the executed entries, already ordered by occurrence, into
// per-day buckets with a running total.
func buildDaily(executed []reporting.HistoryEntry) []DailyActivity {
	var daily []DailyActivity
	running := decimal.Zero
	for _, entry := range executed {
		day := entry.OccurredAt.UTC().Format("2006-01-02")
		running = running.Add(entry.Amount)
		if n := len(daily); n > 0 && daily[n-1].Day == day {
			daily[n-1].ExecutedCount++
			daily[n-1].ExecutedAmount = daily[n-1].ExecutedAmount.Add(entry.Amount)
			daily[n-1].RunningTotal = running
			continue
		}
		daily = append(daily, DailyActivity{
			Day:            day,
			ExecutedCount:  1,
			ExecutedAmount: entry.Amount,
			RunningTotal:   running,
		})
	}
	return daily
}
