package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"treasury-cloud/internal/notifications/notify"
	"treasury-cloud/internal/observability/metrics"
	reporting "treasury-cloud/internal/reporting/domain"
	treasury "treasury-cloud/internal/treasury/domain"
)

const resultDrift = "drift"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Check compares one stored stats field against its recomputed value.
type Check struct {
	Field    string          `json:"field"`
	Stored   decimal.Decimal `json:"stored"`
	Computed decimal.Decimal `json:"computed"`
	Drift    decimal.Decimal `json:"drift"`
	Exceeded bool            `json:"exceeded"`
}

// Report is the outcome of one reconcile pass over a tenant.
type Report struct {
	TenantID string    `json:"tenant_id"`
	RanAt    time.Time `json:"ran_at"`
	Checks   []Check   `json:"checks"`
	Drifted  bool      `json:"drifted"`
}

// Runner recomputes treasury stats from a full scan and compares them
// against the stored counters. The stored stats are maintained
// incrementally by the aggregate, so any drift points at a persistence or
// projection defect.
type Runner struct {
	treasuries treasury.Repository
	history    reporting.HistoryRepository
	channel    notify.Channel
	cfg        Config
	clock      Clock
	logger     *log.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithClock overrides the runner clock.
func WithClock(clock Clock) RunnerOption {
	return func(r *Runner) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithChannel sets the alert channel for drift notifications.
func WithChannel(channel notify.Channel) RunnerOption {
	return func(r *Runner) {
		r.channel = channel
	}
}

// NewRunner constructs a runner.
func NewRunner(treasuries treasury.Repository, history reporting.HistoryRepository, cfg Config, logger *log.Logger, opts ...RunnerOption) (*Runner, error) {
	if treasuries == nil {
		return nil, errors.New("reconcile runner: nil treasury repository")
	}
	if history == nil {
		return nil, errors.New("reconcile runner: nil history repository")
	}
	if logger == nil {
		logger = log.Default()
	}
	runner := &Runner{
		treasuries: treasuries,
		history:    history,
		cfg:        cfg,
		clock:      SystemClock{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner, nil
}

// Run executes one reconcile pass for a tenant. Pending counters are
// recomputed from the pending index and executed counters from the history
// read model. A drifted run still returns the report; only lookup failures
// return an error.
func (r *Runner) Run(ctx context.Context, tenantID string) (*Report, error) {
	if r == nil {
		return nil, errors.New("reconcile runner: nil")
	}
	if tenantID == "" {
		return nil, errors.New("reconcile runner: tenant id required")
	}

	agg, err := r.treasuries.FindByTenant(ctx, tenantID)
	if err != nil {
		metrics.IncReconcileRun(metrics.ResultError)
		return nil, err
	}
	summary, err := r.history.Summary(ctx, tenantID)
	if err != nil {
		metrics.IncReconcileRun(metrics.ResultError)
		return nil, err
	}

	stored := agg.Stats()
	thresholds := r.cfg.ThresholdsForTenant(tenantID)
	countTolerance := decimal.NewFromInt(thresholds.CountAbs)
	amountTolerance := decimal.NewFromFloat(thresholds.AmountAbs)

	report := &Report{
		TenantID: tenantID,
		RanAt:    r.clock.Now().UTC(),
		Checks: []Check{
			compare("pending_transfers",
				decimal.NewFromInt(stored.PendingTransfers),
				decimal.NewFromInt(int64(len(agg.PendingTransfers()))),
				countTolerance),
			compare("executed_transfers",
				decimal.NewFromInt(stored.ExecutedTransfers),
				decimal.NewFromInt(summary.ExecutedCount),
				countTolerance),
			compare("total_transferred",
				stored.TotalTransferred,
				summary.TotalTransferred,
				amountTolerance),
		},
	}

	for _, check := range report.Checks {
		metrics.SetReconcileDrift(check.Field, check.Drift.InexactFloat64())
		if check.Exceeded {
			report.Drifted = true
		}
	}

	if !report.Drifted {
		metrics.IncReconcileRun(metrics.ResultSuccess)
		return report, nil
	}

	metrics.IncReconcileRun(resultDrift)
	r.logger.Printf("event=reconcile_drift tenant_id=%s report=%s", tenantID, describeChecks(report.Checks))
	if r.channel != nil {
		if err := r.channel.Send(ctx, alertContent(report)); err != nil {
			r.logger.Printf("event=reconcile_alert_failed tenant_id=%s error=%v", tenantID, err)
		}
	}
	return report, nil
}

func compare(field string, stored, computed, tolerance decimal.Decimal) Check {
	drift := stored.Sub(computed).Abs()
	return Check{
		Field:    field,
		Stored:   stored,
		Computed: computed,
		Drift:    drift,
		Exceeded: drift.GreaterThan(tolerance),
	}
}

func describeChecks(checks []Check) string {
	parts := make([]string, 0, len(checks))
	for _, check := range checks {
		parts = append(parts, fmt.Sprintf("%s=%s/%s", check.Field, check.Stored, check.Computed))
	}
	return strings.Join(parts, " ")
}

func alertContent(report *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Treasury Reconcile Drift]\nTenant: %s\n", report.TenantID)
	for _, check := range report.Checks {
		if !check.Exceeded {
			continue
		}
		fmt.Fprintf(&b, "%s: stored=%s computed=%s drift=%s\n",
			check.Field, check.Stored, check.Computed, check.Drift)
	}
	fmt.Fprintf(&b, "Time: %s\n", report.RanAt.Format(time.RFC3339))
	return b.String()
}
