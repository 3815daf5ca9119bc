package application

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	reporting "treasury-cloud/internal/reporting/domain"
	reportingmem "treasury-cloud/internal/reporting/infrastructure/memory"
	treasury "treasury-cloud/internal/treasury/domain"
	treasurymem "treasury-cloud/internal/treasury/infrastructure/memory"
)

type recordingChannel struct {
	mu       sync.Mutex
	contents []string
}

func (r *recordingChannel) Send(_ context.Context, content string) error {
	r.mu.Lock()
	r.contents = append(r.contents, content)
	r.mu.Unlock()
	return nil
}

func (r *recordingChannel) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contents)
}

func (r *recordingChannel) Latest() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.contents) == 0 {
		return ""
	}
	return r.contents[len(r.contents)-1]
}

func seedConsistentTreasury(t *testing.T, treasuries *treasurymem.TreasuryRepository, history *reportingmem.HistoryRepository) {
	t.Helper()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	agg, err := treasury.NewTreasury("tenant-a", "acct-owner")
	if err != nil {
		t.Fatalf("new treasury: %v", err)
	}
	if _, err := agg.AddFunds(decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("add funds: %v", err)
	}
	if err := agg.UpdateCooldown("acct-owner", 0); err != nil {
		t.Fatalf("update cooldown: %v", err)
	}
	record, err := agg.SubmitTransfer("acct-owner", treasury.TransferParams{
		TransferID:  "tr-1",
		Destination: "acct-dest",
		Amount:      decimal.NewFromInt(400),
		Reason:      "payroll",
	}, 1, now)
	if err != nil {
		t.Fatalf("submit transfer: %v", err)
	}
	if record.Status != treasury.StatusExecuted {
		t.Fatalf("expected owner submission to execute, got %s", record.Status)
	}
	if err := treasuries.Save(context.Background(), agg); err != nil {
		t.Fatalf("save treasury: %v", err)
	}

	if err := history.Append(context.Background(), reporting.HistoryEntry{
		EventID:    "evt-1",
		TenantID:   "tenant-a",
		TransferID: "tr-1",
		Kind:       reporting.KindExecuted,
		Actor:      "acct-owner",
		Amount:     decimal.NewFromInt(400),
		OccurredAt: now,
	}); err != nil {
		t.Fatalf("append history: %v", err)
	}
}

func seedDoctoredTreasury(t *testing.T, treasuries *treasurymem.TreasuryRepository) {
	t.Helper()
	agg, err := treasury.RehydrateTreasury(treasury.TreasurySnapshot{
		TenantID:     "tenant-a",
		Owner:        "acct-owner",
		TotalBalance: decimal.NewFromInt(1000),
		Allocation:   treasury.DefaultAllocation(),
		Stats: treasury.Stats{
			PendingTransfers:  3,
			ExecutedTransfers: 2,
			TotalTransferred:  decimal.NewFromInt(500),
		},
		MaxTransferAmount: decimal.NewFromInt(treasury.DefaultMaxTransferAmount),
	})
	if err != nil {
		t.Fatalf("rehydrate treasury: %v", err)
	}
	if err := treasuries.Save(context.Background(), agg); err != nil {
		t.Fatalf("save treasury: %v", err)
	}
}

func TestReconcileCleanRun(t *testing.T) {
	treasuries := treasurymem.NewTreasuryRepository()
	history := reportingmem.NewHistoryRepository()
	seedConsistentTreasury(t, treasuries, history)

	channel := &recordingChannel{}
	runner, err := NewRunner(treasuries, history, Config{}, log.Default(), WithChannel(channel))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	report, err := runner.Run(context.Background(), "tenant-a")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Drifted {
		t.Fatalf("expected clean run, got drifted report: %+v", report)
	}
	if len(report.Checks) != 3 {
		t.Fatalf("expected 3 checks, got %d", len(report.Checks))
	}
	for _, check := range report.Checks {
		if check.Exceeded {
			t.Fatalf("expected no exceeded check, got %+v", check)
		}
		if !check.Drift.IsZero() {
			t.Fatalf("expected zero drift for %s, got %s", check.Field, check.Drift)
		}
	}
	if got := channel.Count(); got != 0 {
		t.Fatalf("expected no alert on clean run, got %d", got)
	}
}

func TestReconcileDetectsDoctoredStats(t *testing.T) {
	treasuries := treasurymem.NewTreasuryRepository()
	history := reportingmem.NewHistoryRepository()
	seedDoctoredTreasury(t, treasuries)

	channel := &recordingChannel{}
	runner, err := NewRunner(treasuries, history, Config{}, log.Default(), WithChannel(channel))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	report, err := runner.Run(context.Background(), "tenant-a")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !report.Drifted {
		t.Fatalf("expected drifted report, got %+v", report)
	}
	exceeded := map[string]bool{}
	for _, check := range report.Checks {
		exceeded[check.Field] = check.Exceeded
	}
	for _, field := range []string{"pending_transfers", "executed_transfers", "total_transferred"} {
		if !exceeded[field] {
			t.Fatalf("expected %s to exceed threshold", field)
		}
	}

	if got := channel.Count(); got != 1 {
		t.Fatalf("expected 1 drift alert, got %d", got)
	}
	content := channel.Latest()
	checks := []string{
		"[Treasury Reconcile Drift]",
		"Tenant: tenant-a",
		"pending_transfers: stored=3 computed=0 drift=3",
		"executed_transfers: stored=2 computed=0 drift=2",
		"total_transferred: stored=500 computed=0 drift=500",
	}
	for _, expected := range checks {
		if !strings.Contains(content, expected) {
			t.Fatalf("expected alert to include %q, got %s", expected, content)
		}
	}
}

func TestReconcileThresholdTolerance(t *testing.T) {
	treasuries := treasurymem.NewTreasuryRepository()
	history := reportingmem.NewHistoryRepository()
	seedDoctoredTreasury(t, treasuries)

	cfg := Config{
		Defaults: Thresholds{CountAbs: 1, AmountAbs: 1},
		Tenants: map[string]Thresholds{
			"tenant-a": {CountAbs: 5, AmountAbs: 1000},
		},
	}
	channel := &recordingChannel{}
	runner, err := NewRunner(treasuries, history, cfg, log.Default(), WithChannel(channel))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	report, err := runner.Run(context.Background(), "tenant-a")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Drifted {
		t.Fatalf("expected drift within tenant tolerance, got %+v", report)
	}
	if got := channel.Count(); got != 0 {
		t.Fatalf("expected no alert within tolerance, got %d", got)
	}
}

func TestReconcileUnknownTenant(t *testing.T) {
	treasuries := treasurymem.NewTreasuryRepository()
	history := reportingmem.NewHistoryRepository()

	runner, err := NewRunner(treasuries, history, Config{}, log.Default())
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	if _, err := runner.Run(context.Background(), "tenant-missing"); !errors.Is(err, treasury.ErrTreasuryNotFound) {
		t.Fatalf("expected ErrTreasuryNotFound, got %v", err)
	}
}

func TestThresholdsForTenantMergesOverride(t *testing.T) {
	cfg := Config{
		Defaults: Thresholds{CountAbs: 1, AmountAbs: 10},
		Tenants: map[string]Thresholds{
			"tenant-a": {AmountAbs: 250},
		},
	}

	merged := cfg.ThresholdsForTenant("tenant-a")
	if merged.CountAbs != 1 {
		t.Fatalf("expected default count threshold, got %d", merged.CountAbs)
	}
	if merged.AmountAbs != 250 {
		t.Fatalf("expected overridden amount threshold, got %f", merged.AmountAbs)
	}

	fallback := cfg.ThresholdsForTenant("tenant-b")
	if fallback != cfg.Defaults {
		t.Fatalf("expected defaults for unknown tenant, got %+v", fallback)
	}
}
