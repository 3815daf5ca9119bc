package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	reporting "treasury-cloud/internal/reporting/domain"
	"treasury-cloud/internal/reporting/infrastructure/memory"
	treasuryevents "treasury-cloud/internal/treasury/application/events"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func newHistoryFixture(t *testing.T) (*HistoryService, *ProjectionHandler, *memory.HistoryRepository) {
	t.Helper()
	repo := memory.NewHistoryRepository()
	clock := &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	service, err := NewHistoryService(repo, clock)
	if err != nil {
		t.Fatalf("new history service: %v", err)
	}
	handler, err := NewProjectionHandler(service, nil)
	if err != nil {
		t.Fatalf("new projection handler: %v", err)
	}
	return service, handler, repo
}

func TestProjectionHandler_RecordsLifecycle(t *testing.T) {
	service, handler, _ := newHistoryFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	events := []any{
		treasuryevents.TransferSubmitted{
			EventID:    "ev-1",
			TenantID:   "tenant-a",
			TransferID: "tr-1",
			Submitter:  "acct-a",
			Amount:     decimal.NewFromInt(100),
			OccurredAt: base,
		},
		treasuryevents.TransferApproved{
			EventID:    "ev-2",
			TenantID:   "tenant-a",
			TransferID: "tr-1",
			Approver:   "acct-b",
			Approvals:  1,
			OccurredAt: base.Add(time.Minute),
		},
		treasuryevents.TransferExecuted{
			EventID:    "ev-3",
			TenantID:   "tenant-a",
			TransferID: "tr-1",
			Submitter:  "acct-a",
			Amount:     decimal.NewFromInt(100),
			OccurredAt: base.Add(2 * time.Minute),
		},
		treasuryevents.TransferRejected{
			EventID:    "ev-4",
			TenantID:   "tenant-a",
			TransferID: "tr-2",
			RejectedBy: "acct-b",
			Note:       "duplicate",
			OccurredAt: base.Add(3 * time.Minute),
		},
		treasuryevents.TransferCancelled{
			EventID:     "ev-5",
			TenantID:    "tenant-a",
			TransferID:  "tr-3",
			CancelledBy: "acct-a",
			OccurredAt:  base.Add(4 * time.Minute),
		},
	}
	for _, event := range events {
		if err := handler.Handle(ctx, event); err != nil {
			t.Fatalf("handle %T: %v", event, err)
		}
	}

	entries, err := service.List(ctx, reporting.HistoryFilter{TenantID: "tenant-a"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	wantKinds := []string{
		reporting.KindSubmitted,
		reporting.KindApproved,
		reporting.KindExecuted,
		reporting.KindRejected,
		reporting.KindCancelled,
	}
	for i, kind := range wantKinds {
		if entries[i].Kind != kind {
			t.Fatalf("entry %d: expected kind %s, got %s", i, kind, entries[i].Kind)
		}
	}
	if entries[1].Actor != "acct-b" {
		t.Fatalf("expected approver actor acct-b, got %s", entries[1].Actor)
	}
	if entries[3].Note != "duplicate" {
		t.Fatalf("expected rejection note, got %q", entries[3].Note)
	}
}

func TestProjectionHandler_ReplayIsIdempotent(t *testing.T) {
	service, handler, _ := newHistoryFixture(t)
	ctx := context.Background()

	executed := treasuryevents.TransferExecuted{
		EventID:    "ev-1",
		TenantID:   "tenant-a",
		TransferID: "tr-1",
		Submitter:  "acct-a",
		Amount:     decimal.NewFromInt(40),
		OccurredAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	if err := handler.Handle(ctx, executed); err != nil {
		t.Fatalf("first handle: %v", err)
	}
	if err := handler.Handle(ctx, executed); err != nil {
		t.Fatalf("replay handle: %v", err)
	}

	summary, err := service.Summary(ctx, "tenant-a")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.ExecutedCount != 1 {
		t.Fatalf("expected 1 executed entry after replay, got %d", summary.ExecutedCount)
	}
	if !summary.TotalTransferred.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected total 40, got %s", summary.TotalTransferred)
	}
}

func TestProjectionHandler_IgnoresUnknownEvents(t *testing.T) {
	service, handler, _ := newHistoryFixture(t)
	ctx := context.Background()

	if err := handler.Handle(ctx, struct{ Name string }{Name: "noise"}); err != nil {
		t.Fatalf("unknown event: %v", err)
	}
	entries, err := service.List(ctx, reporting.HistoryFilter{TenantID: "tenant-a"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestBuildStatement_Totals(t *testing.T) {
	service, _, _ := newHistoryFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	seed := []reporting.HistoryEntry{
		{EventID: "ev-1", TenantID: "tenant-a", TransferID: "tr-1", Kind: reporting.KindSubmitted, Actor: "acct-a", OccurredAt: base.Add(time.Hour)},
		{EventID: "ev-2", TenantID: "tenant-a", TransferID: "tr-1", Kind: reporting.KindExecuted, Actor: "acct-a", Amount: decimal.NewFromInt(100), OccurredAt: base.Add(2 * time.Hour)},
		{EventID: "ev-3", TenantID: "tenant-a", TransferID: "tr-2", Kind: reporting.KindExecuted, Actor: "acct-b", Amount: decimal.NewFromInt(250), OccurredAt: base.AddDate(0, 0, 1)},
		{EventID: "ev-4", TenantID: "tenant-a", TransferID: "tr-3", Kind: reporting.KindRejected, Actor: "acct-b", OccurredAt: base.Add(4 * time.Hour)},
		// outside the statement window
		{EventID: "ev-5", TenantID: "tenant-a", TransferID: "tr-4", Kind: reporting.KindExecuted, Actor: "acct-a", Amount: decimal.NewFromInt(999), OccurredAt: base.AddDate(0, 2, 0)},
	}
	for _, entry := range seed {
		if err := service.Record(ctx, entry); err != nil {
			t.Fatalf("record %s: %v", entry.EventID, err)
		}
	}

	stmt, err := service.BuildStatement(ctx, "tenant-a", base, base.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("build statement: %v", err)
	}
	if stmt.SubmittedCount != 1 || stmt.ExecutedCount != 2 || stmt.RejectedCount != 1 || stmt.CancelledCount != 0 {
		t.Fatalf("unexpected counts: %+v", stmt)
	}
	if !stmt.TotalExecuted.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("expected total executed 350, got %s", stmt.TotalExecuted)
	}
	if len(stmt.Executed) != 2 {
		t.Fatalf("expected 2 executed rows, got %d", len(stmt.Executed))
	}
	if len(stmt.Daily) != 2 {
		t.Fatalf("expected 2 daily buckets, got %d", len(stmt.Daily))
	}
	first, second := stmt.Daily[0], stmt.Daily[1]
	if first.Day != "2026-03-01" || first.ExecutedCount != 1 || !first.ExecutedAmount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected first daily bucket: %+v", first)
	}
	if second.Day != "2026-03-02" || second.ExecutedCount != 1 || !second.ExecutedAmount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("unexpected second daily bucket: %+v", second)
	}
	if !second.RunningTotal.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("expected running total 350, got %s", second.RunningTotal)
	}
}

func TestRecord_RejectsInvalidEntry(t *testing.T) {
	service, _, _ := newHistoryFixture(t)
	err := service.Record(context.Background(), reporting.HistoryEntry{
		EventID:  "ev-1",
		TenantID: "tenant-a",
		Kind:     reporting.KindExecuted,
	})
	if err == nil {
		t.Fatal("expected error for missing transfer id")
	}
}
