package treasury

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransferRecord_AddApprovalRejectsDuplicate(t *testing.T) {
	record := &TransferRecord{
		TransferID:        "tr-1",
		Amount:            decimal.NewFromInt(50),
		RequiredApprovals: 3,
		Status:            StatusPending,
	}

	if err := record.AddApproval("acct-a"); err != nil {
		t.Fatalf("first approval: %v", err)
	}
	if err := record.AddApproval("acct-a"); !errors.Is(err, ErrAlreadyApproved) {
		t.Fatalf("expected already approved, got %v", err)
	}
	if record.Approvals != 1 {
		t.Fatalf("expected 1 approval, got %d", record.Approvals)
	}
}

func TestTransferRecord_QuorumMet(t *testing.T) {
	record := &TransferRecord{TransferID: "tr-1", RequiredApprovals: 2, Status: StatusPending}
	_ = record.AddApproval("acct-a")
	if record.QuorumMet() {
		t.Fatal("quorum should not be met with 1 of 2")
	}
	_ = record.AddApproval("acct-b")
	if !record.QuorumMet() {
		t.Fatal("quorum should be met with 2 of 2")
	}
}

func TestTransferRecord_CloneIsDetached(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	record := &TransferRecord{
		TransferID:        "tr-1",
		Amount:            decimal.NewFromInt(50),
		RequiredApprovals: 2,
		CreatedAt:         now,
		Status:            StatusPending,
	}
	_ = record.AddApproval("acct-a")

	clone := record.Clone()
	_ = clone.AddApproval("acct-b")
	clone.MarkExecuted(now.Add(time.Hour))

	if record.Approvals != 1 || len(record.Approvers) != 1 {
		t.Fatalf("original mutated: %d approvals", record.Approvals)
	}
	if record.Status != StatusPending || record.ExecutedAt != nil {
		t.Fatalf("original status mutated: %s", record.Status)
	}
}
