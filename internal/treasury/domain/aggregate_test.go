package treasury

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testBase = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

func newFundedTreasury(t *testing.T, owner string, balance int64) *Treasury {
	t.Helper()
	agg, err := NewTreasury("tenant-a", owner)
	if err != nil {
		t.Fatalf("new treasury: %v", err)
	}
	if balance > 0 {
		if _, err := agg.AddFunds(decimal.NewFromInt(balance)); err != nil {
			t.Fatalf("add funds: %v", err)
		}
	}
	return agg
}

func submitPending(t *testing.T, agg *Treasury, id string, amount int64, approverCount int) *TransferRecord {
	t.Helper()
	record, err := agg.SubmitTransfer("acct-submitter", TransferParams{
		TransferID:  id,
		Destination: "acct-dest",
		Amount:      decimal.NewFromInt(amount),
		Reason:      "ops",
	}, approverCount, testBase)
	if err != nil {
		t.Fatalf("submit %s: %v", id, err)
	}
	return record
}

func TestSubmitTransfer_CreatesPendingRecord(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)

	record := submitPending(t, agg, "tr-1", 50, 3)
	if record.Status != StatusPending {
		t.Fatalf("expected pending, got %s", record.Status)
	}
	if record.RequiredApprovals != 3 {
		t.Fatalf("expected quorum 3, got %d", record.RequiredApprovals)
	}
	if record.Submitter != "acct-submitter" {
		t.Fatalf("unexpected submitter %s", record.Submitter)
	}
	if !record.CreatedAt.Equal(testBase) {
		t.Fatalf("unexpected created at %s", record.CreatedAt)
	}
	if agg.Stats().PendingTransfers != 1 {
		t.Fatalf("expected 1 pending, got %d", agg.Stats().PendingTransfers)
	}
	if _, err := agg.PendingTransfer("tr-1"); err != nil {
		t.Fatalf("pending lookup: %v", err)
	}
}

func TestSubmitTransfer_DuplicateIDRejected(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)
	submitPending(t, agg, "tr-1", 50, 3)

	_, err := agg.SubmitTransfer("acct-submitter", TransferParams{
		TransferID:  "tr-1",
		Destination: "acct-dest",
		Amount:      decimal.NewFromInt(60),
	}, 3, testBase)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSubmitTransfer_NonPositiveAmountRejected(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)

	for _, amount := range []int64{0, -5} {
		_, err := agg.SubmitTransfer("acct-submitter", TransferParams{
			TransferID:  "tr-bad",
			Destination: "acct-dest",
			Amount:      decimal.NewFromInt(amount),
		}, 3, testBase)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("amount %d: expected invalid input, got %v", amount, err)
		}
	}
}

func TestSubmitTransfer_CeilingBindsRegularOnly(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)

	_, err := agg.SubmitTransfer("acct-submitter", TransferParams{
		TransferID:  "tr-big",
		Destination: "acct-dest",
		Amount:      decimal.NewFromInt(9999999),
	}, 3, testBase)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	record, err := agg.SubmitTransfer("acct-submitter", TransferParams{
		TransferID:  "tr-big-emergency",
		Destination: "acct-dest",
		Amount:      decimal.NewFromInt(9999999),
		IsEmergency: true,
	}, 3, testBase)
	if err != nil {
		t.Fatalf("emergency submit: %v", err)
	}
	if record.Status != StatusPending {
		t.Fatalf("expected pending, got %s", record.Status)
	}
}

func TestSubmitTransfer_EmptyDestinationRejected(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)

	_, err := agg.SubmitTransfer("acct-submitter", TransferParams{
		TransferID: "tr-1",
		Amount:     decimal.NewFromInt(50),
	}, 3, testBase)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSubmitTransfer_ShutdownBlocksRegularSubmissions(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)
	if err := agg.SetShutdown("acct-owner", true); err != nil {
		t.Fatalf("enable shutdown: %v", err)
	}

	_, err := agg.SubmitTransfer("acct-submitter", TransferParams{
		TransferID:  "tr-1",
		Destination: "acct-dest",
		Amount:      decimal.NewFromInt(50),
	}, 3, testBase)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}

	record, err := agg.SubmitTransfer("acct-submitter", TransferParams{
		TransferID:  "tr-2",
		Destination: "acct-dest",
		Amount:      decimal.NewFromInt(50),
		IsEmergency: true,
	}, 3, testBase)
	if err != nil {
		t.Fatalf("emergency submit during shutdown: %v", err)
	}
	if record.Status != StatusPending {
		t.Fatalf("expected pending, got %s", record.Status)
	}
}

func TestSubmitTransfer_ShutdownLeavesPendingRecordsActionable(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)
	submitPending(t, agg, "tr-1", 50, 2)
	if err := agg.SetShutdown("acct-owner", true); err != nil {
		t.Fatalf("enable shutdown: %v", err)
	}

	if _, err := agg.ApproveTransfer("acct-a", "tr-1", testBase); err != nil {
		t.Fatalf("approve during shutdown: %v", err)
	}
	if _, err := agg.RejectTransfer("tr-1"); err != nil {
		t.Fatalf("reject during shutdown: %v", err)
	}
}

func TestSubmitTransfer_OwnerBootstrapExecutesWithinCeiling(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)
	if err := agg.UpdateCooldown("acct-owner", 0); err != nil {
		t.Fatalf("update cooldown: %v", err)
	}

	record, err := agg.SubmitTransfer("acct-owner", TransferParams{
		TransferID:  "tr-owner",
		Destination: "acct-dest",
		Amount:      decimal.NewFromInt(100),
	}, 1, testBase)
	if err != nil {
		t.Fatalf("owner submit: %v", err)
	}
	if record.Status != StatusExecuted {
		t.Fatalf("expected executed, got %s", record.Status)
	}
	if record.ExecutedAt == nil || !record.ExecutedAt.Equal(testBase) {
		t.Fatalf("executed at not stamped: %v", record.ExecutedAt)
	}
	if !agg.TotalBalance().Equal(decimal.NewFromInt(900)) {
		t.Fatalf("expected balance 900, got %s", agg.TotalBalance())
	}
	stats := agg.Stats()
	if stats.PendingTransfers != 0 || stats.ExecutedTransfers != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if _, err := agg.PendingTransfer("tr-owner"); !errors.Is(err, ErrTransferNotFound) {
		t.Fatalf("expected transfer gone from index, got %v", err)
	}
}

func TestSubmitTransfer_OwnerBootstrapCooldownFailsWholeSubmit(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)

	_, err := agg.SubmitTransfer("acct-owner", TransferParams{
		TransferID:  "tr-owner",
		Destination: "acct-dest",
		Amount:      decimal.NewFromInt(100),
	}, 1, testBase)
	if !errors.Is(err, ErrCooldownActive) {
		t.Fatalf("expected cooldown active, got %v", err)
	}
	if _, err := agg.PendingTransfer("tr-owner"); !errors.Is(err, ErrTransferNotFound) {
		t.Fatalf("expected no record, got %v", err)
	}
	stats := agg.Stats()
	if stats.PendingTransfers != 0 || stats.ExecutedTransfers != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if !agg.TotalBalance().Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance changed: %s", agg.TotalBalance())
	}
}

func TestSubmitTransfer_OwnerBootstrapBelowQuorumStaysPending(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)

	record, err := agg.SubmitTransfer("acct-owner", TransferParams{
		TransferID:  "tr-owner",
		Destination: "acct-dest",
		Amount:      decimal.NewFromInt(100),
	}, 3, testBase)
	if err != nil {
		t.Fatalf("owner submit: %v", err)
	}
	if record.Status != StatusPending {
		t.Fatalf("expected pending, got %s", record.Status)
	}
	if record.Approvals != 1 || !record.HasApproved("acct-owner") {
		t.Fatalf("owner approval not recorded: %+v", record)
	}
}

func TestApproveTransfer_BelowQuorumStaysPending(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)
	submitPending(t, agg, "tr-1", 50, 3)

	record, err := agg.ApproveTransfer("acct-a", "tr-1", testBase)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if record.Status != StatusPending || record.Approvals != 1 {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestApproveTransfer_DuplicateApproverRejected(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)
	submitPending(t, agg, "tr-1", 50, 3)

	if _, err := agg.ApproveTransfer("acct-a", "tr-1", testBase); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	_, err := agg.ApproveTransfer("acct-a", "tr-1", testBase)
	if !errors.Is(err, ErrAlreadyApproved) {
		t.Fatalf("expected already approved, got %v", err)
	}
	record, err := agg.PendingTransfer("tr-1")
	if err != nil {
		t.Fatalf("pending lookup: %v", err)
	}
	if record.Approvals != 1 {
		t.Fatalf("expected 1 approval, got %d", record.Approvals)
	}
}

func TestApproveTransfer_QuorumTriggersExecution(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 100)
	if err := agg.UpdateCooldown("acct-owner", 0); err != nil {
		t.Fatalf("update cooldown: %v", err)
	}
	submitPending(t, agg, "tr-1", 50, 3)

	if _, err := agg.ApproveTransfer("acct-a", "tr-1", testBase); err != nil {
		t.Fatalf("approve a: %v", err)
	}
	if _, err := agg.ApproveTransfer("acct-b", "tr-1", testBase); err != nil {
		t.Fatalf("approve b: %v", err)
	}
	record, err := agg.ApproveTransfer("acct-c", "tr-1", testBase)
	if err != nil {
		t.Fatalf("approve c: %v", err)
	}
	if record.Status != StatusExecuted {
		t.Fatalf("expected executed, got %s", record.Status)
	}
	if !agg.TotalBalance().Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected balance 50, got %s", agg.TotalBalance())
	}
	if _, err := agg.PendingTransfer("tr-1"); !errors.Is(err, ErrTransferNotFound) {
		t.Fatalf("expected record removed, got %v", err)
	}
	stats := agg.Stats()
	if stats.ExecutedTransfers != 1 || stats.PendingTransfers != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if !stats.TotalTransferred.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected transferred 50, got %s", stats.TotalTransferred)
	}
}

func TestApproveTransfer_CooldownFailureRollsBackApproval(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)
	submitPending(t, agg, "tr-1", 50, 2)

	if _, err := agg.ApproveTransfer("acct-a", "tr-1", testBase); err != nil {
		t.Fatalf("approve a: %v", err)
	}
	_, err := agg.ApproveTransfer("acct-b", "tr-1", testBase.Add(time.Minute))
	if !errors.Is(err, ErrCooldownActive) {
		t.Fatalf("expected cooldown active, got %v", err)
	}

	record, lookupErr := agg.PendingTransfer("tr-1")
	if lookupErr != nil {
		t.Fatalf("pending lookup: %v", lookupErr)
	}
	if record.Status != StatusPending {
		t.Fatalf("expected pending, got %s", record.Status)
	}
	if record.Approvals != 1 || record.HasApproved("acct-b") {
		t.Fatalf("approval not rolled back: %+v", record)
	}
	if !agg.TotalBalance().Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance changed: %s", agg.TotalBalance())
	}

	// After the window the same approver retries and the call goes through.
	record, err = agg.ApproveTransfer("acct-b", "tr-1", testBase.Add(time.Hour))
	if err != nil {
		t.Fatalf("approve after cooldown: %v", err)
	}
	if record.Status != StatusExecuted {
		t.Fatalf("expected executed, got %s", record.Status)
	}
}

func TestApproveTransfer_InsufficientBalanceRollsBackApproval(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 10)
	if err := agg.UpdateCooldown("acct-owner", 0); err != nil {
		t.Fatalf("update cooldown: %v", err)
	}
	submitPending(t, agg, "tr-1", 50, 1)

	_, err := agg.ApproveTransfer("acct-a", "tr-1", testBase)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	record, lookupErr := agg.PendingTransfer("tr-1")
	if lookupErr != nil {
		t.Fatalf("pending lookup: %v", lookupErr)
	}
	if record.Approvals != 0 {
		t.Fatalf("approval not rolled back: %+v", record)
	}
	if !agg.TotalBalance().Equal(decimal.NewFromInt(10)) {
		t.Fatalf("balance changed: %s", agg.TotalBalance())
	}
}

func TestApproveTransfer_MissingRecordInvalidState(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)
	_, err := agg.ApproveTransfer("acct-a", "tr-missing", testBase)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestExecuteTransfer_PendingSurfacesNotYetAuthorized(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)
	submitPending(t, agg, "tr-1", 50, 3)

	_, err := agg.ExecuteTransfer("tr-1", testBase)
	if !errors.Is(err, ErrNotYetAuthorized) {
		t.Fatalf("expected not yet authorized, got %v", err)
	}
}

func TestExecuteTransfer_MissingRecordInvalidState(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)
	_, err := agg.ExecuteTransfer("tr-missing", testBase)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestRejectTransfer_TerminatesPendingRecord(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)
	submitPending(t, agg, "tr-1", 50, 3)

	record, err := agg.RejectTransfer("tr-1")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if record.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", record.Status)
	}
	if _, err := agg.PendingTransfer("tr-1"); !errors.Is(err, ErrTransferNotFound) {
		t.Fatalf("expected record removed, got %v", err)
	}
	if agg.Stats().PendingTransfers != 0 {
		t.Fatalf("expected 0 pending, got %d", agg.Stats().PendingTransfers)
	}
	if !agg.TotalBalance().Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance changed: %s", agg.TotalBalance())
	}
}

func TestCancelTransfer_SubmitterOrOwnerOnly(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)
	submitPending(t, agg, "tr-1", 50, 3)

	if _, err := agg.CancelTransfer("acct-other", "tr-1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	record, err := agg.CancelTransfer("acct-submitter", "tr-1")
	if err != nil {
		t.Fatalf("cancel by submitter: %v", err)
	}
	if record.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", record.Status)
	}

	submitPending(t, agg, "tr-2", 50, 3)
	if _, err := agg.CancelTransfer("acct-owner", "tr-2"); err != nil {
		t.Fatalf("cancel by owner: %v", err)
	}
}

func TestCancelThenApprove_InvalidState(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)
	submitPending(t, agg, "tr-1", 50, 3)

	if _, err := agg.CancelTransfer("acct-owner", "tr-1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err := agg.ApproveTransfer("acct-a", "tr-1", testBase)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	if _, err := agg.PendingTransfer("tr-1"); !errors.Is(err, ErrTransferNotFound) {
		t.Fatalf("expected record absent, got %v", err)
	}
}

func TestAddFunds_RequiresPositiveAmount(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 0)
	if _, err := agg.AddFunds(decimal.Zero); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := agg.AddFunds(decimal.NewFromInt(-10)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAddFunds_CreditsAndDerivesSubFunds(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 0)
	balance, err := agg.AddFunds(decimal.NewFromInt(101))
	if err != nil {
		t.Fatalf("add funds: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(101)) {
		t.Fatalf("expected 101, got %s", balance)
	}
	insurance, operational, emergency := agg.SubFundBalances()
	if !insurance.Equal(decimal.NewFromInt(60)) || !operational.Equal(decimal.NewFromInt(30)) || !emergency.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected sub funds %s/%s/%s", insurance, operational, emergency)
	}
}

func TestUpdateAllocation_OwnerOnlyAndValidated(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 100)

	err := agg.UpdateAllocation("acct-other", FundAllocation{InsurancePct: 50, OperationalPct: 40, EmergencyPct: 10})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	err = agg.UpdateAllocation("acct-owner", FundAllocation{InsurancePct: 50, OperationalPct: 40, EmergencyPct: 20})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err := agg.UpdateAllocation("acct-owner", FundAllocation{InsurancePct: 50, OperationalPct: 40, EmergencyPct: 10}); err != nil {
		t.Fatalf("update allocation: %v", err)
	}
	insurance, _, _ := agg.SubFundBalances()
	if !insurance.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected insurance 50, got %s", insurance)
	}
}

func TestOwnerConfigUpdates(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 100)

	if err := agg.UpdateTransferCeiling("acct-other", decimal.NewFromInt(500)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := agg.UpdateTransferCeiling("acct-owner", decimal.Zero); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err := agg.UpdateTransferCeiling("acct-owner", decimal.NewFromInt(500)); err != nil {
		t.Fatalf("update ceiling: %v", err)
	}
	if !agg.MaxTransferAmount().Equal(decimal.NewFromInt(500)) {
		t.Fatalf("ceiling not applied: %s", agg.MaxTransferAmount())
	}

	if err := agg.UpdateCooldown("acct-other", time.Minute); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := agg.UpdateCooldown("acct-owner", -time.Minute); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err := agg.UpdateCooldown("acct-owner", 30*time.Minute); err != nil {
		t.Fatalf("update cooldown: %v", err)
	}
	if agg.Cooldown() != 30*time.Minute {
		t.Fatalf("cooldown not applied: %s", agg.Cooldown())
	}

	if err := agg.SetShutdown("acct-other", true); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := agg.SetShutdown("acct-owner", true); err != nil {
		t.Fatalf("enable shutdown: %v", err)
	}
	if !agg.ShutdownActive() {
		t.Fatal("shutdown not active")
	}
}

func TestExecutionGateCombinations(t *testing.T) {
	// A transfer executes iff quorum is met, the cooldown gate passes
	// (emergency or window elapsed) and the balance covers the amount.
	for _, quorumMet := range []bool{false, true} {
		for _, emergency := range []bool{false, true} {
			for _, balanceOK := range []bool{false, true} {
				agg := newFundedTreasury(t, "acct-owner", 10)
				if balanceOK {
					if _, err := agg.AddFunds(decimal.NewFromInt(90)); err != nil {
						t.Fatalf("add funds: %v", err)
					}
				}
				override := 2
				_, err := agg.SubmitTransfer("acct-submitter", TransferParams{
					TransferID:        "tr-combo",
					Destination:       "acct-dest",
					Amount:            decimal.NewFromInt(50),
					IsEmergency:       emergency,
					RequiredApprovals: &override,
				}, 4, testBase)
				if err != nil {
					t.Fatalf("submit: %v", err)
				}
				// The emergency halving reduces the override 2 to 1.
				required := 2
				if emergency {
					required = 1
				}
				needed := required
				if !quorumMet {
					needed = required - 1
				}

				var lastErr error
				var last *TransferRecord
				for _, approver := range []string{"acct-a", "acct-b"}[:needed] {
					last, lastErr = agg.ApproveTransfer(approver, "tr-combo", testBase.Add(time.Minute))
				}

				shouldExecute := quorumMet && emergency && balanceOK
				if shouldExecute {
					if lastErr != nil {
						t.Fatalf("quorum=%v emergency=%v balance=%v: %v", quorumMet, emergency, balanceOK, lastErr)
					}
					if last.Status != StatusExecuted {
						t.Fatalf("quorum=%v emergency=%v balance=%v: status %s", quorumMet, emergency, balanceOK, last.Status)
					}
					continue
				}

				record, lookupErr := agg.PendingTransfer("tr-combo")
				if lookupErr != nil {
					t.Fatalf("quorum=%v emergency=%v balance=%v: record gone: %v", quorumMet, emergency, balanceOK, lookupErr)
				}
				if record.Status != StatusPending {
					t.Fatalf("quorum=%v emergency=%v balance=%v: status %s", quorumMet, emergency, balanceOK, record.Status)
				}
				if quorumMet && !emergency && lastErr == nil {
					t.Fatal("expected cooldown failure for non-emergency quorum")
				}
				if quorumMet && emergency && !balanceOK && !errors.Is(lastErr, ErrInsufficientBalance) {
					t.Fatalf("expected insufficient balance, got %v", lastErr)
				}
			}
		}
	}
}

func TestExecutionAfterCooldownElapsed(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 100)
	submitPending(t, agg, "tr-1", 50, 2)

	if _, err := agg.ApproveTransfer("acct-a", "tr-1", testBase); err != nil {
		t.Fatalf("approve a: %v", err)
	}
	// Exactly at the window boundary the gate passes.
	record, err := agg.ApproveTransfer("acct-b", "tr-1", testBase.Add(DefaultCooldown))
	if err != nil {
		t.Fatalf("approve at boundary: %v", err)
	}
	if record.Status != StatusExecuted {
		t.Fatalf("expected executed, got %s", record.Status)
	}
}

func TestStatsMatchFullScan(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)
	if err := agg.UpdateCooldown("acct-owner", 0); err != nil {
		t.Fatalf("update cooldown: %v", err)
	}

	submitPending(t, agg, "tr-1", 50, 1)
	submitPending(t, agg, "tr-2", 60, 2)
	submitPending(t, agg, "tr-3", 70, 2)

	if _, err := agg.ApproveTransfer("acct-a", "tr-1", testBase); err != nil {
		t.Fatalf("approve tr-1: %v", err)
	}
	if _, err := agg.RejectTransfer("tr-2"); err != nil {
		t.Fatalf("reject tr-2: %v", err)
	}

	stats := agg.Stats()
	scan := agg.PendingTransfers()
	if stats.PendingTransfers != int64(len(scan)) {
		t.Fatalf("pending counter %d != scan %d", stats.PendingTransfers, len(scan))
	}
	if stats.ExecutedTransfers != 1 {
		t.Fatalf("expected 1 executed, got %d", stats.ExecutedTransfers)
	}
	if !stats.TotalTransferred.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected transferred 50, got %s", stats.TotalTransferred)
	}
	if !agg.TotalBalance().Equal(decimal.NewFromInt(950)) {
		t.Fatalf("expected balance 950, got %s", agg.TotalBalance())
	}
}

func TestPendingTransfers_OrderedByCreation(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 1000)

	for i, id := range []string{"tr-c", "tr-a", "tr-b"} {
		_, err := agg.SubmitTransfer("acct-submitter", TransferParams{
			TransferID:  id,
			Destination: "acct-dest",
			Amount:      decimal.NewFromInt(10),
		}, 2, testBase.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatalf("submit %s: %v", id, err)
		}
	}

	records := agg.PendingTransfers()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].TransferID != "tr-c" || records[1].TransferID != "tr-a" || records[2].TransferID != "tr-b" {
		t.Fatalf("unexpected order %s %s %s", records[0].TransferID, records[1].TransferID, records[2].TransferID)
	}
}

func TestSnapshotRehydrateRoundTrip(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 500)
	submitPending(t, agg, "tr-1", 50, 2)
	if _, err := agg.ApproveTransfer("acct-a", "tr-1", testBase); err != nil {
		t.Fatalf("approve: %v", err)
	}

	restored, err := RehydrateTreasury(agg.Snapshot())
	if err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if restored.TenantID() != agg.TenantID() || restored.Owner() != agg.Owner() {
		t.Fatal("identity lost in round trip")
	}
	if !restored.TotalBalance().Equal(agg.TotalBalance()) {
		t.Fatalf("balance lost: %s vs %s", restored.TotalBalance(), agg.TotalBalance())
	}
	record, err := restored.PendingTransfer("tr-1")
	if err != nil {
		t.Fatalf("pending lookup: %v", err)
	}
	if record.Approvals != 1 || !record.HasApproved("acct-a") {
		t.Fatalf("approvals lost: %+v", record)
	}
	if restored.IsNew() {
		t.Fatal("rehydrated aggregate must not be new")
	}
}

func TestClone_DetachedFromOriginal(t *testing.T) {
	agg := newFundedTreasury(t, "acct-owner", 500)
	submitPending(t, agg, "tr-1", 50, 2)

	clone := agg.Clone()
	if _, err := clone.ApproveTransfer("acct-a", "tr-1", testBase); err != nil {
		t.Fatalf("approve on clone: %v", err)
	}
	if _, err := clone.AddFunds(decimal.NewFromInt(100)); err != nil {
		t.Fatalf("add funds on clone: %v", err)
	}

	record, err := agg.PendingTransfer("tr-1")
	if err != nil {
		t.Fatalf("pending lookup: %v", err)
	}
	if record.Approvals != 0 {
		t.Fatalf("original mutated: %d approvals", record.Approvals)
	}
	if !agg.TotalBalance().Equal(decimal.NewFromInt(500)) {
		t.Fatalf("original balance mutated: %s", agg.TotalBalance())
	}
}
