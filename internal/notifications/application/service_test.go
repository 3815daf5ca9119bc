package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"treasury-cloud/internal/auth"
	notifications "treasury-cloud/internal/notifications/domain"
	"treasury-cloud/internal/notifications/infrastructure/memory"
)

func operatorCtx(tenantID string) context.Context {
	return auth.WithIdentity(context.Background(), tenantID, auth.RoleOperator, "acct-ops")
}

func TestUpsertRuleGeneratesIDAndDefaults(t *testing.T) {
	repo := memory.NewRuleRepository()
	service, err := NewRuleService(repo, nil, "tenant-a")
	if err != nil {
		t.Fatalf("new rule service: %v", err)
	}

	rule, err := service.UpsertRule(operatorCtx("tenant-a"), UpsertRuleRequest{
		Name:      "Executed transfers",
		EventKind: notifications.KindTransferExecuted,
	})
	if err != nil {
		t.Fatalf("upsert rule: %v", err)
	}
	if !strings.HasPrefix(rule.RuleID, "rule-") {
		t.Fatalf("expected generated rule id, got %s", rule.RuleID)
	}
	if !rule.Enabled {
		t.Fatal("expected rule enabled by default")
	}
	if rule.TenantID != "tenant-a" {
		t.Fatalf("expected tenant from context, got %s", rule.TenantID)
	}

	rules, err := service.ListRules(operatorCtx("tenant-a"), "")
	if err != nil {
		t.Fatalf("list rules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 stored rule, got %d", len(rules))
	}
}

func TestUpsertRuleReplacesExisting(t *testing.T) {
	repo := memory.NewRuleRepository()
	service, err := NewRuleService(repo, nil, "tenant-a")
	if err != nil {
		t.Fatalf("new rule service: %v", err)
	}

	first, err := service.UpsertRule(operatorCtx("tenant-a"), UpsertRuleRequest{
		Name:      "All executions",
		EventKind: notifications.KindTransferExecuted,
	})
	if err != nil {
		t.Fatalf("upsert rule: %v", err)
	}

	disabled := false
	if _, err := service.UpsertRule(operatorCtx("tenant-a"), UpsertRuleRequest{
		RuleID:    first.RuleID,
		Name:      "All executions (paused)",
		EventKind: notifications.KindTransferExecuted,
		Enabled:   &disabled,
	}); err != nil {
		t.Fatalf("upsert existing rule: %v", err)
	}

	rules, err := service.ListRules(operatorCtx("tenant-a"), "")
	if err != nil {
		t.Fatalf("list rules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected upsert to replace, got %d rules", len(rules))
	}
	if rules[0].Enabled {
		t.Fatal("expected rule disabled after upsert")
	}
	if rules[0].Name != "All executions (paused)" {
		t.Fatalf("expected updated name, got %s", rules[0].Name)
	}
}

func TestUpsertRuleRejectsUnknownKind(t *testing.T) {
	repo := memory.NewRuleRepository()
	service, err := NewRuleService(repo, nil, "tenant-a")
	if err != nil {
		t.Fatalf("new rule service: %v", err)
	}

	_, err = service.UpsertRule(operatorCtx("tenant-a"), UpsertRuleRequest{
		Name:      "Bad kind",
		EventKind: "transfer.teleported",
	})
	if !errors.Is(err, notifications.ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule, got %v", err)
	}
}

func TestUpsertRuleTenantMismatch(t *testing.T) {
	repo := memory.NewRuleRepository()
	service, err := NewRuleService(repo, nil, "tenant-a")
	if err != nil {
		t.Fatalf("new rule service: %v", err)
	}

	_, err = service.UpsertRule(operatorCtx("tenant-a"), UpsertRuleRequest{
		TenantID:  "tenant-b",
		Name:      "Cross tenant",
		EventKind: notifications.KindTransferExecuted,
	})
	if !errors.Is(err, auth.ErrTenantMismatch) {
		t.Fatalf("expected ErrTenantMismatch, got %v", err)
	}
}

func TestListRulesFallsBackToDefaultTenant(t *testing.T) {
	repo := memory.NewRuleRepository()
	service, err := NewRuleService(repo, nil, "tenant-a")
	if err != nil {
		t.Fatalf("new rule service: %v", err)
	}

	if _, err := service.UpsertRule(operatorCtx("tenant-a"), UpsertRuleRequest{
		Name:      "Executed transfers",
		EventKind: notifications.KindTransferExecuted,
	}); err != nil {
		t.Fatalf("upsert rule: %v", err)
	}

	rules, err := service.ListRules(context.Background(), "")
	if err != nil {
		t.Fatalf("list rules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected default tenant rules, got %d", len(rules))
	}
}
