package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	reconcileapp "treasury-cloud/internal/reconcile/application"
	reportingrepo "treasury-cloud/internal/reporting/infrastructure/postgres"
	treasuryrepo "treasury-cloud/internal/treasury/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const timeLayout = time.RFC3339

type config struct {
	dbURL   string
	tenants string
	outDir  string
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "create out dir:", err)
		os.Exit(2)
	}

	db, err := sql.Open("pgx", cfg.dbURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "db open:", err)
		os.Exit(2)
	}
	defer db.Close()

	runnerCfg, err := reconcileapp.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "reconcile config:", err)
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	runner, err := reconcileapp.NewRunner(
		treasuryrepo.NewTreasuryRepository(db),
		reportingrepo.NewHistoryRepository(db),
		runnerCfg,
		logger,
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "reconcile runner:", err)
		os.Exit(2)
	}

	ctx := context.Background()
	var reports []reconcileapp.Report
	drifted := false
	for _, tenantID := range splitTenants(cfg.tenants) {
		report, err := runner.Run(ctx, tenantID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reconcile %s: %v\n", tenantID, err)
			os.Exit(2)
		}
		reports = append(reports, *report)
		if report.Drifted {
			drifted = true
		}
	}

	path := filepath.Join(cfg.outDir, "reconcile_report.csv")
	if err := writeReport(path, reports); err != nil {
		fmt.Fprintln(os.Stderr, "write report:", err)
		os.Exit(2)
	}

	fmt.Printf("Reconcile report written to %s\n", path)
	if drifted {
		fmt.Println("stats drift detected")
		os.Exit(1)
	}
	fmt.Println("stats consistent")
}

func parseFlags() (config, error) {
	var cfg config
	flag.StringVar(&cfg.dbURL, "db", getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")), "Postgres DSN")
	flag.StringVar(&cfg.tenants, "tenant", getenvDefault("TENANT_ID", ""), "tenant id (comma separated for several)")
	flag.StringVar(&cfg.outDir, "out", "./out", "output directory")
	flag.Parse()

	if cfg.dbURL == "" {
		return cfg, errors.New("missing --db or DATABASE_URL/PG_DSN")
	}
	if cfg.tenants == "" {
		return cfg, errors.New("missing --tenant or TENANT_ID")
	}
	return cfg, nil
}

func splitTenants(value string) []string {
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func writeReport(path string, reports []reconcileapp.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{
		"tenant_id",
		"field",
		"stored",
		"computed",
		"drift",
		"exceeded",
		"ran_at",
	}); err != nil {
		return err
	}

	for _, report := range reports {
		for _, check := range report.Checks {
			if err := writer.Write([]string{
				report.TenantID,
				check.Field,
				check.Stored.String(),
				check.Computed.String(),
				check.Drift.String(),
				formatBool(check.Exceeded),
				report.RanAt.UTC().Format(timeLayout),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatBool(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
