package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type config struct {
	baseURL           string
	jwtSecret         string
	tenantID          string
	owner             string
	approverPrefix    string
	approverCount     int
	transfers         int
	concurrency       int
	amount            string
	funds             string
	requiredApprovals int
	provision         bool
}

type latencyRecorder struct {
	mu        sync.Mutex
	durations []time.Duration
	errors    int
}

func (r *latencyRecorder) record(d time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations = append(r.durations, d)
	if err != nil {
		r.errors++
	}
}

func main() {
	cfg := parseConfig()
	if cfg.baseURL == "" {
		log.Fatal("BASE_URL or -base-url is required")
	}
	if cfg.jwtSecret == "" {
		log.Fatal("AUTH_JWT_SECRET or JWT_SECRET is required")
	}
	if cfg.transfers <= 0 {
		log.Fatal("transfers must be > 0")
	}
	if cfg.concurrency <= 0 {
		log.Fatal("concurrency must be > 0")
	}
	if cfg.requiredApprovals <= 0 {
		log.Fatal("required-approvals must be > 0")
	}
	if cfg.approverCount <= cfg.requiredApprovals {
		log.Fatal("approver-count must exceed required-approvals so the submitter stays distinct")
	}

	cfg.baseURL = strings.TrimRight(cfg.baseURL, "/")
	secret := []byte(cfg.jwtSecret)
	approvers := buildAccounts(cfg.approverPrefix, cfg.approverCount)

	adminToken, err := mintToken(secret, cfg.tenantID, "admin", cfg.owner)
	if err != nil {
		log.Fatalf("mint admin token: %v", err)
	}
	operatorTokens := make(map[string]string, len(approvers))
	for _, account := range approvers {
		token, err := mintToken(secret, cfg.tenantID, "operator", account)
		if err != nil {
			log.Fatalf("mint operator token: %v", err)
		}
		operatorTokens[account] = token
	}

	client := &http.Client{Timeout: 30 * time.Second}
	ctx := context.Background()

	if cfg.provision {
		log.Printf("provisioning treasury: tenant=%s owner=%s approvers=%d funds=%s", cfg.tenantID, cfg.owner, len(approvers), cfg.funds)
		zeroCooldown := int64(0)
		body := map[string]any{
			"tenant_id":        cfg.tenantID,
			"owner":            cfg.owner,
			"approvers":        approvers,
			"initial_balance":  cfg.funds,
			"cooldown_seconds": zeroCooldown,
		}
		if _, err := postJSON(ctx, client, cfg.baseURL+"/api/v1/provision", adminToken, body); err != nil {
			log.Fatalf("provision: %v", err)
		}
	}

	log.Printf("flooding transfers: count=%d concurrency=%d quorum=%d amount=%s", cfg.transfers, cfg.concurrency, cfg.requiredApprovals, cfg.amount)

	recorder := &latencyRecorder{}
	jobs := make(chan int)
	var wg sync.WaitGroup
	started := time.Now()

	for worker := 0; worker < cfg.concurrency; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				runTransfer(ctx, client, cfg, approvers, operatorTokens, recorder, n)
			}
		}()
	}
	for n := 0; n < cfg.transfers; n++ {
		jobs <- n
	}
	close(jobs)
	wg.Wait()

	elapsed := time.Since(started)
	report(recorder, elapsed)
}

func runTransfer(ctx context.Context, client *http.Client, cfg config, approvers []string, tokens map[string]string, recorder *latencyRecorder, n int) {
	transferID := fmt.Sprintf("tr-perf-%06d", n)
	submitter := approvers[n%len(approvers)]

	submitBody := map[string]any{
		"tenant_id":          cfg.tenantID,
		"transfer_id":        transferID,
		"destination":        "acct-perf-dest",
		"amount":             cfg.amount,
		"reason":             "perf",
		"required_approvals": cfg.requiredApprovals,
	}
	start := time.Now()
	_, err := postJSON(ctx, client, cfg.baseURL+"/api/v1/treasury/transfers", tokens[submitter], submitBody)
	recorder.record(time.Since(start), err)
	if err != nil {
		log.Printf("submit %s: %v", transferID, err)
		return
	}

	approveBody := map[string]any{
		"tenant_id":   cfg.tenantID,
		"transfer_id": transferID,
	}
	granted := 0
	for offset := 1; granted < cfg.requiredApprovals && offset <= len(approvers); offset++ {
		approver := approvers[(n+offset)%len(approvers)]
		if approver == submitter {
			continue
		}
		start := time.Now()
		resp, err := postJSON(ctx, client, cfg.baseURL+"/api/v1/treasury/transfers/approve", tokens[approver], approveBody)
		recorder.record(time.Since(start), err)
		if err != nil {
			log.Printf("approve %s by %s: %v", transferID, approver, err)
			return
		}
		granted++
		if granted == cfg.requiredApprovals {
			var view struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(resp, &view); err == nil && view.Status != "executed" {
				log.Printf("transfer %s finished with status %q", transferID, view.Status)
			}
		}
	}
}

func report(recorder *latencyRecorder, elapsed time.Duration) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()

	durations := recorder.durations
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	total := len(durations)
	log.Printf("perf seed completed: requests=%d errors=%d elapsed=%s", total, recorder.errors, elapsed.Round(time.Millisecond))
	if total == 0 {
		return
	}
	throughput := float64(total) / elapsed.Seconds()
	log.Printf("throughput: %.1f req/s", throughput)
	log.Printf("latency: p50=%s p95=%s p99=%s max=%s",
		percentile(durations, 0.50).Round(time.Microsecond),
		percentile(durations, 0.95).Round(time.Microsecond),
		percentile(durations, 0.99).Round(time.Microsecond),
		durations[total-1].Round(time.Microsecond),
	)
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

func postJSON(ctx context.Context, client *http.Client, url, token string, body map[string]any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	return buf.Bytes(), nil
}

func mintToken(secret []byte, tenantID, role, subject string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"tenant_id": tenantID,
		"role":      role,
		"sub":       subject,
		"iat":       now.Unix(),
		"exp":       now.Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func buildAccounts(prefix string, count int) []string {
	list := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		list = append(list, fmt.Sprintf("%s%04d", prefix, i))
	}
	return list
}

func parseConfig() config {
	cfg := config{}
	flag.StringVar(&cfg.baseURL, "base-url", envOrDefault("BASE_URL", ""), "API base URL")
	flag.StringVar(&cfg.jwtSecret, "jwt-secret", envOrDefault("AUTH_JWT_SECRET", envOrDefault("JWT_SECRET", "")), "JWT signing secret")
	flag.StringVar(&cfg.tenantID, "tenant-id", envOrDefault("TENANT_ID", "tenant-perf"), "tenant id")
	flag.StringVar(&cfg.owner, "owner", envOrDefault("OWNER", "acct-perf-owner"), "treasury owner account")
	flag.StringVar(&cfg.approverPrefix, "approver-prefix", envOrDefault("APPROVER_PREFIX", "acct-perf-"), "approver account prefix")
	flag.IntVar(&cfg.approverCount, "approver-count", envOrInt("APPROVER_COUNT", 4), "number of approver accounts")
	flag.IntVar(&cfg.transfers, "transfers", envOrInt("TRANSFERS", 100), "number of transfers to submit")
	flag.IntVar(&cfg.concurrency, "concurrency", envOrInt("CONCURRENCY", 8), "concurrent workers")
	flag.StringVar(&cfg.amount, "amount", envOrDefault("AMOUNT", "25"), "transfer amount")
	flag.StringVar(&cfg.funds, "funds", envOrDefault("FUNDS", "1000000"), "initial treasury balance")
	flag.IntVar(&cfg.requiredApprovals, "required-approvals", envOrInt("REQUIRED_APPROVALS", 2), "explicit quorum per transfer")
	flag.BoolVar(&cfg.provision, "provision", envOrBool("PROVISION", true), "provision the treasury before flooding")
	flag.Parse()
	return cfg
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envOrBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
