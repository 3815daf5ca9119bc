package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// fakeWebhookServer impersonates a text-message webhook endpoint so the
// notifier can be exercised without a real chat backend. It counts deliveries
// per message label and can inject latency and failures.
type fakeWebhookServer struct {
	start    time.Time
	latency  time.Duration
	failRate float64
	secret   string

	mu         sync.Mutex
	byLabel    map[string]int64
	totalCalls int64
	rejected   int64
	failed     int64
}

type webhookMessage struct {
	MsgType string `json:"msgtype"`
	Text    struct {
		Content string `json:"content"`
	} `json:"text"`
}

func main() {
	addr := getenvDefault("FAKE_WEBHOOK_ADDR", ":18081")
	latencyMS := getenvIntDefault("FAKE_WEBHOOK_LATENCY_MS", 0)
	failRate := getenvFloatDefault("FAKE_WEBHOOK_FAIL_RATE", 0)
	secret := os.Getenv("FAKE_WEBHOOK_SECRET")

	s := &fakeWebhookServer{
		start:    time.Now(),
		latency:  time.Duration(latencyMS) * time.Millisecond,
		failRate: failRate,
		secret:   secret,
		byLabel:  map[string]int64{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/", s.handleWebhook)

	log.Printf("fake webhook server listening on %s latency=%s failRate=%.2f signed=%v", addr, s.latency, s.failRate, secret != "")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("listen: %v", err)
	}
}

func (s *fakeWebhookServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

func (s *fakeWebhookServer) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byLabel := make(map[string]int64, len(s.byLabel))
	for label, count := range s.byLabel {
		byLabel[label] = count
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_calls": s.totalCalls,
		"rejected":    s.rejected,
		"failed":      s.failed,
		"by_label":    byLabel,
	})
}

func (s *fakeWebhookServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "POST only"})
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "read body"})
		return
	}

	if s.secret != "" && !s.verifySignature(r, body) {
		s.mu.Lock()
		s.rejected++
		s.mu.Unlock()
		log.Printf("rejected delivery: bad signature from %s", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "bad signature"})
		return
	}

	var msg webhookMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "decode payload"})
		return
	}

	if s.latency > 0 {
		time.Sleep(s.latency)
	}

	label := messageLabel(msg.Text.Content)
	s.mu.Lock()
	s.totalCalls++
	s.byLabel[label]++
	fail := rand.Float64() < s.failRate
	if fail {
		s.failed++
	}
	s.mu.Unlock()

	if fail {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "injected failure"})
		return
	}

	log.Printf("delivery %s: %s", label, strings.ReplaceAll(msg.Text.Content, "\n", " | "))
	writeJSON(w, http.StatusOK, map[string]any{"errcode": 0, "errmsg": "ok"})
}

func (s *fakeWebhookServer) verifySignature(r *http.Request, body []byte) bool {
	timestamp := r.Header.Get("X-Notify-Timestamp")
	signature := r.Header.Get("X-Notify-Signature")
	if timestamp == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(timestamp + "\n"))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// messageLabel keys counters on the bracketed headline the default template
// puts on its first line, e.g. "[Treasury Transfer Executed]".
func messageLabel(content string) string {
	line := content
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		line = content[:idx]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "(empty)"
	}
	return line
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func getenvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvIntDefault(key string, fallback int) int {
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

func getenvFloatDefault(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}
