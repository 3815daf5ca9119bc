package apihttp

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

const readyTimeout = 2 * time.Second

// HealthHandler reports process liveness.
type HealthHandler struct{}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP handles GET /healthz.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ReadyHandler reports readiness by pinging the database.
type ReadyHandler struct {
	db *sql.DB
}

// NewReadyHandler constructs a ReadyHandler.
func NewReadyHandler(db *sql.DB) *ReadyHandler {
	return &ReadyHandler{db: db}
}

// ServeHTTP handles GET /readyz.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.db == nil {
		respondStatus(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		respondStatus(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	respondStatus(w, http.StatusOK, "ready")
}

func respondStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
