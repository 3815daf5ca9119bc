package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	apihttp "treasury-cloud/internal/api/http"
	"treasury-cloud/internal/audit"
	"treasury-cloud/internal/auth"
	"treasury-cloud/internal/eventing"
	eventingrepo "treasury-cloud/internal/eventing/infrastructure/postgres"
	notificationsapp "treasury-cloud/internal/notifications/application"
	notificationsrepo "treasury-cloud/internal/notifications/infrastructure/postgres"
	notificationsinterfaces "treasury-cloud/internal/notifications/interfaces"
	"treasury-cloud/internal/notifications/notify"
	"treasury-cloud/internal/observability/metrics"
	provisioningapp "treasury-cloud/internal/provisioning/application"
	provisioninghttp "treasury-cloud/internal/provisioning/interfaces/http"
	reconcileapp "treasury-cloud/internal/reconcile/application"
	reconcileinterfaces "treasury-cloud/internal/reconcile/interfaces"
	reportingapp "treasury-cloud/internal/reporting/application"
	reportingrepo "treasury-cloud/internal/reporting/infrastructure/postgres"
	reportinginterfaces "treasury-cloud/internal/reporting/interfaces"
	treasuryapp "treasury-cloud/internal/treasury/application"
	"treasury-cloud/internal/treasury/application/events"
	treasuryrepo "treasury-cloud/internal/treasury/infrastructure/postgres"
	treasuryhttp "treasury-cloud/internal/treasury/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	baseBus := eventing.NewInMemoryBus()
	registry := eventing.NewRegistry()
	registry.Register(events.TransferSubmitted{})
	registry.Register(events.TransferApproved{})
	registry.Register(events.TransferExecuted{})
	registry.Register(events.TransferRejected{})
	registry.Register(events.TransferCancelled{})
	registry.Register(events.FundsAdded{})
	registry.Register(events.AllocationUpdated{})
	registry.Register(events.ShutdownToggled{})

	outboxStore := eventingrepo.NewOutboxStore(db)
	processedStore := eventingrepo.NewProcessedStore(db)
	dlqStore := eventingrepo.NewDLQStore(db)
	dispatcher := eventing.NewDispatcher(baseBus, outboxStore, registry, dlqStore)
	publisher := eventing.NewPublisher(outboxStore, dispatcher, cfg.TenantID, baseBus)

	treasuryRepo := treasuryrepo.NewTreasuryRepository(db)
	approvalRepo := treasuryrepo.NewApprovalSetRepository(db)
	treasuryService, err := treasuryapp.NewService(treasuryRepo, approvalRepo, publisher, systemClock{}, cfg.TenantID)
	if err != nil {
		logger.Fatalf("treasury service error: %v", err)
	}
	treasuryHandler, err := treasuryhttp.NewHandler(treasuryService, auditRepo)
	if err != nil {
		logger.Fatalf("treasury handler error: %v", err)
	}

	historyRepo := reportingrepo.NewHistoryRepository(db)
	historyService, err := reportingapp.NewHistoryService(historyRepo, systemClock{})
	if err != nil {
		logger.Fatalf("history service error: %v", err)
	}
	projection, err := reportingapp.NewProjectionHandler(historyService, logger)
	if err != nil {
		logger.Fatalf("history projection error: %v", err)
	}
	eventing.Subscribe(baseBus, eventing.EventTypeOf[events.TransferSubmitted](), "reporting.history", projection.Handle, processedStore)
	eventing.Subscribe(baseBus, eventing.EventTypeOf[events.TransferApproved](), "reporting.history", projection.Handle, processedStore)
	eventing.Subscribe(baseBus, eventing.EventTypeOf[events.TransferExecuted](), "reporting.history", projection.Handle, processedStore)
	eventing.Subscribe(baseBus, eventing.EventTypeOf[events.TransferRejected](), "reporting.history", projection.Handle, processedStore)
	eventing.Subscribe(baseBus, eventing.EventTypeOf[events.TransferCancelled](), "reporting.history", projection.Handle, processedStore)

	reportsHandler, err := reportinginterfaces.NewReportsHandler(historyService, auditRepo, cfg.TenantID)
	if err != nil {
		logger.Fatalf("reports handler error: %v", err)
	}

	ruleRepo := notificationsrepo.NewRuleRepository(db)
	ruleService, err := notificationsapp.NewRuleService(ruleRepo, systemClock{}, cfg.TenantID)
	if err != nil {
		logger.Fatalf("notification rule service error: %v", err)
	}
	rulesHandler, err := notificationsinterfaces.NewRulesHandler(ruleService, auditRepo)
	if err != nil {
		logger.Fatalf("notification rules handler error: %v", err)
	}

	var notifyChannel notify.Channel
	if cfg.NotifyWebhookURL != "" {
		opts := []notify.WebhookOption{notify.WithHTTPClient(&http.Client{Timeout: cfg.NotifyTimeout})}
		if cfg.NotifyWebhookSecret != "" {
			opts = append(opts, notify.WithSecret([]byte(cfg.NotifyWebhookSecret)))
		}
		channel, err := notify.NewWebhookChannel(cfg.NotifyWebhookURL, opts...)
		if err != nil {
			logger.Fatalf("notify webhook error: %v", err)
		}
		notifyChannel = channel

		tpl, err := notify.NewTemplate(cfg.NotifyTemplate)
		if err != nil {
			logger.Fatalf("notify template error: %v", err)
		}
		notifier, err := notificationsapp.NewNotifier(ruleRepo, channel, tpl, logger)
		if err != nil {
			logger.Fatalf("notifier error: %v", err)
		}
		eventing.Subscribe(baseBus, eventing.EventTypeOf[events.TransferSubmitted](), "notifications.webhook", notifier.HandleEvent, processedStore)
		eventing.Subscribe(baseBus, eventing.EventTypeOf[events.TransferApproved](), "notifications.webhook", notifier.HandleEvent, processedStore)
		eventing.Subscribe(baseBus, eventing.EventTypeOf[events.TransferExecuted](), "notifications.webhook", notifier.HandleEvent, processedStore)
		eventing.Subscribe(baseBus, eventing.EventTypeOf[events.TransferRejected](), "notifications.webhook", notifier.HandleEvent, processedStore)
		eventing.Subscribe(baseBus, eventing.EventTypeOf[events.TransferCancelled](), "notifications.webhook", notifier.HandleEvent, processedStore)
		eventing.Subscribe(baseBus, eventing.EventTypeOf[events.FundsAdded](), "notifications.webhook", notifier.HandleEvent, processedStore)
		eventing.Subscribe(baseBus, eventing.EventTypeOf[events.ShutdownToggled](), "notifications.webhook", notifier.HandleEvent, processedStore)
	}

	reconcileCfg, err := reconcileapp.LoadConfig()
	if err != nil {
		logger.Fatalf("reconcile config error: %v", err)
	}
	reconcileOpts := []reconcileapp.RunnerOption{}
	if notifyChannel != nil {
		reconcileOpts = append(reconcileOpts, reconcileapp.WithChannel(notifyChannel))
	}
	reconcileRunner, err := reconcileapp.NewRunner(treasuryRepo, historyRepo, reconcileCfg, logger, reconcileOpts...)
	if err != nil {
		logger.Fatalf("reconcile runner error: %v", err)
	}
	reconcileHandler, err := reconcileinterfaces.NewHandler(reconcileRunner, auditRepo, cfg.TenantID)
	if err != nil {
		logger.Fatalf("reconcile handler error: %v", err)
	}
	reconcileTenants := reconcileCfg.Schedule.Tenants
	if len(reconcileTenants) == 0 {
		reconcileTenants = []string{cfg.TenantID}
	}
	reconcileScheduler := reconcileapp.NewScheduler(reconcileRunner, reconcileTenants, time.Duration(reconcileCfg.Schedule.EveryMinutes)*time.Minute, logger)
	go reconcileScheduler.Start(context.Background())

	provisionService, err := provisioningapp.NewService(treasuryRepo, approvalRepo, logger)
	if err != nil {
		logger.Fatalf("provisioning service error: %v", err)
	}
	provisionHandler, err := provisioninghttp.NewProvisioningHandler(provisionService, auditRepo)
	if err != nil {
		logger.Fatalf("provisioning handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/readyz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/treasury", treasuryHandler)
	mux.Handle("/api/v1/treasury/", treasuryHandler)
	mux.Handle("/api/v1/reports/history", reportsHandler)
	mux.Handle("/api/v1/reports/statement.xlsx", reportsHandler)
	mux.Handle("/api/v1/reports/statement.pdf", reportsHandler)
	mux.Handle("/api/v1/notifications/rules", rulesHandler)
	mux.Handle("/api/v1/provision", provisionHandler)
	mux.Handle("/api/v1/reconcile/run", reconcileHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", apihttp.NewHealthHandler())
	mux.Handle("/readyz", apihttp.NewReadyHandler(db))

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL         string
	HTTPAddr            string
	TenantID            string
	NotifyWebhookURL    string
	NotifyWebhookSecret string
	NotifyTemplate      string
	NotifyTimeout       time.Duration
	JWTSecret           string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:         getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:            getenvDefault("HTTP_ADDR", ":8080"),
		TenantID:            getenvDefault("TENANT_ID", "tenant-demo"),
		NotifyWebhookURL:    getenvDefault("NOTIFY_WEBHOOK_URL", ""),
		NotifyWebhookSecret: getenvDefault("NOTIFY_WEBHOOK_SECRET", ""),
		NotifyTemplate:      getenvDefault("NOTIFY_TEMPLATE", ""),
		NotifyTimeout:       getenvDuration("NOTIFY_TIMEOUT", 5*time.Second),
		JWTSecret:           getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
