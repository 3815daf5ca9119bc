package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "treasury_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	transferSubmitted prometheus.Counter
	transferApproved  prometheus.Counter
	transferExecuted  prometheus.Counter
	transferRejected  prometheus.Counter
	transferCancelled prometheus.Counter
	transferredTotal  prometheus.Counter

	pendingTransfers prometheus.Gauge
	totalBalance     prometheus.Gauge
	shutdownActive   prometheus.Gauge

	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec

	consumerLag *prometheus.GaugeVec

	statementExportTotal   *prometheus.CounterVec
	statementExportLatency *prometheus.HistogramVec

	notificationsSent *prometheus.CounterVec

	reconcileRuns  *prometheus.CounterVec
	reconcileDrift *prometheus.GaugeVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		transferSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "transfer_submitted_total",
			Help: "Total submitted transfers",
		})
		transferApproved = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "transfer_approved_total",
			Help: "Total recorded approvals",
		})
		transferExecuted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "transfer_executed_total",
			Help: "Total executed transfers",
		})
		transferRejected = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "transfer_rejected_total",
			Help: "Total rejected transfers",
		})
		transferCancelled = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "transfer_cancelled_total",
			Help: "Total cancelled transfers",
		})
		transferredTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "transferred_amount_total",
			Help: "Cumulative executed transfer amount",
		})

		pendingTransfers = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "pending_transfers",
			Help: "Current pending index size",
		})
		totalBalance = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "total_balance",
			Help: "Current pooled balance",
		})
		shutdownActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "shutdown_active",
			Help: "1 while the circuit breaker is on",
		})

		requestTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total API requests by route and result",
			},
			[]string{"route", "result"},
		)
		requestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_latency_seconds",
				Help:    "API request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "result"},
		)

		consumerLag = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "event_consumer_lag_seconds",
				Help: "Consumer processing lag in seconds",
			},
			[]string{"consumer"},
		)

		statementExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "statement_export_total",
				Help: "Total statement export operations by format and result",
			},
			[]string{"format", "result"},
		)
		statementExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "statement_export_latency_seconds",
				Help:    "Statement export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		notificationsSent = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notifications_sent_total",
				Help: "Total webhook notifications by result",
			},
			[]string{"result"},
		)

		reconcileRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconcile_runs_total",
				Help: "Total reconcile runs by result",
			},
			[]string{"result"},
		)
		reconcileDrift = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "reconcile_drift",
				Help: "Absolute drift between stored stats and the full scan",
			},
			[]string{"field"},
		)

		prometheus.MustRegister(
			transferSubmitted,
			transferApproved,
			transferExecuted,
			transferRejected,
			transferCancelled,
			transferredTotal,
			pendingTransfers,
			totalBalance,
			shutdownActive,
			requestTotal,
			requestLatency,
			consumerLag,
			statementExportTotal,
			statementExportLatency,
			notificationsSent,
			reconcileRuns,
			reconcileDrift,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// IncTransferSubmitted increments the submitted counter.
func IncTransferSubmitted() {
	if transferSubmitted != nil {
		transferSubmitted.Inc()
	}
}

// IncTransferApproved increments the approval counter.
func IncTransferApproved() {
	if transferApproved != nil {
		transferApproved.Inc()
	}
}

// IncTransferExecuted increments the executed counter.
func IncTransferExecuted() {
	if transferExecuted != nil {
		transferExecuted.Inc()
	}
}

// IncTransferRejected increments the rejected counter.
func IncTransferRejected() {
	if transferRejected != nil {
		transferRejected.Inc()
	}
}

// IncTransferCancelled increments the cancelled counter.
func IncTransferCancelled() {
	if transferCancelled != nil {
		transferCancelled.Inc()
	}
}

// AddTransferredTotal adds an executed amount to the cumulative counter.
func AddTransferredTotal(amount float64) {
	if amount <= 0 {
		return
	}
	if transferredTotal != nil {
		transferredTotal.Add(amount)
	}
}

// SetPendingTransfers sets the pending index gauge.
func SetPendingTransfers(count float64) {
	if count < 0 {
		count = 0
	}
	if pendingTransfers != nil {
		pendingTransfers.Set(count)
	}
}

// SetTotalBalance sets the pooled balance gauge.
func SetTotalBalance(balance float64) {
	if totalBalance != nil {
		totalBalance.Set(balance)
	}
}

// SetShutdownActive sets the circuit breaker gauge.
func SetShutdownActive(active bool) {
	if shutdownActive == nil {
		return
	}
	if active {
		shutdownActive.Set(1)
	} else {
		shutdownActive.Set(0)
	}
}

// ObserveRequest records API request duration and result.
func ObserveRequest(route, result string, duration time.Duration) {
	if route == "" {
		route = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if requestTotal != nil {
		requestTotal.WithLabelValues(route, result).Inc()
	}
	if requestLatency != nil {
		requestLatency.WithLabelValues(route, result).Observe(duration.Seconds())
	}
}

// ObserveConsumerLag sets consumer lag in seconds.
func ObserveConsumerLag(consumer string, lag time.Duration) {
	if consumer == "" {
		consumer = "unknown"
	}
	if lag < 0 {
		lag = 0
	}
	if consumerLag != nil {
		consumerLag.WithLabelValues(consumer).Set(lag.Seconds())
	}
}

// ObserveStatementExport records export latency and result.
func ObserveStatementExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if statementExportTotal != nil {
		statementExportTotal.WithLabelValues(format, result).Inc()
	}
	if statementExportLatency != nil {
		statementExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncNotificationSent increments the webhook delivery counter.
func IncNotificationSent(result string) {
	if result == "" {
		result = resultSuccess
	}
	if notificationsSent != nil {
		notificationsSent.WithLabelValues(result).Inc()
	}
}

// IncReconcileRun increments the reconcile run counter.
func IncReconcileRun(result string) {
	if result == "" {
		result = resultSuccess
	}
	if reconcileRuns != nil {
		reconcileRuns.WithLabelValues(result).Inc()
	}
}

// SetReconcileDrift sets the drift gauge for one stats field.
func SetReconcileDrift(field string, drift float64) {
	if field == "" {
		field = "unknown"
	}
	if drift < 0 {
		drift = -drift
	}
	if reconcileDrift != nil {
		reconcileDrift.WithLabelValues(field).Set(drift)
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
