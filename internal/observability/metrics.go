package observability

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests  *CounterVec
	apiLatency   *HistogramVec
	apiInflight  *Gauge
	apiReqTotal  *Counter
	apiReqError  *Counter
	apiReqGood   *Counter
	aggregateOps *CounterVec
	aggregateDur *HistogramVec
	aggregateCAS *CounterVec
	aggregateTry *CounterVec
	contribs     *CounterVec
	payments     *CounterVec
	liveClients  *GaugeVec
	pgStats      *GaugeVec

	sloLatencyThreshold float64
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return false
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	v := strings.TrimSpace(os.Getenv("METRICS_SCRAPE_INTERVAL_SECONDS"))
	if v == "" {
		return 10 * time.Second
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n) * time.Second
}

// Init returns the process-wide registry, or nil when METRICS_ENABLED is off. All methods
// are nil-safe so callers never need to check.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("metrics enabled", "slo_latency_threshold_seconds", instance.sloLatencyThreshold)
		}
	})
	return instance
}

func newMetrics() *Metrics {
	latencyThreshold := 0.5
	if v := strings.TrimSpace(os.Getenv("SLO_API_LATENCY_THRESHOLD_SECONDS")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			latencyThreshold = f
		}
	}
	return &Metrics{
		apiRequests: NewCounterVec("vb_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"vb_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		),
		apiInflight: NewGauge("vb_api_inflight_requests", "In-flight API requests."),
		apiReqTotal: NewCounter("vb_api_requests_total_all", "Total API requests (all)."),
		apiReqError: NewCounter("vb_api_requests_error_total", "API requests answered with a 5xx status."),
		apiReqGood:  NewCounter("vb_api_requests_good_total", "API requests served within the latency objective."),
		aggregateOps: NewCounterVec("vb_aggregate_operations_total", "Aggregate write operations by aggregate/status.", []string{"aggregate", "status"}),
		aggregateDur: NewHistogramVec(
			"vb_aggregate_operation_duration_seconds",
			"Aggregate write latency by aggregate/status.",
			[]string{"aggregate", "status"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		),
		aggregateCAS: NewCounterVec("vb_aggregate_conflicts_total", "Aggregate writes rejected by a conflict.", []string{"aggregate"}),
		aggregateTry: NewCounterVec("vb_aggregate_retries_total", "Aggregate writes retried after a transient failure.", []string{"aggregate"}),
		contribs:     NewCounterVec("vb_contributions_recorded_total", "Contributions recorded by outcome (created/replayed).", []string{"outcome"}),
		payments:     NewCounterVec("vb_payment_outcomes_total", "Payment outcomes applied by outcome/result.", []string{"outcome", "result"}),
		liveClients:  NewGaugeVec("vb_registry_live_clients", "Connected live registry subscribers by transport.", []string{"transport"}),
		pgStats:      NewGaugeVec("vb_postgres_pool", "database/sql pool stats.", []string{"stat"}),

		sloLatencyThreshold: latencyThreshold,
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiReqTotal, m.apiReqError, m.apiReqGood,
		m.aggregateOps, m.aggregateDur, m.aggregateCAS, m.aggregateTry,
		m.contribs, m.payments, m.liveClients, m.pgStats,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	m.apiReqTotal.Inc()
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
	if m.sloLatencyThreshold > 0 && dur.Seconds() <= m.sloLatencyThreshold {
		m.apiReqGood.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAggregateOperation(aggregate, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if aggregate == "" {
		aggregate = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	m.aggregateOps.Inc(aggregate, status)
	m.aggregateDur.Observe(dur.Seconds(), aggregate, status)
}

func (m *Metrics) IncAggregateConflict(aggregate string) {
	if m == nil {
		return
	}
	m.aggregateCAS.Inc(aggregate)
}

func (m *Metrics) IncAggregateRetry(aggregate string) {
	if m == nil {
		return
	}
	m.aggregateTry.Inc(aggregate)
}

// IncContributionRecorded counts RecordContribution results; outcome is "created" or "replayed".
func (m *Metrics) IncContributionRecorded(outcome string) {
	if m == nil {
		return
	}
	m.contribs.Inc(outcome)
}

// IncPaymentOutcome counts provider callbacks; result is "applied", "noop", "replayed" or "rejected".
func (m *Metrics) IncPaymentOutcome(outcome, result string) {
	if m == nil {
		return
	}
	m.payments.Inc(outcome, result)
}

func (m *Metrics) LiveClientInc(transport string) {
	if m == nil {
		return
	}
	m.liveClients.Add(1, transport)
}

func (m *Metrics) LiveClientDec(transport string) {
	if m == nil {
		return
	}
	m.liveClients.Add(-1, transport)
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: postgres stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
				m.pgStats.Set(float64(stats.InUse), "in_use")
				m.pgStats.Set(float64(stats.Idle), "idle")
				m.pgStats.Set(float64(stats.WaitCount), "wait_count")
				m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.pgStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

func isServerErrorStatus(status string) bool {
	status = strings.TrimSpace(status)
	if len(status) < 3 {
		return false
	}
	return status[0] == '5'
}
