package aggregates

import (
	"strings"
	"time"
	"unicode"

	"github.com/yungbote/vowbridge-backend/internal/observability"
)

// Hooks receives one ObserveOperation per aggregate write plus a signal for every retry
// and conflict.
type Hooks interface {
	ObserveOperation(op, status string, dur time.Duration)
	IncConflict(op string)
	IncRetry(op string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type metricsHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks reports aggregate writes to the process metrics. Operation names
// such as "Registry.ContributionLedger.RecordContribution" become the label
// "contribution_ledger.record_contribution".
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricsHooks{metrics: metrics}
}

func (h metricsHooks) ObserveOperation(op, status string, dur time.Duration) {
	h.metrics.ObserveAggregateOperation(metricLabel(op), status, dur)
}

func (h metricsHooks) IncConflict(op string) { h.metrics.IncAggregateConflict(metricLabel(op)) }

func (h metricsHooks) IncRetry(op string) { h.metrics.IncAggregateRetry(metricLabel(op)) }

// metricLabel drops the bounded-context prefix and snake-cases the rest.
func metricLabel(op string) string {
	parts := strings.Split(strings.TrimSpace(op), ".")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
