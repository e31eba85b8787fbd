package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/vowbridge-backend/internal/data/aggregates"
)

type SignalKind string

const (
	SignalOperation SignalKind = "operation"
	SignalConflict  SignalKind = "conflict"
	SignalRetry     SignalKind = "retry"
)

type Signal struct {
	Kind     SignalKind
	Op       string
	Status   string
	Duration time.Duration
}

// HooksRecorder keeps every aggregate hook call in arrival order.
type HooksRecorder struct {
	mu      sync.Mutex
	signals []Signal
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.add(Signal{Kind: SignalOperation, Op: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) IncConflict(name string) { h.add(Signal{Kind: SignalConflict, Op: name}) }

func (h *HooksRecorder) IncRetry(name string) { h.add(Signal{Kind: SignalRetry, Op: name}) }

func (h *HooksRecorder) add(s Signal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.signals = append(h.signals, s)
}

func (h *HooksRecorder) Signals() []Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Signal(nil), h.signals...)
}

// Statuses lists the recorded outcome of each completed operation in order.
func (h *HooksRecorder) Statuses() []string {
	var out []string
	for _, s := range h.Signals() {
		if s.Kind == SignalOperation {
			out = append(out, s.Status)
		}
	}
	return out
}

func (h *HooksRecorder) Count(kind SignalKind) int {
	n := 0
	for _, s := range h.Signals() {
		if s.Kind == kind {
			n++
		}
	}
	return n
}
