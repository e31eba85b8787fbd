package aggregates

import (
	"context"
	"testing"
	"time"

	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
)

func TestExecuteWriteReportsOutcome(t *testing.T) {
	cases := []struct {
		name        string
		body        func() error
		maxAttempts int
		wantCode    domainagg.ErrorCode
		wantStatus  string
		wantCalls   int
		conflicts   int
		retries     int
	}{
		{
			name:       "success",
			body:       func() error { return nil },
			wantStatus: "success",
			wantCalls:  1,
		},
		{
			name:       "invariant",
			body:       func() error { return InvariantError("contribution cannot move from refunded to completed") },
			wantCode:   domainagg.CodeInvariantViolation,
			wantStatus: string(domainagg.CodeInvariantViolation),
			wantCalls:  1,
		},
		{
			name:       "conflict",
			body:       func() error { return ConflictError("booking status changed concurrently") },
			wantCode:   domainagg.CodeConflict,
			wantStatus: string(domainagg.CodeConflict),
			wantCalls:  1,
			conflicts:  1,
		},
		{
			name:        "retryable with one attempt",
			body:        func() error { return RetryableError("lock timeout") },
			maxAttempts: 1,
			wantCode:    domainagg.CodeRetryable,
			wantStatus:  string(domainagg.CodeRetryable),
			wantCalls:   1,
			retries:     1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hooks := &spyHooks{}
			calls := 0
			err := executeWrite(context.Background(), BaseDeps{
				Runner:      spyTxRunner{},
				Hooks:       hooks,
				MaxAttempts: tc.maxAttempts,
			}, "Vendors.Booking.UpdateStatus", func(_ dbctx.Context) error {
				calls++
				return tc.body()
			})
			if tc.wantCode == "" && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantCode != "" && !domainagg.IsCode(err, tc.wantCode) {
				t.Fatalf("want code %s, got %v", tc.wantCode, err)
			}
			if calls != tc.wantCalls {
				t.Fatalf("calls: want %d got %d", tc.wantCalls, calls)
			}
			if len(hooks.statuses) != 1 || hooks.statuses[0] != tc.wantStatus {
				t.Fatalf("statuses: want [%s] got %v", tc.wantStatus, hooks.statuses)
			}
			if hooks.conflicts != tc.conflicts || hooks.retries != tc.retries {
				t.Fatalf("conflicts=%d retries=%d", hooks.conflicts, hooks.retries)
			}
		})
	}
}

func TestExecuteWriteRetriesUntilSuccess(t *testing.T) {
	hooks := &spyHooks{}
	calls := 0
	err := executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Hooks: hooks}, "Registry.ContributionLedger.ApplyPaymentOutcome", func(_ dbctx.Context) error {
		calls++
		if calls < 3 {
			return RetryableError("deadlock detected")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 || hooks.retries != 2 {
		t.Fatalf("calls=%d retries=%d", calls, hooks.retries)
	}
	if len(hooks.statuses) != 1 || hooks.statuses[0] != "success" {
		t.Fatalf("statuses: %v", hooks.statuses)
	}
}

func TestAggregateErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "success"},
		{InvariantError("x"), string(domainagg.CodeInvariantViolation)},
		{ConflictError("x"), string(domainagg.CodeConflict)},
		{RetryableError("x"), string(domainagg.CodeRetryable)},
		{context.DeadlineExceeded, string(domainagg.CodeRetryable)},
	}
	for _, tc := range cases {
		if got := aggregateErrorStatus(tc.err); got != tc.want {
			t.Fatalf("aggregateErrorStatus(%v)=%s, want %s", tc.err, got, tc.want)
		}
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	statuses  []string
	conflicts int
	retries   int
}

func (h *spyHooks) ObserveOperation(_, status string, _ time.Duration) {
	h.statuses = append(h.statuses, status)
}

func (h *spyHooks) IncConflict(string) { h.conflicts++ }

func (h *spyHooks) IncRetry(string) { h.retries++ }
