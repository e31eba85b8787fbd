package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
)

func TestHooksRecorderKeepsOrder(t *testing.T) {
	h := &HooksRecorder{}
	h.IncRetry("Registry.ContributionLedger.RecordContribution")
	h.ObserveOperation("Registry.ContributionLedger.RecordContribution", "success", time.Millisecond)
	h.IncConflict("Vendors.Booking.UpdateStatus")
	h.ObserveOperation("Vendors.Booking.UpdateStatus", "conflict", time.Millisecond)

	if got := h.Statuses(); len(got) != 2 || got[0] != "success" || got[1] != "conflict" {
		t.Fatalf("unexpected statuses %v", got)
	}
	if h.Count(SignalRetry) != 1 || h.Count(SignalConflict) != 1 || h.Count(SignalOperation) != 2 {
		t.Fatalf("unexpected counts %+v", h.Signals())
	}
}

func TestFaultyTxRunnerFailsOnlyConfiguredAttempts(t *testing.T) {
	commitErr := errors.New("serialization failure")
	r := &FaultyTxRunner{CommitErr: commitErr, FailAttempts: 1}
	ran := 0
	body := func(dbctx.Context) error { ran++; return nil }

	if err := r.InTx(context.Background(), body); !errors.Is(err, commitErr) {
		t.Fatalf("first attempt: want commit error, got %v", err)
	}
	if err := r.InTx(context.Background(), body); err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	if ran != 2 || r.Attempts() != 2 || r.RolledBack() != 1 {
		t.Fatalf("ran=%d attempts=%d rolledBack=%d", ran, r.Attempts(), r.RolledBack())
	}
}

func TestFaultyTxRunnerPassesBodyError(t *testing.T) {
	bodyErr := errors.New("boom")
	r := &FaultyTxRunner{}
	err := r.InTx(context.Background(), func(dbctx.Context) error { return bodyErr })
	if !errors.Is(err, bodyErr) || r.RolledBack() != 1 {
		t.Fatalf("err=%v rolledBack=%d", err, r.RolledBack())
	}
}
