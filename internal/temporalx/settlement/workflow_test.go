package settlement

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/vowbridge-backend/internal/domain/registry"
)

type fakeLedger struct {
	mu     sync.Mutex
	calls  []domainagg.ApplyPaymentOutcomeInput
	status string
	err    error
}

func (f *fakeLedger) Contract() domainagg.Contract { return domainagg.ContributionLedgerContract }

func (f *fakeLedger) RecordContribution(context.Context, domainagg.RecordContributionInput) (domainagg.RecordContributionResult, error) {
	return domainagg.RecordContributionResult{}, nil
}

func (f *fakeLedger) AttachPaymentReference(context.Context, uuid.UUID, string) error { return nil }

func (f *fakeLedger) ApplyPaymentOutcome(_ context.Context, in domainagg.ApplyPaymentOutcomeInput) (domainagg.ApplyPaymentOutcomeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, in)
	if f.err != nil {
		return domainagg.ApplyPaymentOutcomeResult{}, f.err
	}
	prev := f.status
	next, _ := registry.TargetStatus(in.Outcome)
	f.status = next
	return domainagg.ApplyPaymentOutcomeResult{
		Contribution:   registry.Contribution{ID: in.ContributionID, Status: next},
		PreviousStatus: prev,
	}, nil
}

func (f *fakeLedger) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newEnv(t *testing.T, ledger *fakeLedger) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(Workflow, workflow.RegisterOptions{Name: WorkflowName})
	acts := &Activities{Ledger: ledger}
	env.RegisterActivityWithOptions(acts.ExpireContribution, activity.RegisterOptions{Name: ActivityExpire})
	return env
}

func TestWorkflowExpiresPendingContributionAfterWindow(t *testing.T) {
	ledger := &fakeLedger{status: registry.ContributionPending}
	env := newEnv(t, ledger)
	id := uuid.New()

	env.ExecuteWorkflow(WorkflowName, Input{ContributionID: id.String(), Window: 30 * time.Minute})
	if !env.IsWorkflowCompleted() {
		t.Fatalf("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	var res Result
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatalf("GetWorkflowResult: %v", err)
	}
	if res.Settled || !res.Expired || res.Status != registry.ContributionFailed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if ledger.callCount() != 1 {
		t.Fatalf("expected one ledger call, got %d", ledger.callCount())
	}
	call := ledger.calls[0]
	if call.ProviderEventID != "expire:"+id.String() || call.Outcome != registry.OutcomeFailed || call.ContributionID != id {
		t.Fatalf("unexpected ledger input: %+v", call)
	}
}

func TestWorkflowEndsEarlyOnSettledSignal(t *testing.T) {
	ledger := &fakeLedger{status: registry.ContributionPending}
	env := newEnv(t, ledger)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalSettled, nil)
	}, time.Minute)

	env.ExecuteWorkflow(WorkflowName, Input{ContributionID: uuid.NewString(), Window: 30 * time.Minute})
	if !env.IsWorkflowCompleted() {
		t.Fatalf("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	var res Result
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatalf("GetWorkflowResult: %v", err)
	}
	if !res.Settled || res.Expired {
		t.Fatalf("unexpected result: %+v", res)
	}
	if ledger.callCount() != 0 {
		t.Fatalf("settled contribution must not be expired, got %d calls", ledger.callCount())
	}
}

func TestWorkflowRejectsMissingContributionID(t *testing.T) {
	env := newEnv(t, &fakeLedger{})
	env.ExecuteWorkflow(WorkflowName, Input{})
	if !env.IsWorkflowCompleted() {
		t.Fatalf("workflow did not complete")
	}
	if env.GetWorkflowError() == nil {
		t.Fatalf("expected error for missing contribution id")
	}
}

func TestExpireIgnoresInvariantViolation(t *testing.T) {
	ledger := &fakeLedger{err: domainagg.NewError(domainagg.CodeInvariantViolation, "op", "contribution cannot move from completed to failed", nil)}
	acts := &Activities{Ledger: ledger}
	out, err := acts.ExpireContribution(context.Background(), uuid.NewString())
	if err != nil {
		t.Fatalf("ExpireContribution: %v", err)
	}
	if out.Expired || out.Status != "unchanged" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestExpireRejectsBadID(t *testing.T) {
	acts := &Activities{Ledger: &fakeLedger{}}
	if _, err := acts.ExpireContribution(context.Background(), "not-a-uuid"); err == nil {
		t.Fatalf("expected error for invalid id")
	}
}

func TestNopSchedulerWithoutClient(t *testing.T) {
	s := NewScheduler(nil, nil, "q", 0)
	if _, ok := s.(Nop); !ok {
		t.Fatalf("expected Nop scheduler, got %T", s)
	}
	if err := s.Start(context.Background(), uuid.New()); err != nil {
		t.Fatalf("Nop.Start: %v", err)
	}
}
