package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

// Scheduler starts and ends settlement workflows for contributions.
type Scheduler interface {
	Start(ctx context.Context, contributionID uuid.UUID) error
	Settled(ctx context.Context, contributionID uuid.UUID) error
}

type Nop struct{}

func (Nop) Start(context.Context, uuid.UUID) error   { return nil }
func (Nop) Settled(context.Context, uuid.UUID) error { return nil }

type temporalScheduler struct {
	log       *logger.Logger
	tc        temporalsdkclient.Client
	taskQueue string
	window    time.Duration
}

// NewScheduler returns Nop when tc is nil.
func NewScheduler(log *logger.Logger, tc temporalsdkclient.Client, taskQueue string, window time.Duration) Scheduler {
	if tc == nil {
		return Nop{}
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &temporalScheduler{
		log:       log.With("service", "SettlementScheduler"),
		tc:        tc,
		taskQueue: taskQueue,
		window:    window,
	}
}

// Start is idempotent per contribution: a replayed contribution reuses the running workflow.
func (s *temporalScheduler) Start(ctx context.Context, contributionID uuid.UUID) error {
	id := contributionID.String()
	_, err := s.tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:                       workflowID(id),
		TaskQueue:                s.taskQueue,
		WorkflowExecutionTimeout: s.window + time.Hour,
	}, WorkflowName, Input{ContributionID: id, Window: s.window})
	if err != nil {
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &started) {
			return nil
		}
		return fmt.Errorf("start settlement workflow: %w", err)
	}
	return nil
}

func (s *temporalScheduler) Settled(ctx context.Context, contributionID uuid.UUID) error {
	err := s.tc.SignalWorkflow(ctx, workflowID(contributionID.String()), "", SignalSettled, nil)
	if err == nil {
		return nil
	}
	var nf *serviceerror.NotFound
	if errors.As(err, &nf) {
		return nil
	}
	return fmt.Errorf("signal settlement workflow: %w", err)
}
