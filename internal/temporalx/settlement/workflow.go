package settlement

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// Workflow waits for the payment window of one contribution. A settled signal ends it early;
// otherwise the contribution is expired through the ledger.
func Workflow(ctx workflow.Context, in Input) (Result, error) {
	id := strings.TrimSpace(in.ContributionID)
	if id == "" {
		return Result{}, fmt.Errorf("settlement: missing contribution_id")
	}
	window := in.Window
	if window <= 0 {
		window = DefaultWindow
	}
	res := Result{ContributionID: id}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    10,
		},
	})

	timerCtx, cancelTimer := workflow.WithCancel(ctx)
	timer := workflow.NewTimer(timerCtx, window)
	settledCh := workflow.GetSignalChannel(ctx, SignalSettled)

	sel := workflow.NewSelector(ctx)
	sel.AddReceive(settledCh, func(c workflow.ReceiveChannel, more bool) {
		var v any
		c.Receive(ctx, &v)
		res.Settled = true
	})
	sel.AddFuture(timer, func(f workflow.Future) {})
	sel.Select(ctx)

	if res.Settled {
		cancelTimer()
		workflow.GetLogger(ctx).Info("contribution settled before expiry", "contribution_id", id)
		return res, nil
	}

	var out ExpireResult
	if err := workflow.ExecuteActivity(ctx, ActivityExpire, id).Get(ctx, &out); err != nil {
		return res, err
	}
	res.Expired = out.Expired
	res.Status = out.Status
	return res, nil
}
