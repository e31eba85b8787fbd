package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/vowbridge-backend/internal/data/aggregates"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
)

// FaultyTxRunner wraps a runner and fails the commit of the first FailAttempts
// transactions with CommitErr after the body succeeded. Returning the error from inside
// Inner's transaction makes Inner roll back. FailAttempts zero means every attempt fails.
type FaultyTxRunner struct {
	Inner        aggregates.TxRunner
	CommitErr    error
	FailAttempts int

	mu         sync.Mutex
	attempts   int
	rolledBack int
}

var _ aggregates.TxRunner = (*FaultyTxRunner)(nil)

func (r *FaultyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.attempts++
	inject := r.CommitErr != nil && (r.FailAttempts == 0 || r.attempts <= r.FailAttempts)
	r.mu.Unlock()

	body := func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		if inject {
			return r.CommitErr
		}
		return nil
	}

	var err error
	if r.Inner != nil {
		err = r.Inner.InTx(ctx, body)
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}
	if err != nil {
		r.mu.Lock()
		r.rolledBack++
		r.mu.Unlock()
	}
	return err
}

func (r *FaultyTxRunner) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

func (r *FaultyTxRunner) RolledBack() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rolledBack
}
