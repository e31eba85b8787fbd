package aggregates

import (
	"context"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
)

// TxRunner runs fn inside one database transaction. fn's error rolls the transaction back
// and is returned unchanged; executeWrite maps it afterwards.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has no database", nil)
	}
	if fn == nil {
		return nil
	}
	// Skip BEGIN for a caller that has already gone away.
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
