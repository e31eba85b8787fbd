package registry

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/domain/registry"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

// ContributionRepo has no delete: the ledger is append-only.
type ContributionRepo interface {
	Create(dbc dbctx.Context, c *types.Contribution) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Contribution, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Contribution, error)
	GetByIdempotencyKey(dbc dbctx.Context, key string) (*types.Contribution, error)
	LockByPaymentReference(dbc dbctx.Context, ref string) (*types.Contribution, error)
	// ListByItem returns contributions newest first.
	ListByItem(dbc dbctx.Context, itemID uuid.UUID) ([]*types.Contribution, error)
	// TransitionStatus moves a contribution from one status to another and reports whether
	// the row was still in the expected status.
	TransitionStatus(dbc dbctx.Context, id uuid.UUID, from, to string, paymentReference string) (bool, error)
	SetPaymentReference(dbc dbctx.Context, id uuid.UUID, ref string) error
	SumCompleted(dbc dbctx.Context, itemID uuid.UUID) (decimal.Decimal, error)
}

type contributionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContributionRepo(db *gorm.DB, baseLog *logger.Logger) ContributionRepo {
	return &contributionRepo{db: db, log: baseLog.With("repo", "ContributionRepo")}
}

func (r *contributionRepo) Create(dbc dbctx.Context, c *types.Contribution) error {
	if c == nil {
		return nil
	}
	return dbc.DB(r.db).Create(c).Error
}

func (r *contributionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Contribution, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return first(dbc.DB(r.db).Where("id = ?", id))
}

func (r *contributionRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Contribution, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return first(dbc.DB(r.db).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (r *contributionRepo) GetByIdempotencyKey(dbc dbctx.Context, key string) (*types.Contribution, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	return first(dbc.DB(r.db).Where("idempotency_key = ?", key))
}

func (r *contributionRepo) LockByPaymentReference(dbc dbctx.Context, ref string) (*types.Contribution, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	return first(dbc.DB(r.db).Clauses(clause.Locking{Strength: "UPDATE"}).Where("payment_reference = ?", ref))
}

func first(q *gorm.DB) (*types.Contribution, error) {
	var row types.Contribution
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *contributionRepo) ListByItem(dbc dbctx.Context, itemID uuid.UUID) ([]*types.Contribution, error) {
	var out []*types.Contribution
	err := dbc.DB(r.db).
		Where("registry_item_id = ?", itemID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *contributionRepo) TransitionStatus(dbc dbctx.Context, id uuid.UUID, from, to string, paymentReference string) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if ref := strings.TrimSpace(paymentReference); ref != "" {
		updates["payment_reference"] = ref
	}
	res := dbc.DB(r.db).Model(&types.Contribution{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *contributionRepo) SetPaymentReference(dbc dbctx.Context, id uuid.UUID, ref string) error {
	ref = strings.TrimSpace(ref)
	if id == uuid.Nil || ref == "" {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Contribution{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"payment_reference": ref, "updated_at": time.Now().UTC()}).Error
}

func (r *contributionRepo) SumCompleted(dbc dbctx.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := dbc.DB(r.db).Model(&types.Contribution{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("registry_item_id = ? AND status = ?", itemID, registry.ContributionCompleted).
		Scan(&row).Error
	return row.Total.Round(2), err
}
