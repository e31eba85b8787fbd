package registry

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

// priorityOrder ranks items explicitly; sorting the raw priority text would put "low" before "medium".
const priorityOrder = "CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END"

type RegistryItemRepo interface {
	Create(dbc dbctx.Context, item *types.RegistryItem) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.RegistryItem, error)
	// LockByID reads the item under a row lock. Must be called inside a transaction.
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.RegistryItem, error)
	// ListPublicByEvent returns public items ordered high, medium, low then by creation time.
	ListPublicByEvent(dbc dbctx.Context, eventID uuid.UUID) ([]*types.RegistryItem, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// AddToCurrentAmount applies delta with a single arithmetic UPDATE so concurrent
	// writers never overwrite each other's increments. The result is rounded to cents
	// because SQLite does the arithmetic in floating point.
	AddToCurrentAmount(dbc dbctx.Context, id uuid.UUID, delta decimal.Decimal) error
}

type registryItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRegistryItemRepo(db *gorm.DB, baseLog *logger.Logger) RegistryItemRepo {
	return &registryItemRepo{db: db, log: baseLog.With("repo", "RegistryItemRepo")}
}

func (r *registryItemRepo) Create(dbc dbctx.Context, item *types.RegistryItem) error {
	if item == nil {
		return nil
	}
	return dbc.DB(r.db).Create(item).Error
}

func (r *registryItemRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.RegistryItem, error) {
	return r.get(dbc.DB(r.db), id)
}

func (r *registryItemRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.RegistryItem, error) {
	return r.get(dbc.DB(r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *registryItemRepo) get(q *gorm.DB, id uuid.UUID) (*types.RegistryItem, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.RegistryItem
	if err := q.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *registryItemRepo) ListPublicByEvent(dbc dbctx.Context, eventID uuid.UUID) ([]*types.RegistryItem, error) {
	var out []*types.RegistryItem
	err := dbc.DB(r.db).
		Where("event_id = ? AND is_public = ?", eventID, true).
		Order(priorityOrder).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *registryItemRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&types.RegistryItem{}).Where("id = ?", id).Updates(updates).Error
}

func (r *registryItemRepo) AddToCurrentAmount(dbc dbctx.Context, id uuid.UUID, delta decimal.Decimal) error {
	if id == uuid.Nil {
		return errors.New("registry item id required")
	}
	if delta.IsZero() {
		return nil
	}
	res := dbc.DB(r.db).Model(&types.RegistryItem{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"current_amount": gorm.Expr("ROUND(current_amount + ?, 2)", delta),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
