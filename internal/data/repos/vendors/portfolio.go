package vendors

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type PortfolioRepo interface {
	Create(dbc dbctx.Context, p *types.PortfolioItem) error
	ListByVendor(dbc dbctx.Context, vendorID uuid.UUID) ([]*types.PortfolioItem, error)
	NextDisplayOrder(dbc dbctx.Context, vendorID uuid.UUID) (int, error)
}

type portfolioRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPortfolioRepo(db *gorm.DB, baseLog *logger.Logger) PortfolioRepo {
	return &portfolioRepo{db: db, log: baseLog.With("repo", "PortfolioRepo")}
}

func (r *portfolioRepo) Create(dbc dbctx.Context, p *types.PortfolioItem) error {
	if p == nil {
		return nil
	}
	return dbc.DB(r.db).Create(p).Error
}

func (r *portfolioRepo) ListByVendor(dbc dbctx.Context, vendorID uuid.UUID) ([]*types.PortfolioItem, error) {
	var out []*types.PortfolioItem
	err := dbc.DB(r.db).
		Where("vendor_id = ?", vendorID).
		Order("display_order ASC").
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *portfolioRepo) NextDisplayOrder(dbc dbctx.Context, vendorID uuid.UUID) (int, error) {
	var row struct {
		NextOrder int
	}
	err := dbc.DB(r.db).Model(&types.PortfolioItem{}).
		Select("COALESCE(MAX(display_order), -1) + 1 AS next_order").
		Where("vendor_id = ?", vendorID).
		Scan(&row).Error
	return row.NextOrder, err
}
