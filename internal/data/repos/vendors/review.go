package vendors

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type ReviewStats struct {
	ReviewCount int64
	AvgRating   decimal.Decimal
}

type VendorReviewRepo interface {
	Create(dbc dbctx.Context, rv *types.VendorReview) error
	// ListByVendor returns reviews newest first.
	ListByVendor(dbc dbctx.Context, vendorID uuid.UUID) ([]*types.VendorReview, error)
	// Stats aggregates over every review row of the vendor.
	Stats(dbc dbctx.Context, vendorID uuid.UUID) (ReviewStats, error)
}

type vendorReviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVendorReviewRepo(db *gorm.DB, baseLog *logger.Logger) VendorReviewRepo {
	return &vendorReviewRepo{db: db, log: baseLog.With("repo", "VendorReviewRepo")}
}

func (r *vendorReviewRepo) Create(dbc dbctx.Context, rv *types.VendorReview) error {
	if rv == nil {
		return nil
	}
	return dbc.DB(r.db).Create(rv).Error
}

func (r *vendorReviewRepo) ListByVendor(dbc dbctx.Context, vendorID uuid.UUID) ([]*types.VendorReview, error) {
	var out []*types.VendorReview
	err := dbc.DB(r.db).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *vendorReviewRepo) Stats(dbc dbctx.Context, vendorID uuid.UUID) (ReviewStats, error) {
	var out ReviewStats
	err := dbc.DB(r.db).Model(&types.VendorReview{}).
		Select("COUNT(*) AS review_count, COALESCE(AVG(rating), 0) AS avg_rating").
		Where("vendor_id = ?", vendorID).
		Scan(&out).Error
	return out, err
}
