package vendors

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type VendorFilter struct {
	Category string
	Location string
}

type VendorRepo interface {
	Create(dbc dbctx.Context, v *types.Vendor) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Vendor, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Vendor, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Vendor, error)
	// List orders featured vendors first, then by rating and business name.
	List(dbc dbctx.Context, f VendorFilter) ([]*types.Vendor, error)
	SetRating(dbc dbctx.Context, id uuid.UUID, rating decimal.Decimal, reviewCount int) error
}

type vendorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVendorRepo(db *gorm.DB, baseLog *logger.Logger) VendorRepo {
	return &vendorRepo{db: db, log: baseLog.With("repo", "VendorRepo")}
}

func (r *vendorRepo) Create(dbc dbctx.Context, v *types.Vendor) error {
	if v == nil {
		return nil
	}
	return dbc.DB(r.db).Create(v).Error
}

func (r *vendorRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Vendor, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return firstVendor(dbc.DB(r.db).Where("id = ?", id))
}

func (r *vendorRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Vendor, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	return firstVendor(dbc.DB(r.db).Where("user_id = ?", userID).Order("created_at ASC"))
}

func (r *vendorRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Vendor, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return firstVendor(dbc.DB(r.db).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func firstVendor(q *gorm.DB) (*types.Vendor, error) {
	var row types.Vendor
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *vendorRepo) List(dbc dbctx.Context, f VendorFilter) ([]*types.Vendor, error) {
	q := dbc.DB(r.db)
	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where("category = ?", c)
	}
	if l := strings.ToLower(strings.TrimSpace(f.Location)); l != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+l+"%")
	}
	var out []*types.Vendor
	err := q.
		Order("is_featured DESC").
		Order("rating DESC").
		Order("business_name ASC").
		Find(&out).Error
	return out, err
}

func (r *vendorRepo) SetRating(dbc dbctx.Context, id uuid.UUID, rating decimal.Decimal, reviewCount int) error {
	res := dbc.DB(r.db).Model(&types.Vendor{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"rating":       rating,
			"review_count": reviewCount,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
