package catalog

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type ProductFilter struct {
	CategoryID *uuid.UUID
	Search     string
}

type ProductRepo interface {
	// List returns available products ordered by name.
	List(dbc dbctx.Context, f ProductFilter) ([]*types.Product, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Product, error)
	EnsureByName(dbc dbctx.Context, p *types.Product) (*types.Product, bool, error)
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

func (r *productRepo) List(dbc dbctx.Context, f ProductFilter) ([]*types.Product, error) {
	q := dbc.DB(r.db).Where("is_available = ?", true)
	if f.CategoryID != nil && *f.CategoryID != uuid.Nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	var out []*types.Product
	err := q.Order("name ASC").Find(&out).Error
	return out, err
}

func (r *productRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Product
	if err := dbc.DB(r.db).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *productRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Product, error) {
	var out []*types.Product
	if len(ids) == 0 {
		return out, nil
	}
	err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *productRepo) EnsureByName(dbc dbctx.Context, p *types.Product) (*types.Product, bool, error) {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return nil, false, errors.New("product name required")
	}
	var existing types.Product
	err := dbc.DB(r.db).Where("name = ?", p.Name).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if err := dbc.DB(r.db).Create(p).Error; err != nil {
		return nil, false, err
	}
	return p, true, nil
}
