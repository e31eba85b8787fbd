package catalog

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type CategoryRepo interface {
	List(dbc dbctx.Context) ([]*types.Category, error)
	GetByName(dbc dbctx.Context, name string) (*types.Category, error)
	// EnsureByName creates the category unless one with the same name exists.
	EnsureByName(dbc dbctx.Context, c *types.Category) (*types.Category, bool, error)
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (r *categoryRepo) List(dbc dbctx.Context) ([]*types.Category, error) {
	var out []*types.Category
	err := dbc.DB(r.db).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *categoryRepo) GetByName(dbc dbctx.Context, name string) (*types.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var row types.Category
	if err := dbc.DB(r.db).Where("name = ?", name).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *categoryRepo) EnsureByName(dbc dbctx.Context, c *types.Category) (*types.Category, bool, error) {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return nil, false, errors.New("category name required")
	}
	existing, err := r.GetByName(dbc, c.Name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	if err := dbc.DB(r.db).Create(c).Error; err != nil {
		return nil, false, err
	}
	return c, true, nil
}
