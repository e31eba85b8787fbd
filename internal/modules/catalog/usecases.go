package catalog

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/vowbridge-backend/internal/data/repos"
	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type UsecasesDeps struct {
	Log *logger.Logger

	Categories repos.CategoryRepo
	Products   repos.ProductRepo
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("module", "catalog")
	return Usecases{deps: deps}
}

type ProductQuery struct {
	// Category is a category id or, failing that, a category name.
	Category string
	Search   string
}

func (u Usecases) ListProducts(ctx context.Context, q ProductQuery) ([]*types.Product, error) {
	dbc := dbctx.Context{Ctx: ctx}
	filter := repos.ProductFilter{Search: strings.TrimSpace(q.Search)}

	if raw := strings.TrimSpace(q.Category); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.CategoryID = &id
		} else {
			cat, err := u.deps.Categories.GetByName(dbc, raw)
			if err != nil {
				return nil, apierr.New(http.StatusInternalServerError, "load_category_failed", err)
			}
			if cat == nil {
				return []*types.Product{}, nil
			}
			filter.CategoryID = &cat.ID
		}
	}

	out, err := u.deps.Products.List(dbc, filter)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_products_failed", err)
	}
	return out, nil
}

func (u Usecases) ListCategories(ctx context.Context) ([]*types.Category, error) {
	out, err := u.deps.Categories.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_categories_failed", err)
	}
	return out, nil
}

func (u Usecases) GetProduct(ctx context.Context, id uuid.UUID) (*types.Product, error) {
	if id == uuid.Nil {
		return nil, apierr.Validation("invalid_product_id", "product id is required")
	}
	p, err := u.deps.Products.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_product_failed", err)
	}
	if p == nil {
		return nil, apierr.NotFound("product_not_found", "product not found")
	}
	return p, nil
}
