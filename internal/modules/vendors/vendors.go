package vendors

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/vowbridge-backend/internal/data/repos"
	types "github.com/yungbote/vowbridge-backend/internal/domain"
	domvendors "github.com/yungbote/vowbridge-backend/internal/domain/vendors"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
)

type CreateVendorInput struct {
	UserID        uuid.UUID
	BusinessName  string
	Description   string
	Category      string
	Location      string
	Website       string
	Phone         string
	StartingPrice *decimal.Decimal
}

// CreateVendor registers the caller's vendor listing. A user owns at most one listing.
func (u Usecases) CreateVendor(ctx context.Context, in CreateVendorInput) (*types.Vendor, error) {
	if err := requireUser(in.UserID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.BusinessName)
	if name == "" {
		return nil, apierr.Validation("missing_business_name", "businessName is required")
	}
	category := strings.ToLower(strings.TrimSpace(in.Category))
	if !domvendors.ValidCategory(category) {
		return nil, apierr.Validation("invalid_category", "unknown vendor category")
	}
	if in.StartingPrice != nil && in.StartingPrice.IsNegative() {
		return nil, apierr.Validation("invalid_starting_price", "startingPrice must not be negative")
	}

	dbc := dbctx.Context{Ctx: ctx}
	existing, err := u.deps.Vendors.GetByUserID(dbc, in.UserID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_vendor_failed", err)
	}
	if existing != nil {
		return nil, apierr.New(http.StatusConflict, "vendor_exists", nil)
	}

	v := &types.Vendor{
		ID:            uuid.New(),
		UserID:        in.UserID,
		BusinessName:  name,
		Description:   strings.TrimSpace(in.Description),
		Category:      category,
		Location:      strings.TrimSpace(in.Location),
		Website:       strings.TrimSpace(in.Website),
		Phone:         strings.TrimSpace(in.Phone),
		StartingPrice: in.StartingPrice,
		Rating:        decimal.Zero,
	}
	if err := u.deps.Vendors.Create(dbc, v); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "create_vendor_failed", err)
	}
	return v, nil
}

type VendorQuery struct {
	Category string
	Location string
}

func (u Usecases) ListVendors(ctx context.Context, q VendorQuery) ([]*types.Vendor, error) {
	category := strings.ToLower(strings.TrimSpace(q.Category))
	if category != "" && !domvendors.ValidCategory(category) {
		return []*types.Vendor{}, nil
	}
	rows, err := u.deps.Vendors.List(dbctx.Context{Ctx: ctx}, repos.VendorFilter{Category: category, Location: q.Location})
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_vendors_failed", err)
	}
	return rows, nil
}

func (u Usecases) GetVendor(ctx context.Context, vendorID uuid.UUID) (*types.Vendor, error) {
	return u.loadVendor(ctx, vendorID)
}

// MyVendor returns the caller's own listing.
func (u Usecases) MyVendor(ctx context.Context, userID uuid.UUID) (*types.Vendor, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	v, err := u.deps.Vendors.GetByUserID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_vendor_failed", err)
	}
	if v == nil {
		return nil, apierr.NotFound("vendor_not_found", "you have no vendor profile")
	}
	return v, nil
}
