package vendors

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/yungbote/vowbridge-backend/internal/data/repos"
	types "github.com/yungbote/vowbridge-backend/internal/domain"
	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/gcp"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

// MediaStore is satisfied by gcp.BucketService and cloudinary.Store.
type MediaStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// Moderator screens images before they are published.
type Moderator interface {
	CheckImage(ctx context.Context, img []byte) (*gcp.ModerationResult, error)
}

const DefaultMaxUploadBytes = 5 << 20

type UsecasesDeps struct {
	Log *logger.Logger

	Vendors   repos.VendorRepo
	Reviews   repos.VendorReviewRepo
	Portfolio repos.PortfolioRepo
	Bookings  repos.BookingRepo
	Events    repos.EventRepo

	ReviewAgg  domainagg.VendorReviewAggregate
	BookingAgg domainagg.BookingAggregate

	Media     MediaStore
	Moderator Moderator

	MaxUploadBytes int64
	MaxImageDim    int
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("module", "vendors")
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return Usecases{deps: deps}
}

// MaxUploadBytes is the largest portfolio image accepted.
func (u Usecases) MaxUploadBytes() int64 { return u.deps.MaxUploadBytes }

func (u Usecases) loadVendor(ctx context.Context, vendorID uuid.UUID) (*types.Vendor, error) {
	if vendorID == uuid.Nil {
		return nil, apierr.Validation("invalid_vendor_id", "vendor id is required")
	}
	v, err := u.deps.Vendors.GetByID(dbctx.Context{Ctx: ctx}, vendorID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_vendor_failed", err)
	}
	if v == nil {
		return nil, apierr.NotFound("vendor_not_found", "vendor not found")
	}
	return v, nil
}

func requireUser(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "unauthorized", nil)
	}
	return nil
}
