package vendors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	pkgerrors "github.com/yungbote/vowbridge-backend/internal/pkg/errors"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/imaging"
)

type AddPortfolioInput struct {
	UserID      uuid.UUID
	VendorID    uuid.UUID
	ContentType string
	Data        []byte
	Caption     string
}

// AddPortfolioItem normalizes, screens and stores an image for the caller's own listing.
func (u Usecases) AddPortfolioItem(ctx context.Context, in AddPortfolioInput) (*types.PortfolioItem, error) {
	if err := requireUser(in.UserID); err != nil {
		return nil, err
	}
	v, err := u.loadVendor(ctx, in.VendorID)
	if err != nil {
		return nil, err
	}
	if v.UserID != in.UserID {
		return nil, apierr.Forbidden("not_vendor_owner", "only the vendor owner can edit the portfolio")
	}
	if len(in.Data) == 0 {
		return nil, apierr.Validation("missing_image", "image file is required")
	}
	if int64(len(in.Data)) > u.deps.MaxUploadBytes {
		return nil, apierr.Validation("image_too_large", fmt.Sprintf("image must be at most %d bytes", u.deps.MaxUploadBytes))
	}
	if ct := strings.ToLower(strings.TrimSpace(in.ContentType)); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, apierr.Validation("invalid_image_type", "only image uploads are allowed")
	}
	if u.deps.Media == nil {
		return nil, apierr.New(http.StatusServiceUnavailable, "storage_unavailable", pkgerrors.Unavailable("object storage", "upload portfolio image"))
	}

	img, err := imaging.NormalizeUpload(in.Data, u.deps.MaxImageDim)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedImage) {
			return nil, apierr.Validation("invalid_image", "image could not be decoded")
		}
		return nil, apierr.New(http.StatusInternalServerError, "process_image_failed", err)
	}

	if u.deps.Moderator != nil {
		verdict, err := u.deps.Moderator.CheckImage(ctx, img.Data)
		switch {
		case err != nil:
			u.deps.Log.Warn("image moderation failed; accepting upload", "vendor_id", v.ID, "error", err)
		case verdict != nil && verdict.Flagged:
			return nil, apierr.Validation("image_rejected", "image failed content moderation: "+strings.Join(verdict.Reasons, ", "))
		}
	}

	key := fmt.Sprintf("vendors/%s/portfolio/%s%s", v.ID, uuid.NewString(), img.Ext)
	url, err := u.deps.Media.Put(ctx, key, img.ContentType, bytes.NewReader(img.Data))
	if err != nil {
		return nil, apierr.Downstream("storage_upload_failed", err)
	}

	dbc := dbctx.Context{Ctx: ctx}
	order, err := u.deps.Portfolio.NextDisplayOrder(dbc, v.ID)
	if err == nil {
		item := &types.PortfolioItem{
			ID:           uuid.New(),
			VendorID:     v.ID,
			ImageURL:     url,
			StorageKey:   key,
			Caption:      strings.TrimSpace(in.Caption),
			DisplayOrder: order,
		}
		if err = u.deps.Portfolio.Create(dbc, item); err == nil {
			return item, nil
		}
	}
	if derr := u.deps.Media.Delete(ctx, key); derr != nil {
		u.deps.Log.Warn("cleanup uploaded image failed", "key", key, "error", derr)
	}
	return nil, apierr.New(http.StatusInternalServerError, "create_portfolio_item_failed", err)
}

func (u Usecases) ListPortfolio(ctx context.Context, vendorID uuid.UUID) ([]*types.PortfolioItem, error) {
	if _, err := u.loadVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	rows, err := u.deps.Portfolio.ListByVendor(dbctx.Context{Ctx: ctx}, vendorID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_portfolio_failed", err)
	}
	return rows, nil
}
