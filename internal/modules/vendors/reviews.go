package vendors

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
)

type AddReviewInput struct {
	UserID   uuid.UUID
	VendorID uuid.UUID
	EventID  *uuid.UUID
	Rating   int
	Title    string
	Comment  string
}

type AddReviewResult struct {
	Review types.VendorReview `json:"review"`
	Vendor types.Vendor       `json:"vendor"`
}

func (u Usecases) AddReview(ctx context.Context, in AddReviewInput) (*AddReviewResult, error) {
	if err := requireUser(in.UserID); err != nil {
		return nil, err
	}
	v, err := u.loadVendor(ctx, in.VendorID)
	if err != nil {
		return nil, err
	}
	if v.UserID == in.UserID {
		return nil, apierr.Forbidden("self_review", "vendors cannot review themselves")
	}
	res, err := u.deps.ReviewAgg.AddReview(ctx, domainagg.AddReviewInput{
		VendorID: v.ID,
		UserID:   in.UserID,
		EventID:  in.EventID,
		Rating:   in.Rating,
		Title:    strings.TrimSpace(in.Title),
		Comment:  strings.TrimSpace(in.Comment),
	})
	if err != nil {
		return nil, apierr.FromAggregate(err, "add_review_failed")
	}
	return &AddReviewResult{Review: res.Review, Vendor: res.Vendor}, nil
}

func (u Usecases) ListReviews(ctx context.Context, vendorID uuid.UUID) ([]*types.VendorReview, error) {
	if _, err := u.loadVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	rows, err := u.deps.Reviews.ListByVendor(dbctx.Context{Ctx: ctx}, vendorID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_reviews_failed", err)
	}
	return rows, nil
}
