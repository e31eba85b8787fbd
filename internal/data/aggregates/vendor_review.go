package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yungbote/vowbridge-backend/internal/data/repos"
	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/vowbridge-backend/internal/domain/vendors"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
)

type VendorReviewDeps struct {
	Base BaseDeps

	Vendors repos.VendorRepo
	Reviews repos.VendorReviewRepo
}

type vendorReviewAggregate struct {
	deps VendorReviewDeps
}

func NewVendorReviewAggregate(deps VendorReviewDeps) domainagg.VendorReviewAggregate {
	deps.Base = deps.Base.withDefaults()
	return &vendorReviewAggregate{deps: deps}
}

func (a *vendorReviewAggregate) Contract() domainagg.Contract {
	return domainagg.VendorReviewContract
}

func (a *vendorReviewAggregate) AddReview(ctx context.Context, in domainagg.AddReviewInput) (domainagg.AddReviewResult, error) {
	op := domainagg.VendorReviewContract.Op("AddReview")
	var out domainagg.AddReviewResult

	if in.Rating < vendors.MinRating || in.Rating > vendors.MaxRating {
		return out, domainagg.NewError(domainagg.CodeValidation, op,
			fmt.Sprintf("rating must be between %d and %d", vendors.MinRating, vendors.MaxRating), nil)
	}
	if in.VendorID == uuid.Nil || in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "vendor id and user id are required", nil)
	}
	if a.deps.Vendors == nil || a.deps.Reviews == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "vendor review repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		// Lock first so concurrent reviews recompute over each other's rows.
		v, err := a.deps.Vendors.LockByID(dbc, in.VendorID)
		if err != nil {
			return err
		}
		if v == nil {
			return NotFoundError("vendor not found")
		}

		review := &vendors.VendorReview{
			ID:       uuid.New(),
			VendorID: v.ID,
			UserID:   in.UserID,
			EventID:  in.EventID,
			Rating:   in.Rating,
			Title:    strings.TrimSpace(in.Title),
			Comment:  strings.TrimSpace(in.Comment),
		}
		if err := a.deps.Reviews.Create(dbc, review); err != nil {
			return err
		}

		stats, err := a.deps.Reviews.Stats(dbc, v.ID)
		if err != nil {
			return err
		}
		rating := stats.AvgRating.Round(2)
		if err := a.deps.Vendors.SetRating(dbc, v.ID, rating, int(stats.ReviewCount)); err != nil {
			return err
		}

		updated, err := a.deps.Vendors.GetByID(dbc, v.ID)
		if err != nil {
			return err
		}
		out = domainagg.AddReviewResult{Review: *review, Vendor: *updated}
		return nil
	})
	if err != nil {
		return domainagg.AddReviewResult{}, err
	}
	return out, nil
}
