package aggregates_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/vowbridge-backend/internal/data/aggregates"
	"github.com/yungbote/vowbridge-backend/internal/data/repos"
	"github.com/yungbote/vowbridge-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
)

func TestAddReviewRecomputesRating(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	owner := testutil.SeedUser(t, ctx, db, "vendor")
	author := testutil.SeedUser(t, ctx, db, "celebrant")
	vendor := testutil.SeedVendor(t, ctx, db, owner.ID, "Aperture Studio")
	vendorRepo := repos.NewVendorRepo(db, log)

	agg := aggregates.NewVendorReviewAggregate(aggregates.VendorReviewDeps{
		Base:    aggregates.BaseDeps{DB: db, Log: log},
		Vendors: vendorRepo,
		Reviews: repos.NewVendorReviewRepo(db, log),
	})

	add := func(rating int) domainagg.AddReviewResult {
		t.Helper()
		res, err := agg.AddReview(ctx, domainagg.AddReviewInput{VendorID: vendor.ID, UserID: author.ID, Rating: rating, Title: "Great"})
		if err != nil {
			t.Fatalf("AddReview(%d): %v", rating, err)
		}
		return res
	}

	var last domainagg.AddReviewResult
	for _, r := range []int{5, 4, 3} {
		last = add(r)
	}
	if !last.Vendor.Rating.Equal(decimal.RequireFromString("4.00")) || last.Vendor.ReviewCount != 3 {
		t.Fatalf("after [5,4,3]: rating=%s count=%d", last.Vendor.Rating, last.Vendor.ReviewCount)
	}

	last = add(2)
	if !last.Vendor.Rating.Equal(decimal.RequireFromString("3.50")) || last.Vendor.ReviewCount != 4 {
		t.Fatalf("after adding 2: rating=%s count=%d", last.Vendor.Rating, last.Vendor.ReviewCount)
	}

	for _, bad := range []int{0, 6, -1} {
		_, err := agg.AddReview(ctx, domainagg.AddReviewInput{VendorID: vendor.ID, UserID: author.ID, Rating: bad})
		if !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("rating %d: want validation got %v", bad, err)
		}
	}
	stored, err := vendorRepo.GetByID(dbctx.Context{Ctx: ctx}, vendor.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !stored.Rating.Equal(decimal.RequireFromString("3.5")) || stored.ReviewCount != 4 {
		t.Fatalf("invalid ratings changed the vendor: rating=%s count=%d", stored.Rating, stored.ReviewCount)
	}

	_, err = agg.AddReview(ctx, domainagg.AddReviewInput{VendorID: uuid.New(), UserID: author.ID, Rating: 4})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown vendor: want not_found got %v", err)
	}
}

func TestAddReviewRoundsToTwoPlaces(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	owner := testutil.SeedUser(t, ctx, db, "vendor")
	author := testutil.SeedUser(t, ctx, db, "guest")
	vendor := testutil.SeedVendor(t, ctx, db, owner.ID, "Bloom")

	agg := aggregates.NewVendorReviewAggregate(aggregates.VendorReviewDeps{
		Base:    aggregates.BaseDeps{DB: db, Log: log},
		Vendors: repos.NewVendorRepo(db, log),
		Reviews: repos.NewVendorReviewRepo(db, log),
	})
	var res domainagg.AddReviewResult
	for _, r := range []int{5, 5, 4} {
		var err error
		res, err = agg.AddReview(ctx, domainagg.AddReviewInput{VendorID: vendor.ID, UserID: author.ID, Rating: r})
		if err != nil {
			t.Fatalf("AddReview: %v", err)
		}
	}
	if !res.Vendor.Rating.Equal(decimal.RequireFromString("4.67")) {
		t.Fatalf("want 4.67 got %s", res.Vendor.Rating)
	}
}
