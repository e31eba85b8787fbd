package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/vowbridge-backend/internal/domain/vendors"
)

var VendorReviewContract = Contract{
	Name:      "Vendors.VendorReview",
	Tables:    []string{"vendors", "vendor_reviews"},
	LockOrder: []string{"vendors"},
	Notes:     "vendors.rating and review_count are recomputed from vendor_reviews under the vendor lock.",
}

// VendorReviewAggregate keeps vendors.rating and vendors.review_count consistent with vendor_reviews.
type VendorReviewAggregate interface {
	Aggregate

	AddReview(ctx context.Context, in AddReviewInput) (AddReviewResult, error)
}

type AddReviewInput struct {
	VendorID uuid.UUID
	UserID   uuid.UUID
	EventID  *uuid.UUID
	Rating   int
	Title    string
	Comment  string
}

type AddReviewResult struct {
	Review vendors.VendorReview
	Vendor vendors.Vendor
}
