package aggregates

import (
	"errors"
	"testing"

	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", ConflictError("stale"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestMapError_DuplicatedKeyIsConflict(t *testing.T) {
	err := MapError("op", gorm.ErrDuplicatedKey)
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_TaggedMessageDropsSentinel(t *testing.T) {
	err := MapError("Vendors.AddReview", ValidationError("rating must be between 1 and 5"))
	var ae *domainagg.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected aggregate error, got %T", err)
	}
	if ae.Message != "rating must be between 1 and 5" {
		t.Fatalf("unexpected message %q", ae.Message)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("sentinel should stay reachable through Unwrap")
	}
}

func TestMapError_SQLiteLockedIsRetryable(t *testing.T) {
	err := MapError("op", errors.New("database is locked (5) (SQLITE_BUSY)"))
	if !domainagg.IsCode(err, domainagg.CodeRetryable) {
		t.Fatalf("expected retryable code, got %q", domainagg.CodeOf(err))
	}
}
