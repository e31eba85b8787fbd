package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/domain/registry"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, role string) *types.User {
	tb.Helper()
	email := fmt.Sprintf("%s@example.com", uuid.NewString()[:8])
	u := &types.User{
		ID:        uuid.New(),
		Email:     &email,
		FirstName: "A",
		LastName:  "B",
		Role:      role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedEvent(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) *types.Event {
	tb.Helper()
	ev := &types.Event{
		ID:        uuid.New(),
		UserID:    ownerID,
		Title:     "Ana & Ben",
		EventDate: time.Date(2027, 6, 12, 16, 0, 0, 0, time.UTC),
		Venue:     "Orchard Barn",
	}
	if err := tx.WithContext(ctx).Create(ev).Error; err != nil {
		tb.Fatalf("seed event: %v", err)
	}
	return ev
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, price int64) *types.Product {
	tb.Helper()
	p := &types.Product{
		ID:          uuid.New(),
		Name:        name,
		Price:       decimal.NewFromInt(price),
		IsAvailable: true,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

// SeedRegistryItem creates a public item with the given target and priority.
func SeedRegistryItem(tb testing.TB, ctx context.Context, tx *gorm.DB, eventID, productID uuid.UUID, target decimal.Decimal, priority string) *types.RegistryItem {
	tb.Helper()
	if priority == "" {
		priority = registry.PriorityMedium
	}
	item := &types.RegistryItem{
		ID:            uuid.New(),
		EventID:       eventID,
		ProductID:     productID,
		TargetAmount:  target,
		CurrentAmount: decimal.Zero,
		Priority:      priority,
		IsPublic:      true,
	}
	if err := tx.WithContext(ctx).Create(item).Error; err != nil {
		tb.Fatalf("seed registry item: %v", err)
	}
	return item
}

func SeedVendor(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string) *types.Vendor {
	tb.Helper()
	v := &types.Vendor{
		ID:           uuid.New(),
		UserID:       ownerID,
		BusinessName: name,
		Category:     "photographer",
		Location:     "Austin",
		Rating:       decimal.Zero,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed vendor: %v", err)
	}
	return v
}
