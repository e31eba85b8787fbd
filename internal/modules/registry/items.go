package registry

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/domain/catalog"
	domregistry "github.com/yungbote/vowbridge-backend/internal/domain/registry"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
)

type CreateItemInput struct {
	OwnerID      uuid.UUID
	EventID      uuid.UUID
	ProductID    uuid.UUID
	TargetAmount decimal.Decimal
	Priority     string
	IsPublic     *bool
}

var targetAmountRule = "targetAmount must be greater than zero and at most " + domregistry.MaxAmount.StringFixed(2)

func (u Usecases) CreateItem(ctx context.Context, in CreateItemInput) (*types.RegistryItemView, error) {
	ev, err := u.requireOwner(ctx, in.OwnerID, in.EventID)
	if err != nil {
		return nil, err
	}
	if !domregistry.ValidAmount(in.TargetAmount.Round(2)) {
		return nil, apierr.Validation("invalid_target_amount", targetAmountRule)
	}
	priority := strings.ToLower(strings.TrimSpace(in.Priority))
	if priority == "" {
		priority = domregistry.PriorityMedium
	}
	if !domregistry.ValidPriority(priority) {
		return nil, apierr.Validation("invalid_priority", "priority must be high, medium or low")
	}
	if in.ProductID == uuid.Nil {
		return nil, apierr.Validation("invalid_product_id", "productId is required")
	}

	dbc := dbctx.Context{Ctx: ctx}
	product, err := u.deps.Products.GetByID(dbc, in.ProductID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_product_failed", err)
	}
	if product == nil {
		return nil, apierr.NotFound("product_not_found", "product not found")
	}

	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}
	item := &types.RegistryItem{
		ID:            uuid.New(),
		EventID:       ev.ID,
		ProductID:     product.ID,
		TargetAmount:  in.TargetAmount.Round(2),
		CurrentAmount: decimal.Zero,
		Priority:      priority,
		IsPublic:      isPublic,
	}
	if err := u.deps.Items.Create(dbc, item); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "create_registry_item_failed", err)
	}
	view := domregistry.NewRegistryItemView(*item, product)
	return &view, nil
}

type UpdateItemInput struct {
	OwnerID      uuid.UUID
	ItemID       uuid.UUID
	TargetAmount *decimal.Decimal
	Priority     *string
	IsPublic     *bool
	IsPurchased  *bool
}

// UpdateItem edits owner-controlled fields. The running total is never writable here.
func (u Usecases) UpdateItem(ctx context.Context, in UpdateItemInput) (*types.RegistryItemView, error) {
	item, err := u.loadItem(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if _, err := u.requireOwner(ctx, in.OwnerID, item.EventID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.TargetAmount != nil {
		if !domregistry.ValidAmount(in.TargetAmount.Round(2)) {
			return nil, apierr.Validation("invalid_target_amount", targetAmountRule)
		}
		updates["target_amount"] = in.TargetAmount.Round(2)
	}
	if in.Priority != nil {
		p := strings.ToLower(strings.TrimSpace(*in.Priority))
		if !domregistry.ValidPriority(p) {
			return nil, apierr.Validation("invalid_priority", "priority must be high, medium or low")
		}
		updates["priority"] = p
	}
	if in.IsPublic != nil {
		updates["is_public"] = *in.IsPublic
	}
	if in.IsPurchased != nil {
		updates["is_purchased"] = *in.IsPurchased
	}
	if len(updates) == 0 {
		return nil, apierr.Validation("empty_update", "nothing to update")
	}

	dbc := dbctx.Context{Ctx: ctx}
	if err := u.deps.Items.UpdateFields(dbc, item.ID, updates); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "update_registry_item_failed", err)
	}
	updated, err := u.loadItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if in.TargetAmount != nil {
		u.publishProgress(ctx, *updated)
	}
	product, _ := u.deps.Products.GetByID(dbc, updated.ProductID)
	view := domregistry.NewRegistryItemView(*updated, product)
	return &view, nil
}

// ListRegistry returns an event's public items, high priority first and oldest first within
// a priority, each with its product and completion state.
func (u Usecases) ListRegistry(ctx context.Context, eventID uuid.UUID) ([]types.RegistryItemView, error) {
	if _, err := u.loadEvent(ctx, eventID); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	items, err := u.deps.Items.ListPublicByEvent(dbc, eventID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_registry_failed", err)
	}
	products, err := u.productsFor(dbc, items)
	if err != nil {
		return nil, err
	}

	// the repo already orders by priority; sort again so the rule holds for any store
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := domregistry.PriorityOrdinal(items[i].Priority), domregistry.PriorityOrdinal(items[j].Priority)
		if pi != pj {
			return pi < pj
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	out := make([]types.RegistryItemView, 0, len(items))
	for _, it := range items {
		out = append(out, domregistry.NewRegistryItemView(*it, products[it.ProductID]))
	}
	return out, nil
}

// GetItem hides private items from everyone but the event owner.
func (u Usecases) GetItem(ctx context.Context, callerID, itemID uuid.UUID) (*types.RegistryItemView, error) {
	item, err := u.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsPublic {
		ev, err := u.loadEvent(ctx, item.EventID)
		if err != nil {
			return nil, err
		}
		if callerID == uuid.Nil || ev.UserID != callerID {
			return nil, apierr.NotFound("registry_item_not_found", "registry item not found")
		}
	}
	product, err := u.deps.Products.GetByID(dbctx.Context{Ctx: ctx}, item.ProductID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_product_failed", err)
	}
	view := domregistry.NewRegistryItemView(*item, product)
	return &view, nil
}

func (u Usecases) productsFor(dbc dbctx.Context, items []*types.RegistryItem) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := map[uuid.UUID]bool{}
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	rows, err := u.deps.Products.GetByIDs(dbc, ids)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_products_failed", err)
	}
	out := make(map[uuid.UUID]*catalog.Product, len(rows))
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}
