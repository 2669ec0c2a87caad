package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/savoro-pos/api/internal/database"
	"github.com/savoro-pos/api/internal/pricing"
)

var (
	ErrTableNotFound       = errors.New("table not found")
	ErrEmptyCart           = errors.New("cart must have at least one item")
	ErrInvalidTableID      = errors.New("invalid table_id")
	ErrInvalidMenuItemID   = errors.New("invalid menu_item_id")
	ErrInvalidQuantity     = errors.New("quantity must be > 0")
	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrMenuItemUnavailable = errors.New("menu item unavailable")
)

// PricingStore defines the read-only DB methods cart settlement needs.
type PricingStore interface {
	GetActiveTable(ctx context.Context, id uuid.UUID) (database.RestaurantTable, error)
	GetMenuItemsByIDs(ctx context.Context, arg database.GetMenuItemsByIDsParams) ([]database.MenuItem, error)
	ListActiveDiscountsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.Discount, error)
}

// PricingService computes order quotes without writing anything.
type PricingService struct {
	store PricingStore
}

func NewPricingService(store PricingStore) *PricingService {
	return &PricingService{store: store}
}

// CartItemInput is one requested line of a customer cart. IDs arrive as
// strings from JSON bodies and are validated here.
type CartItemInput struct {
	MenuItemID string
	Quantity   int32
}

// PreviewRequest is a public pricing preview for a table's cart.
type PreviewRequest struct {
	TableID string
	Items   []CartItemInput
}

// PricedLine is one cart line with the menu price frozen at quote time.
type PricedLine struct {
	MenuItemID uuid.UUID
	Name       string
	Category   string
	UnitPrice  decimal.Decimal
	Quantity   int32
	Subtotal   decimal.Decimal
}

// Quote is a fully settled cart: frozen lines, the single best discount,
// and the derived VAT, tip, total, and commission amounts.
type Quote struct {
	RestaurantID uuid.UUID
	TableID      uuid.UUID
	Lines        []PricedLine
	Subtotal     decimal.Decimal
	Discount     pricing.Selection
	Totals       pricing.Totals
}

// PreviewPricing quotes a cart against current menu prices and active
// discounts. Read-only: the quote is not persisted and stock is untouched.
func (s *PricingService) PreviewPricing(ctx context.Context, req PreviewRequest) (*Quote, error) {
	tableID, err := uuid.Parse(req.TableID)
	if err != nil {
		return nil, ErrInvalidTableID
	}

	table, err := s.store.GetActiveTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("get table: %w", err)
	}

	return priceCart(ctx, s.store, table, req.Items, time.Now())
}

// priceCart resolves cart items to menu rows, freezes unit prices, selects
// the single best discount and computes totals. Shared by the public
// preview and by order placement, which runs it inside its transaction so
// the persisted order matches what a concurrent preview would have quoted.
func priceCart(ctx context.Context, store PricingStore, table database.RestaurantTable, items []CartItemInput, at time.Time) (*Quote, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]uuid.UUID, 0, len(items))
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		id, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidMenuItemID)
		}
		ids = append(ids, id)
	}

	menuItems, err := store.GetMenuItemsByIDs(ctx, database.GetMenuItemsByIDsParams{
		RestaurantID: table.RestaurantID,
		IDs:          ids,
	})
	if err != nil {
		return nil, fmt.Errorf("get menu items: %w", err)
	}

	byID := make(map[uuid.UUID]database.MenuItem, len(menuItems))
	for _, m := range menuItems {
		byID[m.ID] = m
	}

	lines := make([]PricedLine, 0, len(items))
	cartLines := make([]pricing.CartLine, 0, len(items))
	subtotal := decimal.Zero
	for i, item := range items {
		m, ok := byID[ids[i]]
		if !ok {
			return nil, fmt.Errorf("items[%d] (%s): %w", i, item.MenuItemID, ErrMenuItemNotFound)
		}
		if !m.IsAvailable {
			return nil, fmt.Errorf("items[%d] (%s): %w", i, m.Name, ErrMenuItemUnavailable)
		}

		unitPrice := numericToDecimal(m.Price)
		lineSubtotal := unitPrice.Mul(decimal.NewFromInt32(item.Quantity))
		lines = append(lines, PricedLine{
			MenuItemID: m.ID,
			Name:       m.Name,
			Category:   m.Category,
			UnitPrice:  unitPrice,
			Quantity:   item.Quantity,
			Subtotal:   lineSubtotal,
		})
		cartLines = append(cartLines, pricing.CartLine{
			MenuItemID: m.ID,
			Category:   m.Category,
			Subtotal:   lineSubtotal,
		})
		subtotal = subtotal.Add(lineSubtotal)
	}

	discounts, err := store.ListActiveDiscountsByRestaurant(ctx, table.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}

	selection := pricing.SelectBest(subtotal, cartLines, toPricingDiscounts(discounts), at)
	totals := pricing.CalculateTotals(subtotal.Sub(selection.Amount))

	return &Quote{
		RestaurantID: table.RestaurantID,
		TableID:      table.ID,
		Lines:        lines,
		Subtotal:     subtotal,
		Discount:     selection,
		Totals:       totals,
	}, nil
}

// toPricingDiscounts maps DB discount rows to the selector's value type.
// ListActiveDiscountsByRestaurant already filters on is_active; the time
// window is evaluated by the selector against the quote time.
func toPricingDiscounts(rows []database.Discount) []pricing.Discount {
	out := make([]pricing.Discount, 0, len(rows))
	for _, row := range rows {
		d := pricing.Discount{
			ID:      row.ID,
			ApplyTo: string(row.ApplyTo),
			Type:    string(row.DiscountType),
			Value:   numericToDecimal(row.Value),
			Active:  row.IsActive,
		}
		if row.TargetCategory.Valid {
			d.TargetCategory = row.TargetCategory.String
		}
		if row.TargetItemID.Valid {
			d.TargetItemID = row.TargetItemID.Bytes
		}
		if row.StartsAt.Valid {
			t := row.StartsAt.Time
			d.StartsAt = &t
		}
		if row.EndsAt.Valid {
			t := row.EndsAt.Time
			d.EndsAt = &t
		}
		out = append(out, d)
	}
	return out
}
