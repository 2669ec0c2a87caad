package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/savoro-pos/api/internal/enum"
)

// CartLine is one priced line of a cart as seen by the selector.
type CartLine struct {
	MenuItemID uuid.UUID
	Category   string
	Subtotal   decimal.Decimal
}

// Discount is a restaurant's configured discount rule.
type Discount struct {
	ID             uuid.UUID
	ApplyTo        string // enum.DiscountScope*
	TargetCategory string // required when ApplyTo is CATEGORY
	TargetItemID   uuid.UUID // required when ApplyTo is ITEM
	Type           string // enum.DiscountType*
	Value          decimal.Decimal
	Active         bool
	StartsAt       *time.Time
	EndsAt         *time.Time
}

// AppliedDiscount describes the single discount chosen for a cart.
type AppliedDiscount struct {
	DiscountID uuid.UUID
	Type       string
	ApplyTo    string
	Amount     decimal.Decimal
}

// Selection is the selector's result. Applied is nil when nothing matched.
type Selection struct {
	Amount  decimal.Decimal
	Applied *AppliedDiscount
}

// eligibleAt reports whether the discount may apply at time t: active, and
// inside its optional [StartsAt, EndsAt] window (both ends inclusive).
func (d Discount) eligibleAt(t time.Time) bool {
	if !d.Active {
		return false
	}
	if d.StartsAt != nil && t.Before(*d.StartsAt) {
		return false
	}
	if d.EndsAt != nil && t.After(*d.EndsAt) {
		return false
	}
	return true
}

// SelectBest picks the single discount with the strictly greatest monetary
// amount at time at. Discounts never stack. Ties keep the first-encountered
// discount in input order; callers that need a stable outcome must pass
// discounts in a stable order. The returned amount never exceeds subtotal.
func SelectBest(subtotal decimal.Decimal, lines []CartLine, discounts []Discount, at time.Time) Selection {
	none := Selection{Amount: decimal.Zero}
	if subtotal.LessThanOrEqual(decimal.Zero) {
		return none
	}

	best := none
	for _, d := range discounts {
		if !d.eligibleAt(at) || d.Value.LessThanOrEqual(decimal.Zero) {
			continue
		}

		applicable, ok := applicableSubtotal(subtotal, lines, d)
		if !ok {
			continue
		}

		var amount decimal.Decimal
		if d.Type == enum.DiscountTypeFixed {
			amount = decimal.Min(d.Value, applicable)
		} else {
			// Any non-fixed type is treated as a percentage.
			amount = decimal.Min(applicable.Mul(d.Value).Div(decimal.NewFromInt(100)), applicable)
		}
		amount = amount.Round(2)

		if amount.GreaterThan(best.Amount) {
			best = Selection{
				Amount: amount,
				Applied: &AppliedDiscount{
					DiscountID: d.ID,
					Type:       d.Type,
					ApplyTo:    d.ApplyTo,
					Amount:     amount,
				},
			}
		}
	}

	if best.Amount.GreaterThan(subtotal) {
		best.Amount = subtotal
		best.Applied.Amount = subtotal
	}
	return best
}

// applicableSubtotal computes the portion of the cart a discount's scope
// covers. ok is false when the discount is misconfigured for its scope.
func applicableSubtotal(subtotal decimal.Decimal, lines []CartLine, d Discount) (decimal.Decimal, bool) {
	switch d.ApplyTo {
	case enum.DiscountScopeAll:
		return subtotal, true

	case enum.DiscountScopeCategory:
		if d.TargetCategory == "" {
			return decimal.Zero, false
		}
		sum := decimal.Zero
		for _, line := range lines {
			if line.Category == d.TargetCategory {
				sum = sum.Add(line.Subtotal)
			}
		}
		return sum, true

	case enum.DiscountScopeItem:
		if d.TargetItemID == uuid.Nil {
			return decimal.Zero, false
		}
		sum := decimal.Zero
		for _, line := range lines {
			if line.MenuItemID == d.TargetItemID {
				sum = sum.Add(line.Subtotal)
			}
		}
		if sum.IsZero() {
			return decimal.Zero, false
		}
		return sum, true
	}
	return decimal.Zero, false
}
