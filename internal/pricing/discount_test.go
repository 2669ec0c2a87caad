package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/savoro-pos/api/internal/enum"
)

var (
	itemA = uuid.New()
	itemB = uuid.New()
)

// cart: 2x item A ("mains", 500 each) + 1x item B ("drinks", 200).
func testCart() (decimal.Decimal, []CartLine) {
	lines := []CartLine{
		{MenuItemID: itemA, Category: "mains", Subtotal: dec("1000")},
		{MenuItemID: itemB, Category: "drinks", Subtotal: dec("200")},
	}
	return dec("1200"), lines
}

func TestSelectBest_CategoryPercentage(t *testing.T) {
	subtotal, lines := testCart()
	discounts := []Discount{{
		ID:             uuid.New(),
		ApplyTo:        enum.DiscountScopeCategory,
		TargetCategory: "mains",
		Type:           enum.DiscountTypePercentage,
		Value:          dec("20"),
		Active:         true,
	}}

	sel := SelectBest(subtotal, lines, discounts, time.Now())

	if !sel.Amount.Equal(dec("200")) {
		t.Errorf("amount: got %s, want 200 (20%% of the 1000 mains portion)", sel.Amount)
	}
	if sel.Applied == nil || sel.Applied.ApplyTo != enum.DiscountScopeCategory {
		t.Errorf("applied: got %+v", sel.Applied)
	}
}

func TestSelectBest_ItemFixed(t *testing.T) {
	subtotal, lines := testCart()
	discounts := []Discount{{
		ID:           uuid.New(),
		ApplyTo:      enum.DiscountScopeItem,
		TargetItemID: itemB,
		Type:         enum.DiscountTypeFixed,
		Value:        dec("50"),
		Active:       true,
	}}

	sel := SelectBest(subtotal, lines, discounts, time.Now())

	if !sel.Amount.Equal(dec("50")) {
		t.Errorf("amount: got %s, want 50 (fixed, applicable 200)", sel.Amount)
	}
}

func TestSelectBest_NoStacking(t *testing.T) {
	subtotal, lines := testCart()
	discounts := []Discount{
		{
			ID:      uuid.New(),
			ApplyTo: enum.DiscountScopeAll,
			Type:    enum.DiscountTypePercentage,
			Value:   dec("10"), // 120
			Active:  true,
		},
		{
			ID:             uuid.New(),
			ApplyTo:        enum.DiscountScopeCategory,
			TargetCategory: "mains",
			Type:           enum.DiscountTypePercentage,
			Value:          dec("20"), // 200
			Active:         true,
		},
	}

	sel := SelectBest(subtotal, lines, discounts, time.Now())

	// The larger of the two, never their sum.
	if !sel.Amount.Equal(dec("200")) {
		t.Errorf("amount: got %s, want 200", sel.Amount)
	}
	if sel.Applied.DiscountID != discounts[1].ID {
		t.Error("expected the category discount to win")
	}
}

func TestSelectBest_TieKeepsFirstEncountered(t *testing.T) {
	subtotal, lines := testCart()
	discounts := []Discount{
		{
			ID:      uuid.New(),
			ApplyTo: enum.DiscountScopeAll,
			Type:    enum.DiscountTypeFixed,
			Value:   dec("100"),
			Active:  true,
		},
		{
			ID:      uuid.New(),
			ApplyTo: enum.DiscountScopeAll,
			Type:    enum.DiscountTypeFixed,
			Value:   dec("100"),
			Active:  true,
		},
	}

	sel := SelectBest(subtotal, lines, discounts, time.Now())

	if sel.Applied == nil || sel.Applied.DiscountID != discounts[0].ID {
		t.Error("equal amounts must keep the first-encountered discount")
	}
}

func TestSelectBest_NeverExceedsSubtotal(t *testing.T) {
	subtotal, lines := testCart()
	discounts := []Discount{
		{ID: uuid.New(), ApplyTo: enum.DiscountScopeAll, Type: enum.DiscountTypeFixed, Value: dec("99999"), Active: true},
		{ID: uuid.New(), ApplyTo: enum.DiscountScopeAll, Type: enum.DiscountTypePercentage, Value: dec("250"), Active: true},
	}

	sel := SelectBest(subtotal, lines, discounts, time.Now())

	if sel.Amount.GreaterThan(subtotal) {
		t.Errorf("amount %s exceeds subtotal %s", sel.Amount, subtotal)
	}
	if sel.Amount.IsNegative() {
		t.Errorf("amount %s is negative", sel.Amount)
	}
}

func TestSelectBest_TimeWindow(t *testing.T) {
	subtotal, lines := testCart()
	now := time.Now()
	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)

	cases := []struct {
		name     string
		startsAt *time.Time
		endsAt   *time.Time
		want     bool
	}{
		{"open window", nil, nil, true},
		{"inside window", &past, &future, true},
		{"not started", &future, nil, false},
		{"expired", nil, &past, false},
		{"boundary inclusive", &now, &now, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			discounts := []Discount{{
				ID:       uuid.New(),
				ApplyTo:  enum.DiscountScopeAll,
				Type:     enum.DiscountTypeFixed,
				Value:    dec("10"),
				Active:   true,
				StartsAt: tc.startsAt,
				EndsAt:   tc.endsAt,
			}}

			sel := SelectBest(subtotal, lines, discounts, now)
			if got := sel.Applied != nil; got != tc.want {
				t.Errorf("applied: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSelectBest_SkipsMisconfiguredAndInactive(t *testing.T) {
	subtotal, lines := testCart()
	discounts := []Discount{
		// inactive
		{ID: uuid.New(), ApplyTo: enum.DiscountScopeAll, Type: enum.DiscountTypeFixed, Value: dec("10")},
		// category scope without a target
		{ID: uuid.New(), ApplyTo: enum.DiscountScopeCategory, Type: enum.DiscountTypeFixed, Value: dec("10"), Active: true},
		// item scope targeting an item not in the cart
		{ID: uuid.New(), ApplyTo: enum.DiscountScopeItem, TargetItemID: uuid.New(), Type: enum.DiscountTypeFixed, Value: dec("10"), Active: true},
		// non-positive value
		{ID: uuid.New(), ApplyTo: enum.DiscountScopeAll, Type: enum.DiscountTypeFixed, Value: decimal.Zero, Active: true},
	}

	sel := SelectBest(subtotal, lines, discounts, time.Now())

	if sel.Applied != nil {
		t.Errorf("expected no discount, got %+v", sel.Applied)
	}
	if !sel.Amount.IsZero() {
		t.Errorf("amount: got %s, want 0", sel.Amount)
	}
}

func TestSelectBest_ZeroSubtotal(t *testing.T) {
	discounts := []Discount{{
		ID:      uuid.New(),
		ApplyTo: enum.DiscountScopeAll,
		Type:    enum.DiscountTypeFixed,
		Value:   dec("10"),
		Active:  true,
	}}

	sel := SelectBest(decimal.Zero, nil, discounts, time.Now())

	if sel.Applied != nil || !sel.Amount.IsZero() {
		t.Errorf("expected empty selection, got %s / %+v", sel.Amount, sel.Applied)
	}
}

func TestSelectBest_ScenarioDiscountedTotals(t *testing.T) {
	// End-to-end check of the worked scenario: 20% off "mains" on the test
	// cart, then totals over the discounted subtotal.
	subtotal, lines := testCart()
	discounts := []Discount{{
		ID:             uuid.New(),
		ApplyTo:        enum.DiscountScopeCategory,
		TargetCategory: "mains",
		Type:           enum.DiscountTypePercentage,
		Value:          dec("20"),
		Active:         true,
	}}

	sel := SelectBest(subtotal, lines, discounts, time.Now())
	totals := CalculateTotals(subtotal.Sub(sel.Amount))

	if !totals.Subtotal.Equal(dec("1000")) {
		t.Errorf("discounted subtotal: got %s, want 1000", totals.Subtotal)
	}
	if !totals.VatAmount.Equal(dec("100")) || !totals.TipAmount.Equal(dec("30")) {
		t.Errorf("vat/tip: got %s/%s, want 100/30", totals.VatAmount, totals.TipAmount)
	}
	if !totals.Total.Equal(dec("1130")) {
		t.Errorf("total: got %s, want 1130", totals.Total)
	}
}
