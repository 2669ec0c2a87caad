package pricing

import "github.com/shopspring/decimal"

// Platform-wide settlement rates. Commission applies to the order total
// (subtotal + VAT + tip), not the subtotal.
var (
	vatRate        = decimal.NewFromFloat(0.10)
	tipRate        = decimal.NewFromFloat(0.03)
	commissionRate = decimal.NewFromFloat(0.05)
)

// CommissionRatePercent is the commission rate as a percentage, stored on
// orders so historical rows keep the rate they were settled under.
var CommissionRatePercent = decimal.NewFromInt(5)

type Totals struct {
	Subtotal         decimal.Decimal
	VatAmount        decimal.Decimal
	TipAmount        decimal.Decimal
	Total            decimal.Decimal
	CommissionRate   decimal.Decimal
	CommissionAmount decimal.Decimal
}

// CalculateTotals computes VAT, tip, total, and platform commission from a
// non-negative discount-adjusted subtotal. VAT and tip are rounded to whole
// currency units before being summed into the total; commission is rounded
// to two decimal places from that total. Pure arithmetic, no I/O.
func CalculateTotals(discountedSubtotal decimal.Decimal) Totals {
	vat := discountedSubtotal.Mul(vatRate).Round(0)
	tip := discountedSubtotal.Mul(tipRate).Round(0)
	total := discountedSubtotal.Add(vat).Add(tip)
	commission := total.Mul(commissionRate).Round(2)

	return Totals{
		Subtotal:         discountedSubtotal,
		VatAmount:        vat,
		TipAmount:        tip,
		Total:            total,
		CommissionRate:   CommissionRatePercent,
		CommissionAmount: commission,
	}
}
