package domain

import "github.com/shopspring/decimal"

// Pricing policy constants. Shipping is waived above the free-shipping
// threshold, otherwise a flat fee applies.
var (
	DefaultTaxRate        = decimal.NewFromFloat(0.08)
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShippingFee       = decimal.NewFromInt(10)
)

// Breakdown is the monetary decomposition of an order.
type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// TotalsOptions overrides the pricing policy per call. Nil pointers mean
// "use the policy default".
type TotalsOptions struct {
	TaxRate  *decimal.Decimal
	Shipping *decimal.Decimal
	Discount decimal.Decimal
}

// Subtotal sums quantity x unit price across items. Nil or empty yields zero.
func Subtotal(items []OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// ComputeTotals derives the full monetary breakdown under the pricing policy:
// tax as a rate on the subtotal, shipping waived above the threshold, and
// total = subtotal - discount + tax + shipping.
func ComputeTotals(items []OrderItem, opts TotalsOptions) Breakdown {
	sub := Subtotal(items)

	rate := DefaultTaxRate
	if opts.TaxRate != nil {
		rate = *opts.TaxRate
	}
	tax := sub.Mul(rate)

	var shipping decimal.Decimal
	switch {
	case opts.Shipping != nil:
		shipping = *opts.Shipping
	case sub.GreaterThan(FreeShippingThreshold):
		shipping = decimal.Zero
	default:
		shipping = FlatShippingFee
	}

	return Breakdown{
		Subtotal: sub,
		Tax:      tax,
		Shipping: shipping,
		Discount: opts.Discount,
		Total:    sub.Sub(opts.Discount).Add(tax).Add(shipping),
	}
}

// OrderTotal computes subtotal - discount + tax where discount and tax are
// absolute amounts supplied by the caller, not rates. No shipping term and
// no clamping: a discount larger than the subtotal produces a negative
// result, which the validator refuses to persist.
func OrderTotal(items []OrderItem, discount, tax decimal.Decimal) decimal.Decimal {
	return Subtotal(items).Sub(discount).Add(tax)
}
