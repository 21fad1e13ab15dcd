package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(price string, qty int) OrderItem {
	return OrderItem{Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func TestSubtotal(t *testing.T) {
	items := []OrderItem{item("10", 2), item("5.5", 3)}
	assert.True(t, Subtotal(items).Equal(decimal.RequireFromString("36.5")))
}

func TestSubtotalEmpty(t *testing.T) {
	assert.True(t, Subtotal(nil).IsZero())
	assert.True(t, Subtotal([]OrderItem{}).IsZero())
}

func TestComputeTotalsDefaults(t *testing.T) {
	b := ComputeTotals([]OrderItem{item("50", 1)}, TotalsOptions{})

	// 50 + 8% tax + flat shipping
	assert.True(t, b.Subtotal.Equal(decimal.NewFromInt(50)))
	assert.True(t, b.Tax.Equal(decimal.NewFromInt(4)))
	assert.True(t, b.Shipping.Equal(decimal.NewFromInt(10)))
	assert.True(t, b.Total.Equal(decimal.NewFromInt(64)))
}

func TestComputeTotalsFreeShipping(t *testing.T) {
	b := ComputeTotals([]OrderItem{item("150", 1)}, TotalsOptions{})
	assert.True(t, b.Shipping.IsZero())
	assert.True(t, b.Total.Equal(decimal.NewFromInt(162)))
}

func TestComputeTotalsThresholdIsExclusive(t *testing.T) {
	// exactly 100 still pays the flat fee
	b := ComputeTotals([]OrderItem{item("100", 1)}, TotalsOptions{})
	assert.True(t, b.Shipping.Equal(decimal.NewFromInt(10)))
}

func TestComputeTotalsOverrides(t *testing.T) {
	rate := decimal.RequireFromString("0.05")
	shipping := decimal.NewFromInt(25)
	b := ComputeTotals([]OrderItem{item("200", 1)}, TotalsOptions{
		TaxRate:  &rate,
		Shipping: &shipping,
		Discount: decimal.NewFromInt(20),
	})

	require.True(t, b.Tax.Equal(decimal.NewFromInt(10)))
	assert.True(t, b.Total.Equal(decimal.NewFromInt(215)))
}

func TestOrderTotalAbsoluteOverrides(t *testing.T) {
	total := OrderTotal(
		[]OrderItem{item("100", 1)},
		decimal.NewFromInt(10),
		decimal.NewFromInt(8),
	)
	assert.True(t, total.Equal(decimal.NewFromInt(98)))
}

func TestOrderTotalEmptyItems(t *testing.T) {
	total := OrderTotal(nil, decimal.Zero, decimal.Zero)
	assert.True(t, total.IsZero())
}

func TestOrderTotalNotClamped(t *testing.T) {
	total := OrderTotal([]OrderItem{item("10", 1)}, decimal.NewFromInt(50), decimal.Zero)
	assert.True(t, total.Equal(decimal.NewFromInt(-40)))
}
