package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func retItem(price string, qty, returnQty int) ReturnItem {
	return ReturnItem{
		Quantity:       qty,
		ReturnQuantity: returnQty,
		UnitPrice:      decimal.RequireFromString(price),
	}
}

func TestRefundFullQuantity(t *testing.T) {
	items := []ReturnItem{retItem("50", 2, 2), retItem("30", 1, 1)}
	got := RefundAmount(items, ReasonDefective)
	assert.True(t, got.Equal(decimal.NewFromInt(130)))
}

func TestRefundPartialQuantity(t *testing.T) {
	// 1 of 2 units at $50 returned, 0 of 1 unit at $30
	items := []ReturnItem{retItem("50", 2, 1), retItem("30", 1, 0)}
	got := RefundAmount(items, ReasonWrongItem)
	assert.True(t, got.Equal(decimal.NewFromInt(50)))
}

func TestRefundExplicitRateOverride(t *testing.T) {
	items := []ReturnItem{retItem("100", 1, 1)}
	got := RefundAmountWithRate(items, decimal.RequireFromString("0.15"))
	assert.True(t, got.Equal(decimal.NewFromInt(85)))
}

func TestDeductionSchedule(t *testing.T) {
	full := []ReturnReason{
		ReasonDefective, ReasonWrongItem, ReasonNotAsDescribed,
		ReasonDuplicateOrder, ReasonLateDelivery,
	}
	for _, r := range full {
		assert.True(t, DeductionRate(r).IsZero(), "reason %q", r)
	}
	assert.True(t, DeductionRate(ReasonChangedMind).Equal(decimal.RequireFromString("0.15")))
	assert.True(t, DeductionRate(ReasonSizeIssue).Equal(decimal.RequireFromString("0.1")))
	assert.True(t, DeductionRate(ReasonOther).Equal(decimal.RequireFromString("0.1")))
	assert.True(t, DeductionRate("no_such_reason").Equal(decimal.RequireFromString("0.1")))
}

func TestRefundNeverNegative(t *testing.T) {
	items := []ReturnItem{retItem("10", 1, 1)}
	got := RefundAmountWithRate(items, decimal.NewFromInt(2))
	assert.True(t, got.IsZero())
}

func TestRefundEmptyItems(t *testing.T) {
	assert.True(t, RefundAmount(nil, ReasonOther).IsZero())
}

func deliveredOrder(daysAgo int, now time.Time) *Order {
	at := now.AddDate(0, 0, -daysAgo)
	return &Order{
		Status:    OrderStatusDelivered,
		CreatedAt: at.AddDate(0, 0, -2),
		UpdatedAt: at,
		Shipment:  &ShipmentInfo{DeliveredAt: &at},
	}
}

func TestReturnEligibilityWithinWindow(t *testing.T) {
	now := time.Now()
	ok, reason := CheckReturnEligibility(deliveredOrder(7, now), now, 30)
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestReturnEligibilityExpired(t *testing.T) {
	now := time.Now()
	ok, reason := CheckReturnEligibility(deliveredOrder(45, now), now, 30)
	assert.False(t, ok)
	assert.Contains(t, reason, "return period")
}

func TestReturnEligibilityNotDelivered(t *testing.T) {
	now := time.Now()
	o := &Order{Status: OrderStatusShipped, CreatedAt: now, UpdatedAt: now}
	ok, reason := CheckReturnEligibility(o, now, 30)
	assert.False(t, ok)
	assert.Contains(t, reason, "not delivered")
}
