package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAggregateOrdersEmpty(t *testing.T) {
	m := AggregateOrders(nil)
	assert.Zero(t, m.TotalOrders)
	assert.True(t, m.Revenue.IsZero())
	assert.Zero(t, m.AvgFulfillmentDays)
	assert.Empty(t, m.ByStatus)
}

func TestAggregateOrders(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	deliveredAt2 := base.AddDate(0, 0, 2)
	deliveredAt4 := base.AddDate(0, 0, 4)

	orders := []*Order{
		{
			Status:    OrderStatusDelivered,
			Total:     decimal.NewFromInt(100),
			CreatedAt: base,
			Shipment:  &ShipmentInfo{DeliveredAt: &deliveredAt2},
		},
		{
			Status:    OrderStatusDelivered,
			Total:     decimal.NewFromInt(50),
			CreatedAt: base,
			Shipment:  &ShipmentInfo{DeliveredAt: &deliveredAt4},
		},
		{Status: OrderStatusShipped, Total: decimal.NewFromInt(25), CreatedAt: base},
		{Status: OrderStatusCancelled, Total: decimal.NewFromInt(999), CreatedAt: base},
	}

	m := AggregateOrders(orders)

	assert.Equal(t, 4, m.TotalOrders)
	assert.Equal(t, 2, m.ByStatus[OrderStatusDelivered])
	assert.Equal(t, 1, m.ByStatus[OrderStatusShipped])
	assert.Equal(t, 1, m.ByStatus[OrderStatusCancelled])

	// cancelled orders do not count toward revenue
	assert.True(t, m.Revenue.Equal(decimal.NewFromInt(175)))

	// in-flight orders are excluded from the average, not counted as zero
	assert.InDelta(t, 3.0, m.AvgFulfillmentDays, 1e-9)
}

func TestAggregateReturns(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	refundedAt := base.AddDate(0, 0, 6)

	returns := []*ReturnRequest{
		{
			Status:       ReturnStatusRefunded,
			RefundAmount: decimal.NewFromInt(80),
			CreatedAt:    base,
			RefundedAt:   &refundedAt,
		},
		{Status: ReturnStatusPending, RefundAmount: decimal.NewFromInt(40), CreatedAt: base},
	}

	m := AggregateReturns(returns)

	assert.Equal(t, 2, m.TotalReturns)
	assert.Equal(t, 1, m.ByStatus[ReturnStatusRefunded])
	assert.Equal(t, 1, m.ByStatus[ReturnStatusPending])
	assert.True(t, m.RefundTotal.Equal(decimal.NewFromInt(80)))
	assert.InDelta(t, 6.0, m.AvgProcessingDays, 1e-9)
}

func TestAggregateReturnsEmpty(t *testing.T) {
	m := AggregateReturns([]*ReturnRequest{})
	assert.Zero(t, m.TotalReturns)
	assert.True(t, m.RefundTotal.IsZero())
	assert.Zero(t, m.AvgProcessingDays)
}
