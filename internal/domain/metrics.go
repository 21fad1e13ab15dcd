package domain

import "github.com/shopspring/decimal"

const hoursPerDay = 24

// OrderMetrics is a dashboard summary folded from a set of orders.
type OrderMetrics struct {
	TotalOrders        int                 `json:"total_orders"`
	ByStatus           map[OrderStatus]int `json:"by_status"`
	Revenue            decimal.Decimal     `json:"revenue"`
	AvgFulfillmentDays float64             `json:"avg_fulfillment_days"`
}

// ReturnMetrics summarizes a set of return requests.
type ReturnMetrics struct {
	TotalReturns      int                  `json:"total_returns"`
	ByStatus          map[ReturnStatus]int `json:"by_status"`
	RefundTotal       decimal.Decimal      `json:"refund_total"`
	AvgProcessingDays float64              `json:"avg_processing_days"`
}

// AggregateOrders folds orders into per-status counts, a revenue sum over
// non-cancelled orders, and the average days from creation to delivery.
// Orders still in flight are excluded from the average, not counted as zero.
func AggregateOrders(orders []*Order) OrderMetrics {
	m := OrderMetrics{
		ByStatus: make(map[OrderStatus]int),
		Revenue:  decimal.Zero,
	}

	var days float64
	var delivered int
	for _, o := range orders {
		m.TotalOrders++
		m.ByStatus[o.Status]++
		if o.Status != OrderStatusCancelled {
			m.Revenue = m.Revenue.Add(o.Total)
		}
		if at, ok := o.DeliveredAt(); ok {
			days += at.Sub(o.CreatedAt).Hours() / hoursPerDay
			delivered++
		}
	}
	if delivered > 0 {
		m.AvgFulfillmentDays = days / float64(delivered)
	}
	return m
}

// AggregateReturns folds return requests into per-status counts, the refunded
// amount sum, and the average days from request to a terminal state.
func AggregateReturns(returns []*ReturnRequest) ReturnMetrics {
	m := ReturnMetrics{
		ByStatus:    make(map[ReturnStatus]int),
		RefundTotal: decimal.Zero,
	}

	var days float64
	var resolved int
	for _, r := range returns {
		m.TotalReturns++
		m.ByStatus[r.Status]++
		if r.Status == ReturnStatusRefunded {
			m.RefundTotal = m.RefundTotal.Add(r.RefundAmount)
		}
		if at, ok := r.ResolvedAt(); ok {
			days += at.Sub(r.CreatedAt).Hours() / hoursPerDay
			resolved++
		}
	}
	if resolved > 0 {
		m.AvgProcessingDays = days / float64(resolved)
	}
	return m
}
