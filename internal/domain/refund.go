package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Restocking-fee schedule keyed by return reason. Reasons the seller is at
// fault for refund in full; change-of-mind returns carry the highest fee.
var deductionRates = map[ReturnReason]decimal.Decimal{
	ReasonDefective:      decimal.Zero,
	ReasonWrongItem:      decimal.Zero,
	ReasonNotAsDescribed: decimal.Zero,
	ReasonDuplicateOrder: decimal.Zero,
	ReasonLateDelivery:   decimal.Zero,
	ReasonChangedMind:    decimal.NewFromFloat(0.15),
	ReasonSizeIssue:      decimal.NewFromFloat(0.10),
	ReasonOther:          decimal.NewFromFloat(0.10),
}

var defaultDeductionRate = decimal.NewFromFloat(0.10)

// DeductionRate resolves the restocking-fee rate for a reason. Unknown
// reasons fall back to the default partial deduction.
func DeductionRate(reason ReturnReason) decimal.Decimal {
	if rate, ok := deductionRates[reason]; ok {
		return rate
	}
	return defaultDeductionRate
}

// RefundAmount computes the refund for the quantities actually being
// returned, less the reason-based restocking fee.
func RefundAmount(items []ReturnItem, reason ReturnReason) decimal.Decimal {
	return RefundAmountWithRate(items, DeductionRate(reason))
}

// RefundAmountWithRate applies an explicit deduction rate, taking precedence
// over the reason table. The result is never negative.
func RefundAmountWithRate(items []ReturnItem, rate decimal.Decimal) decimal.Decimal {
	base := decimal.Zero
	for _, it := range items {
		base = base.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.ReturnQuantity))))
	}
	refund := base.Sub(base.Mul(rate))
	if refund.IsNegative() {
		return decimal.Zero
	}
	return refund
}

// ItemRefund prices a single return line under the same schedule.
func ItemRefund(it ReturnItem, reason ReturnReason) decimal.Decimal {
	return RefundAmountWithRate([]ReturnItem{it}, DeductionRate(reason))
}

// CheckReturnEligibility decides whether an order may still be returned under
// the policy window. Orders that never reached the customer are never
// eligible.
func CheckReturnEligibility(o *Order, now time.Time, policyDays int) (bool, string) {
	deliveredAt, ok := o.DeliveredAt()
	if !ok {
		return false, "order not delivered"
	}
	deadline := deliveredAt.AddDate(0, 0, policyDays)
	if now.After(deadline) {
		return false, fmt.Sprintf("return period of %d days has expired", policyDays)
	}
	return true, ""
}
