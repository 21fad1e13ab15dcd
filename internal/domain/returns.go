package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReturnStatus string

const (
	ReturnStatusPending     ReturnStatus = "pending"
	ReturnStatusApproved    ReturnStatus = "approved"
	ReturnStatusRejected    ReturnStatus = "rejected"
	ReturnStatusShippedBack ReturnStatus = "shipped_back"
	ReturnStatusReceived    ReturnStatus = "received"
	ReturnStatusRefunded    ReturnStatus = "refunded"
	ReturnStatusCancelled   ReturnStatus = "cancelled"
)

type ReturnReason string

const (
	ReasonDefective      ReturnReason = "defective"
	ReasonWrongItem      ReturnReason = "wrong_item"
	ReasonNotAsDescribed ReturnReason = "not_as_described"
	ReasonSizeIssue      ReturnReason = "size_issue"
	ReasonChangedMind    ReturnReason = "changed_mind"
	ReasonDuplicateOrder ReturnReason = "duplicate_order"
	ReasonLateDelivery   ReturnReason = "late_delivery"
	ReasonOther          ReturnReason = "other"
)

type ReturnItem struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Quantity       int             `json:"quantity"`
	ReturnQuantity int             `json:"return_quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	RefundAmount   decimal.Decimal `json:"refund_amount"`
}

type ReturnRequest struct {
	ID           string          `json:"id"`
	OrderID      uuid.UUID       `json:"order_id"`
	CustomerID   string          `json:"customer_id"`
	Items        []ReturnItem    `json:"items"`
	Reason       ReturnReason    `json:"reason"`
	Description  string          `json:"description,omitempty"`
	Status       ReturnStatus    `json:"status"`
	RefundAmount decimal.Decimal `json:"refund_amount"`

	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	RejectedAt    *time.Time `json:"rejected_at,omitempty"`
	ShippedBackAt *time.Time `json:"shipped_back_at,omitempty"`
	ReceivedAt    *time.Time `json:"received_at,omitempty"`
	RefundedAt    *time.Time `json:"refunded_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
}

// ResolvedAt reports when the request reached a terminal state.
func (r *ReturnRequest) ResolvedAt() (time.Time, bool) {
	switch r.Status {
	case ReturnStatusRefunded:
		if r.RefundedAt != nil {
			return *r.RefundedAt, true
		}
	case ReturnStatusRejected:
		if r.RejectedAt != nil {
			return *r.RejectedAt, true
		}
	case ReturnStatusCancelled:
		if r.CancelledAt != nil {
			return *r.CancelledAt, true
		}
	default:
		return time.Time{}, false
	}
	return r.UpdatedAt, true
}
