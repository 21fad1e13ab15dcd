package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusPacked     OrderStatus = "packed"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentDebitCard      PaymentMethod = "debit_card"
	PaymentPaypal         PaymentMethod = "paypal"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

var paymentMethods = map[PaymentMethod]bool{
	PaymentCreditCard:     true,
	PaymentDebitCard:      true,
	PaymentPaypal:         true,
	PaymentBankTransfer:   true,
	PaymentCashOnDelivery: true,
}

func (m PaymentMethod) Valid() bool {
	return paymentMethods[m]
}

type Address struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// ShipmentInfo is owned by exactly one order; nil until fulfillment ships it.
type ShipmentInfo struct {
	Carrier           string     `json:"carrier"`
	TrackingNumber    string     `json:"tracking_number"`
	ShippedAt         *time.Time `json:"shipped_at,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`
}

// TimelineEntry is the audit record appended on every persisted status change.
type TimelineEntry struct {
	OrderID    uuid.UUID   `json:"order_id"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status"`
	Actor      string      `json:"actor"`
	Note       string      `json:"note,omitempty"`
	At         time.Time   `json:"at"`
}

type Order struct {
	ID              uuid.UUID     `json:"id"`
	CustomerID      string        `json:"customer_id"`
	Items           []OrderItem   `json:"items"`
	ShippingAddress Address       `json:"shipping_address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`

	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`

	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Notes         string        `json:"notes,omitempty"`
	Shipment      *ShipmentInfo `json:"shipment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeliveredAt reports when the order reached the customer. Falls back to the
// last update when a delivered order has no shipment record.
func (o *Order) DeliveredAt() (time.Time, bool) {
	if o.Status != OrderStatusDelivered {
		return time.Time{}, false
	}
	if o.Shipment != nil && o.Shipment.DeliveredAt != nil {
		return *o.Shipment.DeliveredAt, true
	}
	return o.UpdatedAt, true
}
