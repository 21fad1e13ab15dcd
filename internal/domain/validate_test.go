package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validOrder() *Order {
	return &Order{
		CustomerID: "cust-1",
		Items:      []OrderItem{item("19.99", 2)},
		ShippingAddress: Address{
			Name:   "Jane Doe",
			Street: "1 Main St",
			City:   "Springfield",
			State:  "IL",
			Zip:    "62704",
		},
		PaymentMethod: PaymentCreditCard,
	}
}

func TestValidateOrderOK(t *testing.T) {
	res := ValidateOrder(validOrder())
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateOrderCollectsAllViolations(t *testing.T) {
	res := ValidateOrder(&Order{})

	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "Customer ID is required")
	assert.Contains(t, res.Errors, "Order must have at least one item")
	assert.Contains(t, res.Errors, "Street address is required")
	assert.Contains(t, res.Errors, "City is required")
	assert.Contains(t, res.Errors, "State is required")
	assert.Contains(t, res.Errors, "ZIP code is required")
	assert.Contains(t, res.Errors, "Payment method is required")
}

func TestValidateOrderZip(t *testing.T) {
	cases := []struct {
		zip   string
		valid bool
	}{
		{"62704", true},
		{"62704-1234", true},
		{"123", false},
		{"abcde", false},
		{"62704-12", false},
	}
	for _, tc := range cases {
		o := validOrder()
		o.ShippingAddress.Zip = tc.zip
		res := ValidateOrder(o)
		if tc.valid {
			assert.True(t, res.Valid, "zip %q", tc.zip)
		} else {
			assert.Contains(t, res.Errors, "Invalid ZIP code format", "zip %q", tc.zip)
		}
	}
}

func TestValidateOrderPaymentMethod(t *testing.T) {
	o := validOrder()
	o.PaymentMethod = "bitcoin"
	res := ValidateOrder(o)
	assert.Contains(t, res.Errors, "Invalid payment method")

	for _, m := range []PaymentMethod{
		PaymentCreditCard, PaymentDebitCard, PaymentPaypal,
		PaymentBankTransfer, PaymentCashOnDelivery,
	} {
		o := validOrder()
		o.PaymentMethod = m
		assert.True(t, ValidateOrder(o).Valid, "method %q", m)
	}
}

func TestValidateOrderItemRules(t *testing.T) {
	o := validOrder()
	o.Items = []OrderItem{
		item("10", 0),
		{Quantity: 1, UnitPrice: decimal.Zero},
	}
	res := ValidateOrder(o)

	assert.Contains(t, res.Errors, "Item 1: Quantity must be greater than 0")
	assert.Contains(t, res.Errors, "Item 2: Unit price must be greater than 0")
}

func TestValidateOrderExcessiveDiscount(t *testing.T) {
	o := validOrder()
	o.Discount = decimal.NewFromInt(10_000)
	res := ValidateOrder(o)
	assert.Contains(t, res.Errors, "Discount cannot exceed order total")
}
