package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnesssr/nextpms-orders/internal/domain"
)

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID:         uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		CustomerID: "cust-42",
		Status:     domain.OrderStatusShipped,
		Total:      decimal.RequireFromString("36.5"),
		CreatedAt:  time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestWriteOrdersHeaderAndMoneyFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOrders(&buf, []*domain.Order{sampleOrder()}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Order ID,Customer ID,Date,Status,Total", lines[0])
	assert.Contains(t, lines[1], "$36.50")
	assert.Contains(t, lines[1], "2026-08-15")
}

func TestOrdersRoundTripWithComma(t *testing.T) {
	o := sampleOrder()
	o.CustomerID = "Customer, Inc."

	var buf bytes.Buffer
	require.NoError(t, WriteOrders(&buf, []*domain.Order{o}))
	assert.Contains(t, buf.String(), `"Customer, Inc."`)

	rows, err := ReadOrders(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NoError(t, rows[0].Err)
	assert.Equal(t, "Customer, Inc.", rows[0].CustomerID)
	assert.Equal(t, o.ID.String(), rows[0].OrderID)
	assert.True(t, rows[0].Total.Equal(o.Total))
}

func TestReadOrdersBadHeader(t *testing.T) {
	_, err := ReadOrders(strings.NewReader("Nope,Nope,Nope,Nope,Nope\n"))
	assert.Error(t, err)
}

func TestReadOrdersCollectsRowErrors(t *testing.T) {
	in := "Order ID,Customer ID,Date,Status,Total\n" +
		"id-1,cust-1,2026-08-15,pending,$10.00\n" +
		"id-2,cust-2,not-a-date,pending,$10.00\n" +
		"id-3,cust-3,2026-08-16,pending,$oops\n"

	rows, err := ReadOrders(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.NoError(t, rows[0].Err)
	assert.Error(t, rows[1].Err)
	assert.Error(t, rows[2].Err)
}

func TestWriteFulfillment(t *testing.T) {
	shippedAt := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	o := sampleOrder()
	o.Items = []domain.OrderItem{{Quantity: 2}, {Quantity: 1}}
	o.Shipment = &domain.ShipmentInfo{
		Carrier:        "UPS",
		TrackingNumber: "1Z999",
		ShippedAt:      &shippedAt,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFulfillment(&buf, []*domain.Order{o, sampleOrder()}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t,
		"Order ID,Customer,Status,Items Count,Total Amount,Order Date,Carrier,Tracking Number,Shipped Date",
		lines[0])
	assert.Contains(t, lines[1], "UPS")
	assert.Contains(t, lines[1], "1Z999")
	assert.Contains(t, lines[1], "2026-08-20")
	// no shipment: carrier columns stay empty
	assert.True(t, strings.HasSuffix(lines[2], ",,,"))
}

func TestWriteReturns(t *testing.T) {
	r := &domain.ReturnRequest{
		ID:           "ret_01J0000000000000000000000",
		OrderID:      uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		CustomerID:   "cust-42",
		Status:       domain.ReturnStatusRefunded,
		Reason:       domain.ReasonDefective,
		Items:        []domain.ReturnItem{{ReturnQuantity: 1}},
		RefundAmount: decimal.NewFromInt(85),
		CreatedAt:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReturns(&buf, []*domain.ReturnRequest{r}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"Return ID,Order ID,Customer ID,Status,Reason,Items Count,Total Refund,Created Date,Updated Date",
		lines[0])
	assert.Contains(t, lines[1], "$85.00")
	assert.Contains(t, lines[1], "defective")
}
