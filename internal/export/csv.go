// Package export renders orders, fulfillment and returns as CSV for the
// dashboard download buttons, and parses the order shape back for bulk
// import.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arnesssr/nextpms-orders/internal/domain"
)

const dateLayout = "2006-01-02"

var (
	orderHeader = []string{"Order ID", "Customer ID", "Date", "Status", "Total"}

	fulfillmentHeader = []string{
		"Order ID", "Customer", "Status", "Items Count", "Total Amount",
		"Order Date", "Carrier", "Tracking Number", "Shipped Date",
	}

	returnHeader = []string{
		"Return ID", "Order ID", "Customer ID", "Status", "Reason",
		"Items Count", "Total Refund", "Created Date", "Updated Date",
	}
)

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func parseMoney(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(s), "$"))
}

// WriteOrders emits the order-list CSV. Fields containing commas are quoted
// by the encoder and survive a round-trip through ReadOrders unchanged.
func WriteOrders(w io.Writer, orders []*domain.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(orderHeader); err != nil {
		return err
	}
	for _, o := range orders {
		rec := []string{
			o.ID.String(),
			o.CustomerID,
			o.CreatedAt.Format(dateLayout),
			string(o.Status),
			money(o.Total),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFulfillment emits the fulfillment view with carrier and tracking
// columns; orders without a shipment leave those columns empty.
func WriteFulfillment(w io.Writer, orders []*domain.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fulfillmentHeader); err != nil {
		return err
	}
	for _, o := range orders {
		var carrier, tracking, shippedAt string
		if o.Shipment != nil {
			carrier = o.Shipment.Carrier
			tracking = o.Shipment.TrackingNumber
			if o.Shipment.ShippedAt != nil {
				shippedAt = o.Shipment.ShippedAt.Format(dateLayout)
			}
		}
		rec := []string{
			o.ID.String(),
			o.CustomerID,
			string(o.Status),
			strconv.Itoa(len(o.Items)),
			money(o.Total),
			o.CreatedAt.Format(dateLayout),
			carrier,
			tracking,
			shippedAt,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReturns emits the return-request view.
func WriteReturns(w io.Writer, returns []*domain.ReturnRequest) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(returnHeader); err != nil {
		return err
	}
	for _, r := range returns {
		rec := []string{
			r.ID,
			r.OrderID.String(),
			r.CustomerID,
			string(r.Status),
			string(r.Reason),
			strconv.Itoa(len(r.Items)),
			money(r.RefundAmount),
			r.CreatedAt.Format(dateLayout),
			r.UpdatedAt.Format(dateLayout),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// OrderRow is one parsed line of an imported order CSV. Rows that fail to
// parse carry Err and keep their line number so the caller can report
// per-row outcomes without aborting the batch.
type OrderRow struct {
	Line       int
	OrderID    string
	CustomerID string
	Date       time.Time
	Status     domain.OrderStatus
	Total      decimal.Decimal
	Err        error
}

// ReadOrders parses the order-list CSV shape. The returned error covers only
// the header and I/O failures; malformed data rows are returned with Err set.
func ReadOrders(r io.Reader) ([]OrderRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(orderHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, want := range orderHeader {
		if strings.TrimSpace(header[i]) != want {
			return nil, fmt.Errorf("unexpected csv header %q, want %q", header[i], want)
		}
	}

	var rows []OrderRow
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rows = append(rows, OrderRow{Line: line, Err: err})
			continue
		}
		row := OrderRow{
			Line:       line,
			OrderID:    rec[0],
			CustomerID: rec[1],
			Status:     domain.OrderStatus(rec[3]),
		}
		if row.Date, err = time.Parse(dateLayout, rec[2]); err != nil {
			row.Err = fmt.Errorf("line %d: bad date %q", line, rec[2])
		} else if row.Total, err = parseMoney(rec[4]); err != nil {
			row.Err = fmt.Errorf("line %d: bad total %q", line, rec[4])
		}
		rows = append(rows, row)
	}
	return rows, nil
}
