package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arnesssr/nextpms-orders/internal/domain"
	"github.com/arnesssr/nextpms-orders/internal/export"
	"github.com/arnesssr/nextpms-orders/internal/logger"
	"github.com/arnesssr/nextpms-orders/internal/repository"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAlreadyExists = errors.New("order already exists")
	ErrInvalidTransition  = errors.New("illegal status transition")
)

// ValidationError carries the full ordered list of rule violations so the
// caller can surface all of them at once.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "order validation failed: " + strings.Join(e.Errors, "; ")
}

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the message emitted for downstream consumers on order writes.
type OrderEvent struct {
	Type           string             `json:"type"`
	OrderID        string             `json:"order_id"`
	CustomerID     string             `json:"customer_id"`
	PreviousStatus domain.OrderStatus `json:"previous_status,omitempty"`
	CurrentStatus  domain.OrderStatus `json:"current_status"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev OrderEvent) error
}

// OrdersService owns the order lifecycle: validation and pricing before any
// write, a read-through cache over the repository, and FSM-checked status
// transitions with audit entries.
type OrdersService struct {
	repo   repository.OrderRepo
	events OrderEventPublisher
	now    func() time.Time

	mu   sync.RWMutex
	byID map[uuid.UUID]*domain.Order
}

func NewOrdersService(r repository.OrderRepo, events OrderEventPublisher) *OrdersService {
	return &OrdersService{
		repo:   r,
		events: events,
		now:    time.Now,
		byID:   make(map[uuid.UUID]*domain.Order),
	}
}

// publish failures are logged and swallowed: the write already happened and
// the event stream is not part of the request contract.
func (s *OrdersService) publish(ctx context.Context, ev OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(ctx, ev); err != nil {
		logger.Warn("publish order event failed", "type", ev.Type, "order_id", ev.OrderID, "err", err)
	}
}

// CreateOrder validates the draft, derives its monetary breakdown, persists
// it and emits order.created. A draft that fails validation is never written.
func (s *OrdersService) CreateOrder(ctx context.Context, o *domain.Order) error {
	res := domain.ValidateOrder(o)
	if !res.Valid {
		return &ValidationError{Errors: res.Errors}
	}

	now := s.now().UTC()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].LineTotal = o.Items[i].UnitPrice.Mul(decimal.NewFromInt(int64(o.Items[i].Quantity)))
	}

	b := domain.ComputeTotals(o.Items, domain.TotalsOptions{Discount: o.Discount})
	o.Subtotal, o.Tax, o.Shipping, o.Total = b.Subtotal, b.Tax, b.Shipping, b.Total

	if o.Status == "" {
		o.Status = domain.OrderStatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = domain.PaymentStatusPending
	}
	o.CreatedAt, o.UpdatedAt = now, now

	if err := s.repo.AddOrder(ctx, o); err != nil {
		if errors.Is(err, repository.ErrOrderAlreadyExists) {
			return ErrOrderAlreadyExists
		}
		return err
	}

	s.mu.Lock()
	s.byID[o.ID] = o
	s.mu.Unlock()

	s.publish(ctx, OrderEvent{
		Type:          EventOrderCreated,
		OrderID:       o.ID.String(),
		CustomerID:    o.CustomerID,
		CurrentStatus: o.Status,
		OccurredAt:    now,
	})
	return nil
}

func (s *OrdersService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	s.mu.RLock()
	if o, ok := s.byID[id]; ok {
		s.mu.RUnlock()
		return o, nil
	}
	s.mu.RUnlock()

	o, err := s.repo.GetOrderById(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, nil
	}

	s.mu.Lock()
	s.byID[o.ID] = o
	s.mu.Unlock()
	return o, nil
}

func (s *OrdersService) ListRecent(ctx context.Context, limit int) ([]*domain.Order, error) {
	return s.repo.ListRecent(ctx, limit)
}

func (s *OrdersService) Timeline(ctx context.Context, id uuid.UUID) ([]domain.TimelineEntry, error) {
	return s.repo.ListTimeline(ctx, id)
}

// UpdateStatusInput describes one requested transition. Shipment is only
// consulted when moving to shipped, to record carrier and tracking data.
type UpdateStatusInput struct {
	ID       uuid.UUID
	To       domain.OrderStatus
	Actor    string
	Note     string
	Shipment *domain.ShipmentInfo
}

// UpdateStatus applies a single fulfillment transition. The FSM is consulted
// first; persistence happens only for legal moves and always carries a
// timeline entry.
func (s *OrdersService) UpdateStatus(ctx context.Context, in UpdateStatusInput) (*domain.Order, error) {
	o, err := s.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	from := o.Status
	if !domain.CanTransition(from, in.To) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, in.To)
	}

	now := s.now().UTC()
	entry := domain.TimelineEntry{
		OrderID:    in.ID,
		FromStatus: from,
		ToStatus:   in.To,
		Actor:      in.Actor,
		Note:       in.Note,
		At:         now,
	}
	if err := s.repo.UpdateStatus(ctx, in.ID, from, in.To, entry); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	shipment := o.Shipment
	if in.To == domain.OrderStatusShipped || in.To == domain.OrderStatusDelivered {
		if in.Shipment != nil {
			shipment = in.Shipment
		}
		if shipment == nil {
			shipment = &domain.ShipmentInfo{}
		}
		if in.To == domain.OrderStatusShipped && shipment.ShippedAt == nil {
			shipment.ShippedAt = &now
		}
		if in.To == domain.OrderStatusDelivered {
			shipment.DeliveredAt = &now
		}
		if err := s.repo.UpsertShipment(ctx, in.ID, *shipment); err != nil {
			return nil, err
		}
	}

	updated := *o
	updated.Status = in.To
	updated.UpdatedAt = now
	updated.Shipment = shipment

	s.mu.Lock()
	s.byID[in.ID] = &updated
	s.mu.Unlock()

	s.publish(ctx, OrderEvent{
		Type:           EventOrderStatusChanged,
		OrderID:        in.ID.String(),
		CustomerID:     o.CustomerID,
		PreviousStatus: from,
		CurrentStatus:  in.To,
		OccurredAt:     now,
	})
	return &updated, nil
}

// BulkUpdateStatus applies the same transition to many orders, collecting
// per-order outcomes. One failing order never aborts the rest.
func (s *OrdersService) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, to domain.OrderStatus, actor string) BatchResult {
	var res BatchResult
	for _, id := range ids {
		_, err := s.UpdateStatus(ctx, UpdateStatusInput{ID: id, To: to, Actor: actor})
		res.add(id.String(), err)
	}
	return res
}

// DeleteOrder is the administrative delete; the schema cascades to items,
// shipment and timeline.
func (s *OrdersService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	s.mu.Lock()
	delete(s.byID, id)
	s.mu.Unlock()
	return nil
}

// ImportOrders ingests rows parsed from an order-list CSV. Row-level checks
// replace full draft validation: imported snapshots carry no items or
// address. Failures are collected per row.
func (s *OrdersService) ImportOrders(ctx context.Context, rows []export.OrderRow) BatchResult {
	var res BatchResult
	for _, row := range rows {
		res.add(row.OrderID, s.importRow(ctx, row))
	}
	return res
}

func (s *OrdersService) importRow(ctx context.Context, row export.OrderRow) error {
	if row.Err != nil {
		return row.Err
	}
	id, err := uuid.Parse(row.OrderID)
	if err != nil {
		return fmt.Errorf("line %d: bad order id %q", row.Line, row.OrderID)
	}
	if strings.TrimSpace(row.CustomerID) == "" {
		return fmt.Errorf("line %d: customer id is required", row.Line)
	}
	switch row.Status {
	case domain.OrderStatusPending, domain.OrderStatusConfirmed, domain.OrderStatusProcessing,
		domain.OrderStatusPacked, domain.OrderStatusShipped, domain.OrderStatusDelivered,
		domain.OrderStatusCancelled:
	default:
		return fmt.Errorf("line %d: unknown status %q", row.Line, row.Status)
	}
	if row.Total.IsNegative() {
		return fmt.Errorf("line %d: negative total", row.Line)
	}

	now := s.now().UTC()
	o := &domain.Order{
		ID:            id,
		CustomerID:    row.CustomerID,
		Status:        row.Status,
		PaymentStatus: domain.PaymentStatusPending,
		Subtotal:      row.Total,
		Total:         row.Total,
		Notes:         "imported",
		CreatedAt:     row.Date,
		UpdatedAt:     now,
	}
	if err := s.repo.AddOrder(ctx, o); err != nil {
		if errors.Is(err, repository.ErrOrderAlreadyExists) {
			return ErrOrderAlreadyExists
		}
		return err
	}

	s.mu.Lock()
	s.byID[o.ID] = o
	s.mu.Unlock()
	return nil
}

// RestoreCache reloads the newest orders into the in-memory map at boot.
func (s *OrdersService) RestoreCache(ctx context.Context, limit int) error {
	orders, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return err
	}

	tmp := make(map[uuid.UUID]*domain.Order, len(orders))
	for _, o := range orders {
		tmp[o.ID] = o
	}

	s.mu.Lock()
	s.byID = tmp
	s.mu.Unlock()
	return nil
}
