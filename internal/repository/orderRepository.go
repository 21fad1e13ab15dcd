package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arnesssr/nextpms-orders/internal/domain"
)

var (
	ErrOrderAlreadyExists = errors.New("order already exists")
	ErrOrderNotFound      = errors.New("order not found")
	// ErrStatusConflict means the row's status no longer matches the
	// transition's from-status.
	ErrStatusConflict = errors.New("order status conflict")
)

type OrderRepo interface {
	AddOrder(ctx context.Context, order *domain.Order) error
	GetOrderById(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, entry domain.TimelineEntry) error
	UpsertShipment(ctx context.Context, id uuid.UUID, s domain.ShipmentInfo) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	ListTimeline(ctx context.Context, id uuid.UUID) ([]domain.TimelineEntry, error)
}

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(p *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: p}
}

func (p *OrderRepository) AddOrder(ctx context.Context, o *domain.Order) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	addr := o.ShippingAddress
	_, err = tx.Exec(ctx,
		`INSERT INTO orders
			(id, customer_id, payment_method,
			 subtotal, tax, shipping, discount, total,
			 status, payment_status, notes,
			 ship_name, ship_street, ship_street2, ship_city,
			 ship_state, ship_zip, ship_country, ship_phone,
			 created_at, updated_at)
		 VALUES
			($1, $2, $3,
			 $4, $5, $6, $7, $8,
			 $9, $10, $11,
			 $12, $13, $14, $15,
			 $16, $17, $18, $19,
			 $20, $21)`,
		o.ID, o.CustomerID, o.PaymentMethod,
		o.Subtotal, o.Tax, o.Shipping, o.Discount, o.Total,
		o.Status, o.PaymentStatus, o.Notes,
		addr.Name, addr.Street, addr.Street2, addr.City,
		addr.State, addr.Zip, addr.Country, addr.Phone,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrOrderAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	if len(o.Items) > 0 {
		batch := &pgx.Batch{}
		for _, it := range o.Items {
			batch.Queue(
				`INSERT INTO order_items
					(id, order_id, product_id, name, sku, quantity, unit_price, line_total)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				it.ID, o.ID, it.ProductID, it.Name, it.SKU,
				it.Quantity, it.UnitPrice, it.LineTotal,
			)
		}
		br := tx.SendBatch(ctx, batch)
		if err = br.Close(); err != nil {
			return fmt.Errorf("insert items: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	tx = nil
	return nil
}

func (p *OrderRepository) GetOrderById(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o := &domain.Order{}
	addr := &o.ShippingAddress
	err := p.pool.QueryRow(ctx,
		`SELECT id, customer_id, payment_method,
				subtotal, tax, shipping, discount, total,
				status, payment_status, notes,
				ship_name, ship_street, ship_street2, ship_city,
				ship_state, ship_zip, ship_country, ship_phone,
				created_at, updated_at
		 FROM orders WHERE id = $1`, id,
	).Scan(
		&o.ID, &o.CustomerID, &o.PaymentMethod,
		&o.Subtotal, &o.Tax, &o.Shipping, &o.Discount, &o.Total,
		&o.Status, &o.PaymentStatus, &o.Notes,
		&addr.Name, &addr.Street, &addr.Street2, &addr.City,
		&addr.State, &addr.Zip, &addr.Country, &addr.Phone,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}

	if o.Items, err = p.loadItems(ctx, id); err != nil {
		return nil, err
	}
	if o.Shipment, err = p.loadShipment(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (p *OrderRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, product_id, name, sku, quantity, unit_price, line_total
		 FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Name, &it.SKU,
			&it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (p *OrderRepository) loadShipment(ctx context.Context, orderID uuid.UUID) (*domain.ShipmentInfo, error) {
	s := &domain.ShipmentInfo{}
	err := p.pool.QueryRow(ctx,
		`SELECT carrier, tracking_number, shipped_at, estimated_delivery, delivered_at
		 FROM shipments WHERE order_id = $1`, orderID,
	).Scan(&s.Carrier, &s.TrackingNumber, &s.ShippedAt, &s.EstimatedDelivery, &s.DeliveredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select shipment: %w", err)
	}
	return s, nil
}

func (p *OrderRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Order, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, customer_id, payment_method,
				subtotal, tax, shipping, discount, total,
				status, payment_status, notes,
				ship_name, ship_street, ship_street2, ship_city,
				ship_state, ship_zip, ship_country, ship_phone,
				created_at, updated_at
		 FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	byID := make(map[uuid.UUID]*domain.Order)
	for rows.Next() {
		o := &domain.Order{}
		addr := &o.ShippingAddress
		if err := rows.Scan(
			&o.ID, &o.CustomerID, &o.PaymentMethod,
			&o.Subtotal, &o.Tax, &o.Shipping, &o.Discount, &o.Total,
			&o.Status, &o.PaymentStatus, &o.Notes,
			&addr.Name, &addr.Street, &addr.Street2, &addr.City,
			&addr.State, &addr.Zip, &addr.Country, &addr.Phone,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	itemRows, err := p.pool.Query(ctx,
		`SELECT order_id, id, product_id, name, sku, quantity, unit_price, line_total
		 FROM order_items WHERE order_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var orderID uuid.UUID
		var it domain.OrderItem
		if err := itemRows.Scan(&orderID, &it.ID, &it.ProductID, &it.Name, &it.SKU,
			&it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	shipRows, err := p.pool.Query(ctx,
		`SELECT order_id, carrier, tracking_number, shipped_at, estimated_delivery, delivered_at
		 FROM shipments WHERE order_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("select shipments: %w", err)
	}
	defer shipRows.Close()
	for shipRows.Next() {
		var orderID uuid.UUID
		s := &domain.ShipmentInfo{}
		if err := shipRows.Scan(&orderID, &s.Carrier, &s.TrackingNumber,
			&s.ShippedAt, &s.EstimatedDelivery, &s.DeliveredAt); err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Shipment = s
		}
	}
	return orders, shipRows.Err()
}

// UpdateStatus persists a status change together with its audit entry. The
// from-status guards against concurrent transitions on the same order.
func (p *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, entry domain.TimelineEntry) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		to, entry.At, id, from)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check order: %w", err)
		}
		if !exists {
			return ErrOrderNotFound
		}
		return ErrStatusConflict
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO order_timeline (order_id, from_status, to_status, actor, note, at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, entry.FromStatus, entry.ToStatus, entry.Actor, entry.Note, entry.At)
	if err != nil {
		return fmt.Errorf("insert timeline: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	tx = nil
	return nil
}

func (p *OrderRepository) UpsertShipment(ctx context.Context, id uuid.UUID, s domain.ShipmentInfo) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO shipments (order_id, carrier, tracking_number, shipped_at, estimated_delivery, delivered_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (order_id) DO UPDATE SET
			carrier = EXCLUDED.carrier,
			tracking_number = EXCLUDED.tracking_number,
			shipped_at = EXCLUDED.shipped_at,
			estimated_delivery = EXCLUDED.estimated_delivery,
			delivered_at = EXCLUDED.delivered_at`,
		id, s.Carrier, s.TrackingNumber, s.ShippedAt, s.EstimatedDelivery, s.DeliveredAt)
	if err != nil {
		return fmt.Errorf("upsert shipment: %w", err)
	}
	return nil
}

func (p *OrderRepository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (p *OrderRepository) ListTimeline(ctx context.Context, id uuid.UUID) ([]domain.TimelineEntry, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT order_id, from_status, to_status, actor, note, at
		 FROM order_timeline WHERE order_id = $1 ORDER BY at`, id)
	if err != nil {
		return nil, fmt.Errorf("select timeline: %w", err)
	}
	defer rows.Close()

	var entries []domain.TimelineEntry
	for rows.Next() {
		var e domain.TimelineEntry
		if err := rows.Scan(&e.OrderID, &e.FromStatus, &e.ToStatus, &e.Actor, &e.Note, &e.At); err != nil {
			return nil, fmt.Errorf("scan timeline: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
