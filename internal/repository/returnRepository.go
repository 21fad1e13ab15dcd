package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arnesssr/nextpms-orders/internal/domain"
)

var ErrReturnNotFound = errors.New("return request not found")

type ReturnRepo interface {
	AddReturn(ctx context.Context, r *domain.ReturnRequest) error
	GetReturnById(ctx context.Context, id string) (*domain.ReturnRequest, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.ReturnRequest, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.ReturnRequest, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.ReturnStatus, at time.Time) error
}

type ReturnRepository struct {
	pool *pgxpool.Pool
}

func NewReturnRepository(p *pgxpool.Pool) *ReturnRepository {
	return &ReturnRepository{pool: p}
}

// Column stamped on each non-initial transition, keyed by target status.
var returnStampColumns = map[domain.ReturnStatus]string{
	domain.ReturnStatusApproved:    "approved_at",
	domain.ReturnStatusRejected:    "rejected_at",
	domain.ReturnStatusShippedBack: "shipped_back_at",
	domain.ReturnStatusReceived:    "received_at",
	domain.ReturnStatusRefunded:    "refunded_at",
	domain.ReturnStatusCancelled:   "cancelled_at",
}

func (p *ReturnRepository) AddReturn(ctx context.Context, r *domain.ReturnRequest) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO return_requests
			(id, order_id, customer_id, reason, description, status,
			 refund_amount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.OrderID, r.CustomerID, r.Reason, r.Description, r.Status,
		r.RefundAmount, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert return: %w", err)
	}

	if len(r.Items) > 0 {
		batch := &pgx.Batch{}
		for _, it := range r.Items {
			batch.Queue(
				`INSERT INTO return_items
					(return_id, product_id, quantity, return_quantity, unit_price, refund_amount)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				r.ID, it.ProductID, it.Quantity, it.ReturnQuantity,
				it.UnitPrice, it.RefundAmount)
		}
		br := tx.SendBatch(ctx, batch)
		if err = br.Close(); err != nil {
			return fmt.Errorf("insert return items: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	tx = nil
	return nil
}

const returnColumns = `id, order_id, customer_id, reason, description, status,
	refund_amount, created_at, updated_at,
	approved_at, rejected_at, shipped_back_at, received_at, refunded_at, cancelled_at`

func scanReturn(row pgx.Row) (*domain.ReturnRequest, error) {
	r := &domain.ReturnRequest{}
	err := row.Scan(
		&r.ID, &r.OrderID, &r.CustomerID, &r.Reason, &r.Description, &r.Status,
		&r.RefundAmount, &r.CreatedAt, &r.UpdatedAt,
		&r.ApprovedAt, &r.RejectedAt, &r.ShippedBackAt,
		&r.ReceivedAt, &r.RefundedAt, &r.CancelledAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (p *ReturnRepository) GetReturnById(ctx context.Context, id string) (*domain.ReturnRequest, error) {
	r, err := scanReturn(p.pool.QueryRow(ctx,
		`SELECT `+returnColumns+` FROM return_requests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select return: %w", err)
	}
	if r.Items, err = p.loadItems(ctx, id); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *ReturnRepository) loadItems(ctx context.Context, returnID string) ([]domain.ReturnItem, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT product_id, quantity, return_quantity, unit_price, refund_amount
		 FROM return_items WHERE return_id = $1 ORDER BY id`, returnID)
	if err != nil {
		return nil, fmt.Errorf("select return items: %w", err)
	}
	defer rows.Close()

	var items []domain.ReturnItem
	for rows.Next() {
		var it domain.ReturnItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.ReturnQuantity,
			&it.UnitPrice, &it.RefundAmount); err != nil {
			return nil, fmt.Errorf("scan return item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (p *ReturnRepository) listWhere(ctx context.Context, clause string, args ...any) ([]*domain.ReturnRequest, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+returnColumns+` FROM return_requests `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("select returns: %w", err)
	}
	defer rows.Close()

	var returns []*domain.ReturnRequest
	for rows.Next() {
		r, err := scanReturn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan return: %w", err)
		}
		returns = append(returns, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, r := range returns {
		if r.Items, err = p.loadItems(ctx, r.ID); err != nil {
			return nil, err
		}
	}
	return returns, nil
}

func (p *ReturnRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.ReturnRequest, error) {
	return p.listWhere(ctx, `WHERE order_id = $1 ORDER BY created_at DESC`, orderID)
}

func (p *ReturnRepository) ListRecent(ctx context.Context, limit int) ([]*domain.ReturnRequest, error) {
	return p.listWhere(ctx, `ORDER BY created_at DESC LIMIT $1`, limit)
}

// UpdateStatus moves the request and stamps the per-state timestamp column.
// The from-status guard rejects stale transitions.
func (p *ReturnRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ReturnStatus, at time.Time) error {
	col, ok := returnStampColumns[to]
	if !ok {
		return fmt.Errorf("no timestamp column for status %q", to)
	}
	tag, err := p.pool.Exec(ctx,
		`UPDATE return_requests
		 SET status = $1, updated_at = $2, `+col+` = $2
		 WHERE id = $3 AND status = $4`,
		to, at, id, from)
	if err != nil {
		return fmt.Errorf("update return status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := p.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM return_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check return: %w", err)
		}
		if !exists {
			return ErrReturnNotFound
		}
		return ErrStatusConflict
	}
	return nil
}
