package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/arnesssr/nextpms-orders/internal/domain"
	"github.com/arnesssr/nextpms-orders/internal/repository"
)

var (
	ErrReturnNotFound    = errors.New("return request not found")
	ErrReturnNotEligible = errors.New("order not eligible for return")
	ErrReturnInvalidItem = errors.New("invalid return item")
)

const returnIDPrefix = "ret_"

// ReturnsService owns the return/refund workflow: eligibility against the
// originating order, refund pricing under the restocking-fee schedule, and
// FSM-checked status transitions with per-state timestamps.
type ReturnsService struct {
	returns    repository.ReturnRepo
	orders     repository.OrderRepo
	policyDays int
	now        func() time.Time
	newID      func() string
}

func NewReturnsService(returns repository.ReturnRepo, orders repository.OrderRepo, policyDays int) *ReturnsService {
	return &ReturnsService{
		returns:    returns,
		orders:     orders,
		policyDays: policyDays,
		now:        time.Now,
		newID: func() string {
			return returnIDPrefix + ulid.Make().String()
		},
	}
}

// CreateReturnInput is a requested return. DeductionRate, when set, takes
// precedence over the reason-based schedule.
type CreateReturnInput struct {
	OrderID       uuid.UUID           `json:"order_id"`
	Items         []domain.ReturnItem `json:"items"`
	Reason        domain.ReturnReason `json:"reason"`
	Description   string              `json:"description"`
	DeductionRate *decimal.Decimal    `json:"deduction_rate,omitempty"`
}

// CreateReturn checks eligibility against the delivered order, prices the
// refund and persists the request in pending state.
func (s *ReturnsService) CreateReturn(ctx context.Context, in CreateReturnInput) (*domain.ReturnRequest, error) {
	o, err := s.orders.GetOrderById(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	now := s.now().UTC()
	if ok, reason := domain.CheckReturnEligibility(o, now, s.policyDays); !ok {
		return nil, fmt.Errorf("%w: %s", ErrReturnNotEligible, reason)
	}

	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrReturnInvalidItem)
	}
	returning := 0
	for i, it := range in.Items {
		if it.ReturnQuantity < 0 || it.ReturnQuantity > it.Quantity {
			return nil, fmt.Errorf("%w: item %d return quantity out of range", ErrReturnInvalidItem, i+1)
		}
		returning += it.ReturnQuantity
	}
	if returning == 0 {
		return nil, fmt.Errorf("%w: nothing to return", ErrReturnInvalidItem)
	}

	rate := domain.DeductionRate(in.Reason)
	if in.DeductionRate != nil {
		rate = *in.DeductionRate
	}

	items := make([]domain.ReturnItem, len(in.Items))
	copy(items, in.Items)
	for i := range items {
		items[i].RefundAmount = domain.RefundAmountWithRate(items[i:i+1], rate)
	}

	r := &domain.ReturnRequest{
		ID:           s.newID(),
		OrderID:      in.OrderID,
		CustomerID:   o.CustomerID,
		Items:        items,
		Reason:       in.Reason,
		Description:  in.Description,
		Status:       domain.ReturnStatusPending,
		RefundAmount: domain.RefundAmountWithRate(items, rate),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.returns.AddReturn(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReturnsService) GetByID(ctx context.Context, id string) (*domain.ReturnRequest, error) {
	return s.returns.GetReturnById(ctx, id)
}

func (s *ReturnsService) ListRecent(ctx context.Context, limit int) ([]*domain.ReturnRequest, error) {
	return s.returns.ListRecent(ctx, limit)
}

func (s *ReturnsService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.ReturnRequest, error) {
	return s.returns.ListByOrder(ctx, orderID)
}

// Transition moves a return request along its workflow. Illegal moves are
// rejected before any write.
func (s *ReturnsService) Transition(ctx context.Context, id string, to domain.ReturnStatus) (*domain.ReturnRequest, error) {
	r, err := s.returns.GetReturnById(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrReturnNotFound
	}

	if !domain.CanTransitionReturn(r.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
	}

	now := s.now().UTC()
	if err := s.returns.UpdateStatus(ctx, id, r.Status, to, now); err != nil {
		if errors.Is(err, repository.ErrReturnNotFound) {
			return nil, ErrReturnNotFound
		}
		return nil, err
	}
	return s.returns.GetReturnById(ctx, id)
}
