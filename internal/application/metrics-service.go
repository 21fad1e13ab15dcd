package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/arnesssr/nextpms-orders/internal/cache"
	"github.com/arnesssr/nextpms-orders/internal/domain"
	"github.com/arnesssr/nextpms-orders/internal/logger"
	"github.com/arnesssr/nextpms-orders/internal/repository"
)

const (
	metricsSampleLimit = 1000
	metricsTTL         = 30 * time.Second
)

// MetricsService folds recent orders and returns into dashboard aggregates.
// Snapshots are cached in redis for a short TTL; any cache failure falls
// through to a recompute.
type MetricsService struct {
	orders  repository.OrderRepo
	returns repository.ReturnRepo
	cache   cache.Cache
}

func NewMetricsService(orders repository.OrderRepo, returns repository.ReturnRepo, c cache.Cache) *MetricsService {
	return &MetricsService{orders: orders, returns: returns, cache: c}
}

func (s *MetricsService) OrderMetrics(ctx context.Context) (domain.OrderMetrics, error) {
	var m domain.OrderMetrics
	key := s.key("metrics", "orders")
	if s.cached(ctx, key, &m) {
		return m, nil
	}

	orders, err := s.orders.ListRecent(ctx, metricsSampleLimit)
	if err != nil {
		return domain.OrderMetrics{}, err
	}
	m = domain.AggregateOrders(orders)
	s.store(ctx, key, m)
	return m, nil
}

func (s *MetricsService) ReturnMetrics(ctx context.Context) (domain.ReturnMetrics, error) {
	var m domain.ReturnMetrics
	key := s.key("metrics", "returns")
	if s.cached(ctx, key, &m) {
		return m, nil
	}

	returns, err := s.returns.ListRecent(ctx, metricsSampleLimit)
	if err != nil {
		return domain.ReturnMetrics{}, err
	}
	m = domain.AggregateReturns(returns)
	s.store(ctx, key, m)
	return m, nil
}

// Invalidate drops the cached snapshots after a write.
func (s *MetricsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, key := range []string{s.key("metrics", "orders"), s.key("metrics", "returns")} {
		if err := s.cache.Delete(ctx, key); err != nil {
			logger.Warn("metrics cache delete failed", "key", key, "err", err)
		}
	}
}

func (s *MetricsService) key(operation, name string) string {
	if s.cache == nil {
		return operation + ":" + name
	}
	return s.cache.GenerateKey(operation, name)
}

func (s *MetricsService) cached(ctx context.Context, key string, v any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("metrics cache get failed", "key", key, "err", err)
		return false
	}
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		logger.Warn("metrics cache decode failed", "key", key, "err", err)
		return false
	}
	return true
}

func (s *MetricsService) store(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), metricsTTL); err != nil {
		logger.Warn("metrics cache set failed", "key", key, "err", err)
	}
}
