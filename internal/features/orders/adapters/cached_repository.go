package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lepatage-store/internal/core/cache"
	"lepatage-store/internal/core/logger"
	"lepatage-store/internal/features/orders/domain"
	"lepatage-store/internal/features/orders/ports"

	"go.uber.org/zap"
)

// CachedOrderRepository serves GetByNumber through a read-through cache.
// Cache failures are logged and fall back to the primary repository.
type CachedOrderRepository struct {
	primary ports.OrderRepository
	cache   cache.Cache
	ttl     time.Duration
}

// NewCachedOrderRepository wraps primary with c.
func NewCachedOrderRepository(primary ports.OrderRepository, c cache.Cache, ttl time.Duration) *CachedOrderRepository {
	return &CachedOrderRepository{
		primary: primary,
		cache:   c,
		ttl:     ttl,
	}
}

func orderCacheKey(orderNumber string) string {
	return "order:" + orderNumber
}

// GetByNumber returns the cached order or loads and caches it.
func (r *CachedOrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	key := orderCacheKey(orderNumber)

	cached, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var order domain.Order
		if err := json.Unmarshal(cached, &order); err == nil {
			return &order, nil
		}
		logger.Get().Warn("Discarding undecodable cached order", zap.String("order_number", orderNumber))
	case !errors.Is(err, cache.ErrMiss):
		logger.Get().Warn("Order cache read failed", zap.String("order_number", orderNumber), zap.Error(err))
	}

	order, err := r.primary.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	// A row read before a concurrent status update carries the older
	// version and is refused by the cache.
	if data, err := json.Marshal(order); err == nil {
		if _, err := r.cache.SetIfNewer(ctx, key, data, order.Version, r.ttl); err != nil {
			logger.Get().Warn("Order cache write failed", zap.String("order_number", orderNumber), zap.Error(err))
		}
	}

	return order, nil
}

// Create delegates to the primary repository.
func (r *CachedOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.primary.Create(ctx, order)
}

// GetByID delegates to the primary repository; the version check needs fresh data.
func (r *CachedOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.primary.GetByID(ctx, id)
}

// List delegates to the primary repository.
func (r *CachedOrderRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	return r.primary.List(ctx, filter)
}

// UpdateStatus delegates and then invalidates the cached order, recording
// the new version so that slower readers cannot cache the previous row.
func (r *CachedOrderRepository) UpdateStatus(ctx context.Context, order *domain.Order, expectedVersion int64) error {
	if err := r.primary.UpdateStatus(ctx, order, expectedVersion); err != nil {
		return err
	}

	if err := r.cache.DeleteVersion(ctx, orderCacheKey(order.OrderNumber), order.Version, r.ttl); err != nil {
		logger.Get().Warn("Order cache invalidation failed", zap.String("order_number", order.OrderNumber), zap.Error(err))
	}
	return nil
}
