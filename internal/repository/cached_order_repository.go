package repository

import (
	"context"
	"errors"
	"sync/atomic"

	"storefront/internal/cache"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// cachedOrderRepository serves List from a cache and invalidates it on writes.
// A load that overlaps a write is returned but not cached.
type cachedOrderRepository struct {
	inner  OrderRepository
	cache  cache.OrderListCache
	sfg    singleflight.Group
	gen    atomic.Uint64
	logger zerolog.Logger
}

// NewCachedOrderRepository wraps inner with a listing cache.
func NewCachedOrderRepository(inner OrderRepository, c cache.OrderListCache, logger zerolog.Logger) OrderRepository {
	return &cachedOrderRepository{
		inner:  inner,
		cache:  c,
		logger: logger.With().Str("repository", "cached-order").Logger(),
	}
}

func (r *cachedOrderRepository) Create(ctx context.Context, order *model.OrderRecord) error {
	if err := r.inner.Create(ctx, order); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedOrderRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus, paymentRef string) error {
	if err := r.inner.UpdateStatus(ctx, id, status, paymentRef); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// List returns the cached listing, loading it once per miss across concurrent callers.
func (r *cachedOrderRepository) List(ctx context.Context) ([]model.OrderRecord, error) {
	v, err, _ := r.sfg.Do(cache.OrderListKey, func() (interface{}, error) {
		orders, err := r.cache.Get(ctx)
		if err == nil {
			return orders, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.logger.Warn().Err(err).Msg("cache get failed")
		}

		gen := r.gen.Load()
		orders, err = r.inner.List(ctx)
		if err != nil {
			return nil, err
		}

		if r.gen.Load() != gen {
			r.logger.Debug().Msg("orders changed during load, not caching")
			return orders, nil
		}
		if err := r.cache.Set(ctx, orders); err != nil {
			r.logger.Warn().Err(err).Msg("cache set failed")
		}
		return orders, nil
	})
	if err != nil {
		return nil, err
	}

	// callers sharing a singleflight result must not share the slice
	shared := v.([]model.OrderRecord)
	out := make([]model.OrderRecord, len(shared))
	copy(out, shared)
	return out, nil
}

func (r *cachedOrderRepository) GetByID(ctx context.Context, id string) (*model.OrderRecord, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *cachedOrderRepository) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// invalidate must run after the inner write so an overlapping load sees the
// generation change before its Set.
func (r *cachedOrderRepository) invalidate(ctx context.Context) {
	r.gen.Add(1)
	r.sfg.Forget(cache.OrderListKey)
	if err := r.cache.Delete(ctx); err != nil {
		r.logger.Warn().Err(err).Msg("cache invalidate failed")
	}
}
