package cache

import (
	"context"
	"errors"

	"storefront/internal/model"
)

// OrderListCache caches the admin order listing.
type OrderListCache interface {
	Get(ctx context.Context) ([]model.OrderRecord, error)
	Set(ctx context.Context, orders []model.OrderRecord) error
	Delete(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
