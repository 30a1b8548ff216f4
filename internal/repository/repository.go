package repository

import (
	"context"
	"errors"

	"storefront/internal/model"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// Create stores a new order. CreatedAt is assigned by the storage server
	// and written back to order.
	Create(ctx context.Context, order *model.OrderRecord) error

	// UpdateStatus sets the status of an order, and its payment reference when
	// paymentRef is not empty.
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus, paymentRef string) error

	// List returns every order, newest first.
	List(ctx context.Context) ([]model.OrderRecord, error)

	// GetByID retrieves an order by its ID.
	GetByID(ctx context.Context, id string) (*model.OrderRecord, error)

	// Ping checks connectivity to the backing store.
	Ping(ctx context.Context) error
}
