package service

import (
	"context"

	"storefront/internal/admin"
	"storefront/internal/cart"
	"storefront/internal/model"
)

// ProductService defines read operations over the catalogue.
type ProductService interface {
	// List returns every product in display order.
	List() []model.Product

	// Get retrieves a single product by ID.
	Get(id string) (*model.Product, error)
}

// CartService resolves catalogue references for cart mutations.
type CartService interface {
	// AddItem adds quantity units of the product in the given color.
	AddItem(store *cart.Store, productID, colorID string, quantity int) error

	// UpdateItem sets the quantity of a cart line. Quantities below one are ignored.
	UpdateItem(store *cart.Store, productID, colorID string, quantity int)

	// RemoveItem deletes a cart line.
	RemoveItem(store *cart.Store, productID, colorID string)
}

// OrderService defines admin operations over stored orders.
type OrderService interface {
	// ListOrders fetches all orders and applies the viewer query.
	ListOrders(ctx context.Context, q admin.Query) (*OrderList, error)
}

// OrderList is one page of the admin order viewer.
type OrderList struct {
	Orders  []model.OrderRecord `json:"orders"`
	Showing int                 `json:"showing"`
	Total   int                 `json:"total"`
	Stats   admin.Stats         `json:"stats"`
	Query   admin.Query         `json:"query"`
}
