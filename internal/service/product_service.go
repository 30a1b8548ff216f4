package service

import (
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	catalog catalog.Catalog
	logger  zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(c catalog.Catalog, logger zerolog.Logger) ProductService {
	return &productService{
		catalog: c,
		logger:  logger.With().Str("service", "product").Logger(),
	}
}

// List returns every product.
func (s *productService) List() []model.Product {
	products := s.catalog.All()

	s.logger.Debug().
		Int("count", len(products)).
		Msg("retrieved products")

	return products
}

// Get retrieves a single product by ID.
func (s *productService) Get(id string) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}

	product, ok := s.catalog.Get(id)
	if !ok {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return &product, nil
}

// cartService implements CartService.
type cartService struct {
	products ProductService
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(products ProductService, logger zerolog.Logger) CartService {
	return &cartService{
		products: products,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) AddItem(store *cart.Store, productID, colorID string, quantity int) error {
	product, err := s.products.Get(productID)
	if err != nil {
		return err
	}

	color, ok := product.Color(colorID)
	if !ok {
		s.logger.Debug().
			Str("product_id", productID).
			Str("color_id", colorID).
			Msg("unknown color")
		return model.ErrInvalidColor
	}

	return store.AddToCart(*product, quantity, color)
}

func (s *cartService) UpdateItem(store *cart.Store, productID, colorID string, quantity int) {
	store.UpdateQuantity(productID, colorID, quantity)
}

func (s *cartService) RemoveItem(store *cart.Store, productID, colorID string) {
	store.RemoveFromCart(productID, colorID)
}
