package catalog

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Catalog provides read-only access to the products on sale.
type Catalog interface {
	// All returns every product in display order.
	All() []model.Product

	// Get returns the product with the given id.
	Get(id string) (model.Product, bool)
}

// Loader defines the interface for loading catalogue files.
type Loader interface {
	// Load reads a JSON product list (gzipped when the path ends in .gz).
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// memoryCatalog implements Catalog over a fixed product list.
type memoryCatalog struct {
	products []model.Product
	byID     map[string]int
}

// NewMemoryCatalog validates products and returns a catalogue over copies of them.
func NewMemoryCatalog(products []model.Product) (Catalog, error) {
	c := &memoryCatalog{
		products: make([]model.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}

	for _, p := range products {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid catalogue entry: %w", err)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %s", p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p.Clone())
	}

	return c, nil
}

func (c *memoryCatalog) All() []model.Product {
	out := make([]model.Product, len(c.products))
	for i, p := range c.products {
		out[i] = p.Clone()
	}
	return out
}

func (c *memoryCatalog) Get(id string) (model.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Product{}, false
	}
	return c.products[i].Clone(), true
}

// DefaultProducts is the built-in catalogue used when no catalogue file is configured.
func DefaultProducts() []model.Product {
	return []model.Product{
		{
			ID:          "truqha-9",
			Name:        "TRUQHA 9",
			Description: "A minimalist cap designed for urban explorers. Featuring premium materials and our signature TRUQHA embroidery.",
			Price:       decimal.RequireFromString("6999.99"),
			Colors: []model.Color{
				{ID: "black", Name: "Black", Image: "/assets/products/truqha_black.png"},
				{ID: "white", Name: "White", Image: "/assets/products/truqha_white.png"},
				{ID: "blue", Name: "Blue", Image: "/assets/products/truqha_blue.png"},
				{ID: "red", Name: "Red", Image: "/assets/products/truqha_red.png"},
			},
			Features: []string{
				"100% Premium Cotton Twill",
				"Structured, medium profile",
				"Adjustable strapback closure",
				"Embroidered TRUQHA logo",
				"One size fits most",
			},
		},
	}
}

// Default returns the built-in catalogue.
func Default() Catalog {
	c, err := NewMemoryCatalog(DefaultProducts())
	if err != nil {
		panic(err)
	}
	return c
}

// Load builds a catalogue from path using loader. An empty path selects the
// built-in catalogue.
func Load(ctx context.Context, loader Loader, path string, logger zerolog.Logger) (Catalog, error) {
	logger = logger.With().Str("component", "catalog").Logger()

	if path == "" {
		logger.Info().Msg("no catalogue path configured, using built-in catalogue")
		return Default(), nil
	}

	products, err := loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogue %s: %w", path, err)
	}

	c, err := NewMemoryCatalog(products)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalogue from %s: %w", path, err)
	}

	logger.Info().
		Str("path", path).
		Int("products", len(products)).
		Msg("catalogue loaded")

	return c, nil
}
