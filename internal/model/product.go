package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Color is one selectable variant of a product.
type Color struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Product represents an item in the storefront catalogue.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Colors      []Color         `json:"colors"`
	Description string          `json:"description"`
	Features    []string        `json:"features"`
}

// Color returns the product color with the given id.
func (p Product) Color(id string) (Color, bool) {
	for _, c := range p.Colors {
		if c.ID == id {
			return c, true
		}
	}
	return Color{}, false
}

// Clone returns a deep copy, so the copy shares no slices with p.
func (p Product) Clone() Product {
	out := p
	out.Colors = append([]Color(nil), p.Colors...)
	out.Features = append([]string(nil), p.Features...)
	return out
}

// Validate checks the catalogue invariants of a product.
func (p Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product id is required")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("product %s: price must not be negative", p.ID)
	}
	if len(p.Colors) == 0 {
		return fmt.Errorf("product %s: at least one color is required", p.ID)
	}
	seen := make(map[string]struct{}, len(p.Colors))
	for _, c := range p.Colors {
		if c.ID == "" {
			return fmt.Errorf("product %s: color id is required", p.ID)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("product %s: duplicate color %s", p.ID, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}
