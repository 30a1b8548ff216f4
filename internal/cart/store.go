// Package cart holds the shopper's cart: line items keyed by product and
// color, merge-on-add, and totals derived from current contents on every read.
package cart

import (
	"sync"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Key identifies a cart entry. Two line items are the same entry iff both fields match.
type Key struct {
	ProductID string
	ColorID   string
}

// LineItem is one product+color combination and its quantity.
type LineItem struct {
	Product       model.Product `json:"product"`
	SelectedColor model.Color   `json:"selectedColor"`
	Quantity      int           `json:"quantity"`
}

// Key returns the identity pair of the item.
func (li LineItem) Key() Key {
	return Key{ProductID: li.Product.ID, ColorID: li.SelectedColor.ID}
}

// LineTotal is price × quantity, computed from the current fields.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Product.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func (li LineItem) clone() LineItem {
	li.Product = li.Product.Clone()
	return li
}

// Summary is a point-in-time view of the cart.
type Summary struct {
	Items  []LineItem
	Count  int
	Total  decimal.Decimal
	IsOpen bool
}

// Store is the cart of a single shopper. It is safe for concurrent use; every
// operation runs to completion before the next one observes the cart.
type Store struct {
	mu     sync.Mutex
	items  []LineItem
	isOpen bool
	logger zerolog.Logger
}

// New creates an empty cart.
func New(logger zerolog.Logger) *Store {
	return &Store{
		logger: logger.With().Str("component", "cart").Logger(),
	}
}

// AddToCart adds quantity units of product in selectedColor. An existing entry
// with the same product and color has its quantity increased; otherwise a new
// entry is appended. The cart sidebar is opened on success.
func (s *Store) AddToCart(product model.Product, quantity int, selectedColor model.Color) error {
	if quantity < 1 {
		s.logger.Warn().
			Str("product_id", product.ID).
			Int("quantity", quantity).
			Msg("rejected non-positive quantity")
		return model.ErrInvalidQuantity
	}

	color, ok := product.Color(selectedColor.ID)
	if !ok {
		s.logger.Warn().
			Str("product_id", product.ID).
			Str("color_id", selectedColor.ID).
			Msg("rejected color not offered by product")
		return model.ErrInvalidColor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key{ProductID: product.ID, ColorID: color.ID}
	if i := s.indexOf(key); i >= 0 {
		s.items[i].Quantity += quantity
		s.logger.Debug().
			Str("product_id", key.ProductID).
			Str("color_id", key.ColorID).
			Int("quantity", s.items[i].Quantity).
			Msg("merged into existing cart item")
	} else {
		s.items = append(s.items, LineItem{
			Product:       product.Clone(),
			SelectedColor: color,
			Quantity:      quantity,
		})
		s.logger.Debug().
			Str("product_id", key.ProductID).
			Str("color_id", key.ColorID).
			Int("quantity", quantity).
			Msg("added cart item")
	}

	s.isOpen = true
	return nil
}

// RemoveFromCart removes the matching entry. Removing an absent entry is a no-op.
func (s *Store) RemoveFromCart(productID, colorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(Key{ProductID: productID, ColorID: colorID})
	if i < 0 {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
}

// UpdateQuantity sets the quantity of the matching entry. A quantity below one
// is ignored rather than treated as removal; callers remove explicitly.
func (s *Store) UpdateQuantity(productID, colorID string, newQuantity int) {
	if newQuantity < 1 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(Key{ProductID: productID, ColorID: colorID}); i >= 0 {
		s.items[i].Quantity = newQuantity
	}
}

// ClearCart empties the cart.
func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.copyItems()
}

// Len returns the number of distinct line items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// IsEmpty reports whether the cart has no items.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// CartCount is the sum of all quantities.
func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return count(s.items)
}

// CartTotal is the sum of all line totals.
func (s *Store) CartTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return total(s.items)
}

// IsOpen reports whether the cart sidebar is visible.
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.isOpen
}

// SetIsOpen shows or hides the cart sidebar. It does not touch cart contents.
func (s *Store) SetIsOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isOpen = open
}

// Snapshot returns the items and derived totals read under a single lock.
func (s *Store) Snapshot() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Summary{
		Items:  s.copyItems(),
		Count:  count(s.items),
		Total:  total(s.items),
		IsOpen: s.isOpen,
	}
}

func (s *Store) indexOf(key Key) int {
	for i, it := range s.items {
		if it.Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store) copyItems() []LineItem {
	out := make([]LineItem, len(s.items))
	for i, it := range s.items {
		out[i] = it.clone()
	}
	return out
}

func count(items []LineItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}
