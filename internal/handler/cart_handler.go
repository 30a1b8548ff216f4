package handler

import (
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CartResponse is the cart as the sidebar and cart page render it.
type CartResponse struct {
	Items  []CartLine      `json:"items"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
	IsOpen bool            `json:"isOpen"`
}

// CartLine is one cart entry with its line total.
type CartLine struct {
	cart.LineItem
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// AddItemRequest is the body of POST /api/cart/items.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	ColorID   string `json:"colorId"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest is the body of PATCH /api/cart/items/{productId}/{colorId}.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// SetOpenRequest is the body of PUT /api/cart/open.
type SetOpenRequest struct {
	Open bool `json:"open"`
}

func newCartResponse(s cart.Summary) CartResponse {
	lines := make([]CartLine, len(s.Items))
	for i, it := range s.Items {
		lines[i] = CartLine{LineItem: it, LineTotal: it.LineTotal()}
	}
	return CartResponse{
		Items:  lines,
		Count:  s.Count,
		Total:  s.Total,
		IsOpen: s.IsOpen,
	}
}

// CartHandler handles cart HTTP requests for the visitor's session.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, newCartResponse(s.Cart.Snapshot()))
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.ProductID == "" || req.ColorID == "" {
		writeError(w, r, model.ErrMissingField, h.logger)
		return
	}

	err := s.Checkout.EditCart(func(c *cart.Store) error {
		return h.service.AddItem(c, req.ProductID, req.ColorID, req.Quantity)
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	h.logger.Info().
		Str("session_id", s.ID).
		Str("product_id", req.ProductID).
		Str("color_id", req.ColorID).
		Int("quantity", req.Quantity).
		Msg("item added to cart")

	writeJSON(w, http.StatusOK, newCartResponse(s.Cart.Snapshot()))
}

// UpdateItem handles PATCH /api/cart/items/{productId}/{colorId}.
// A quantity below one leaves the cart unchanged.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	err := s.Checkout.EditCart(func(c *cart.Store) error {
		h.service.UpdateItem(c, chi.URLParam(r, "productId"), chi.URLParam(r, "colorId"), req.Quantity)
		return nil
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(s.Cart.Snapshot()))
}

// RemoveItem handles DELETE /api/cart/items/{productId}/{colorId}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	err := s.Checkout.EditCart(func(c *cart.Store) error {
		h.service.RemoveItem(c, chi.URLParam(r, "productId"), chi.URLParam(r, "colorId"))
		return nil
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(s.Cart.Snapshot()))
}

// SetOpen handles PUT /api/cart/open.
func (h *CartHandler) SetOpen(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req SetOpenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	s.Cart.SetIsOpen(req.Open)
	writeJSON(w, http.StatusOK, newCartResponse(s.Cart.Snapshot()))
}
