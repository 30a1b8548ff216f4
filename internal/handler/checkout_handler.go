package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"storefront/internal/checkout"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ThankYouPath is where the client goes after a confirmed payment.
const ThankYouPath = "/thank-you"

// CheckoutResponse describes the checkout page of a session.
type CheckoutResponse struct {
	State     checkout.State    `json:"state"`
	Count     int               `json:"count"`
	Total     decimal.Decimal   `json:"total"`
	Attempt   *checkout.Attempt `json:"attempt,omitempty"`
	PublicKey string            `json:"publicKey,omitempty"`
}

// SubmitRequest is the body of POST /api/checkout.
type SubmitRequest struct {
	Customer model.CustomerInfo `json:"customer"`
}

// ConfirmRequest is the body of POST /api/checkout/confirm.
type ConfirmRequest struct {
	Reference string `json:"reference"`
}

// ConfirmResponse carries the thank-you view's data.
type ConfirmResponse struct {
	checkout.Confirmation
	Redirect string `json:"redirect"`
}

// CancelResponse is the notice shown when the payment window is closed.
type CancelResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action"`
	OrderID string `json:"orderId,omitempty"`
}

// CheckoutHandler drives the session's checkout over HTTP.
type CheckoutHandler struct {
	publicKey string
	logger    zerolog.Logger
}

// NewCheckoutHandler creates a checkout handler. publicKey is handed to the
// client to open the payment window.
func NewCheckoutHandler(publicKey string, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		publicKey: publicKey,
		logger:    logger.With().Str("handler", "checkout").Logger(),
	}
}

// Begin handles GET /api/checkout.
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	if err := s.Checkout.Begin(); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	summary := s.Cart.Snapshot()
	writeJSON(w, http.StatusOK, CheckoutResponse{
		State:     s.Checkout.State(),
		Count:     summary.Count,
		Total:     summary.Total,
		Attempt:   s.Checkout.Current(),
		PublicKey: h.publicKey,
	})
}

// Submit handles POST /api/checkout.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	attempt, err := s.Checkout.Submit(r.Context(), req.Customer)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, CheckoutResponse{
		State:     attempt.State,
		Count:     s.Cart.CartCount(),
		Total:     attempt.Total,
		Attempt:   attempt,
		PublicKey: h.publicKey,
	})
}

// Confirm handles POST /api/checkout/confirm. An empty body confirms the
// current attempt.
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req ConfirmRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, err, h.logger)
		return
	}

	conf, err := s.Checkout.Confirm(r.Context(), req.Reference)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ConfirmResponse{
		Confirmation: *conf,
		Redirect:     ThankYouPath + "?reference=" + url.QueryEscape(conf.Reference),
	})
}

// Cancel handles POST /api/checkout/cancel.
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	if err := s.Checkout.Cancel(r.Context()); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	resp := CancelResponse{
		Code:    model.ErrPaymentCancelled.Code,
		Message: model.ErrPaymentCancelled.Message,
		Action:  model.ErrPaymentCancelled.Action,
	}
	if attempt := s.Checkout.Current(); attempt != nil {
		resp.OrderID = attempt.OrderID
	}

	writeJSON(w, StatusFor(resp.Code), resp)
}
