package model

import (
	"errors"
	"sort"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string            `json:"error"`
	Message       string            `json:"message"`
	Action        string            `json:"action"`
	Fields        map[string]string `json:"fields,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON               = "INVALID_JSON"
	ErrCodeMissingField              = "MISSING_FIELD"
	ErrCodeInvalidQuantity           = "INVALID_QUANTITY"
	ErrCodeInvalidColor              = "INVALID_COLOR"
	ErrCodeProductNotFound           = "PRODUCT_NOT_FOUND"
	ErrCodeValidation                = "VALIDATION_ERROR"
	ErrCodeEmptyCart                 = "EMPTY_CART"
	ErrCodeCheckoutInProgress        = "CHECKOUT_IN_PROGRESS"
	ErrCodeNoActivePayment           = "NO_ACTIVE_PAYMENT"
	ErrCodePersistence               = "PERSISTENCE_ERROR"
	ErrCodePaymentCancelled          = "PAYMENT_CANCELLED"
	ErrCodePaymentFailed             = "PAYMENT_FAILED"
	ErrCodePaymentRecordUpdateFailed = "PAYMENT_RECORD_UPDATE_FAILED"
	ErrCodeFetch                     = "FETCH_ERROR"
	ErrCodeInvalidQuery              = "INVALID_QUERY"
	ErrCodeUnauthorised              = "UNAUTHORIZED"
	ErrCodeInternalError             = "INTERNAL_ERROR"
)

// Next steps attached to user-visible failures.
const (
	ActionNone           = "none"
	ActionRetry          = "retry"
	ActionContactSupport = "contact_support"
	ActionRedirectCart   = "redirect:/cart"
)

// DomainError is a business error with a stable code and a next step for the user.
type DomainError struct {
	Code    string
	Message string
	Action  string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Wrap returns a copy of e carrying cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Action:  e.Action,
		Err:     cause,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message, action string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Action:  action,
	}
}

// Common domain errors
var (
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero", ActionNone)
	ErrInvalidColor        = NewDomainError(ErrCodeInvalidColor, "Selected color is not available for this product", ActionNone)
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "Product not found", ActionNone)
	ErrValidation          = NewDomainError(ErrCodeValidation, "Customer information is invalid", ActionNone)
	ErrEmptyCart           = NewDomainError(ErrCodeEmptyCart, "Your cart is empty", ActionRedirectCart)
	ErrCheckoutInProgress  = NewDomainError(ErrCodeCheckoutInProgress, "A checkout is already in progress", ActionNone)
	ErrNoActivePayment     = NewDomainError(ErrCodeNoActivePayment, "There is no payment awaiting confirmation", ActionNone)
	ErrPersistence         = NewDomainError(ErrCodePersistence, "We could not save your order, please try again", ActionRetry)
	ErrPaymentCancelled    = NewDomainError(ErrCodePaymentCancelled, "Payment window closed, complete your purchase later", ActionNone)
	ErrPaymentFailed       = NewDomainError(ErrCodePaymentFailed, "Payment could not be completed, please try again", ActionRetry)
	ErrPaymentRecordFailed = NewDomainError(
		ErrCodePaymentRecordUpdateFailed,
		"Your payment may have been taken but we could not confirm your order, please contact support",
		ActionContactSupport,
	)
	ErrFetch        = NewDomainError(ErrCodeFetch, "Failed to load orders, please try again", ActionRetry)
	ErrInvalidQuery = NewDomainError(ErrCodeInvalidQuery, "Invalid order filter", ActionNone)
	ErrMissingField = NewDomainError(ErrCodeMissingField, "A required field is missing", ActionNone)
	ErrInvalidJSON  = NewDomainError(ErrCodeInvalidJSON, "Request body is not valid JSON", ActionNone)
	ErrUnauthorised = NewDomainError(ErrCodeUnauthorised, "Missing or invalid API key", ActionNone)
	ErrInternal     = NewDomainError(ErrCodeInternalError, "Something went wrong, please try again", ActionRetry)
)

// ValidationError carries field-level messages for the customer information form.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return ErrValidation.Message + ": " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
