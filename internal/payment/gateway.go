// Package payment talks to the hosted payment gateway that collects card
// payments for checkout.
package payment

import (
	"context"
	"errors"
	"time"
)

// Transaction statuses reported by the gateway.
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// ErrInvalidRequest is returned before any call is made when a Request is malformed.
var ErrInvalidRequest = errors.New("invalid payment request")

// Request opens a payment window for one checkout attempt.
type Request struct {
	// AmountMinor is the charge in minor currency units (kobo).
	AmountMinor int64
	Email       string
	Reference   string
	Metadata    map[string]any
}

// Validate checks the fields the gateway requires.
func (r Request) Validate() error {
	switch {
	case r.AmountMinor <= 0:
		return errors.Join(ErrInvalidRequest, errors.New("amount must be positive"))
	case r.Email == "":
		return errors.Join(ErrInvalidRequest, errors.New("email is required"))
	case r.Reference == "":
		return errors.Join(ErrInvalidRequest, errors.New("reference is required"))
	}
	return nil
}

// Authorization is returned once a payment window has been opened.
type Authorization struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorizationUrl"`
	AccessCode       string `json:"accessCode"`
}

// Verification is the gateway's view of a transaction.
type Verification struct {
	Reference   string
	Status      string
	AmountMinor int64
	PaidAt      time.Time
}

// Succeeded reports whether the customer completed the payment.
func (v Verification) Succeeded() bool {
	return v.Status == StatusSuccess
}

// Gateway is the payment collaborator used by checkout.
type Gateway interface {
	// Initialize opens a payment window for req.
	Initialize(ctx context.Context, req Request) (*Authorization, error)

	// Verify looks up the outcome of the transaction with the given reference.
	Verify(ctx context.Context, reference string) (*Verification, error)
}
