package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	cause := errors.New("connection reset")
	wrapped := fmt.Errorf("create order: %w", ErrPersistence.Wrap(cause))

	assert.True(t, errors.Is(wrapped, ErrPersistence))
	assert.True(t, errors.Is(wrapped, cause))
	assert.False(t, errors.Is(wrapped, ErrFetch))

	var de *DomainError
	assert.True(t, errors.As(wrapped, &de))
	assert.Equal(t, ActionRetry, de.Action)
	assert.Contains(t, de.Error(), "connection reset")
}

func TestDomainError_WrapDoesNotMutateSentinel(t *testing.T) {
	_ = ErrPaymentFailed.Wrap(errors.New("boom"))
	assert.Nil(t, ErrPaymentFailed.Err)
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"phone": "Must be 11 digits",
		"email": "Invalid email",
	}}

	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Customer information is invalid: email: Invalid email; phone: Must be 11 digits", err.Error())
}

func TestOrderStatus(t *testing.T) {
	tests := []struct {
		status   OrderStatus
		valid    bool
		terminal bool
	}{
		{OrderStatusPending, true, false},
		{OrderStatusPaid, true, true},
		{OrderStatusFailed, true, true},
		{OrderStatus("shipped"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.Valid())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}
