package checkout

import (
	"errors"
	"fmt"
)

// State is the position of a session in the checkout flow.
type State string

const (
	StateEditing         State = "editing"
	StateSubmitting      State = "submitting"
	StateAwaitingPayment State = "awaiting_payment"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
)

// ErrIllegalTransition is returned when a state change is not allowed.
var ErrIllegalTransition = errors.New("illegal checkout state transition")

var transitions = map[State][]State{
	StateEditing:         {StateSubmitting},
	StateSubmitting:      {StateAwaitingPayment, StateFailed},
	StateAwaitingPayment: {StateCompleted, StateFailed, StateEditing},
	StateCompleted:       {StateEditing},
	StateFailed:          {StateEditing},
}

// IsTerminal reports whether the attempt has finished.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// InProgress reports whether an attempt is between submission and payment outcome.
func (s State) InProgress() bool {
	return s == StateSubmitting || s == StateAwaitingPayment
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s State) String() string {
	return string(s)
}

func checkTransition(from, to State) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}
