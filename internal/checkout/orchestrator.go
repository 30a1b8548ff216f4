// Package checkout drives a session from a filled cart to a paid order.
package checkout

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/cart"
	"storefront/internal/model"
	"storefront/internal/payment"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OrderIDPrefix prefixes every order id.
const OrderIDPrefix = "ORD"

// OrderStore is the persistence the orchestrator needs.
type OrderStore interface {
	Create(ctx context.Context, order *model.OrderRecord) error
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus, paymentRef string) error
}

// Attempt describes the payment attempt of the current checkout.
type Attempt struct {
	OrderID          string          `json:"orderId"`
	Reference        string          `json:"reference"`
	AmountMinor      int64           `json:"amount"`
	Total            decimal.Decimal `json:"total"`
	Email            string          `json:"email"`
	AuthorizationURL string          `json:"authorizationUrl,omitempty"`
	AccessCode       string          `json:"accessCode,omitempty"`
	State            State           `json:"state"`
}

// Confirmation is what the thank-you view shows after a successful payment.
type Confirmation struct {
	OrderID   string `json:"orderId"`
	Reference string `json:"reference"`
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithOrderIDFunc overrides order id generation.
func WithOrderIDFunc(fn func() string) Option {
	return func(o *Orchestrator) { o.newOrderID = fn }
}

// WithReferenceFunc overrides payment reference generation.
func WithReferenceFunc(fn func() string) Option {
	return func(o *Orchestrator) { o.newReference = fn }
}

// Orchestrator runs the checkout state machine for one session. Every
// operation holds the orchestrator lock for its whole duration.
type Orchestrator struct {
	mu sync.Mutex

	cart      *cart.Store
	orders    OrderStore
	gateway   payment.Gateway
	validator *Validator
	logger    zerolog.Logger

	newOrderID   func() string
	newReference func() string

	state   State
	current *Attempt
}

// New creates an Orchestrator in the editing state.
func New(c *cart.Store, orders OrderStore, gateway payment.Gateway, v *Validator, logger zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cart:      c,
		orders:    orders,
		gateway:   gateway,
		validator: v,
		logger:    logger.With().Str("component", "checkout").Logger(),
		newOrderID: func() string {
			return OrderIDPrefix + "-" + uuid.NewString()
		},
		newReference: func() string {
			return payment.NewReference(payment.DefaultReferencePrefix)
		},
		state: StateEditing,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Begin enters the checkout page. An empty cart sends the user back to the cart.
func (o *Orchestrator) Begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cart.IsEmpty() {
		return model.ErrEmptyCart
	}
	if o.state.IsTerminal() {
		o.state = StateEditing
		o.current = nil
	}
	return nil
}

// Submit validates info, saves a pending order and opens a payment window.
func (o *Orchestrator) Submit(ctx context.Context, info model.CustomerInfo) (*Attempt, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.InProgress() {
		return nil, model.ErrCheckoutInProgress
	}
	if o.cart.IsEmpty() {
		return nil, model.ErrEmptyCart
	}

	if o.state.IsTerminal() {
		o.state = StateEditing
		o.current = nil
	}

	if err := o.validator.Validate(info); err != nil {
		return nil, err
	}
	info = info.Normalized()

	if err := o.setState(StateSubmitting); err != nil {
		return nil, err
	}

	summary := o.cart.Snapshot()
	order := buildOrder(o.newOrderID(), info, summary)
	log := o.logger.With().Str("order_id", order.ID).Logger()

	if err := o.orders.Create(ctx, order); err != nil {
		log.Error().Err(err).Msg("failed to save pending order")
		o.state = StateFailed
		return nil, model.ErrPersistence.Wrap(err)
	}
	log.Info().
		Str("total", order.Total.String()).
		Int("items", order.ItemCount()).
		Msg("pending order saved")

	attempt := &Attempt{
		OrderID:     order.ID,
		Reference:   o.newReference(),
		AmountMinor: ToMinorUnits(summary.Total),
		Total:       summary.Total,
		Email:       info.Email,
	}

	auth, err := o.gateway.Initialize(ctx, payment.Request{
		AmountMinor: attempt.AmountMinor,
		Email:       info.Email,
		Reference:   attempt.Reference,
		Metadata:    paymentMetadata(order),
	})
	if err != nil {
		log.Error().Err(err).Str("reference", attempt.Reference).Msg("failed to open payment window")
		o.markFailed(ctx, order.ID)
		o.state = StateFailed
		return nil, model.ErrPaymentFailed.Wrap(err)
	}

	if auth.Reference != "" {
		attempt.Reference = auth.Reference
	}
	attempt.AuthorizationURL = auth.AuthorizationURL
	attempt.AccessCode = auth.AccessCode

	if err := o.setState(StateAwaitingPayment); err != nil {
		return nil, err
	}
	attempt.State = o.state
	o.current = attempt

	log.Info().Str("reference", attempt.Reference).Msg("awaiting payment")

	out := *attempt
	return &out, nil
}

// Confirm checks the outcome of the open payment. An empty reference means the
// reference issued by Submit.
func (o *Orchestrator) Confirm(ctx context.Context, reference string) (*Confirmation, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateAwaitingPayment || o.current == nil {
		return nil, model.ErrNoActivePayment
	}
	if reference == "" {
		reference = o.current.Reference
	}
	if reference != o.current.Reference {
		return nil, model.ErrNoActivePayment.Wrap(fmt.Errorf("unknown payment reference %s", reference))
	}

	log := o.logger.With().
		Str("order_id", o.current.OrderID).
		Str("reference", reference).
		Logger()

	v, err := o.gateway.Verify(ctx, reference)
	if err != nil {
		log.Warn().Err(err).Msg("failed to verify payment")
		return nil, model.ErrPaymentFailed.Wrap(err)
	}

	if !v.Succeeded() {
		log.Warn().Str("status", v.Status).Msg("payment not successful")
		o.markFailed(ctx, o.current.OrderID)
		o.finish(StateFailed)
		return nil, model.ErrPaymentFailed.Wrap(fmt.Errorf("transaction %s is %s", reference, v.Status))
	}

	if v.AmountMinor != o.current.AmountMinor {
		log.Error().
			Int64("expected", o.current.AmountMinor).
			Int64("charged", v.AmountMinor).
			Msg("payment amount does not match order")
		o.finish(StateFailed)
		return nil, model.ErrPaymentRecordFailed.Wrap(
			fmt.Errorf("transaction %s charged %d, expected %d", reference, v.AmountMinor, o.current.AmountMinor))
	}

	if err := o.orders.UpdateStatus(ctx, o.current.OrderID, model.OrderStatusPaid, reference); err != nil {
		log.Error().Err(err).Msg("payment succeeded but order could not be marked paid")
		o.finish(StateFailed)
		return nil, model.ErrPaymentRecordFailed.Wrap(err)
	}

	o.cart.ClearCart()
	o.finish(StateCompleted)

	log.Info().Msg("order paid")

	return &Confirmation{
		OrderID:   o.current.OrderID,
		Reference: reference,
	}, nil
}

// Cancel closes the payment window without paying. The pending order stays
// pending and the cart is kept.
func (o *Orchestrator) Cancel(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateAwaitingPayment || o.current == nil {
		return model.ErrNoActivePayment
	}

	if err := o.setState(StateEditing); err != nil {
		return err
	}
	o.current.State = StateEditing

	o.logger.Info().
		Str("order_id", o.current.OrderID).
		Str("reference", o.current.Reference).
		Msg("payment window closed")

	return nil
}

// EditCart runs fn against the cart unless an attempt is in progress. The cart
// is frozen from Submit until the payment succeeds, fails or is cancelled.
func (o *Orchestrator) EditCart(fn func(c *cart.Store) error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.InProgress() {
		return model.ErrCheckoutInProgress
	}
	return fn(o.cart)
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Current returns a copy of the latest attempt, or nil.
func (o *Orchestrator) Current() *Attempt {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current == nil {
		return nil
	}
	out := *o.current
	return &out
}

func (o *Orchestrator) setState(next State) error {
	if err := checkTransition(o.state, next); err != nil {
		return err
	}
	o.state = next
	return nil
}

func (o *Orchestrator) finish(state State) {
	o.state = state
	o.current.State = state
}

// markFailed records a failed attempt. Errors are logged only.
func (o *Orchestrator) markFailed(ctx context.Context, orderID string) {
	if err := o.orders.UpdateStatus(ctx, orderID, model.OrderStatusFailed, ""); err != nil {
		o.logger.Warn().Err(err).Str("order_id", orderID).Msg("failed to mark order failed")
	}
}

func buildOrder(id string, info model.CustomerInfo, summary cart.Summary) *model.OrderRecord {
	items := make([]model.OrderItem, 0, len(summary.Items))
	for _, it := range summary.Items {
		items = append(items, model.OrderItem{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Price:     it.Product.Price,
			Quantity:  it.Quantity,
			ColorName: it.SelectedColor.Name,
		})
	}

	return &model.OrderRecord{
		ID: id,
		Customer: model.OrderCustomer{
			Name:    info.FullName(),
			Email:   info.Email,
			Phone:   info.Phone,
			Address: info.FullAddress(),
		},
		Items:  items,
		Total:  summary.Total,
		Status: model.OrderStatusPending,
	}
}

func paymentMetadata(order *model.OrderRecord) map[string]any {
	return map[string]any{
		"order_id": order.ID,
		"custom_fields": []map[string]string{
			{
				"display_name":  "Customer",
				"variable_name": "customer",
				"value":         order.Customer.Name,
			},
		},
	}
}
