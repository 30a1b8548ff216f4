package checkout

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/model"
	"storefront/internal/payment"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockOrderStore is a mock implementation of OrderStore.
type mockOrderStore struct {
	mock.Mock
}

func (m *mockOrderStore) Create(ctx context.Context, order *model.OrderRecord) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderStore) UpdateStatus(ctx context.Context, id string, status model.OrderStatus, paymentRef string) error {
	args := m.Called(ctx, id, status, paymentRef)
	return args.Error(0)
}

// mockGateway is a mock implementation of payment.Gateway.
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Initialize(ctx context.Context, req payment.Request) (*payment.Authorization, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Authorization), args.Error(1)
}

func (m *mockGateway) Verify(ctx context.Context, reference string) (*payment.Verification, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Verification), args.Error(1)
}

type fixture struct {
	cart    *cart.Store
	orders  *mockOrderStore
	gateway *mockGateway
	orch    *Orchestrator
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		cart:    cart.New(zerolog.Nop()),
		orders:  new(mockOrderStore),
		gateway: new(mockGateway),
	}
	opts = append([]Option{
		WithOrderIDFunc(func() string { return "ORD-1" }),
		WithReferenceFunc(func() string { return "REF123" }),
	}, opts...)
	f.orch = New(f.cart, f.orders, f.gateway, NewValidator(), zerolog.Nop(), opts...)
	return f
}

// fillCart adds three black TRUQHA 9 caps.
func (f *fixture) fillCart(t *testing.T) {
	t.Helper()

	p, ok := catalog.Default().Get("truqha-9")
	require.True(t, ok)
	black, _ := p.Color("black")
	require.NoError(t, f.cart.AddToCart(p, 3, black))
}

func validCustomer() model.CustomerInfo {
	return model.CustomerInfo{
		FirstName: "Ada",
		LastName:  "Obi",
		Email:     "ada@example.com",
		Phone:     "08012345678",
		Address:   "12 Marina Road",
		City:      "Lagos",
		Country:   "Nigeria",
	}
}

func authorization() *payment.Authorization {
	return &payment.Authorization{
		Reference:        "REF123",
		AuthorizationURL: "https://checkout.example/REF123",
		AccessCode:       "code",
	}
}

// threeCapsMinor is the charge for the cart built by fillCart.
const threeCapsMinor = 2099997

// paid reports a successful charge for the cart built by fillCart.
func paid() *payment.Verification {
	return &payment.Verification{Reference: "REF123", Status: payment.StatusSuccess, AmountMinor: threeCapsMinor}
}

func assertAction(t *testing.T, err error, action string) {
	t.Helper()

	var de *model.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	assert.Equal(t, action, de.Action)
}

func TestBegin_EmptyCart(t *testing.T) {
	f := newFixture(t)

	err := f.orch.Begin()

	assert.ErrorIs(t, err, model.ErrEmptyCart)
	assertAction(t, err, model.ActionRedirectCart)
	assert.Equal(t, StateEditing, f.orch.State())
}

func TestBegin_WithItems(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)

	require.NoError(t, f.orch.Begin())
	assert.Equal(t, StateEditing, f.orch.State())
}

func TestSubmit_EmptyCartRejectedBeforeSubmitting(t *testing.T) {
	f := newFixture(t)

	attempt, err := f.orch.Submit(context.Background(), validCustomer())

	assert.ErrorIs(t, err, model.ErrEmptyCart)
	assert.Nil(t, attempt)
	assert.Equal(t, StateEditing, f.orch.State())
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.gateway.AssertNotCalled(t, "Initialize", mock.Anything, mock.Anything)
}

func TestSubmit_InvalidCustomer(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)

	info := validCustomer()
	info.Phone = "123"
	info.Email = "not-an-email"

	attempt, err := f.orch.Submit(context.Background(), info)

	require.Error(t, err)
	assert.Nil(t, attempt)
	assert.ErrorIs(t, err, model.ErrValidation)

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Must be 11 digits", verr.Fields["phone"])
	assert.Equal(t, "Invalid email", verr.Fields["email"])

	assert.Equal(t, StateEditing, f.orch.State())
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckout_Success(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	var saved *model.OrderRecord
	f.orders.On("Create", ctx, mock.AnythingOfType("*model.OrderRecord")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*model.OrderRecord) }).
		Return(nil).Once()
	f.gateway.On("Initialize", ctx, mock.MatchedBy(func(req payment.Request) bool {
		return req.AmountMinor == 2099997 &&
			req.Email == "ada@example.com" &&
			req.Reference == "REF123" &&
			req.Metadata["order_id"] == "ORD-1"
	})).Return(authorization(), nil).Once()
	f.gateway.On("Verify", ctx, "REF123").
		Return(&payment.Verification{Reference: "REF123", Status: payment.StatusSuccess, AmountMinor: 2099997}, nil).Once()
	f.orders.On("UpdateStatus", ctx, "ORD-1", model.OrderStatusPaid, "REF123").Return(nil).Once()

	attempt, err := f.orch.Submit(ctx, validCustomer())
	require.NoError(t, err)

	assert.Equal(t, "ORD-1", attempt.OrderID)
	assert.Equal(t, "REF123", attempt.Reference)
	assert.Equal(t, int64(2099997), attempt.AmountMinor)
	assert.Equal(t, "20999.97", attempt.Total.String())
	assert.Equal(t, StateAwaitingPayment, attempt.State)
	assert.Equal(t, StateAwaitingPayment, f.orch.State())

	require.NotNil(t, saved)
	assert.Equal(t, model.OrderStatusPending, saved.Status)
	assert.Equal(t, "Ada Obi", saved.Customer.Name)
	assert.Equal(t, "12 Marina Road, Lagos, Nigeria", saved.Customer.Address)
	assert.Equal(t, "08012345678", saved.Customer.Phone)
	require.Len(t, saved.Items, 1)
	assert.Equal(t, "truqha-9", saved.Items[0].ProductID)
	assert.Equal(t, "TRUQHA 9", saved.Items[0].Name)
	assert.Equal(t, "Black", saved.Items[0].ColorName)
	assert.Equal(t, 3, saved.Items[0].Quantity)
	assert.Equal(t, "20999.97", saved.Total.String())

	confirmation, err := f.orch.Confirm(ctx, "REF123")
	require.NoError(t, err)

	assert.Equal(t, "ORD-1", confirmation.OrderID)
	assert.Equal(t, "REF123", confirmation.Reference)
	assert.True(t, f.cart.IsEmpty())
	assert.Equal(t, StateCompleted, f.orch.State())

	f.orders.AssertExpectations(t)
	f.gateway.AssertExpectations(t)
}

func TestConfirm_EmptyReferenceUsesIssuedReference(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	f.orders.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.gateway.On("Initialize", ctx, mock.Anything).Return(authorization(), nil).Once()
	f.gateway.On("Verify", ctx, "REF123").
		Return(paid(), nil).Once()
	f.orders.On("UpdateStatus", ctx, "ORD-1", model.OrderStatusPaid, "REF123").Return(nil).Once()

	_, err := f.orch.Submit(ctx, validCustomer())
	require.NoError(t, err)

	confirmation, err := f.orch.Confirm(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "REF123", confirmation.Reference)
}

func TestCancel_KeepsCartAndPendingOrder(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()
	before := f.cart.Snapshot()

	f.orders.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.gateway.On("Initialize", ctx, mock.Anything).Return(authorization(), nil).Once()

	_, err := f.orch.Submit(ctx, validCustomer())
	require.NoError(t, err)

	require.NoError(t, f.orch.Cancel(ctx))

	assert.Equal(t, StateEditing, f.orch.State())
	assert.Equal(t, before, f.cart.Snapshot())

	current := f.orch.Current()
	require.NotNil(t, current)
	assert.Equal(t, "ORD-1", current.OrderID)
	assert.Equal(t, StateEditing, current.State)

	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel_WithoutPayment(t *testing.T) {
	f := newFixture(t)

	err := f.orch.Cancel(context.Background())

	assert.ErrorIs(t, err, model.ErrNoActivePayment)
}

func TestSubmit_PersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()
	before := f.cart.Snapshot()

	f.orders.On("Create", ctx, mock.Anything).Return(errors.New("connection refused")).Once()

	attempt, err := f.orch.Submit(ctx, validCustomer())

	assert.Nil(t, attempt)
	assert.ErrorIs(t, err, model.ErrPersistence)
	assertAction(t, err, model.ActionRetry)
	assert.Equal(t, StateFailed, f.orch.State())
	assert.Equal(t, before, f.cart.Snapshot())
	f.gateway.AssertNotCalled(t, "Initialize", mock.Anything, mock.Anything)
}

func TestSubmit_RetryAfterPersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	f.orders.On("Create", ctx, mock.Anything).Return(errors.New("timeout")).Once()
	f.orders.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.gateway.On("Initialize", ctx, mock.Anything).Return(authorization(), nil).Once()

	_, err := f.orch.Submit(ctx, validCustomer())
	require.Error(t, err)

	attempt, err := f.orch.Submit(ctx, validCustomer())
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPayment, attempt.State)
}

func TestSubmit_InitializeFailure(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	f.orders.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.gateway.On("Initialize", ctx, mock.Anything).Return(nil, errors.New("gateway down")).Once()
	f.orders.On("UpdateStatus", ctx, "ORD-1", model.OrderStatusFailed, "").Return(nil).Once()

	attempt, err := f.orch.Submit(ctx, validCustomer())

	assert.Nil(t, attempt)
	assert.ErrorIs(t, err, model.ErrPaymentFailed)
	assertAction(t, err, model.ActionRetry)
	assert.Equal(t, StateFailed, f.orch.State())
	assert.False(t, f.cart.IsEmpty())
	f.orders.AssertExpectations(t)
}

func TestSubmit_InProgress(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	f.orders.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.gateway.On("Initialize", ctx, mock.Anything).Return(authorization(), nil).Once()

	_, err := f.orch.Submit(ctx, validCustomer())
	require.NoError(t, err)

	_, err = f.orch.Submit(ctx, validCustomer())
	assert.ErrorIs(t, err, model.ErrCheckoutInProgress)
	f.orders.AssertNumberOfCalls(t, "Create", 1)
}

func TestConfirm_RecordUpdateFailure(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	f.orders.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.gateway.On("Initialize", ctx, mock.Anything).Return(authorization(), nil).Once()
	f.gateway.On("Verify", ctx, "REF123").
		Return(paid(), nil).Once()
	f.orders.On("UpdateStatus", ctx, "ORD-1", model.OrderStatusPaid, "REF123").
		Return(errors.New("write conflict")).Once()

	_, err := f.orch.Submit(ctx, validCustomer())
	require.NoError(t, err)

	confirmation, err := f.orch.Confirm(ctx, "REF123")

	assert.Nil(t, confirmation)
	assert.ErrorIs(t, err, model.ErrPaymentRecordFailed)
	assertAction(t, err, model.ActionContactSupport)
	assert.Equal(t, StateFailed, f.orch.State())
	assert.False(t, f.cart.IsEmpty())
}

func TestConfirm_VerifyTransportError(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	f.orders.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.gateway.On("Initialize", ctx, mock.Anything).Return(authorization(), nil).Once()
	f.gateway.On("Verify", ctx, "REF123").Return(nil, errors.New("timeout")).Once()

	_, err := f.orch.Submit(ctx, validCustomer())
	require.NoError(t, err)

	_, err = f.orch.Confirm(ctx, "REF123")

	assert.ErrorIs(t, err, model.ErrPaymentFailed)
	assert.Equal(t, StateAwaitingPayment, f.orch.State())
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirm_PaymentNotSuccessful(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	f.orders.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.gateway.On("Initialize", ctx, mock.Anything).Return(authorization(), nil).Once()
	f.gateway.On("Verify", ctx, "REF123").
		Return(&payment.Verification{Reference: "REF123", Status: payment.StatusFailed}, nil).Once()
	f.orders.On("UpdateStatus", ctx, "ORD-1", model.OrderStatusFailed, "").Return(nil).Once()

	_, err := f.orch.Submit(ctx, validCustomer())
	require.NoError(t, err)

	_, err = f.orch.Confirm(ctx, "REF123")

	assert.ErrorIs(t, err, model.ErrPaymentFailed)
	assert.Equal(t, StateFailed, f.orch.State())
	assert.False(t, f.cart.IsEmpty())
	f.orders.AssertExpectations(t)
}

func TestConfirm_NoActivePayment(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Confirm(context.Background(), "REF123")

	assert.ErrorIs(t, err, model.ErrNoActivePayment)
}

func TestConfirm_UnknownReference(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	f.orders.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.gateway.On("Initialize", ctx, mock.Anything).Return(authorization(), nil).Once()

	_, err := f.orch.Submit(ctx, validCustomer())
	require.NoError(t, err)

	_, err = f.orch.Confirm(ctx, "OTHER")

	assert.ErrorIs(t, err, model.ErrNoActivePayment)
	assert.Equal(t, StateAwaitingPayment, f.orch.State())
	f.gateway.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestSubmit_FreshReferencePerAttempt(t *testing.T) {
	f := &fixture{
		cart:    cart.New(zerolog.Nop()),
		orders:  new(mockOrderStore),
		gateway: new(mockGateway),
	}
	f.orch = New(f.cart, f.orders, f.gateway, NewValidator(), zerolog.Nop())
	f.fillCart(t)
	ctx := context.Background()

	f.orders.On("Create", ctx, mock.Anything).Return(nil)
	f.gateway.On("Initialize", ctx, mock.Anything).Return(&payment.Authorization{}, nil)

	first, err := f.orch.Submit(ctx, validCustomer())
	require.NoError(t, err)
	require.NoError(t, f.orch.Cancel(ctx))

	second, err := f.orch.Submit(ctx, validCustomer())
	require.NoError(t, err)

	assert.NotEqual(t, first.Reference, second.Reference)
	assert.NotEqual(t, first.OrderID, second.OrderID)
	assert.Regexp(t, `^ORD-`, first.OrderID)
	assert.Regexp(t, `^PAY-\d+-[0-9a-f]{8}$`, first.Reference)
}

func TestBegin_AfterCompletedWithNewItems(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	f.orders.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.gateway.On("Initialize", ctx, mock.Anything).Return(authorization(), nil).Once()
	f.gateway.On("Verify", ctx, "REF123").
		Return(paid(), nil).Once()
	f.orders.On("UpdateStatus", ctx, "ORD-1", model.OrderStatusPaid, "REF123").Return(nil).Once()

	_, err := f.orch.Submit(ctx, validCustomer())
	require.NoError(t, err)
	_, err = f.orch.Confirm(ctx, "REF123")
	require.NoError(t, err)

	assert.ErrorIs(t, f.orch.Begin(), model.ErrEmptyCart)

	f.fillCart(t)
	require.NoError(t, f.orch.Begin())
	assert.Equal(t, StateEditing, f.orch.State())
	assert.Nil(t, f.orch.Current())
}

func TestEditCart_FrozenWhileAwaitingPayment(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	f.orders.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.gateway.On("Initialize", ctx, mock.Anything).Return(authorization(), nil).Once()
	f.gateway.On("Verify", ctx, "REF123").Return(paid(), nil).Once()
	f.orders.On("UpdateStatus", ctx, "ORD-1", model.OrderStatusPaid, "REF123").Return(nil).Once()

	attempt, err := f.orch.Submit(ctx, validCustomer())
	require.NoError(t, err)

	p, _ := catalog.Default().Get("truqha-9")
	white, _ := p.Color("white")
	err = f.orch.EditCart(func(c *cart.Store) error {
		return c.AddToCart(p, 5, white)
	})

	assert.ErrorIs(t, err, model.ErrCheckoutInProgress)
	assert.Equal(t, 3, f.cart.CartCount())
	assert.Equal(t, ToMinorUnits(f.cart.CartTotal()), attempt.AmountMinor)

	_, err = f.orch.Confirm(ctx, "REF123")
	require.NoError(t, err)
	assert.True(t, f.cart.IsEmpty())

	err = f.orch.EditCart(func(c *cart.Store) error {
		return c.AddToCart(p, 5, white)
	})
	require.NoError(t, err)
	assert.Equal(t, 5, f.cart.CartCount())
}

func TestEditCart_AllowedAfterCancel(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	f.orders.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.gateway.On("Initialize", ctx, mock.Anything).Return(authorization(), nil).Once()

	_, err := f.orch.Submit(ctx, validCustomer())
	require.NoError(t, err)
	require.NoError(t, f.orch.Cancel(ctx))

	err = f.orch.EditCart(func(c *cart.Store) error {
		c.RemoveFromCart("truqha-9", "black")
		return nil
	})

	require.NoError(t, err)
	assert.True(t, f.cart.IsEmpty())
}

func TestConfirm_AmountMismatch(t *testing.T) {
	tests := []struct {
		name    string
		charged int64
	}{
		{name: "Undercharged", charged: threeCapsMinor - 100},
		{name: "Overcharged", charged: threeCapsMinor + 1},
		{name: "Missing amount", charged: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.fillCart(t)
			ctx := context.Background()

			f.orders.On("Create", ctx, mock.Anything).Return(nil).Once()
			f.gateway.On("Initialize", ctx, mock.Anything).Return(authorization(), nil).Once()
			f.gateway.On("Verify", ctx, "REF123").
				Return(&payment.Verification{Reference: "REF123", Status: payment.StatusSuccess, AmountMinor: tt.charged}, nil).Once()

			_, err := f.orch.Submit(ctx, validCustomer())
			require.NoError(t, err)

			confirmation, err := f.orch.Confirm(ctx, "REF123")

			assert.Nil(t, confirmation)
			assert.ErrorIs(t, err, model.ErrPaymentRecordFailed)
			assertAction(t, err, model.ActionContactSupport)
			assert.Equal(t, StateFailed, f.orch.State())
			assert.False(t, f.cart.IsEmpty())
			f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
