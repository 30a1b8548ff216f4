package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/admin"
	"storefront/internal/handler"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"serve", "orders", "migrate", "check"}, names)

	migrate, _, err := cmd.Find([]string{"migrate", "up"})
	require.NoError(t, err)
	assert.Equal(t, "up", migrate.Name())
}

func TestOrdersOptions_Query(t *testing.T) {
	tests := []struct {
		name        string
		opts        ordersOptions
		expected    admin.Query
		expectError bool
	}{
		{
			name:     "Defaults",
			opts:     ordersOptions{status: admin.StatusAll},
			expected: admin.DefaultQuery(),
		},
		{
			name: "Sort without direction is ascending",
			opts: ordersOptions{status: "paid", search: "ada", sort: "total"},
			expected: admin.Query{
				Status:    "paid",
				Search:    "ada",
				SortKey:   admin.SortByTotal,
				Direction: admin.Asc,
			},
		},
		{
			name:        "Unknown status",
			opts:        ordersOptions{status: "refunded"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := tt.opts.query()

			if tt.expectError {
				assert.ErrorIs(t, err, model.ErrInvalidQuery)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, q)
		})
	}
}

func TestRenderOrders(t *testing.T) {
	list := &service.OrderList{
		Orders: []model.OrderRecord{
			{
				ID:               "ORD-1",
				Customer:         model.OrderCustomer{Name: "Ada Obi", Email: "ada@example.com"},
				Items:            []model.OrderItem{{Name: "TRUQHA 9", Quantity: 3}},
				Total:            decimal.RequireFromString("20999.97"),
				Status:           model.OrderStatusPaid,
				CreatedAt:        time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
				PaymentReference: "REF123",
			},
		},
		Showing: 1,
		Total:   4,
		Stats: admin.Stats{
			Orders:    4,
			Revenue:   decimal.RequireFromString("41999.94"),
			Customers: 2,
			ItemsSold: 6,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, renderOrders(&buf, list))

	out := buf.String()
	assert.Contains(t, out, "ORD-1")
	assert.Contains(t, out, "2026-03-01 09:30")
	assert.Contains(t, out, "20999.97")
	assert.Contains(t, out, "REF123")
	assert.Contains(t, out, "Showing 1 of 4 orders. Revenue 41999.94 from 2 customers, 6 items sold.")
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestRunChecks(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	t.Run("all ok", func(t *testing.T) {
		var buf bytes.Buffer
		err := runChecks(context.Background(), &buf, map[string]handler.Pinger{"orders": ok, "cache": ok})

		require.NoError(t, err)
		assert.Equal(t, "cache    OK\norders   OK\n", buf.String())
	})

	t.Run("one failure", func(t *testing.T) {
		var buf bytes.Buffer
		err := runChecks(context.Background(), &buf, map[string]handler.Pinger{"orders": ok, "cache": down})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 checks failed")
		assert.Contains(t, buf.String(), "cache    FAIL  connection refused")
	})
}
