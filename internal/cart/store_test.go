package cart

import (
	"sync"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	black = model.Color{ID: "black", Name: "Black", Image: "/assets/products/truqha_black.png"}
	red   = model.Color{ID: "red", Name: "Red", Image: "/assets/products/truqha_red.png"}
)

func testProduct(id, price string) model.Product {
	return model.Product{
		ID:     id,
		Name:   "Product " + id,
		Price:  decimal.RequireFromString(price),
		Colors: []model.Color{black, red},
	}
}

func TestStore_AddToCart_MergesSameProductAndColor(t *testing.T) {
	s := New(zerolog.Nop())
	p := testProduct("truqha-9", "6999.99")

	for _, q := range []int{1, 2, 4} {
		require.NoError(t, s.AddToCart(p, q, black))
	}

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
	assert.Equal(t, "48999.93", items[0].LineTotal().String())
	assert.Equal(t, 7, s.CartCount())
}

func TestStore_AddToCart_DistinctPairsProduceDistinctItems(t *testing.T) {
	s := New(zerolog.Nop())
	a := testProduct("A", "10.50")
	b := testProduct("B", "3.25")

	require.NoError(t, s.AddToCart(a, 1, black))
	require.NoError(t, s.AddToCart(a, 2, red))
	require.NoError(t, s.AddToCart(b, 3, black))

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, Key{ProductID: "A", ColorID: "black"}, items[0].Key())
	assert.Equal(t, Key{ProductID: "A", ColorID: "red"}, items[1].Key())
	assert.Equal(t, Key{ProductID: "B", ColorID: "black"}, items[2].Key())

	assert.Equal(t, 6, s.CartCount())
	// 10.50 + 21.00 + 9.75
	assert.Equal(t, "41.25", s.CartTotal().String())
}

func TestStore_AddToCart_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		color    model.Color
		want     error
	}{
		{name: "Zero quantity", quantity: 0, color: black, want: model.ErrInvalidQuantity},
		{name: "Negative quantity", quantity: -3, color: black, want: model.ErrInvalidQuantity},
		{name: "Unknown color", quantity: 1, color: model.Color{ID: "green"}, want: model.ErrInvalidColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(zerolog.Nop())
			err := s.AddToCart(testProduct("A", "1"), tt.quantity, tt.color)

			assert.ErrorIs(t, err, tt.want)
			assert.True(t, s.IsEmpty())
			assert.False(t, s.IsOpen(), "failed add must not open the sidebar")
		})
	}
}

func TestStore_AddToCart_OpensSidebar(t *testing.T) {
	s := New(zerolog.Nop())
	assert.False(t, s.IsOpen())

	require.NoError(t, s.AddToCart(testProduct("A", "1"), 1, black))
	assert.True(t, s.IsOpen())

	s.SetIsOpen(false)
	assert.False(t, s.IsOpen())
	assert.Equal(t, 1, s.Len(), "closing the sidebar leaves contents alone")
}

func TestStore_AddToCart_SnapshotsProductByValue(t *testing.T) {
	s := New(zerolog.Nop())
	p := testProduct("A", "100")
	require.NoError(t, s.AddToCart(p, 1, black))

	p.Price = decimal.NewFromInt(1)
	p.Colors[0].Name = "Renamed"

	items := s.Items()
	assert.Equal(t, "100", items[0].Product.Price.String())
	assert.Equal(t, "Black", items[0].SelectedColor.Name)
	assert.Equal(t, "Black", items[0].Product.Colors[0].Name)

	// mutating a returned copy must not reach the store either
	items[0].Quantity = 99
	assert.Equal(t, 1, s.CartCount())
}

func TestStore_UpdateQuantity(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddToCart(testProduct("A", "2.50"), 2, black))
	require.NoError(t, s.AddToCart(testProduct("B", "1.00"), 1, black))

	s.UpdateQuantity("A", "black", 5)
	assert.Equal(t, 6, s.CartCount())
	assert.Equal(t, "13.5", s.CartTotal().String())

	for _, q := range []int{0, -1} {
		s.UpdateQuantity("A", "black", q)
		assert.Equal(t, 5, s.Items()[0].Quantity, "quantity %d must be ignored", q)
	}
	assert.Equal(t, 2, s.Len())

	s.UpdateQuantity("missing", "black", 3)
	assert.Equal(t, 6, s.CartCount())
}

func TestStore_RemoveFromCart(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddToCart(testProduct("A", "1"), 1, black))
	require.NoError(t, s.AddToCart(testProduct("A", "1"), 1, red))

	s.RemoveFromCart("A", "blue")
	s.RemoveFromCart("Z", "black")
	assert.Equal(t, 2, s.Len())

	s.RemoveFromCart("A", "black")
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "red", items[0].SelectedColor.ID)
}

func TestStore_ClearCart(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddToCart(testProduct("A", "9.99"), 3, black))

	s.ClearCart()

	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.CartCount())
	assert.True(t, s.CartTotal().IsZero())
}

func TestStore_RoundTripTotals(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddToCart(testProduct("A", "1000"), 2, black))
	require.NoError(t, s.AddToCart(testProduct("B", "500"), 1, black))

	assert.Equal(t, "2500", s.CartTotal().String())
	assert.Equal(t, 3, s.CartCount())
}

func TestStore_TruqhaScenario(t *testing.T) {
	s := New(zerolog.Nop())
	p := testProduct("truqha-9", "6999.99")
	require.NoError(t, s.AddToCart(p, 1, black))

	s.UpdateQuantity("truqha-9", "black", 3)
	assert.Equal(t, "20999.97", s.CartTotal().String())

	s.RemoveFromCart("truqha-9", "black")
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.CartCount())
	assert.True(t, s.CartTotal().IsZero())
}

func TestStore_Snapshot(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddToCart(testProduct("A", "0.10"), 3, black))

	snap := s.Snapshot()
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, 3, snap.Count)
	assert.Equal(t, "0.3", snap.Total.String())
	assert.True(t, snap.IsOpen)
}

func TestStore_ConcurrentAdds(t *testing.T) {
	s := New(zerolog.Nop())
	p := testProduct("A", "0.01")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.AddToCart(p, 2, black)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 100, s.CartCount())
	assert.Equal(t, "1", s.CartTotal().String())
}
