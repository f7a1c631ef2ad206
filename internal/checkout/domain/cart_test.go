package domain

import (
	"math"
	"testing"

	checkoutErrors "github.com/sebuszqo/BarberCheckout/internal/checkout/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartSubtotal(t *testing.T) {
	cart := Cart{
		"A": {ID: "A", Name: "Pomade", Price: 10.00, Quantity: 2},
		"B": {ID: "B", Name: "Comb", Price: 5.00, Quantity: 1},
	}

	assert.True(t, cart.Subtotal().Equal(decimal.RequireFromString("25.00")), "got %s", cart.Subtotal())
	assert.True(t, cart.Total().Equal(cart.Subtotal()))
	assert.Equal(t, "S/ 25.00", FormatMoney(DefaultCurrencySymbol, cart.Total()))
	assert.Equal(t, 3, cart.ItemCount())
}

func TestCartSubtotal_NoFloatDrift(t *testing.T) {
	cart := Cart{
		"1": {ID: "1", Name: "Beard oil", Price: 0.1, Quantity: 3},
		"2": {ID: "2", Name: "Wax", Price: 0.2, Quantity: 1},
	}

	assert.Equal(t, "0.50", cart.Subtotal().StringFixed(2))
}

func TestCartEmpty(t *testing.T) {
	cart := NewCart()

	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0, cart.ItemCount())
	assert.Equal(t, "S/ 0.00", FormatMoney(DefaultCurrencySymbol, cart.Subtotal()))
}

func TestCartItems_DisplayOrder(t *testing.T) {
	cart := Cart{
		"10":     {ID: "10"},
		"2":      {ID: "2"},
		"shaver": {ID: "shaver"},
		"brush":  {ID: "brush"},
	}

	var ids []string
	for _, item := range cart.Items() {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"2", "10", "brush", "shaver"}, ids)
}

func TestCartItems_EqualNumericIDsOrderByText(t *testing.T) {
	cart := Cart{
		"1":  {ID: "1"},
		"01": {ID: "01"},
		"2":  {ID: "2"},
	}

	for i := 0; i < 20; i++ {
		var ids []string
		for _, item := range cart.Items() {
			ids = append(ids, item.ID)
		}
		assert.Equal(t, []string{"01", "1", "2"}, ids)
	}
}

func TestCartItemValidate(t *testing.T) {
	valid := CartItem{ID: "1", Name: "Pomade", Price: 25.5, Quantity: 1}
	assert.NoError(t, valid.Validate())

	invalid := CartItem{Price: -1}
	err := invalid.Validate()
	assert.Error(t, err)
	assert.True(t, checkoutErrors.IsValidationErrors(err))
	assert.Contains(t, err.Error(), "Item id is required")
	assert.Contains(t, err.Error(), "Quantity must be at least 1")

	tooMany := CartItem{ID: "1", Name: "Pomade", Price: 25.5, Quantity: MaxItemQuantity + 1}
	err = tooMany.Validate()
	assert.ErrorIs(t, err, checkoutErrors.ErrQuantityLimit)
}

func TestCartItemAddQuantity(t *testing.T) {
	item := CartItem{ID: "1", Quantity: 2}

	tests := []struct {
		name    string
		delta   int
		want    int
		wantErr error
	}{
		{name: "increment", delta: 1, want: 3},
		{name: "up to the limit", delta: MaxItemQuantity - 2, want: MaxItemQuantity},
		{name: "past the limit", delta: MaxItemQuantity - 1, wantErr: checkoutErrors.ErrQuantityLimit},
		{name: "max int", delta: math.MaxInt, wantErr: checkoutErrors.ErrQuantityLimit},
		{name: "decrement to zero", delta: -2, want: 0},
		{name: "min int", delta: math.MinInt, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := item.AddQuantity(tt.delta)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCartItemRoundToTwoDecimalPlaces(t *testing.T) {
	item := CartItem{Price: 19.999}
	item.RoundToTwoDecimalPlaces()

	assert.Equal(t, 20.0, item.Price)
}

func TestCartClone(t *testing.T) {
	cart := Cart{"1": {ID: "1", Quantity: 1}}
	clone := cart.Clone()
	delete(clone, "1")

	assert.Len(t, cart, 1)
}
