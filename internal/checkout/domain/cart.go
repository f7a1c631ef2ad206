package domain

import (
	"context"
	"sort"
	"strconv"
	"strings"

	checkoutErrors "github.com/sebuszqo/BarberCheckout/internal/checkout/errors"
	"github.com/shopspring/decimal"
)

// CartStorageKey is the key the serialized cart lives under in a session's namespace.
const CartStorageKey = "barbershop_cart"

const maxItemNameLength = 120

// MaxItemQuantity caps a single line so quantities and totals stay in range.
const MaxItemQuantity = 999

type CartItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

func (i CartItem) UnitPrice() decimal.Decimal {
	return decimal.NewFromFloat(i.Price)
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i *CartItem) RoundToTwoDecimalPlaces() {
	i.Price = decimal.NewFromFloat(i.Price).Round(2).InexactFloat64()
}

func (i *CartItem) Validate() error {
	validationErrors := &checkoutErrors.ValidationErrors{}
	if strings.TrimSpace(i.ID) == "" {
		validationErrors.Add(checkoutErrors.NewFieldValidationError("id", "Item id is required"))
	}
	if strings.TrimSpace(i.Name) == "" {
		validationErrors.Add(checkoutErrors.NewFieldValidationError("name", "Item name is required"))
	}
	if len(i.Name) > maxItemNameLength {
		validationErrors.Add(checkoutErrors.NewFieldValidationError("name", "Item name is too long"))
	}
	if i.Price < 0 {
		validationErrors.Add(checkoutErrors.NewFieldValidationError("price", "Price must not be negative"))
	}
	if i.Quantity < 1 {
		validationErrors.Add(checkoutErrors.NewFieldValidationError("quantity", "Quantity must be at least 1"))
	}
	if i.Quantity > MaxItemQuantity {
		validationErrors.Add(checkoutErrors.ErrQuantityLimit)
	}
	return validationErrors.ErrOrNil()
}

// AddQuantity returns the quantity after adding delta. A result above
// MaxItemQuantity is rejected; a result of zero or less means the line is removed.
func (i CartItem) AddQuantity(delta int) (int, error) {
	if delta > MaxItemQuantity-i.Quantity {
		return 0, checkoutErrors.ErrQuantityLimit
	}
	if delta < -i.Quantity {
		return 0, nil
	}
	return i.Quantity + delta, nil
}

// Cart maps item id to item. Entries hold a quantity between 1 and MaxItemQuantity.
type Cart map[string]CartItem

func NewCart() Cart {
	return make(Cart)
}

func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

func (c Cart) ItemCount() int {
	total := 0
	for _, item := range c {
		total += item.Quantity
	}
	return total
}

func (c Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range c {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

// Total equals Subtotal; no tax or shipping is charged.
func (c Cart) Total() decimal.Decimal {
	return c.Subtotal()
}

// Items returns the entries in display order: numeric ids ascending, then the rest lexicographically.
func (c Cart) Items() []CartItem {
	items := make([]CartItem, 0, len(c))
	for _, item := range c {
		items = append(items, item)
	}
	sort.Slice(items, func(a, b int) bool {
		return lessItemID(items[a].ID, items[b].ID)
	})
	return items
}

func (c Cart) Clone() Cart {
	clone := make(Cart, len(c))
	for id, item := range c {
		clone[id] = item
	}
	return clone
}

func lessItemID(a, b string) bool {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

type CartRepository interface {
	Load(ctx context.Context, sessionID string) (Cart, error)
	Save(ctx context.Context, sessionID string, cart Cart) error
	Clear(ctx context.Context, sessionID string) error
}

// StateStore is a namespaced string key-value store standing in for browser local storage.
type StateStore interface {
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
	Ping(ctx context.Context) error
}
