package application

import (
	"context"
	"fmt"

	"github.com/sebuszqo/BarberCheckout/internal/checkout/domain"
	checkoutErrors "github.com/sebuszqo/BarberCheckout/internal/checkout/errors"
	"github.com/shopspring/decimal"
)

// CartStore is one session's cart. Every mutation is persisted before it returns.
// It is not safe for concurrent use; Checkout serialises access to it.
type CartStore struct {
	repo      domain.CartRepository
	sessionID string
	cart      domain.Cart
}

func LoadCartStore(ctx context.Context, repo domain.CartRepository, sessionID string) (*CartStore, error) {
	cart, err := repo.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("could not load cart: %w", err)
	}
	if cart == nil {
		cart = domain.NewCart()
	}
	return &CartStore{repo: repo, sessionID: sessionID, cart: cart}, nil
}

func (s *CartStore) Cart() domain.Cart {
	return s.cart.Clone()
}

func (s *CartStore) IsEmpty() bool {
	return s.cart.IsEmpty()
}

func (s *CartStore) ItemCount() int {
	return s.cart.ItemCount()
}

func (s *CartStore) Subtotal() decimal.Decimal {
	return s.cart.Subtotal()
}

// AddItem merges the quantity into an existing entry with the same id.
func (s *CartStore) AddItem(ctx context.Context, item domain.CartItem) error {
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	item.RoundToTwoDecimalPlaces()
	if err := item.Validate(); err != nil {
		return err
	}

	next := s.cart.Clone()
	if existing, ok := next[item.ID]; ok {
		quantity, err := existing.AddQuantity(item.Quantity)
		if err != nil {
			return err
		}
		existing.Quantity = quantity
		next[item.ID] = existing
	} else {
		next[item.ID] = item
	}
	return s.commit(ctx, next)
}

// UpdateQuantity adds delta to the item's quantity and drops the item once it reaches zero.
func (s *CartStore) UpdateQuantity(ctx context.Context, itemID string, delta int) error {
	item, ok := s.cart[itemID]
	if !ok {
		return checkoutErrors.ErrItemNotFound
	}

	quantity, err := item.AddQuantity(delta)
	if err != nil {
		return err
	}

	next := s.cart.Clone()
	item.Quantity = quantity
	if item.Quantity <= 0 {
		delete(next, itemID)
	} else {
		next[itemID] = item
	}
	return s.commit(ctx, next)
}

func (s *CartStore) RemoveItem(ctx context.Context, itemID string, confirmed bool) error {
	if _, ok := s.cart[itemID]; !ok {
		return checkoutErrors.ErrItemNotFound
	}
	if !confirmed {
		return checkoutErrors.ErrRemovalNotConfirmed
	}

	next := s.cart.Clone()
	delete(next, itemID)
	return s.commit(ctx, next)
}

// Clear empties the cart and drops the persisted entry. The in-memory cart is
// emptied even when the store fails.
func (s *CartStore) Clear(ctx context.Context) error {
	s.cart = domain.NewCart()
	if err := s.repo.Clear(ctx, s.sessionID); err != nil {
		return fmt.Errorf("could not clear cart: %w", err)
	}
	return nil
}

func (s *CartStore) commit(ctx context.Context, next domain.Cart) error {
	if err := s.repo.Save(ctx, s.sessionID, next); err != nil {
		return fmt.Errorf("could not save cart: %w", err)
	}
	s.cart = next
	return nil
}
