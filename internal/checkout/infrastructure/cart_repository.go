package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sebuszqo/BarberCheckout/internal/checkout/domain"
	"github.com/sirupsen/logrus"
)

// CartRepository stores a session's cart as one JSON blob under domain.CartStorageKey.
type CartRepository struct {
	store domain.StateStore
	log   logrus.FieldLogger
}

func NewCartRepository(store domain.StateStore, log logrus.FieldLogger) *CartRepository {
	return &CartRepository{store: store, log: log}
}

// Load returns an empty cart when nothing is stored or the stored blob cannot be parsed.
func (r *CartRepository) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	value, ok, err := r.store.Get(ctx, sessionID, domain.CartStorageKey)
	if err != nil {
		return nil, fmt.Errorf("could not read cart state: %w", err)
	}
	if !ok || strings.TrimSpace(value) == "" {
		return domain.NewCart(), nil
	}

	var stored map[string]domain.CartItem
	if err := json.Unmarshal([]byte(value), &stored); err != nil {
		r.log.WithError(err).WithField("session_id", sessionID).Warn("Discarding unreadable cart state")
		return domain.NewCart(), nil
	}

	cart := domain.NewCart()
	for id, item := range stored {
		if item.Quantity <= 0 {
			continue
		}
		if item.Quantity > domain.MaxItemQuantity {
			item.Quantity = domain.MaxItemQuantity
		}
		// The map key is what routes address, so it wins over the stored id.
		item.ID = id
		cart[id] = item
	}
	return cart, nil
}

func (r *CartRepository) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	if cart == nil {
		cart = domain.NewCart()
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("could not encode cart: %w", err)
	}
	return r.store.Set(ctx, sessionID, domain.CartStorageKey, string(data))
}

func (r *CartRepository) Clear(ctx context.Context, sessionID string) error {
	return r.store.Delete(ctx, sessionID, domain.CartStorageKey)
}
