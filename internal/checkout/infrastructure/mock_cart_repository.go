package infrastructure

import (
	"context"
	"sync"

	"github.com/sebuszqo/BarberCheckout/internal/checkout/domain"
)

type MockCartRepository struct {
	mu       sync.Mutex
	Carts    map[string]domain.Cart
	LoadErr  error
	SaveErr  error
	ClearErr error
	Saves    int
	Clears   int
}

func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{Carts: make(map[string]domain.Cart)}
}

func (m *MockCartRepository) Load(_ context.Context, sessionID string) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if cart, ok := m.Carts[sessionID]; ok {
		return cart.Clone(), nil
	}
	return domain.NewCart(), nil
}

func (m *MockCartRepository) Save(_ context.Context, sessionID string, cart domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saves++
	m.Carts[sessionID] = cart.Clone()
	return nil
}

func (m *MockCartRepository) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.Clears++
	delete(m.Carts, sessionID)
	return nil
}

func (m *MockCartRepository) Stored(sessionID string) (domain.Cart, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.Carts[sessionID]
	return cart, ok
}
