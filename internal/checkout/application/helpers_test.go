package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sebuszqo/BarberCheckout/internal/checkout/domain"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/infrastructure"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func mustUpdateForm(t *testing.T, checkout *Checkout, form domain.PaymentForm) CheckoutView {
	t.Helper()
	view, err := checkout.UpdateForm(form)
	require.NoError(t, err)
	return view
}

type manualScheduler struct {
	mu     sync.Mutex
	delays []time.Duration
	funcs  []func()
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	s.funcs = append(s.funcs, f)
}

func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.funcs)
}

func (s *manualScheduler) Fire() {
	s.mu.Lock()
	funcs := s.funcs
	s.funcs = nil
	s.mu.Unlock()
	for _, f := range funcs {
		f()
	}
}

type recordingSender struct {
	mu       sync.Mutex
	to       []string
	receipts []domain.Receipt
}

func (s *recordingSender) QueueReceipt(to string, receipt domain.Receipt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.to = append(s.to, to)
	s.receipts = append(s.receipts, receipt)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type checkoutFixture struct {
	checkout  *Checkout
	repo      *infrastructure.MockCartRepository
	scheduler *manualScheduler
	receipts  *recordingSender
	clock     *testClock
}

func newCheckoutFixture(t *testing.T, initial domain.Cart) checkoutFixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	repo := infrastructure.NewMockCartRepository()
	if initial != nil {
		repo.Carts["session-1"] = initial
	}
	fixture := checkoutFixture{
		repo:      repo,
		scheduler: &manualScheduler{},
		receipts:  &recordingSender{},
		clock:     &testClock{now: referenceNow},
	}
	checkout, err := NewCheckout(context.Background(), "session-1", repo, Options{
		PaymentDelay: 2 * time.Second,
		Now:          fixture.clock.Now,
		Scheduler:    fixture.scheduler,
		Receipts:     fixture.receipts,
		Logger:       logger,
	})
	require.NoError(t, err)
	fixture.checkout = checkout
	return fixture
}

func sampleCart() domain.Cart {
	return domain.Cart{
		"A": {ID: "A", Name: "Pomade", Price: 10.00, Quantity: 2, Image: "/img/pomade.png"},
		"B": {ID: "B", Name: "Comb", Price: 5.00, Quantity: 1, Image: "/img/comb.png"},
	}
}

func validForm() domain.PaymentForm {
	return domain.PaymentForm{CardNumber: "4111111111111111", Expiry: "1230", CVV: "123", Name: "Ana Torres"}
}
