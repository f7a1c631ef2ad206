package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sebuszqo/BarberCheckout/internal/auth"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/application"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/domain"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/infrastructure"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const testSession = "session-1"

type manualScheduler struct {
	mu    sync.Mutex
	funcs []func()
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funcs = append(s.funcs, f)
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

type failingProvider struct{}

func (failingProvider) Get(context.Context, string) (*application.Checkout, error) {
	return nil, errors.New("store unavailable")
}

type handlerFixture struct {
	repo      *infrastructure.MockCartRepository
	scheduler *manualScheduler
	sessions  *application.SessionRegistry
	cart      *CartHandler
	payment   *PaymentHandler
	checkout  *CheckoutHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	f := &handlerFixture{
		repo:      infrastructure.NewMockCartRepository(),
		scheduler: &manualScheduler{},
	}
	f.repo.Carts[testSession] = domain.Cart{
		"1": {ID: "1", Name: "Pomade", Price: 10.00, Quantity: 2, Image: "/img/pomade.png"},
		"2": {ID: "2", Name: "Comb", Price: 5.00, Quantity: 1, Image: "/img/comb.png"},
	}
	now := func() time.Time { return time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC) }
	f.sessions = application.NewSessionRegistry(func(ctx context.Context, sessionID string) (*application.Checkout, error) {
		return application.NewCheckout(ctx, sessionID, f.repo, application.Options{
			Now:       now,
			Scheduler: f.scheduler,
			Logger:    logger,
		})
	}, now, logger)

	f.cart = NewCartHandler(f.sessions, RespondJSON, RespondError, logger)
	f.payment = NewPaymentHandler(f.sessions, RespondJSON, RespondError, logger)
	f.checkout = NewCheckoutHandler(f.sessions, RespondJSON, RespondError, logger)
	return f
}

func newSessionRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(auth.WithSessionID(req.Context(), testSession))
}

func decodeResponse(t *testing.T, res *http.Response) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	return response
}

func dataOf(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", response)
	return data
}
