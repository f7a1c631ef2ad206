package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebuszqo/BarberCheckout/internal/auth"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/application"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/domain"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/infrastructure"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/interfaces"
	"github.com/sebuszqo/BarberCheckout/internal/config"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unreachableStore struct {
	*infrastructure.MemoryStateStore
}

func (unreachableStore) Ping(context.Context) error {
	return errors.New("connection refused")
}

type testServer struct {
	server   *Server
	handler  http.Handler
	store    domain.StateStore
	registry *application.SessionRegistry
	cookie   *http.Cookie
}

func newTestServer(t *testing.T, store domain.StateStore) *testServer {
	t.Helper()
	logger, _ := test.NewNullLogger()
	jwtManager, err := auth.NewJWTManager("test-secret")
	require.NoError(t, err)

	repo := infrastructure.NewCartRepository(store, logger)
	registry := application.NewSessionRegistry(func(ctx context.Context, sessionID string) (*application.Checkout, error) {
		return application.NewCheckout(ctx, sessionID, repo, application.Options{
			PaymentDelay: 10 * time.Millisecond,
			Logger:       logger,
		})
	}, time.Now, logger)

	server := NewServer(
		interfaces.NewCartHandler(registry, interfaces.RespondJSON, interfaces.RespondError, logger),
		interfaces.NewPaymentHandler(registry, interfaces.RespondJSON, interfaces.RespondError, logger),
		interfaces.NewCheckoutHandler(registry, interfaces.RespondJSON, interfaces.RespondError, logger),
		auth.SessionMiddleware(jwtManager, auth.SessionMiddlewareConfig{}, logger),
		store,
		logger,
	)
	server.RegisterRoutes()
	return &testServer{server: server, handler: server.Handler(), store: store, registry: registry}
}

func (s *testServer) do(t *testing.T, method, target string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	res := w.Result()
	t.Cleanup(func() { res.Body.Close() })
	for _, cookie := range res.Cookies() {
		if cookie.Name == auth.SessionCookieName {
			s.cookie = cookie
		}
	}
	var payload map[string]interface{}
	_ = json.NewDecoder(res.Body).Decode(&payload)
	return res, payload
}

func TestReady(t *testing.T) {
	s := newTestServer(t, infrastructure.NewMemoryStateStore())

	res, payload := s.do(t, http.MethodGet, "/api/ready", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ready", payload["status"])
	assert.Empty(t, res.Cookies(), "readiness does not start a session")
}

func TestReady_StoreDown(t *testing.T) {
	s := newTestServer(t, unreachableStore{infrastructure.NewMemoryStateStore()})

	res, _ := s.do(t, http.MethodGet, "/api/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestReady_SQLiteReportsDatabase(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := config.Config{StoreDriver: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "checkout.db")}
	store, err := openStateStore(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer store.close()
	require.NotNil(t, store.db)

	s := newTestServer(t, store)
	s.server.SetDatabaseHealth(store.db.Health)

	res, payload := s.do(t, http.MethodGet, "/api/ready", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ready", payload["status"])
	assert.Equal(t, "up", payload["database"])
}

func TestReady_DatabaseDown(t *testing.T) {
	s := newTestServer(t, infrastructure.NewMemoryStateStore())
	s.server.SetDatabaseHealth(func(context.Context) map[string]string {
		return map[string]string{"status": "down", "error": "db down: connection refused"}
	})

	res, payload := s.do(t, http.MethodGet, "/api/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	assert.Equal(t, "down", payload["database"])
}

func TestOpenStateStore_MemoryHasNoDatabase(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store, err := openStateStore(context.Background(), config.Config{StoreDriver: config.StoreMemory}, logger)
	require.NoError(t, err)
	defer store.close()

	assert.Nil(t, store.db)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, infrastructure.NewMemoryStateStore())

	res, payload := s.do(t, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "Path not found", payload["message"])
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, infrastructure.NewMemoryStateStore())

	res, _ := s.do(t, http.MethodDelete, "/api/cart", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t, infrastructure.NewMemoryStateStore())

	res, payload := s.do(t, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NotNil(t, s.cookie, "first request issues a session cookie")
	assert.NotNil(t, payload["data"].(map[string]interface{})["empty"])

	res, _ = s.do(t, http.MethodPost, "/api/cart/items", map[string]interface{}{"id": "1", "name": "Pomade", "price": 10, "quantity": 2})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	res, _ = s.do(t, http.MethodPost, "/api/cart/items", map[string]interface{}{"id": "2", "name": "Comb", "price": 5})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res, _ = s.do(t, http.MethodDelete, "/api/cart/items/2", nil)
	assert.Equal(t, http.StatusPreconditionRequired, res.StatusCode)

	res, payload = s.do(t, http.MethodPatch, "/api/cart/items/1", map[string]int{"delta": 1})
	require.Equal(t, http.StatusOK, res.StatusCode)
	summary := payload["data"].(map[string]interface{})["summary"].(map[string]interface{})
	assert.Equal(t, "S/ 35.00", summary["total"])

	res, _ = s.do(t, http.MethodPost, "/api/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, "card form is still empty")

	res, _ = s.do(t, http.MethodPut, "/api/payment/method", map[string]string{"method": "plin"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, payload = s.do(t, http.MethodPost, "/api/checkout", map[string]string{})
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, "PLIN", payload["data"].(map[string]interface{})["method"])

	assert.Eventually(t, func() bool {
		_, payload := s.do(t, http.MethodGet, "/api/checkout", nil)
		data := payload["data"].(map[string]interface{})
		return data["confirmation"] != nil
	}, time.Second, 10*time.Millisecond)

	_, payload = s.do(t, http.MethodGet, "/api/checkout", nil)
	data := payload["data"].(map[string]interface{})
	assert.Equal(t, "Payment completed successfully with PLIN for a total of S/ 35.00", data["confirmation"].(map[string]interface{})["message"])
	assert.NotNil(t, data["cart"].(map[string]interface{})["empty"])
	assert.Equal(t, "card", data["payment"].(map[string]interface{})["selected"])
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestServer(t, infrastructure.NewMemoryStateStore())

	res, _ := s.do(t, http.MethodPost, "/api/cart/items", map[string]interface{}{"id": "1", "name": "Pomade", "price": 10})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	s.cookie = nil
	_, payload := s.do(t, http.MethodGet, "/api/cart", nil)
	assert.NotNil(t, payload["data"].(map[string]interface{})["empty"])
	assert.Equal(t, 2, s.registry.Len())
}

func TestStartSessionSweeper(t *testing.T) {
	logger, _ := test.NewNullLogger()
	registry := application.NewSessionRegistry(nil, time.Now, logger)

	_, err := StartSessionSweeper(registry, "not a schedule", time.Minute, logger)
	assert.Error(t, err)

	c, err := StartSessionSweeper(registry, "@every 1h", time.Minute, logger)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
