package application

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type CheckoutFactory func(ctx context.Context, sessionID string) (*Checkout, error)

// SessionRegistry keeps one Checkout per browser session. A session's cart is
// loaded from the store the first time the session is seen.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Checkout
	factory  CheckoutFactory
	now      func() time.Time
	log      logrus.FieldLogger
}

func NewSessionRegistry(factory CheckoutFactory, now func() time.Time, log logrus.FieldLogger) *SessionRegistry {
	if now == nil {
		now = time.Now
	}
	return &SessionRegistry{
		sessions: make(map[string]*Checkout),
		factory:  factory,
		now:      now,
		log:      log,
	}
}

func (r *SessionRegistry) Get(ctx context.Context, sessionID string) (*Checkout, error) {
	r.mu.Lock()
	checkout, ok := r.sessions[sessionID]
	if ok {
		checkout.touch()
	}
	r.mu.Unlock()
	if ok {
		return checkout, nil
	}

	created, err := r.factory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[sessionID]; ok {
		existing.touch()
		return existing, nil
	}
	r.sessions[sessionID] = created
	r.log.WithField("session_id", sessionID).Debug("Checkout session loaded")
	return created, nil
}

// Sweep forgets sessions idle for longer than idle. Sessions with a payment in
// flight are kept; persisted carts are untouched. A swept Checkout is retired so
// a caller still holding it gets ErrSessionExpired instead of writing next to
// the instance the next Get loads.
func (r *SessionRegistry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	removed := 0
	for id, checkout := range r.sessions {
		if checkout.retireIfIdle(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		r.log.WithField("removed", removed).Info("Idle checkout sessions swept")
	}
	return removed
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
