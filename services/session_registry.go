package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/identity"
	"go.uber.org/zap"
)

var ErrMissingDevice = errors.New("device id is required")

// DeviceStoreFactory returns the durable store scoped to one shopper device.
type DeviceStoreFactory func(deviceID string) LocalDurableStore

// Session is the cart state of one shopper device.
type Session struct {
	DeviceID string
	Identity *identity.Source
	Cart     *CartService
	Notices  *NoticeInbox

	initMu   sync.Mutex
	ready    bool
	lastSeen time.Time
}

// RegistryDeps are shared by every session the registry creates.
type RegistryDeps struct {
	Products ProductLookup
	Store    CartStore
	Devices  DeviceStoreFactory
	Events   CartEvents
	Logger   *zap.Logger
}

// SessionRegistry owns one Session per device id.
type SessionRegistry struct {
	deps   RegistryDeps
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionRegistry(deps RegistryDeps) *SessionRegistry {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRegistry{
		deps:     deps,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session of deviceID, creating and initialising it on first
// use. A session whose initial load failed is retried on the next call, and
// one disposed by eviction is replaced.
func (r *SessionRegistry) Get(ctx context.Context, deviceID string) (*Session, error) {
	if deviceID == "" {
		return nil, ErrMissingDevice
	}

	for {
		sess := r.acquire(deviceID)
		sess, err := r.ensureReady(ctx, sess)
		if !errors.Is(err, ErrDisposed) {
			return sess, err
		}
		r.forget(deviceID, sess)
	}
}

func (r *SessionRegistry) acquire(deviceID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[deviceID]
	if !ok || sess.Cart.isDisposed() {
		sess = r.newSession(deviceID)
		r.sessions[deviceID] = sess
	}
	sess.lastSeen = r.now()
	return sess
}

func (r *SessionRegistry) ensureReady(ctx context.Context, sess *Session) (*Session, error) {
	sess.initMu.Lock()
	defer sess.initMu.Unlock()
	if sess.Cart.isDisposed() {
		return sess, ErrDisposed
	}
	if sess.ready {
		return sess, nil
	}
	if err := sess.Cart.Initialize(ctx); err != nil {
		return sess, err
	}
	sess.ready = true
	return sess, nil
}

// forget drops sess from the registry if it is still the live session of
// deviceID.
func (r *SessionRegistry) forget(deviceID string, sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[deviceID] == sess {
		delete(r.sessions, deviceID)
	}
}

func (r *SessionRegistry) newSession(deviceID string) *Session {
	notices := NewNoticeInbox()
	source := identity.NewSource("")
	cart := NewCartService(CartDeps{
		Products: r.deps.Products,
		Store:    r.deps.Store,
		Device:   r.deps.Devices(deviceID),
		Identity: source,
		Notifier: notices,
		Events:   r.deps.Events,
		Logger:   r.logger.With(zap.String("device_id", deviceID)),
	})
	return &Session{
		DeviceID: deviceID,
		Identity: source,
		Cart:     cart,
		Notices:  notices,
	}
}

// Lookup returns an existing session without creating one.
func (r *SessionRegistry) Lookup(deviceID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[deviceID]
	return sess, ok
}

// SignIn signs userID in on deviceID, which merges the device's guest cart.
func (r *SessionRegistry) SignIn(ctx context.Context, deviceID, userID string) (*Session, error) {
	sess, err := r.Get(ctx, deviceID)
	if err != nil && sess == nil {
		return nil, err
	}
	if current, ok := sess.Identity.CurrentSession(ctx); ok && current == userID {
		return sess, nil
	}
	return sess, sess.Identity.SignIn(ctx, userID)
}

// SignOut signs deviceID out. Unknown devices are ignored.
func (r *SessionRegistry) SignOut(ctx context.Context, deviceID string) error {
	sess, ok := r.Lookup(deviceID)
	if !ok {
		return nil
	}
	return sess.Identity.SignOut(ctx)
}

// SignOutUser signs userID out of every device it is signed in on.
func (r *SessionRegistry) SignOutUser(ctx context.Context, userID string) error {
	var errs []error
	for _, sess := range r.snapshot() {
		if current, ok := sess.Identity.CurrentSession(ctx); ok && current == userID {
			errs = append(errs, sess.Identity.SignOut(ctx))
		}
	}
	return errors.Join(errs...)
}

// Evict disposes sessions not used for longer than idle and returns how many
// were dropped. Guest carts survive in the device store.
func (r *SessionRegistry) Evict(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var stale []*Session
	for id, sess := range r.sessions {
		if sess.lastSeen.Before(cutoff) {
			stale = append(stale, sess)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, sess := range stale {
		sess.Cart.Dispose()
	}
	if len(stale) > 0 {
		r.logger.Debug("Evicted idle cart sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close disposes every session.
func (r *SessionRegistry) Close() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		all = append(all, sess)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, sess := range all {
		sess.Cart.Dispose()
	}
}

func (r *SessionRegistry) snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, sess)
	}
	return out
}
