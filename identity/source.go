// Package identity tracks which user, if any, is signed in on a shopper device
// and validates the access tokens issued by auth-service.
package identity

import (
	"context"
	"errors"
	"sync"
)

// EventType is the kind of identity change.
type EventType string

const (
	SignedIn  EventType = "SIGNED_IN"
	SignedOut EventType = "SIGNED_OUT"
)

// Event is delivered to every subscriber when the identity changes.
type Event struct {
	Type   EventType
	UserID string
}

// Listener handles an identity change. Returned errors are reported back to
// whoever triggered the change.
type Listener func(ctx context.Context, ev Event) error

var ErrMissingUser = errors.New("identity: user id is required")

type subscription struct {
	id int
	fn Listener
}

// Source is the identity of one device. Listeners run synchronously, in
// subscription order, on the goroutine that calls SignIn or SignOut.
type Source struct {
	mu        sync.RWMutex
	userID    string
	nextID    int
	listeners []subscription
}

// NewSource returns a Source, signed in as userID when it is non-empty.
func NewSource(userID string) *Source {
	return &Source{userID: userID}
}

// CurrentSession returns the signed-in user.
func (s *Source) CurrentSession(_ context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.userID != ""
}

// Subscribe registers fn and returns a function that removes it. The returned
// function is safe to call more than once.
func (s *Source) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Subscribers returns the number of registered listeners.
func (s *Source) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}

// SignIn records userID as the device's identity and notifies listeners.
func (s *Source) SignIn(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUser
	}
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()
	return s.dispatch(ctx, Event{Type: SignedIn, UserID: userID})
}

// SignOut clears the identity. It is a no-op when nobody is signed in.
func (s *Source) SignOut(ctx context.Context) error {
	s.mu.Lock()
	prev := s.userID
	s.userID = ""
	s.mu.Unlock()
	if prev == "" {
		return nil
	}
	return s.dispatch(ctx, Event{Type: SignedOut, UserID: prev})
}

func (s *Source) dispatch(ctx context.Context, ev Event) error {
	s.mu.RLock()
	subs := make([]subscription, len(s.listeners))
	copy(subs, s.listeners)
	s.mu.RUnlock()

	var errs []error
	for _, sub := range subs {
		if err := sub.fn(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
