// Package session holds the storefront's view of "who is signed in".
//
// The session is an observable value: consumers that must react to
// identity changes (the cart store) subscribe to it instead of reading
// ambient global state. The session never initiates identity changes
// itself; the auth middleware feeds it from verified Firebase ID tokens.
package session

import (
	"strings"
	"sync"
)

// Identity is the authenticated shopper as observed from the identity
// provider. Email is the primary key everywhere downstream.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Listener receives the new identity (nil on sign-out).
type Listener func(*Identity)

// Session is a thread-safe observable "current identity or none".
type Session struct {
	mu        sync.RWMutex
	current   *Identity
	listeners []Listener
}

func New() *Session {
	return &Session{}
}

// Current returns the signed-in identity, or nil.
func (s *Session) Current() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Set replaces the current identity and notifies subscribers.
// An identity without an email is treated as sign-out.
func (s *Session) Set(id *Identity) {
	if id != nil && strings.TrimSpace(id.Email) == "" {
		id = nil
	}

	s.mu.Lock()
	s.current = id
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(id)
	}
}

// Clear signs the current identity out.
func (s *Session) Clear() {
	s.Set(nil)
}

// Subscribe registers fn for identity changes and immediately invokes it
// with the current value, so a late subscriber converges to the same
// state as one registered before sign-in.
func (s *Session) Subscribe(fn Listener) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	cur := s.current
	s.mu.Unlock()

	fn(cur)
}
