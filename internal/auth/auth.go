// Package auth exposes the signed-in user to the catalog view.
//
// The view never reads ambient state: it receives a Context and asks it for
// the current user each time it needs the shop cart.
package auth

import (
	"context"
	"sync"
)

// User is the part of the authenticated user the catalog needs
type User struct {
	ShopCartID string
}

// Context is a read-only capability returning the current user
type Context interface {
	CurrentUser() User
}

// Static always returns the same user
type Static User

func (s Static) CurrentUser() User {
	return User(s)
}

// Session holds a user that may change while a page is alive, e.g. after a new sign-in.
type Session struct {
	mu   sync.RWMutex
	user User
}

func NewSession(user User) *Session {
	return &Session{user: user}
}

func (s *Session) CurrentUser() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetUser replaces the session user
func (s *Session) SetUser(user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

type userKey struct{}

// WithUser returns a copy of ctx carrying user
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the user stored by WithUser
func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userKey{}).(User)
	return user, ok
}
