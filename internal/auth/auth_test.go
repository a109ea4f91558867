package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatic(t *testing.T) {
	var c Context = Static{ShopCartID: "cart-1"}
	assert.Equal(t, User{ShopCartID: "cart-1"}, c.CurrentUser())
}

func TestSession_SetUser(t *testing.T) {
	s := NewSession(User{ShopCartID: "first"})
	assert.Equal(t, "first", s.CurrentUser().ShopCartID)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetUser(User{ShopCartID: "second"})
		}()
		go func() {
			defer wg.Done()
			_ = s.CurrentUser()
		}()
	}
	wg.Wait()

	assert.Equal(t, "second", s.CurrentUser().ShopCartID)
}

func TestUserFromContext(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	user, ok := UserFromContext(WithUser(context.Background(), User{ShopCartID: "cart-9"}))
	assert.True(t, ok)
	assert.Equal(t, "cart-9", user.ShopCartID)
}
