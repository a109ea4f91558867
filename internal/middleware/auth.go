package middleware

import (
	"net/http"
	"strings"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/auth"
)

// Where the storefront looks for the signed-in user's shop cart
const (
	ShopCartCookie = "shop_cart_id"
	ShopCartHeader = "X-Shop-Cart-ID"
)

// ShopCartAuth resolves the shop cart of the signed-in user from the
// shop_cart_id cookie or the X-Shop-Cart-ID header and stores it in the request context.
func ShopCartAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shopCartID := strings.TrimSpace(r.Header.Get(ShopCartHeader))
		if shopCartID == "" {
			if c, err := r.Cookie(ShopCartCookie); err == nil {
				shopCartID = strings.TrimSpace(c.Value)
			}
		}

		if shopCartID == "" {
			http.Error(w, "Unauthorized: shop cart required", http.StatusUnauthorized)
			return
		}

		ctx := auth.WithUser(r.Context(), auth.User{ShopCartID: shopCartID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
