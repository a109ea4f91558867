package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/middleware"
)

// RouterConfig carries what NewRouter needs to mount the API
type RouterConfig struct {
	Health      *HealthHandler
	Products    *ProductHandler
	Cart        *CartHandler
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter builds the catalog service HTTP handler
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// The storefront is served from another origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", cfg.Health.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.AllowContentType("application/json"))

		r.Get("/products", cfg.Products.ListProducts)

		r.Post("/cartItems/add-product", cfg.Cart.AddProduct)
		r.Get("/cartItems/{shopCartId}", cfg.Cart.ListItems)
	})

	return r
}
