package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/models"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/service"
)

// CartHandler handles cart item HTTP requests
type CartHandler struct {
	cartService *service.CartService
	log         *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *service.CartService, log *slog.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		log:         log,
	}
}

// AddProduct handles POST /api/cartItems/add-product
func (h *CartHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req models.CartAddRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("failed to decode cart request", "error", err)
		WriteError(w, http.StatusBadRequest, MsgInvalidRequestBody, h.log)
		return
	}

	item, err := h.cartService.AddProduct(r.Context(), req)
	if err != nil {
		if service.IsValidationError(err) {
			h.log.Warn("rejected cart request", "error", err, "shop_cart_id", req.ShopCartID)
			WriteError(w, http.StatusBadRequest, err.Error(), h.log)
			return
		}

		h.log.Error("failed to add product to cart", "error", err, "shop_cart_id", req.ShopCartID)
		WriteError(w, http.StatusInternalServerError, MsgInternalServerError, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, item, h.log)
	h.log.Info("product added to cart",
		"cart_item_id", item.CartItemID,
		"shop_cart_id", item.ShopCartID,
		"product_name", item.ProductName,
	)
}

// ListItems handles GET /api/cartItems/{shopCartId}
func (h *CartHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	shopCartID := chi.URLParam(r, "shopCartId")

	items, err := h.cartService.ListItems(r.Context(), shopCartID)
	if err != nil {
		if service.IsValidationError(err) {
			WriteError(w, http.StatusBadRequest, err.Error(), h.log)
			return
		}

		h.log.Error("failed to list cart items", "error", err, "shop_cart_id", shopCartID)
		WriteError(w, http.StatusInternalServerError, MsgInternalServerError, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, items, h.log)
}
