package httpapi

import (
	"github.com/gin-gonic/gin"

	"storefront-backend/internal/middleware"
	"storefront-backend/internal/service"
)

func (h *handlers) addToCart(c *gin.Context, in *service.AddToCartInput) (result, error) {
	item, err := h.svc.Cart.Add(c.Request.Context(), middleware.Claims(c).ID, *in)
	if err != nil {
		return result{}, err
	}
	return result{message: "Product added to cart successfully.", data: item}, nil
}

func (h *handlers) removeFromCart(c *gin.Context, in *service.RemoveFromCartInput) (result, error) {
	item, err := h.svc.Cart.Remove(c.Request.Context(), middleware.Claims(c).ID, *in)
	if err != nil {
		return result{}, err
	}
	return result{message: "Product removed from cart successfully.", data: item}, nil
}

func (h *handlers) cartDetails(c *gin.Context, in *service.CartQuery) (result, error) {
	items, meta, err := h.svc.Cart.Details(c.Request.Context(), middleware.Claims(c).ID, *in)
	if err != nil {
		return failed(items, err)
	}
	return result{message: "Cart details fetched successfully.", data: items, meta: meta}, nil
}

func (h *handlers) updateCart(c *gin.Context, in *service.UpdateCartInput) (result, error) {
	item, err := h.svc.Cart.Update(c.Request.Context(), middleware.Claims(c).ID, *in)
	if err != nil {
		return result{}, err
	}
	return result{message: "Cart item updated successfully.", data: item}, nil
}

func (h *handlers) clearCart(c *gin.Context, _ *none) (result, error) {
	n, err := h.svc.Cart.Clear(c.Request.Context(), middleware.Claims(c).ID)
	if err != nil {
		return result{}, err
	}
	return result{message: "Cart cleared successfully.", data: gin.H{"removed": n}}, nil
}
