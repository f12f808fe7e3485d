package httpapi

import (
	"github.com/gin-gonic/gin"

	"storefront-backend/internal/middleware"
	"storefront-backend/internal/service"
)

func (h *handlers) createOrder(c *gin.Context, in *service.CreateOrderInput) (result, error) {
	order, err := h.svc.Orders.Create(c.Request.Context(), middleware.Claims(c).ID, *in)
	if err != nil {
		return result{}, err
	}
	return result{message: "Order created successfully.", data: order}, nil
}

func (h *handlers) listOrders(c *gin.Context, _ *none) (result, error) {
	orders, err := h.svc.Orders.List(c.Request.Context(), middleware.Claims(c).ID)
	if err != nil {
		return failed(orders, err)
	}
	return result{message: "Orders retrieved successfully.", data: orders}, nil
}

func (h *handlers) orderDetails(c *gin.Context, in *service.OrderQuery) (result, error) {
	order, err := h.svc.Orders.Get(c.Request.Context(), middleware.Claims(c).ID, in.OrderID)
	if err != nil {
		return result{}, err
	}
	return result{message: "Order retrieved successfully.", data: order}, nil
}

func (h *handlers) updateOrderStatus(c *gin.Context, in *service.UpdateOrderStatusInput) (result, error) {
	change, err := h.svc.Orders.UpdateStatus(c.Request.Context(), middleware.Claims(c).ID, *in)
	if err != nil {
		return result{}, err
	}
	return result{message: "Order status updated successfully.", data: change}, nil
}
