package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

const (
	msgOrderExists    = "An order with this order number already exists."
	msgNoOrders       = "No orders found for this account."
	msgOrderNotFound  = "Order not found for the specified account."
	msgOrderUnchanged = "Order not found or no changes made."
)

type OrderLineInput struct {
	ProductName string `json:"productName" binding:"required,max=200"`
	Quantity    int    `json:"quantity" binding:"required,min=1,max=10000"`
}

// CreateOrderInput creates an order; an omitted order number is generated.
type CreateOrderInput struct {
	OrderNumber    string           `json:"orderNumber" binding:"omitempty,max=64"`
	TotalAmount    float64          `json:"totalAmount" binding:"required,gt=0"`
	Status         string           `json:"status" binding:"required,oneof=pending shipped delivered"`
	ProductDetails []OrderLineInput `json:"productDetails" binding:"required,min=1,dive"`
}

type UpdateOrderStatusInput struct {
	OrderID int64  `json:"orderId" binding:"required,min=1"`
	Status  string `json:"status" binding:"required,oneof=pending shipped delivered canceled"`
}

type OrderQuery struct {
	OrderID int64 `form:"orderId" binding:"required,min=1"`
}

type StatusChange struct {
	OrderID   int64  `json:"orderId"`
	NewStatus string `json:"newStatus"`
}

type OrderService struct {
	store store.OrderStore
	log   *logrus.Entry
}

func newOrderNumber() string {
	return "ORD-" + uuid.NewString()
}

// Create persists the header and its lines in one write.
func (s *OrderService) Create(ctx context.Context, accountID int64, in CreateOrderInput) (models.Order, error) {
	number := in.OrderNumber
	if number == "" {
		number = newOrderNumber()
	}
	lines := make([]models.OrderLine, len(in.ProductDetails))
	for i, l := range in.ProductDetails {
		lines[i] = models.OrderLine{ProductName: l.ProductName, Quantity: l.Quantity}
	}

	order, err := s.store.CreateOrder(ctx, models.Order{
		OrderNumber:    number,
		AccountID:      accountID,
		TotalAmount:    in.TotalAmount,
		Status:         in.Status,
		ProductDetails: lines,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return models.Order{}, apperr.Invalid(msgOrderExists)
	}
	if err != nil {
		return models.Order{}, apperr.Internal("An error occurred while creating the order.", err)
	}
	metrics.RecordOrderStatus(order.Status)
	s.log.WithFields(logrus.Fields{"account_id": accountID, "order_id": order.ID, "order_number": number}).Info("order created")
	return order, nil
}

// List returns the caller's active orders. An empty result is a 404 that still carries
// the empty list.
func (s *OrderService) List(ctx context.Context, accountID int64) ([]models.Order, error) {
	orders, err := s.store.ListOrders(ctx, accountID)
	if err != nil {
		return nil, apperr.Internal("An error occurred while retrieving the orders.", err)
	}
	if len(orders) == 0 {
		return []models.Order{}, apperr.NotFound(msgNoOrders)
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, accountID, orderID int64) (models.Order, error) {
	order, err := s.store.GetOrder(ctx, accountID, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Order{}, apperr.NotFound(msgOrderNotFound)
	}
	if err != nil {
		return models.Order{}, apperr.Internal("An error occurred while retrieving the order.", err)
	}
	return order, nil
}

// UpdateStatus sets the status of an active order owned by accountID. Canceling also
// soft-deletes the order.
func (s *OrderService) UpdateStatus(ctx context.Context, accountID int64, in UpdateOrderStatusInput) (StatusChange, error) {
	var deletedAt *time.Time
	if in.Status == models.OrderCanceled {
		at := now()
		deletedAt = &at
	}
	n, err := s.store.UpdateOrderStatus(ctx, accountID, in.OrderID, in.Status, deletedAt)
	if err != nil {
		return StatusChange{}, apperr.Internal("An error occurred while updating the order status.", err)
	}
	if n == 0 {
		return StatusChange{}, apperr.NotFound(msgOrderUnchanged)
	}
	metrics.RecordOrderStatus(in.Status)
	s.log.WithFields(logrus.Fields{"account_id": accountID, "order_id": in.OrderID, "status": in.Status}).Info("order status updated")
	return StatusChange{OrderID: in.OrderID, NewStatus: in.Status}, nil
}
