package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

const (
	msgCartItemNotFound = "Cart item not found."
	msgCartEmpty        = "No items found in the cart."
)

// AddToCartInput carries no price: the product record is the only price source.
type AddToCartInput struct {
	ProductID int64  `json:"productId" binding:"required,min=1"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=10000"`
	Variant   string `json:"variant" binding:"omitempty,max=100"`
}

type RemoveFromCartInput struct {
	CartID    int64 `json:"cartId" binding:"required,min=1"`
	ProductID int64 `json:"productId" binding:"required,min=1"`
}

type UpdateCartInput struct {
	CartID   int64 `json:"cartId" binding:"required,min=1"`
	Quantity int   `json:"quantity" binding:"required,min=1,max=10000"`
}

type CartQuery struct {
	CartID int64 `form:"cartId" binding:"omitempty,min=1"`
}

type CartMeta struct {
	ItemCount  int     `json:"itemCount"`
	GrandTotal float64 `json:"grandTotal"`
}

type CartService struct {
	store store.Store
	log   *logrus.Entry
}

func (s *CartService) product(ctx context.Context, productID int64) (models.Product, error) {
	p, err := s.store.GetProduct(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Product{}, apperr.NotFound(msgProductNotFound)
	}
	if err != nil {
		return models.Product{}, apperr.Internal("An error occurred while fetching the product.", err)
	}
	return p, nil
}

// line loads an active cart line owned by accountID.
func (s *CartService) line(ctx context.Context, accountID, cartID int64) (models.CartItem, error) {
	item, err := s.store.GetCartItem(ctx, cartID)
	if errors.Is(err, store.ErrNotFound) {
		return models.CartItem{}, apperr.NotFound(msgCartItemNotFound)
	}
	if err != nil {
		return models.CartItem{}, apperr.Internal("An error occurred while fetching the cart item.", err)
	}
	if item.AccountID != accountID {
		return models.CartItem{}, apperr.NotFound(msgCartItemNotFound)
	}
	return item, nil
}

func (s *CartService) Add(ctx context.Context, accountID int64, in AddToCartInput) (models.CartItem, error) {
	p, err := s.product(ctx, in.ProductID)
	if err != nil {
		return models.CartItem{}, err
	}
	item, err := s.store.CreateCartItem(ctx, models.CartItem{
		AccountID:   accountID,
		ProductID:   p.ID,
		ProductName: p.Name,
		Variant:     in.Variant,
		BrandName:   p.BrandName,
		Quantity:    in.Quantity,
		Price:       p.Price,
		TotalAmount: models.LineTotal(p.Price, in.Quantity),
	})
	if err != nil {
		return models.CartItem{}, apperr.Internal("An error occurred while adding product to cart.", err)
	}
	s.log.WithFields(logrus.Fields{"account_id": accountID, "cart_id": item.ID}).Info("cart line added")
	return item, nil
}

// Remove zeroes the line, takes its value off the total and soft-deletes it.
func (s *CartService) Remove(ctx context.Context, accountID int64, in RemoveFromCartInput) (models.CartItem, error) {
	item, err := s.line(ctx, accountID, in.CartID)
	if err != nil {
		return models.CartItem{}, err
	}
	if item.ProductID != in.ProductID {
		return models.CartItem{}, apperr.NotFound(msgCartItemNotFound)
	}

	at := now()
	item.TotalAmount -= models.LineTotal(item.Price, item.Quantity)
	item.Quantity = 0
	item.DeletedAt = &at

	item, err = s.store.UpdateCartItem(ctx, item)
	if errors.Is(err, store.ErrNotFound) {
		return models.CartItem{}, apperr.NotFound(msgCartItemNotFound)
	}
	if err != nil {
		return models.CartItem{}, apperr.Internal("An error occurred while removing product from cart.", err)
	}
	s.log.WithFields(logrus.Fields{"account_id": accountID, "cart_id": item.ID}).Info("cart line removed")
	return item, nil
}

// Details returns the caller's active lines, or the single line named by q.CartID.
func (s *CartService) Details(ctx context.Context, accountID int64, q CartQuery) ([]models.CartItem, CartMeta, error) {
	var items []models.CartItem
	if q.CartID != 0 {
		item, err := s.line(ctx, accountID, q.CartID)
		if err != nil {
			return nil, CartMeta{}, err
		}
		items = []models.CartItem{item}
	} else {
		var err error
		if items, err = s.store.ListCartItems(ctx, accountID); err != nil {
			return nil, CartMeta{}, apperr.Internal("An error occurred while fetching cart details.", err)
		}
	}
	if len(items) == 0 {
		return []models.CartItem{}, CartMeta{}, apperr.NotFound(msgCartEmpty)
	}

	meta := CartMeta{ItemCount: len(items)}
	for _, item := range items {
		meta.GrandTotal += item.TotalAmount
	}
	return items, meta, nil
}

// Update replaces the quantity and reprices the line at the product's current price.
func (s *CartService) Update(ctx context.Context, accountID int64, in UpdateCartInput) (models.CartItem, error) {
	item, err := s.line(ctx, accountID, in.CartID)
	if err != nil {
		return models.CartItem{}, err
	}
	p, err := s.product(ctx, item.ProductID)
	if err != nil {
		return models.CartItem{}, err
	}

	item.Price = p.Price
	item.Quantity = in.Quantity
	item.TotalAmount = models.LineTotal(p.Price, in.Quantity)

	item, err = s.store.UpdateCartItem(ctx, item)
	if errors.Is(err, store.ErrNotFound) {
		return models.CartItem{}, apperr.NotFound(msgCartItemNotFound)
	}
	if err != nil {
		return models.CartItem{}, apperr.Internal("An error occurred while updating the cart item.", err)
	}
	s.log.WithFields(logrus.Fields{"account_id": accountID, "cart_id": item.ID}).Info("cart line updated")
	return item, nil
}

// Clear soft-deletes every active line of the caller and reports how many there were.
func (s *CartService) Clear(ctx context.Context, accountID int64) (int64, error) {
	n, err := s.store.ClearCart(ctx, accountID, now())
	if err != nil {
		return 0, apperr.Internal("An error occurred while clearing the cart.", err)
	}
	s.log.WithFields(logrus.Fields{"account_id": accountID, "removed": n}).Info("cart cleared")
	return n, nil
}
