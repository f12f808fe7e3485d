// Package store declares the persistence interfaces the services depend on. Every read
// excludes soft-deleted rows unless stated otherwise.
package store

import (
	"context"
	"errors"
	"time"

	"storefront-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

type AccountStore interface {
	CreateAccount(ctx context.Context, acct models.Account) (models.Account, error)
	GetAccount(ctx context.Context, id int64) (models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (models.Account, error)
	UpdateAccount(ctx context.Context, acct models.Account) (models.Account, error)
	SoftDeleteAccount(ctx context.Context, id int64, at time.Time) error
}

type SellerStore interface {
	CreateSeller(ctx context.Context, seller models.Seller) (models.Seller, error)
	GetSeller(ctx context.Context, id int64) (models.Seller, error)
	GetSellerByEmail(ctx context.Context, email string) (models.Seller, error)
	UpdateSeller(ctx context.Context, seller models.Seller) (models.Seller, error)
	SoftDeleteSeller(ctx context.Context, id int64, at time.Time) error
}

// ProductFilter selects active products. An empty Category matches all.
type ProductFilter struct {
	Category string
	Skip     int
	Limit    int
}

type ProductStore interface {
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) (models.Product, error)
	SoftDeleteProduct(ctx context.Context, id int64, at time.Time) error
	// ListProducts returns one page and the number of rows matching the filter.
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	ListCategories(ctx context.Context) ([]string, error)
}

type ReviewStore interface {
	CreateReview(ctx context.Context, r models.Review) (models.Review, error)
	GetReview(ctx context.Context, id int64) (models.Review, error)
	UpdateReview(ctx context.Context, r models.Review) (models.Review, error)
	SoftDeleteReview(ctx context.Context, id int64, at time.Time) error
	ListReviews(ctx context.Context, productID int64) ([]models.Review, error)
	RatingSummary(ctx context.Context, productID int64) (models.RatingSummary, error)
}

type CartStore interface {
	CreateCartItem(ctx context.Context, item models.CartItem) (models.CartItem, error)
	GetCartItem(ctx context.Context, id int64) (models.CartItem, error)
	// UpdateCartItem writes quantity, price, totalAmount and deletedAt of an active line.
	UpdateCartItem(ctx context.Context, item models.CartItem) (models.CartItem, error)
	ListCartItems(ctx context.Context, accountID int64) ([]models.CartItem, error)
	ClearCart(ctx context.Context, accountID int64, at time.Time) (int64, error)
}

type OrderStore interface {
	// CreateOrder persists the header and its lines atomically.
	CreateOrder(ctx context.Context, order models.Order) (models.Order, error)
	ListOrders(ctx context.Context, accountID int64) ([]models.Order, error)
	GetOrder(ctx context.Context, accountID, orderID int64) (models.Order, error)
	// UpdateOrderStatus updates active orders matching (orderID, accountID) and reports
	// how many matched. deletedAt is written only when non-nil.
	UpdateOrderStatus(ctx context.Context, accountID, orderID int64, status string, deletedAt *time.Time) (int64, error)
}

type Store interface {
	AccountStore
	SellerStore
	ProductStore
	ReviewStore
	CartStore
	OrderStore
	Ping(ctx context.Context) error
	Close() error
}

// Page clamps skip and limit to the accepted range.
func Page(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return skip, limit
}

const (
	DefaultLimit = 10
	MaxLimit     = 100
)
