//go:build integration
// +build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront"),
		tcpostgres.WithUsername("storefront"),
		tcpostgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, MigrateUp(s.DB()))
	return s
}

func TestStoreIntegration(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	acct, err := s.CreateAccount(ctx, models.Account{Email: "jane@example.com", FirstName: "Jane", LastName: "Doe", PasswordHash: "x"})
	require.NoError(t, err)

	_, err = s.CreateAccount(ctx, models.Account{Email: "jane@example.com", FirstName: "J", LastName: "D", PasswordHash: "x"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	// The email becomes free again once the holder is soft-deleted.
	require.NoError(t, s.SoftDeleteAccount(ctx, acct.ID, time.Now().UTC()))
	assert.ErrorIs(t, s.SoftDeleteAccount(ctx, acct.ID, time.Now().UTC()), store.ErrNotFound)
	acct, err = s.CreateAccount(ctx, models.Account{Email: "jane@example.com", FirstName: "Jane", LastName: "Doe", PasswordHash: "x"})
	require.NoError(t, err)

	seller, err := s.CreateSeller(ctx, models.Seller{Name: "Ann", Email: "ann@acme.test", CompanyName: "Acme", PasswordHash: "x"})
	require.NoError(t, err)

	product, err := s.CreateProduct(ctx, models.Product{SellerID: seller.ID, Name: "Runner", Price: 50, BrandName: "Acme", Category: "shoes"})
	require.NoError(t, err)
	_, err = s.CreateProduct(ctx, models.Product{SellerID: seller.ID, Name: "Cap", Price: 10, BrandName: "Acme", Category: "hats"})
	require.NoError(t, err)

	page, total, err := s.ListProducts(ctx, store.ProductFilter{Category: "shoes"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, page, 1)

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"hats", "shoes"}, categories)

	_, err = s.CreateReview(ctx, models.Review{AccountID: acct.ID, ProductID: product.ID, Rating: 5, Images: []string{"https://img/a.png"}})
	require.NoError(t, err)
	second, err := s.CreateReview(ctx, models.Review{AccountID: acct.ID, ProductID: product.ID, Rating: 2})
	require.NoError(t, err)
	summary, err := s.RatingSummary(ctx, product.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, summary.Average, 0.001)
	require.NoError(t, s.SoftDeleteReview(ctx, second.ID, time.Now().UTC()))
	summary, err = s.RatingSummary(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RatingSummary{Average: 5, Count: 1}, summary)

	item, err := s.CreateCartItem(ctx, models.CartItem{AccountID: acct.ID, ProductID: product.ID, ProductName: "Runner", Quantity: 2, Price: 50, TotalAmount: 100})
	require.NoError(t, err)
	item.Quantity = 3
	item.TotalAmount = 150
	item, err = s.UpdateCartItem(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, 150.0, item.TotalAmount)

	// Removing a line zeroes its quantity in the same write that soft-deletes it.
	removedAt := time.Now().UTC()
	item.Quantity = 0
	item.TotalAmount = 0
	item.DeletedAt = &removedAt
	_, err = s.UpdateCartItem(ctx, item)
	require.NoError(t, err)
	_, err = s.GetCartItem(ctx, item.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// An active line still may not hold a zero quantity.
	live, err := s.CreateCartItem(ctx, models.CartItem{AccountID: acct.ID, ProductID: product.ID, ProductName: "Runner", Quantity: 1, Price: 50, TotalAmount: 50})
	require.NoError(t, err)
	live.Quantity = 0
	_, err = s.UpdateCartItem(ctx, live)
	assert.Error(t, err)

	order, err := s.CreateOrder(ctx, models.Order{
		OrderNumber: "ORD-1", AccountID: acct.ID, TotalAmount: 150, Status: models.OrderPending,
		ProductDetails: []models.OrderLine{{ProductName: "Runner", Quantity: 3}},
	})
	require.NoError(t, err)
	got, err := s.GetOrder(ctx, acct.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, got.ProductDetails, 1)

	at := time.Now().UTC()
	n, err := s.UpdateOrderStatus(ctx, acct.ID, order.ID, models.OrderCanceled, &at)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = s.GetOrder(ctx, acct.ID, order.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
