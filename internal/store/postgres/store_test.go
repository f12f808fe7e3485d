package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "postgres")), mock
}

func TestCreateAccountReturnsGeneratedFields(t *testing.T) {
	s, mock := newMock(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs("jane@example.com", "Jane", "Doe", "", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(11, created, created))

	acct, err := s.CreateAccount(context.Background(), models.Account{
		Email: "jane@example.com", FirstName: "Jane", LastName: "Doe", PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), acct.ID)
	assert.Equal(t, created, acct.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccountMapsUniqueViolation(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO accounts")).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	_, err := s.CreateAccount(context.Background(), models.Account{Email: "jane@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestGetAccountMissingIsNotFound(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetAccount(context.Background(), 9)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSoftDeleteWithoutActiveRowIsNotFound(t *testing.T) {
	s, mock := newMock(t)
	at := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sellers SET deleted_at = $2")).
		WithArgs(int64(3), at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.SoftDeleteSeller(context.Background(), 3, at)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListProductsAppliesCategoryAndPage(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products")).
		WithArgs("shoes").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $2 OFFSET $3")).
		WithArgs("shoes", store.MaxLimit, 20).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "seller_id", "name", "description", "price", "brand_name", "category", "created_at", "updated_at", "deleted_at",
		}).AddRow(21, 1, "Runner", "", 59.5, "Acme", "shoes", now, now, nil))

	products, total, err := s.ListProducts(context.Background(), store.ProductFilter{Category: "shoes", Skip: 20, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	require.Len(t, products, 1)
	assert.Equal(t, "Runner", products[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReviewScansImages(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM reviews WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "account_id", "product_id", "rating", "comment", "images", "created_at", "updated_at", "deleted_at",
		}).AddRow(4, 1, 2, 5, "great", "{https://img/a.png,https://img/b.png}", now, now, nil))

	review, err := s.GetReview(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, []string{"https://img/a.png", "https://img/b.png"}, review.Images)
}

func TestRatingSummary(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("AVG(rating)")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"average", "count"}).AddRow(4.5, 2))

	summary, err := s.RatingSummary(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.RatingSummary{Average: 4.5, Count: 2}, summary)
}

func TestClearCartReportsAffectedRows(t *testing.T) {
	s, mock := newMock(t)
	at := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE cart_items SET deleted_at = $2")).
		WithArgs(int64(7), at).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.ClearCart(context.Background(), 7, at)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCreateOrderCommitsHeaderAndLines(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs("ORD-1", int64(7), 30.0, models.OrderPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(1, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO order_lines")).
		WithArgs(int64(1), "Runner", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO order_lines")).
		WithArgs(int64(1), "Sock", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	order, err := s.CreateOrder(context.Background(), models.Order{
		OrderNumber: "ORD-1",
		AccountID:   7,
		TotalAmount: 30,
		Status:      models.OrderPending,
		ProductDetails: []models.OrderLine{
			{ProductName: "Runner", Quantity: 2},
			{ProductName: "Sock", Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), order.ID)
	require.Len(t, order.ProductDetails, 2)
	assert.Equal(t, int64(11), order.ProductDetails[1].ID)
	assert.Equal(t, int64(1), order.ProductDetails[1].OrderID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRollsBackWhenLineFails(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(1, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO order_lines")).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := s.CreateOrder(context.Background(), models.Order{
		OrderNumber:    "ORD-2",
		AccountID:      7,
		Status:         models.OrderPending,
		ProductDetails: []models.OrderLine{{ProductName: "Runner", Quantity: 1}},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderDuplicateNumber(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnError(&pq.Error{Code: uniqueViolation})
	mock.ExpectRollback()

	_, err := s.CreateOrder(context.Background(), models.Order{OrderNumber: "ORD-1", AccountID: 7, Status: models.OrderPending})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestListOrdersAttachesLines(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_number", "account_id", "total_amount", "status", "created_at", "updated_at", "deleted_at",
		}).
			AddRow(1, "ORD-1", 7, 10.0, "pending", now, now, nil).
			AddRow(2, "ORD-2", 7, 20.0, "shipped", now, now, nil))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE order_id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_name", "quantity"}).
			AddRow(10, 1, "Runner", 1))

	orders, err := s.ListOrders(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Len(t, orders[0].ProductDetails, 1)
	assert.Empty(t, orders[1].ProductDetails)
	assert.NotNil(t, orders[1].ProductDetails)
}

func TestUpdateOrderStatusReportsMatches(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders")).
		WithArgs(int64(1), int64(7), models.OrderShipped, nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := s.UpdateOrderStatus(context.Background(), 7, 1, models.OrderShipped, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
