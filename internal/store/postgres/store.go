// Package postgres implements the store interfaces on PostgreSQL using sqlx and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

const uniqueViolation = "23505"

const (
	accountColumns = `id, email, first_name, last_name, phone_number, password_hash, created_at, updated_at, deleted_at`
	sellerColumns  = `id, name, email, phone_number, company_name, password_hash, created_at, updated_at, deleted_at`
	productColumns = `id, seller_id, name, description, price, brand_name, category, created_at, updated_at, deleted_at`
	reviewColumns  = `id, account_id, product_id, rating, comment, images, created_at, updated_at, deleted_at`
	cartColumns    = `id, account_id, product_id, product_name, variant, brand_name, quantity, price, total_amount, created_at, updated_at, deleted_at`
	orderColumns   = `id, order_number, account_id, total_amount, status, created_at, updated_at, deleted_at`
)

type Store struct {
	db *sqlx.DB
}

var _ store.Store = (*Store)(nil)

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return New(db), nil
}

// DB exposes the underlying handle for migrations.
func (s *Store) DB() *sql.DB { return s.db.DB }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return store.ErrDuplicate
	}
	return err
}

func (s *Store) softDelete(ctx context.Context, table string, id int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --- accounts ---------------------------------------------------------------

func (s *Store) CreateAccount(ctx context.Context, acct models.Account) (models.Account, error) {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO accounts (email, first_name, last_name, phone_number, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		acct.Email, acct.FirstName, acct.LastName, acct.PhoneNumber, acct.PasswordHash,
	).Scan(&acct.ID, &acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		return models.Account{}, mapErr(err)
	}
	return acct, nil
}

func (s *Store) GetAccount(ctx context.Context, id int64) (models.Account, error) {
	var acct models.Account
	err := s.db.GetContext(ctx, &acct,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND deleted_at IS NULL`, id)
	return acct, mapErr(err)
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	var acct models.Account
	err := s.db.GetContext(ctx, &acct,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1 AND deleted_at IS NULL`, email)
	return acct, mapErr(err)
}

func (s *Store) UpdateAccount(ctx context.Context, acct models.Account) (models.Account, error) {
	var out models.Account
	err := s.db.GetContext(ctx, &out, `
		UPDATE accounts
		SET email = $2, first_name = $3, last_name = $4, phone_number = $5, password_hash = $6, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+accountColumns,
		acct.ID, acct.Email, acct.FirstName, acct.LastName, acct.PhoneNumber, acct.PasswordHash)
	return out, mapErr(err)
}

func (s *Store) SoftDeleteAccount(ctx context.Context, id int64, at time.Time) error {
	return s.softDelete(ctx, "accounts", id, at)
}

// --- sellers ----------------------------------------------------------------

func (s *Store) CreateSeller(ctx context.Context, seller models.Seller) (models.Seller, error) {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO sellers (name, email, phone_number, company_name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		seller.Name, seller.Email, seller.PhoneNumber, seller.CompanyName, seller.PasswordHash,
	).Scan(&seller.ID, &seller.CreatedAt, &seller.UpdatedAt)
	if err != nil {
		return models.Seller{}, mapErr(err)
	}
	return seller, nil
}

func (s *Store) GetSeller(ctx context.Context, id int64) (models.Seller, error) {
	var seller models.Seller
	err := s.db.GetContext(ctx, &seller,
		`SELECT `+sellerColumns+` FROM sellers WHERE id = $1 AND deleted_at IS NULL`, id)
	return seller, mapErr(err)
}

func (s *Store) GetSellerByEmail(ctx context.Context, email string) (models.Seller, error) {
	var seller models.Seller
	err := s.db.GetContext(ctx, &seller,
		`SELECT `+sellerColumns+` FROM sellers WHERE email = $1 AND deleted_at IS NULL`, email)
	return seller, mapErr(err)
}

func (s *Store) UpdateSeller(ctx context.Context, seller models.Seller) (models.Seller, error) {
	var out models.Seller
	err := s.db.GetContext(ctx, &out, `
		UPDATE sellers
		SET name = $2, email = $3, phone_number = $4, company_name = $5, password_hash = $6, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+sellerColumns,
		seller.ID, seller.Name, seller.Email, seller.PhoneNumber, seller.CompanyName, seller.PasswordHash)
	return out, mapErr(err)
}

func (s *Store) SoftDeleteSeller(ctx context.Context, id int64, at time.Time) error {
	return s.softDelete(ctx, "sellers", id, at)
}

// --- products ---------------------------------------------------------------

func (s *Store) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO products (seller_id, name, description, price, brand_name, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		p.SellerID, p.Name, p.Description, p.Price, p.BrandName, p.Category,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Product{}, mapErr(err)
	}
	return p, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	var p models.Product
	err := s.db.GetContext(ctx, &p,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND deleted_at IS NULL`, id)
	return p, mapErr(err)
}

func (s *Store) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	var out models.Product
	err := s.db.GetContext(ctx, &out, `
		UPDATE products
		SET name = $2, description = $3, price = $4, brand_name = $5, category = $6, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+productColumns,
		p.ID, p.Name, p.Description, p.Price, p.BrandName, p.Category)
	return out, mapErr(err)
}

func (s *Store) SoftDeleteProduct(ctx context.Context, id int64, at time.Time) error {
	return s.softDelete(ctx, "products", id, at)
}

func (s *Store) ListProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, int64, error) {
	skip, limit := store.Page(filter.Skip, filter.Limit)

	var total int64
	if err := s.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM products WHERE deleted_at IS NULL AND ($1 = '' OR category = $1)`,
		filter.Category); err != nil {
		return nil, 0, err
	}

	products := []models.Product{}
	if err := s.db.SelectContext(ctx, &products, `
		SELECT `+productColumns+` FROM products
		WHERE deleted_at IS NULL AND ($1 = '' OR category = $1)
		ORDER BY id
		LIMIT $2 OFFSET $3`,
		filter.Category, limit, skip); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := s.db.SelectContext(ctx, &categories,
		`SELECT DISTINCT category FROM products WHERE deleted_at IS NULL ORDER BY category`)
	return categories, err
}

// --- reviews ----------------------------------------------------------------

// reviewRow carries the images column as a postgres text array.
type reviewRow struct {
	models.Review
	Images pq.StringArray `db:"images"`
}

func (r reviewRow) review() models.Review {
	out := r.Review
	out.Images = []string(r.Images)
	if out.Images == nil {
		out.Images = []string{}
	}
	return out
}

func (s *Store) CreateReview(ctx context.Context, r models.Review) (models.Review, error) {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO reviews (account_id, product_id, rating, comment, images)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		r.AccountID, r.ProductID, r.Rating, r.Comment, pq.StringArray(r.Images),
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return models.Review{}, mapErr(err)
	}
	if r.Images == nil {
		r.Images = []string{}
	}
	return r, nil
}

func (s *Store) GetReview(ctx context.Context, id int64) (models.Review, error) {
	var row reviewRow
	if err := s.db.GetContext(ctx, &row,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = $1 AND deleted_at IS NULL`, id); err != nil {
		return models.Review{}, mapErr(err)
	}
	return row.review(), nil
}

func (s *Store) UpdateReview(ctx context.Context, r models.Review) (models.Review, error) {
	var row reviewRow
	if err := s.db.GetContext(ctx, &row, `
		UPDATE reviews
		SET rating = $2, comment = $3, images = $4, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+reviewColumns,
		r.ID, r.Rating, r.Comment, pq.StringArray(r.Images)); err != nil {
		return models.Review{}, mapErr(err)
	}
	return row.review(), nil
}

func (s *Store) SoftDeleteReview(ctx context.Context, id int64, at time.Time) error {
	return s.softDelete(ctx, "reviews", id, at)
}

func (s *Store) ListReviews(ctx context.Context, productID int64) ([]models.Review, error) {
	var rows []reviewRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT `+reviewColumns+` FROM reviews
		WHERE product_id = $1 AND deleted_at IS NULL
		ORDER BY id DESC`, productID); err != nil {
		return nil, err
	}
	reviews := make([]models.Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, row.review())
	}
	return reviews, nil
}

func (s *Store) RatingSummary(ctx context.Context, productID int64) (models.RatingSummary, error) {
	var summary models.RatingSummary
	err := s.db.GetContext(ctx, &summary, `
		SELECT COALESCE(AVG(rating), 0)::float8 AS average, COUNT(*) AS count
		FROM reviews
		WHERE product_id = $1 AND deleted_at IS NULL`, productID)
	return summary, err
}

// --- cart -------------------------------------------------------------------

func (s *Store) CreateCartItem(ctx context.Context, item models.CartItem) (models.CartItem, error) {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO cart_items (account_id, product_id, product_name, variant, brand_name, quantity, price, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		item.AccountID, item.ProductID, item.ProductName, item.Variant, item.BrandName,
		item.Quantity, item.Price, item.TotalAmount,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return models.CartItem{}, mapErr(err)
	}
	return item, nil
}

func (s *Store) GetCartItem(ctx context.Context, id int64) (models.CartItem, error) {
	var item models.CartItem
	err := s.db.GetContext(ctx, &item,
		`SELECT `+cartColumns+` FROM cart_items WHERE id = $1 AND deleted_at IS NULL`, id)
	return item, mapErr(err)
}

func (s *Store) UpdateCartItem(ctx context.Context, item models.CartItem) (models.CartItem, error) {
	var out models.CartItem
	err := s.db.GetContext(ctx, &out, `
		UPDATE cart_items
		SET quantity = $2, price = $3, total_amount = $4, deleted_at = $5, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+cartColumns,
		item.ID, item.Quantity, item.Price, item.TotalAmount, item.DeletedAt)
	return out, mapErr(err)
}

func (s *Store) ListCartItems(ctx context.Context, accountID int64) ([]models.CartItem, error) {
	items := []models.CartItem{}
	err := s.db.SelectContext(ctx, &items, `
		SELECT `+cartColumns+` FROM cart_items
		WHERE account_id = $1 AND deleted_at IS NULL
		ORDER BY id`, accountID)
	return items, err
}

func (s *Store) ClearCart(ctx context.Context, accountID int64, at time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cart_items SET deleted_at = $2, updated_at = $2 WHERE account_id = $1 AND deleted_at IS NULL`,
		accountID, at)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- orders -----------------------------------------------------------------

func (s *Store) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Order{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	if err := tx.QueryRowxContext(ctx, `
		INSERT INTO orders (order_number, account_id, total_amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		order.OrderNumber, order.AccountID, order.TotalAmount, order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return models.Order{}, mapErr(err)
	}

	lines := make([]models.OrderLine, 0, len(order.ProductDetails))
	for _, line := range order.ProductDetails {
		line.OrderID = order.ID
		if err := tx.QueryRowxContext(ctx, `
			INSERT INTO order_lines (order_id, product_name, quantity)
			VALUES ($1, $2, $3)
			RETURNING id`,
			line.OrderID, line.ProductName, line.Quantity,
		).Scan(&line.ID); err != nil {
			return models.Order{}, mapErr(err)
		}
		lines = append(lines, line)
	}

	if err := tx.Commit(); err != nil {
		return models.Order{}, err
	}
	order.ProductDetails = lines
	return order, nil
}

func (s *Store) ListOrders(ctx context.Context, accountID int64) ([]models.Order, error) {
	orders := []models.Order{}
	if err := s.db.SelectContext(ctx, &orders, `
		SELECT `+orderColumns+` FROM orders
		WHERE account_id = $1 AND deleted_at IS NULL
		ORDER BY id`, accountID); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	var lines []models.OrderLine
	if err := s.db.SelectContext(ctx, &lines, `
		SELECT id, order_id, product_name, quantity FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY id`, pq.Array(ids)); err != nil {
		return nil, err
	}

	byOrder := make(map[int64][]models.OrderLine, len(orders))
	for _, line := range lines {
		byOrder[line.OrderID] = append(byOrder[line.OrderID], line)
	}
	for i := range orders {
		orders[i].ProductDetails = byOrder[orders[i].ID]
		if orders[i].ProductDetails == nil {
			orders[i].ProductDetails = []models.OrderLine{}
		}
	}
	return orders, nil
}

func (s *Store) GetOrder(ctx context.Context, accountID, orderID int64) (models.Order, error) {
	var order models.Order
	if err := s.db.GetContext(ctx, &order, `
		SELECT `+orderColumns+` FROM orders
		WHERE id = $1 AND account_id = $2 AND deleted_at IS NULL`, orderID, accountID); err != nil {
		return models.Order{}, mapErr(err)
	}
	order.ProductDetails = []models.OrderLine{}
	if err := s.db.SelectContext(ctx, &order.ProductDetails, `
		SELECT id, order_id, product_name, quantity FROM order_lines
		WHERE order_id = $1
		ORDER BY id`, order.ID); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, accountID, orderID int64, status string, deletedAt *time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $3, deleted_at = COALESCE($4, deleted_at), updated_at = now()
		WHERE id = $1 AND account_id = $2 AND deleted_at IS NULL`,
		orderID, accountID, status, deletedAt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
