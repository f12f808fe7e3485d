// Package memory is a thread-safe in-memory store used by tests and DB_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	nextID   map[string]int64
	accounts map[int64]models.Account
	sellers  map[int64]models.Seller
	products map[int64]models.Product
	reviews  map[int64]models.Review
	cart     map[int64]models.CartItem
	orders   map[int64]models.Order
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		nextID:   make(map[string]int64),
		accounts: make(map[int64]models.Account),
		sellers:  make(map[int64]models.Seller),
		products: make(map[int64]models.Product),
		reviews:  make(map[int64]models.Review),
		cart:     make(map[int64]models.CartItem),
		orders:   make(map[int64]models.Order),
	}
}

func (s *Store) next(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func now() time.Time { return time.Now().UTC() }

func clonePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// --- accounts ---------------------------------------------------------------

func (s *Store) CreateAccount(_ context.Context, acct models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if existing.DeletedAt == nil && existing.Email == acct.Email {
			return models.Account{}, store.ErrDuplicate
		}
	}
	acct.ID = s.next("accounts")
	acct.CreatedAt = now()
	acct.UpdatedAt = acct.CreatedAt
	acct.DeletedAt = nil
	s.accounts[acct.ID] = acct
	return acct, nil
}

func (s *Store) GetAccount(_ context.Context, id int64) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[id]
	if !ok || acct.DeletedAt != nil {
		return models.Account{}, store.ErrNotFound
	}
	return acct, nil
}

func (s *Store) GetAccountByEmail(_ context.Context, email string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acct := range s.accounts {
		if acct.DeletedAt == nil && acct.Email == email {
			return acct, nil
		}
	}
	return models.Account{}, store.ErrNotFound
}

func (s *Store) UpdateAccount(_ context.Context, acct models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.accounts[acct.ID]
	if !ok || existing.DeletedAt != nil {
		return models.Account{}, store.ErrNotFound
	}
	for id, other := range s.accounts {
		if id != acct.ID && other.DeletedAt == nil && other.Email == acct.Email {
			return models.Account{}, store.ErrDuplicate
		}
	}
	acct.CreatedAt = existing.CreatedAt
	acct.UpdatedAt = now()
	acct.DeletedAt = nil
	s.accounts[acct.ID] = acct
	return acct, nil
}

func (s *Store) SoftDeleteAccount(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok || acct.DeletedAt != nil {
		return store.ErrNotFound
	}
	acct.DeletedAt = &at
	acct.UpdatedAt = at
	s.accounts[id] = acct
	return nil
}

// --- sellers ----------------------------------------------------------------

func (s *Store) CreateSeller(_ context.Context, seller models.Seller) (models.Seller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.sellers {
		if existing.DeletedAt == nil && existing.Email == seller.Email {
			return models.Seller{}, store.ErrDuplicate
		}
	}
	seller.ID = s.next("sellers")
	seller.CreatedAt = now()
	seller.UpdatedAt = seller.CreatedAt
	seller.DeletedAt = nil
	s.sellers[seller.ID] = seller
	return seller, nil
}

func (s *Store) GetSeller(_ context.Context, id int64) (models.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seller, ok := s.sellers[id]
	if !ok || seller.DeletedAt != nil {
		return models.Seller{}, store.ErrNotFound
	}
	return seller, nil
}

func (s *Store) GetSellerByEmail(_ context.Context, email string) (models.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, seller := range s.sellers {
		if seller.DeletedAt == nil && seller.Email == email {
			return seller, nil
		}
	}
	return models.Seller{}, store.ErrNotFound
}

func (s *Store) UpdateSeller(_ context.Context, seller models.Seller) (models.Seller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sellers[seller.ID]
	if !ok || existing.DeletedAt != nil {
		return models.Seller{}, store.ErrNotFound
	}
	for id, other := range s.sellers {
		if id != seller.ID && other.DeletedAt == nil && other.Email == seller.Email {
			return models.Seller{}, store.ErrDuplicate
		}
	}
	seller.CreatedAt = existing.CreatedAt
	seller.UpdatedAt = now()
	seller.DeletedAt = nil
	s.sellers[seller.ID] = seller
	return seller, nil
}

func (s *Store) SoftDeleteSeller(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seller, ok := s.sellers[id]
	if !ok || seller.DeletedAt != nil {
		return store.ErrNotFound
	}
	seller.DeletedAt = &at
	seller.UpdatedAt = at
	s.sellers[id] = seller
	return nil
}

// --- products ---------------------------------------------------------------

func (s *Store) CreateProduct(_ context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.next("products")
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	p.DeletedAt = nil
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok || p.DeletedAt != nil {
		return models.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) UpdateProduct(_ context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[p.ID]
	if !ok || existing.DeletedAt != nil {
		return models.Product{}, store.ErrNotFound
	}
	p.SellerID = existing.SellerID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = now()
	p.DeletedAt = nil
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) SoftDeleteProduct(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok || p.DeletedAt != nil {
		return store.ErrNotFound
	}
	p.DeletedAt = &at
	p.UpdatedAt = at
	s.products[id] = p
	return nil
}

func (s *Store) ListProducts(_ context.Context, filter store.ProductFilter) ([]models.Product, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Product
	for _, p := range s.products {
		if p.DeletedAt != nil {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	skip, limit := store.Page(filter.Skip, filter.Limit)
	if skip >= len(matched) {
		return []models.Product{}, total, nil
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (s *Store) ListCategories(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	categories := []string{}
	for _, p := range s.products {
		if p.DeletedAt != nil {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// --- reviews ----------------------------------------------------------------

func (s *Store) CreateReview(_ context.Context, r models.Review) (models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.next("reviews")
	r.CreatedAt = now()
	r.UpdatedAt = r.CreatedAt
	r.DeletedAt = nil
	r.Images = append([]string{}, r.Images...)
	s.reviews[r.ID] = r
	return r, nil
}

func (s *Store) GetReview(_ context.Context, id int64) (models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reviews[id]
	if !ok || r.DeletedAt != nil {
		return models.Review{}, store.ErrNotFound
	}
	return r, nil
}

func (s *Store) UpdateReview(_ context.Context, r models.Review) (models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.reviews[r.ID]
	if !ok || existing.DeletedAt != nil {
		return models.Review{}, store.ErrNotFound
	}
	r.AccountID = existing.AccountID
	r.ProductID = existing.ProductID
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = now()
	r.DeletedAt = nil
	r.Images = append([]string{}, r.Images...)
	s.reviews[r.ID] = r
	return r, nil
}

func (s *Store) SoftDeleteReview(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok || r.DeletedAt != nil {
		return store.ErrNotFound
	}
	r.DeletedAt = &at
	r.UpdatedAt = at
	s.reviews[id] = r
	return nil
}

func (s *Store) ListReviews(_ context.Context, productID int64) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reviews := []models.Review{}
	for _, r := range s.reviews {
		if r.DeletedAt == nil && r.ProductID == productID {
			reviews = append(reviews, r)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].ID > reviews[j].ID })
	return reviews, nil
}

func (s *Store) RatingSummary(_ context.Context, productID int64) (models.RatingSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum, count int64
	for _, r := range s.reviews {
		if r.DeletedAt == nil && r.ProductID == productID {
			sum += int64(r.Rating)
			count++
		}
	}
	if count == 0 {
		return models.RatingSummary{}, nil
	}
	return models.RatingSummary{Average: float64(sum) / float64(count), Count: count}, nil
}

// --- cart -------------------------------------------------------------------

func (s *Store) CreateCartItem(_ context.Context, item models.CartItem) (models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = s.next("cart_items")
	item.CreatedAt = now()
	item.UpdatedAt = item.CreatedAt
	item.DeletedAt = nil
	s.cart[item.ID] = item
	return item, nil
}

func (s *Store) GetCartItem(_ context.Context, id int64) (models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.cart[id]
	if !ok || item.DeletedAt != nil {
		return models.CartItem{}, store.ErrNotFound
	}
	return item, nil
}

func (s *Store) UpdateCartItem(_ context.Context, item models.CartItem) (models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.cart[item.ID]
	if !ok || existing.DeletedAt != nil {
		return models.CartItem{}, store.ErrNotFound
	}
	existing.Quantity = item.Quantity
	existing.Price = item.Price
	existing.TotalAmount = item.TotalAmount
	existing.DeletedAt = clonePtr(item.DeletedAt)
	existing.UpdatedAt = now()
	s.cart[item.ID] = existing
	return existing, nil
}

func (s *Store) ListCartItems(_ context.Context, accountID int64) ([]models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []models.CartItem{}
	for _, item := range s.cart {
		if item.DeletedAt == nil && item.AccountID == accountID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *Store) ClearCart(_ context.Context, accountID int64, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, item := range s.cart {
		if item.DeletedAt != nil || item.AccountID != accountID {
			continue
		}
		item.DeletedAt = &at
		item.UpdatedAt = at
		s.cart[id] = item
		n++
	}
	return n, nil
}

// --- orders -----------------------------------------------------------------

func (s *Store) CreateOrder(_ context.Context, order models.Order) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.orders {
		if existing.OrderNumber == order.OrderNumber {
			return models.Order{}, store.ErrDuplicate
		}
	}
	order.ID = s.next("orders")
	order.CreatedAt = now()
	order.UpdatedAt = order.CreatedAt
	order.DeletedAt = nil
	lines := make([]models.OrderLine, len(order.ProductDetails))
	for i, line := range order.ProductDetails {
		line.ID = s.next("order_lines")
		line.OrderID = order.ID
		lines[i] = line
	}
	order.ProductDetails = lines
	s.orders[order.ID] = order
	return order, nil
}

func (s *Store) ListOrders(_ context.Context, accountID int64) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := []models.Order{}
	for _, o := range s.orders {
		if o.DeletedAt == nil && o.AccountID == accountID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func (s *Store) GetOrder(_ context.Context, accountID, orderID int64) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok || o.DeletedAt != nil || o.AccountID != accountID {
		return models.Order{}, store.ErrNotFound
	}
	return o, nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, accountID, orderID int64, status string, deletedAt *time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok || o.DeletedAt != nil || o.AccountID != accountID {
		return 0, nil
	}
	o.Status = status
	o.UpdatedAt = now()
	if deletedAt != nil {
		o.DeletedAt = clonePtr(deletedAt)
	}
	s.orders[orderID] = o
	return 1, nil
}

// Order returns an order regardless of its deletion state. Tests use it to inspect
// soft-deleted rows.
func (s *Store) Order(id int64) (models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	return o, ok
}

// CartItem returns a cart line regardless of its deletion state.
func (s *Store) CartItem(id int64) (models.CartItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.cart[id]
	return item, ok
}

// AccountCount reports how many account rows exist, deleted or not.
func (s *Store) AccountCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
