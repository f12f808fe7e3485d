// Package mongo implements the store interfaces on MongoDB. Numeric ids are allocated
// from a counters collection so records keep the same shape as in the SQL backend.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

const (
	colAccounts = "accounts"
	colSellers  = "sellers"
	colProducts = "products"
	colReviews  = "reviews"
	colCart     = "cart_items"
	colOrders   = "orders"
	colCounters = "counters"
	seqLines    = "order_lines"
)

// active matches documents that were never soft-deleted.
var active = bson.M{"deletedAt": nil}

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{client: db.Client(), db: db}
}

// Open connects to uri, verifies the connection and ensures indexes exist.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := New(client.Database(database))
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colAccounts: {{Keys: bson.D{{Key: "email", Value: 1}}}},
		colSellers:  {{Keys: bson.D{{Key: "email", Value: 1}}}},
		colProducts: {{Keys: bson.D{{Key: "category", Value: 1}}}},
		colReviews:  {{Keys: bson.D{{Key: "productId", Value: 1}}}},
		colCart:     {{Keys: bson.D{{Key: "accountId", Value: 1}}}},
		colOrders: {
			{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "accountId", Value: 1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx, nil) }

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	default:
		return err
	}
}

func activeWith(extra bson.M) bson.M {
	filter := bson.M{"deletedAt": nil}
	for k, v := range extra {
		filter[k] = v
	}
	return filter
}

// nextIDs reserves n consecutive ids from the named sequence and returns the first.
func (s *Store) nextIDs(ctx context.Context, name string, n int64) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.db.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": n}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate %s id: %w", name, err)
	}
	return counter.Seq - n + 1, nil
}

func (s *Store) nextID(ctx context.Context, name string) (int64, error) {
	return s.nextIDs(ctx, name, 1)
}

func (s *Store) emailTaken(ctx context.Context, col, email string, exceptID int64) (bool, error) {
	filter := activeWith(bson.M{"email": email})
	if exceptID != 0 {
		filter["_id"] = bson.M{"$ne": exceptID}
	}
	n, err := s.db.Collection(col).CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) findOne(ctx context.Context, col string, filter bson.M, out interface{}) error {
	return mapErr(s.db.Collection(col).FindOne(ctx, filter).Decode(out))
}

func (s *Store) findAll(ctx context.Context, col string, filter bson.M, out interface{}, opts ...*options.FindOptions) error {
	cur, err := s.db.Collection(col).Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

// updateActive applies set to the active document with the given id and decodes the result.
func (s *Store) updateActive(ctx context.Context, col string, id int64, set bson.M, out interface{}) error {
	set["updatedAt"] = now()
	err := s.db.Collection(col).FindOneAndUpdate(ctx,
		activeWith(bson.M{"_id": id}),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(out)
	return mapErr(err)
}

func (s *Store) softDelete(ctx context.Context, col string, id int64, at time.Time) error {
	res, err := s.db.Collection(col).UpdateOne(ctx,
		activeWith(bson.M{"_id": id}),
		bson.M{"$set": bson.M{"deletedAt": at, "updatedAt": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) insert(ctx context.Context, col string, doc interface{}) error {
	_, err := s.db.Collection(col).InsertOne(ctx, doc)
	return mapErr(err)
}

// --- accounts ---------------------------------------------------------------

func (s *Store) CreateAccount(ctx context.Context, acct models.Account) (models.Account, error) {
	taken, err := s.emailTaken(ctx, colAccounts, acct.Email, 0)
	if err != nil {
		return models.Account{}, err
	}
	if taken {
		return models.Account{}, store.ErrDuplicate
	}
	if acct.ID, err = s.nextID(ctx, colAccounts); err != nil {
		return models.Account{}, err
	}
	acct.CreatedAt = now()
	acct.UpdatedAt = acct.CreatedAt
	acct.DeletedAt = nil
	if err := s.insert(ctx, colAccounts, acct); err != nil {
		return models.Account{}, err
	}
	return acct, nil
}

func (s *Store) GetAccount(ctx context.Context, id int64) (models.Account, error) {
	var acct models.Account
	err := s.findOne(ctx, colAccounts, activeWith(bson.M{"_id": id}), &acct)
	return acct, err
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	var acct models.Account
	err := s.findOne(ctx, colAccounts, activeWith(bson.M{"email": email}), &acct)
	return acct, err
}

func (s *Store) UpdateAccount(ctx context.Context, acct models.Account) (models.Account, error) {
	taken, err := s.emailTaken(ctx, colAccounts, acct.Email, acct.ID)
	if err != nil {
		return models.Account{}, err
	}
	if taken {
		return models.Account{}, store.ErrDuplicate
	}
	var out models.Account
	err = s.updateActive(ctx, colAccounts, acct.ID, bson.M{
		"email":        acct.Email,
		"firstName":    acct.FirstName,
		"lastName":     acct.LastName,
		"phoneNumber":  acct.PhoneNumber,
		"passwordHash": acct.PasswordHash,
	}, &out)
	return out, err
}

func (s *Store) SoftDeleteAccount(ctx context.Context, id int64, at time.Time) error {
	return s.softDelete(ctx, colAccounts, id, at)
}

// --- sellers ----------------------------------------------------------------

func (s *Store) CreateSeller(ctx context.Context, seller models.Seller) (models.Seller, error) {
	taken, err := s.emailTaken(ctx, colSellers, seller.Email, 0)
	if err != nil {
		return models.Seller{}, err
	}
	if taken {
		return models.Seller{}, store.ErrDuplicate
	}
	if seller.ID, err = s.nextID(ctx, colSellers); err != nil {
		return models.Seller{}, err
	}
	seller.CreatedAt = now()
	seller.UpdatedAt = seller.CreatedAt
	seller.DeletedAt = nil
	if err := s.insert(ctx, colSellers, seller); err != nil {
		return models.Seller{}, err
	}
	return seller, nil
}

func (s *Store) GetSeller(ctx context.Context, id int64) (models.Seller, error) {
	var seller models.Seller
	err := s.findOne(ctx, colSellers, activeWith(bson.M{"_id": id}), &seller)
	return seller, err
}

func (s *Store) GetSellerByEmail(ctx context.Context, email string) (models.Seller, error) {
	var seller models.Seller
	err := s.findOne(ctx, colSellers, activeWith(bson.M{"email": email}), &seller)
	return seller, err
}

func (s *Store) UpdateSeller(ctx context.Context, seller models.Seller) (models.Seller, error) {
	taken, err := s.emailTaken(ctx, colSellers, seller.Email, seller.ID)
	if err != nil {
		return models.Seller{}, err
	}
	if taken {
		return models.Seller{}, store.ErrDuplicate
	}
	var out models.Seller
	err = s.updateActive(ctx, colSellers, seller.ID, bson.M{
		"name":         seller.Name,
		"email":        seller.Email,
		"phoneNumber":  seller.PhoneNumber,
		"companyName":  seller.CompanyName,
		"passwordHash": seller.PasswordHash,
	}, &out)
	return out, err
}

func (s *Store) SoftDeleteSeller(ctx context.Context, id int64, at time.Time) error {
	return s.softDelete(ctx, colSellers, id, at)
}

// --- products ---------------------------------------------------------------

func (s *Store) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	var err error
	if p.ID, err = s.nextID(ctx, colProducts); err != nil {
		return models.Product{}, err
	}
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	p.DeletedAt = nil
	if err := s.insert(ctx, colProducts, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	var p models.Product
	err := s.findOne(ctx, colProducts, activeWith(bson.M{"_id": id}), &p)
	return p, err
}

func (s *Store) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	var out models.Product
	err := s.updateActive(ctx, colProducts, p.ID, bson.M{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"brandName":   p.BrandName,
		"category":    p.Category,
	}, &out)
	return out, err
}

func (s *Store) SoftDeleteProduct(ctx context.Context, id int64, at time.Time) error {
	return s.softDelete(ctx, colProducts, id, at)
}

func (s *Store) ListProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, int64, error) {
	skip, limit := store.Page(filter.Skip, filter.Limit)
	query := activeWith(nil)
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	total, err := s.db.Collection(colProducts).CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	products := []models.Product{}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))
	if err := s.findAll(ctx, colProducts, query, &products, opts); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	values, err := s.db.Collection(colProducts).Distinct(ctx, "category", active)
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(values))
	for _, v := range values {
		if c, ok := v.(string); ok {
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// --- reviews ----------------------------------------------------------------

func (s *Store) CreateReview(ctx context.Context, r models.Review) (models.Review, error) {
	var err error
	if r.ID, err = s.nextID(ctx, colReviews); err != nil {
		return models.Review{}, err
	}
	if r.Images == nil {
		r.Images = []string{}
	}
	r.CreatedAt = now()
	r.UpdatedAt = r.CreatedAt
	r.DeletedAt = nil
	if err := s.insert(ctx, colReviews, r); err != nil {
		return models.Review{}, err
	}
	return r, nil
}

func (s *Store) GetReview(ctx context.Context, id int64) (models.Review, error) {
	var r models.Review
	err := s.findOne(ctx, colReviews, activeWith(bson.M{"_id": id}), &r)
	return r, err
}

func (s *Store) UpdateReview(ctx context.Context, r models.Review) (models.Review, error) {
	images := r.Images
	if images == nil {
		images = []string{}
	}
	var out models.Review
	err := s.updateActive(ctx, colReviews, r.ID, bson.M{
		"rating":  r.Rating,
		"comment": r.Comment,
		"images":  images,
	}, &out)
	return out, err
}

func (s *Store) SoftDeleteReview(ctx context.Context, id int64, at time.Time) error {
	return s.softDelete(ctx, colReviews, id, at)
}

func (s *Store) ListReviews(ctx context.Context, productID int64) ([]models.Review, error) {
	reviews := []models.Review{}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	err := s.findAll(ctx, colReviews, activeWith(bson.M{"productId": productID}), &reviews, opts)
	return reviews, err
}

func (s *Store) RatingSummary(ctx context.Context, productID int64) (models.RatingSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: activeWith(bson.M{"productId": productID})}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "average", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := s.db.Collection(colReviews).Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingSummary{}, err
	}
	var rows []models.RatingSummary
	if err := cur.All(ctx, &rows); err != nil {
		return models.RatingSummary{}, err
	}
	if len(rows) == 0 {
		return models.RatingSummary{}, nil
	}
	return rows[0], nil
}

// --- cart -------------------------------------------------------------------

func (s *Store) CreateCartItem(ctx context.Context, item models.CartItem) (models.CartItem, error) {
	var err error
	if item.ID, err = s.nextID(ctx, colCart); err != nil {
		return models.CartItem{}, err
	}
	item.CreatedAt = now()
	item.UpdatedAt = item.CreatedAt
	item.DeletedAt = nil
	if err := s.insert(ctx, colCart, item); err != nil {
		return models.CartItem{}, err
	}
	return item, nil
}

func (s *Store) GetCartItem(ctx context.Context, id int64) (models.CartItem, error) {
	var item models.CartItem
	err := s.findOne(ctx, colCart, activeWith(bson.M{"_id": id}), &item)
	return item, err
}

func (s *Store) UpdateCartItem(ctx context.Context, item models.CartItem) (models.CartItem, error) {
	set := bson.M{
		"quantity":    item.Quantity,
		"price":       item.Price,
		"totalAmount": item.TotalAmount,
	}
	if item.DeletedAt != nil {
		set["deletedAt"] = *item.DeletedAt
	}
	var out models.CartItem
	err := s.updateActive(ctx, colCart, item.ID, set, &out)
	return out, err
}

func (s *Store) ListCartItems(ctx context.Context, accountID int64) ([]models.CartItem, error) {
	items := []models.CartItem{}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	err := s.findAll(ctx, colCart, activeWith(bson.M{"accountId": accountID}), &items, opts)
	return items, err
}

func (s *Store) ClearCart(ctx context.Context, accountID int64, at time.Time) (int64, error) {
	res, err := s.db.Collection(colCart).UpdateMany(ctx,
		activeWith(bson.M{"accountId": accountID}),
		bson.M{"$set": bson.M{"deletedAt": at, "updatedAt": at}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// --- orders -----------------------------------------------------------------

// CreateOrder stores the lines embedded in the order document, so a single insert
// covers header and lines.
func (s *Store) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	var err error
	if order.ID, err = s.nextID(ctx, colOrders); err != nil {
		return models.Order{}, err
	}
	lines := make([]models.OrderLine, len(order.ProductDetails))
	if len(lines) > 0 {
		first, err := s.nextIDs(ctx, seqLines, int64(len(lines)))
		if err != nil {
			return models.Order{}, err
		}
		for i, line := range order.ProductDetails {
			line.ID = first + int64(i)
			line.OrderID = order.ID
			lines[i] = line
		}
	}
	order.ProductDetails = lines
	order.CreatedAt = now()
	order.UpdatedAt = order.CreatedAt
	order.DeletedAt = nil
	if err := s.insert(ctx, colOrders, order); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (s *Store) ListOrders(ctx context.Context, accountID int64) ([]models.Order, error) {
	orders := []models.Order{}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	err := s.findAll(ctx, colOrders, activeWith(bson.M{"accountId": accountID}), &orders, opts)
	return orders, err
}

func (s *Store) GetOrder(ctx context.Context, accountID, orderID int64) (models.Order, error) {
	var order models.Order
	err := s.findOne(ctx, colOrders, activeWith(bson.M{"_id": orderID, "accountId": accountID}), &order)
	return order, err
}

func (s *Store) UpdateOrderStatus(ctx context.Context, accountID, orderID int64, status string, deletedAt *time.Time) (int64, error) {
	set := bson.M{"status": status, "updatedAt": now()}
	if deletedAt != nil {
		set["deletedAt"] = *deletedAt
	}
	res, err := s.db.Collection(colOrders).UpdateOne(ctx,
		activeWith(bson.M{"_id": orderID, "accountId": accountID}),
		bson.M{"$set": set},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}
