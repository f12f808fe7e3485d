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
	msgProductNotFound = "Product not found."
	msgNoProducts      = "No products found."
)

type ProductInput struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Description string  `json:"description" binding:"omitempty,max=2000"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	BrandName   string  `json:"brandName" binding:"required,max=100"`
	Category    string  `json:"category" binding:"required,max=100"`
}

type EditProductInput struct {
	ProductID   int64    `json:"productId" binding:"required,min=1"`
	Name        *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	BrandName   *string  `json:"brandName" binding:"omitempty,min=1,max=100"`
	Category    *string  `json:"category" binding:"omitempty,min=1,max=100"`
}

type ProductQuery struct {
	ProductID int64 `form:"productId" binding:"required,min=1"`
}

type PageQuery struct {
	Skip  int `form:"skip" binding:"omitempty,min=0"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type CategoryQuery struct {
	Category string `form:"category" binding:"required,max=100"`
	Skip     int    `form:"skip" binding:"omitempty,min=0"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// PageMeta describes one page of a listing.
type PageMeta struct {
	Total int64 `json:"total"`
	Skip  int   `json:"skip"`
	Limit int   `json:"limit"`
}

type ProductService struct {
	store store.Store
	log   *logrus.Entry
}

func (s *ProductService) Add(ctx context.Context, sellerID int64, in ProductInput) (models.Product, error) {
	p, err := s.store.CreateProduct(ctx, models.Product{
		SellerID:    sellerID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		BrandName:   in.BrandName,
		Category:    in.Category,
	})
	if err != nil {
		return models.Product{}, apperr.Internal("An error occurred while creating the product.", err)
	}
	s.log.WithFields(logrus.Fields{"seller_id": sellerID, "product_id": p.ID}).Info("product created")
	return p, nil
}

// owned loads an active product belonging to sellerID. Products of other sellers are
// reported as missing.
func (s *ProductService) owned(ctx context.Context, sellerID, productID int64) (models.Product, error) {
	p, err := s.store.GetProduct(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Product{}, apperr.NotFound(msgProductNotFound)
	}
	if err != nil {
		return models.Product{}, apperr.Internal("An error occurred while fetching the product.", err)
	}
	if p.SellerID != sellerID {
		s.log.WithFields(logrus.Fields{"seller_id": sellerID, "product_id": productID}).Warn("product owned by another seller")
		return models.Product{}, apperr.NotFound(msgProductNotFound)
	}
	return p, nil
}

func (s *ProductService) Edit(ctx context.Context, sellerID int64, in EditProductInput) (models.Product, error) {
	p, err := s.owned(ctx, sellerID, in.ProductID)
	if err != nil {
		return models.Product{}, err
	}
	assign(&p.Name, in.Name)
	assign(&p.Description, in.Description)
	assign(&p.Price, in.Price)
	assign(&p.BrandName, in.BrandName)
	assign(&p.Category, in.Category)

	p, err = s.store.UpdateProduct(ctx, p)
	if errors.Is(err, store.ErrNotFound) {
		return models.Product{}, apperr.NotFound(msgProductNotFound)
	}
	if err != nil {
		return models.Product{}, apperr.Internal("An error occurred while updating the product.", err)
	}
	s.log.WithFields(logrus.Fields{"seller_id": sellerID, "product_id": p.ID}).Info("product updated")
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, sellerID, productID int64) error {
	if _, err := s.owned(ctx, sellerID, productID); err != nil {
		return err
	}
	err := s.store.SoftDeleteProduct(ctx, productID, now())
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msgProductNotFound)
	}
	if err != nil {
		return apperr.Internal("An error occurred while deleting the product.", err)
	}
	s.log.WithFields(logrus.Fields{"seller_id": sellerID, "product_id": productID}).Info("product deleted")
	return nil
}

// Details returns an active product with its rating derived from active reviews.
func (s *ProductService) Details(ctx context.Context, productID int64) (models.ProductDetails, error) {
	p, err := s.store.GetProduct(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return models.ProductDetails{}, apperr.NotFound(msgProductNotFound)
	}
	if err != nil {
		return models.ProductDetails{}, apperr.Internal("An error occurred while fetching the product details.", err)
	}
	summary, err := s.store.RatingSummary(ctx, productID)
	if err != nil {
		return models.ProductDetails{}, apperr.Internal("An error occurred while fetching the product details.", err)
	}
	return models.ProductDetails{Product: p, Rating: summary.Average, NumberOfReviews: summary.Count}, nil
}

func (s *ProductService) List(ctx context.Context, q PageQuery) ([]models.Product, PageMeta, error) {
	return s.list(ctx, store.ProductFilter{Skip: q.Skip, Limit: q.Limit})
}

func (s *ProductService) ByCategory(ctx context.Context, q CategoryQuery) ([]models.Product, PageMeta, error) {
	return s.list(ctx, store.ProductFilter{Category: q.Category, Skip: q.Skip, Limit: q.Limit})
}

// list answers 404 only when nothing matches the filter at all; a page past the end is
// an empty 200.
func (s *ProductService) list(ctx context.Context, filter store.ProductFilter) ([]models.Product, PageMeta, error) {
	skip, limit := store.Page(filter.Skip, filter.Limit)
	filter.Skip, filter.Limit = skip, limit
	meta := PageMeta{Skip: skip, Limit: limit}

	products, total, err := s.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, meta, apperr.Internal("An error occurred while fetching products.", err)
	}
	meta.Total = total
	if total == 0 {
		return []models.Product{}, meta, apperr.NotFound(msgNoProducts)
	}
	return products, meta, nil
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, apperr.Internal("An error occurred while fetching categories.", err)
	}
	return categories, nil
}
