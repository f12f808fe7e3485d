package httpapi

import (
	"github.com/gin-gonic/gin"

	"storefront-backend/internal/middleware"
	"storefront-backend/internal/service"
)

func (h *handlers) addProduct(c *gin.Context, in *service.ProductInput) (result, error) {
	p, err := h.svc.Products.Add(c.Request.Context(), middleware.Claims(c).ID, *in)
	if err != nil {
		return result{}, err
	}
	return result{message: "Product created successfully.", data: p}, nil
}

func (h *handlers) editProduct(c *gin.Context, in *service.EditProductInput) (result, error) {
	p, err := h.svc.Products.Edit(c.Request.Context(), middleware.Claims(c).ID, *in)
	if err != nil {
		return result{}, err
	}
	return result{message: "Product updated successfully.", data: p}, nil
}

func (h *handlers) deleteProduct(c *gin.Context, in *service.ProductQuery) (result, error) {
	if err := h.svc.Products.Delete(c.Request.Context(), middleware.Claims(c).ID, in.ProductID); err != nil {
		return result{}, err
	}
	return result{message: "Product soft deleted successfully."}, nil
}

func (h *handlers) allProducts(c *gin.Context, in *service.PageQuery) (result, error) {
	products, meta, err := h.svc.Products.List(c.Request.Context(), *in)
	if err != nil {
		return failed(products, err)
	}
	return result{message: "Products fetched successfully.", data: products, meta: meta}, nil
}

func (h *handlers) productDetails(c *gin.Context, in *service.ProductQuery) (result, error) {
	details, err := h.svc.Products.Details(c.Request.Context(), in.ProductID)
	if err != nil {
		return result{}, err
	}
	return result{message: "Product details fetched successfully.", data: details}, nil
}

func (h *handlers) productsByCategory(c *gin.Context, in *service.CategoryQuery) (result, error) {
	products, meta, err := h.svc.Products.ByCategory(c.Request.Context(), *in)
	if err != nil {
		return failed(products, err)
	}
	return result{message: "Products fetched successfully.", data: products, meta: meta}, nil
}

func (h *handlers) categories(c *gin.Context, _ *none) (result, error) {
	categories, err := h.svc.Products.Categories(c.Request.Context())
	if err != nil {
		return result{}, err
	}
	return result{message: "Categories fetched successfully.", data: categories}, nil
}

func (h *handlers) addReview(c *gin.Context, in *service.AddReviewInput) (result, error) {
	r, err := h.svc.Reviews.Add(c.Request.Context(), middleware.Claims(c).ID, *in)
	if err != nil {
		return result{}, err
	}
	return result{message: "Review added successfully.", data: r}, nil
}

func (h *handlers) updateReview(c *gin.Context, in *service.UpdateReviewInput) (result, error) {
	r, err := h.svc.Reviews.Update(c.Request.Context(), middleware.Claims(c).ID, *in)
	if err != nil {
		return result{}, err
	}
	return result{message: "Review updated successfully.", data: r}, nil
}

func (h *handlers) deleteReview(c *gin.Context, in *service.ReviewQuery) (result, error) {
	if err := h.svc.Reviews.Delete(c.Request.Context(), middleware.Claims(c).ID, in.ReviewID); err != nil {
		return result{}, err
	}
	return result{message: "Review deleted successfully."}, nil
}

func (h *handlers) listReviews(c *gin.Context, in *service.ProductQuery) (result, error) {
	reviews, summary, err := h.svc.Reviews.List(c.Request.Context(), in.ProductID)
	if err != nil {
		return result{}, err
	}
	return result{message: "Reviews fetched successfully.", data: reviews, meta: summary}, nil
}
