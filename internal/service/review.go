package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

const msgReviewNotFound = "Review not found."

type AddReviewInput struct {
	ProductID int64    `json:"productId" binding:"required,min=1"`
	Rating    int      `json:"rating" binding:"required,min=1,max=5"`
	Comment   string   `json:"comment" binding:"omitempty,max=1000"`
	Images    []string `json:"images" binding:"omitempty,max=10,dive,url"`
}

type UpdateReviewInput struct {
	ReviewID int64     `json:"reviewId" binding:"required,min=1"`
	Rating   *int      `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment  *string   `json:"comment" binding:"omitempty,max=1000"`
	Images   *[]string `json:"images" binding:"omitempty,max=10,dive,url"`
}

type ReviewQuery struct {
	ReviewID int64 `form:"reviewId" binding:"required,min=1"`
}

type ReviewService struct {
	store store.Store
	log   *logrus.Entry
}

func (s *ReviewService) activeProduct(ctx context.Context, productID int64) error {
	_, err := s.store.GetProduct(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msgProductNotFound)
	}
	if err != nil {
		return apperr.Internal("An error occurred while fetching the product.", err)
	}
	return nil
}

func (s *ReviewService) Add(ctx context.Context, accountID int64, in AddReviewInput) (models.Review, error) {
	if err := s.activeProduct(ctx, in.ProductID); err != nil {
		return models.Review{}, err
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}
	r, err := s.store.CreateReview(ctx, models.Review{
		AccountID: accountID,
		ProductID: in.ProductID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		Images:    images,
	})
	if err != nil {
		return models.Review{}, apperr.Internal("An error occurred while adding the review.", err)
	}
	s.log.WithFields(logrus.Fields{"account_id": accountID, "review_id": r.ID}).Info("review added")
	return r, nil
}

// own loads an active review written by accountID.
func (s *ReviewService) own(ctx context.Context, accountID, reviewID int64) (models.Review, error) {
	r, err := s.store.GetReview(ctx, reviewID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Review{}, apperr.NotFound(msgReviewNotFound)
	}
	if err != nil {
		return models.Review{}, apperr.Internal("An error occurred while fetching the review.", err)
	}
	if r.AccountID != accountID {
		return models.Review{}, apperr.NotFound(msgReviewNotFound)
	}
	return r, nil
}

func (s *ReviewService) Update(ctx context.Context, accountID int64, in UpdateReviewInput) (models.Review, error) {
	r, err := s.own(ctx, accountID, in.ReviewID)
	if err != nil {
		return models.Review{}, err
	}
	assign(&r.Rating, in.Rating)
	assign(&r.Comment, in.Comment)
	assign(&r.Images, in.Images)

	r, err = s.store.UpdateReview(ctx, r)
	if errors.Is(err, store.ErrNotFound) {
		return models.Review{}, apperr.NotFound(msgReviewNotFound)
	}
	if err != nil {
		return models.Review{}, apperr.Internal("An error occurred while updating the review.", err)
	}
	s.log.WithFields(logrus.Fields{"account_id": accountID, "review_id": r.ID}).Info("review updated")
	return r, nil
}

func (s *ReviewService) Delete(ctx context.Context, accountID, reviewID int64) error {
	if _, err := s.own(ctx, accountID, reviewID); err != nil {
		return err
	}
	err := s.store.SoftDeleteReview(ctx, reviewID, now())
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msgReviewNotFound)
	}
	if err != nil {
		return apperr.Internal("An error occurred while deleting the review.", err)
	}
	s.log.WithFields(logrus.Fields{"account_id": accountID, "review_id": reviewID}).Info("review deleted")
	return nil
}

// List returns the active reviews of an active product, newest first.
func (s *ReviewService) List(ctx context.Context, productID int64) ([]models.Review, models.RatingSummary, error) {
	if err := s.activeProduct(ctx, productID); err != nil {
		return nil, models.RatingSummary{}, err
	}
	reviews, err := s.store.ListReviews(ctx, productID)
	if err != nil {
		return nil, models.RatingSummary{}, apperr.Internal("An error occurred while fetching reviews.", err)
	}
	summary, err := s.store.RatingSummary(ctx, productID)
	if err != nil {
		return nil, models.RatingSummary{}, apperr.Internal("An error occurred while fetching reviews.", err)
	}
	return reviews, summary, nil
}
