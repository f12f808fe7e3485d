package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/auth"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

const (
	msgSellerExists   = "A seller with this email already exists."
	msgSellerNotFound = "Seller not found."
	msgNoSellerEmail  = "No seller found with this email."
)

type CreateSellerInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,max=20"`
	CompanyName string `json:"companyName" binding:"required,max=200"`
	Password    string `json:"password" binding:"required,min=6"`
}

type EditSellerInput struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email       *string `json:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,max=20"`
	CompanyName *string `json:"companyName" binding:"omitempty,min=1,max=200"`
	Password    *string `json:"password" binding:"omitempty,min=6"`
}

type SellerService struct {
	store store.SellerStore
	cache cache.Cache
	log   *logrus.Entry
}

func (s *SellerService) Create(ctx context.Context, in CreateSellerInput) (models.Seller, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.Seller{}, apperr.Internal("An error occurred while creating the seller.", err)
	}
	seller, err := s.store.CreateSeller(ctx, models.Seller{
		Name:         in.Name,
		Email:        normalizeEmail(in.Email),
		PhoneNumber:  in.PhoneNumber,
		CompanyName:  in.CompanyName,
		PasswordHash: hash,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return models.Seller{}, apperr.Invalid(msgSellerExists)
	}
	if err != nil {
		return models.Seller{}, apperr.Internal("An error occurred while creating the seller.", err)
	}
	s.log.WithField("seller_id", seller.ID).Info("seller created")
	return seller, nil
}

func (s *SellerService) Update(ctx context.Context, id int64, in EditSellerInput) (models.Seller, error) {
	seller, err := s.store.GetSeller(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Seller{}, apperr.NotFound(msgSellerNotFound)
	}
	if err != nil {
		return models.Seller{}, apperr.Internal("An error occurred while updating the seller.", err)
	}

	assign(&seller.Name, in.Name)
	if in.Email != nil {
		seller.Email = normalizeEmail(*in.Email)
	}
	assign(&seller.PhoneNumber, in.PhoneNumber)
	assign(&seller.CompanyName, in.CompanyName)
	if in.Password != nil {
		if seller.PasswordHash, err = auth.HashPassword(*in.Password); err != nil {
			return models.Seller{}, apperr.Internal("An error occurred while updating the seller.", err)
		}
	}

	seller, err = s.store.UpdateSeller(ctx, seller)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return models.Seller{}, apperr.Invalid(msgSellerExists)
	case errors.Is(err, store.ErrNotFound):
		return models.Seller{}, apperr.NotFound(msgSellerNotFound)
	case err != nil:
		return models.Seller{}, apperr.Internal("An error occurred while updating the seller.", err)
	}
	s.log.WithField("seller_id", seller.ID).Info("seller updated")
	return seller, nil
}

func (s *SellerService) Delete(ctx context.Context, claims *auth.Claims) error {
	id := claims.ID
	err := s.store.SoftDeleteSeller(ctx, id, now())
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msgSellerNotFound)
	}
	if err != nil {
		return apperr.Internal("An error occurred while marking the seller as deleted.", err)
	}
	if err := revoke(ctx, s.cache, claims, now()); err != nil {
		s.log.WithError(err).WithField("seller_id", id).Warn("token revocation failed")
	}
	s.log.WithField("seller_id", id).Info("seller deleted")
	return nil
}

func (s *SellerService) Details(ctx context.Context, id int64) (models.Seller, error) {
	seller, err := s.store.GetSeller(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Seller{}, apperr.NotFound(msgSellerNotFound)
	}
	if err != nil {
		return models.Seller{}, apperr.Internal("An error occurred while fetching seller details.", err)
	}
	return seller, nil
}

func (s *SellerService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	seller, err := s.store.GetSellerByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Invalid(msgNoSellerEmail)
	}
	if err != nil {
		return apperr.Internal("An error occurred while resetting the password.", err)
	}
	if seller.PasswordHash, err = auth.HashPassword(in.NewPassword); err != nil {
		return apperr.Internal("An error occurred while resetting the password.", err)
	}
	if _, err := s.store.UpdateSeller(ctx, seller); err != nil {
		return apperr.Internal("An error occurred while resetting the password.", err)
	}
	s.log.WithField("seller_id", seller.ID).Info("password reset")
	return nil
}
