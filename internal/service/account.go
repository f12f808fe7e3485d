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
	msgAccountExists   = "An account with this email already exists."
	msgAccountNotFound = "Account not found."
	msgNoAccountEmail  = "No account found with this email."
)

type CreateAccountInput struct {
	Email       string `json:"email" binding:"required,email"`
	FirstName   string `json:"firstName" binding:"required,max=100"`
	LastName    string `json:"lastName" binding:"required,max=100"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,max=20"`
	Password    string `json:"password" binding:"required,min=6"`
}

// EditAccountInput merges only the fields that are present.
type EditAccountInput struct {
	Email       *string `json:"email" binding:"omitempty,email"`
	FirstName   *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName    *string `json:"lastName" binding:"omitempty,min=1,max=100"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,max=20"`
	Password    *string `json:"password" binding:"omitempty,min=6"`
}

type ResetPasswordInput struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type AccountService struct {
	store store.AccountStore
	cache cache.Cache
	log   *logrus.Entry
}

func (s *AccountService) Create(ctx context.Context, in CreateAccountInput) (models.Account, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.Account{}, apperr.Internal("An error occurred while creating the account.", err)
	}
	acct, err := s.store.CreateAccount(ctx, models.Account{
		Email:        normalizeEmail(in.Email),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: hash,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return models.Account{}, apperr.Invalid(msgAccountExists)
	}
	if err != nil {
		return models.Account{}, apperr.Internal("An error occurred while creating the account.", err)
	}
	s.log.WithField("account_id", acct.ID).Info("account created")
	return acct, nil
}

func (s *AccountService) Update(ctx context.Context, id int64, in EditAccountInput) (models.Account, error) {
	acct, err := s.store.GetAccount(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Account{}, apperr.NotFound(msgAccountNotFound)
	}
	if err != nil {
		return models.Account{}, apperr.Internal("An error occurred while updating the account.", err)
	}

	if in.Email != nil {
		acct.Email = normalizeEmail(*in.Email)
	}
	assign(&acct.FirstName, in.FirstName)
	assign(&acct.LastName, in.LastName)
	assign(&acct.PhoneNumber, in.PhoneNumber)
	if in.Password != nil {
		if acct.PasswordHash, err = auth.HashPassword(*in.Password); err != nil {
			return models.Account{}, apperr.Internal("An error occurred while updating the account.", err)
		}
	}

	acct, err = s.store.UpdateAccount(ctx, acct)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return models.Account{}, apperr.Invalid(msgAccountExists)
	case errors.Is(err, store.ErrNotFound):
		return models.Account{}, apperr.NotFound(msgAccountNotFound)
	case err != nil:
		return models.Account{}, apperr.Internal("An error occurred while updating the account.", err)
	}
	s.log.WithField("account_id", acct.ID).Info("account updated")
	return acct, nil
}

// Delete soft-deletes the caller's account and revokes the token that asked for it.
func (s *AccountService) Delete(ctx context.Context, claims *auth.Claims) error {
	id := claims.ID
	err := s.store.SoftDeleteAccount(ctx, id, now())
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msgAccountNotFound)
	}
	if err != nil {
		return apperr.Internal("An error occurred while deleting the account.", err)
	}
	if err := revoke(ctx, s.cache, claims, now()); err != nil {
		s.log.WithError(err).WithField("account_id", id).Warn("token revocation failed")
	}
	if err := s.cache.Delete(ctx, cache.SessionKey(id)); err != nil {
		s.log.WithError(err).WithField("account_id", id).Warn("session cleanup failed")
	}
	s.log.WithField("account_id", id).Info("account deleted")
	return nil
}

func (s *AccountService) Details(ctx context.Context, id int64) (models.Account, error) {
	acct, err := s.store.GetAccount(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Account{}, apperr.NotFound(msgAccountNotFound)
	}
	if err != nil {
		return models.Account{}, apperr.Internal("An error occurred while fetching account details.", err)
	}
	return acct, nil
}

// ResetPassword overwrites the password of the active account holding the email.
func (s *AccountService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	acct, err := s.store.GetAccountByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Invalid(msgNoAccountEmail)
	}
	if err != nil {
		return apperr.Internal("An error occurred while resetting the password.", err)
	}
	if acct.PasswordHash, err = auth.HashPassword(in.NewPassword); err != nil {
		return apperr.Internal("An error occurred while resetting the password.", err)
	}
	if _, err := s.store.UpdateAccount(ctx, acct); err != nil {
		return apperr.Internal("An error occurred while resetting the password.", err)
	}
	s.log.WithField("account_id", acct.ID).Info("password reset")
	return nil
}
