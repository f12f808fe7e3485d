package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/auth"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

const (
	msgBadCredentials = "Invalid email or password."
	msgLoginFailed    = "An error occurred while logging in."
	msgLogoutFailed   = "An error occurred while logging out."
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Login is a signed token together with the authenticated principal.
type Login struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Principal interface{} `json:"data"`
}

// Session is the record cached under cache.SessionKey after an account login.
type Session struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	LoggedInAt time.Time `json:"loggedInAt"`
}

type AuthService struct {
	store      store.Store
	issuer     *auth.Issuer
	cache      cache.Cache
	sessionTTL time.Duration
	now        func() time.Time
	log        *logrus.Entry
}

// LoginAccount answers 404 for an unknown email and 401 for a wrong password.
func (s *AuthService) LoginAccount(ctx context.Context, in LoginInput) (Login, error) {
	acct, err := s.store.GetAccountByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, store.ErrNotFound) {
		metrics.RecordLogin(models.RoleAccount, "unknown_email")
		return Login{}, apperr.NotFound(msgNoAccountEmail)
	}
	if err != nil {
		return Login{}, apperr.Internal(msgLoginFailed, err)
	}
	if !auth.CheckPassword(acct.PasswordHash, in.Password) {
		metrics.RecordLogin(models.RoleAccount, "bad_password")
		return Login{}, apperr.Unauthorized(msgBadCredentials)
	}

	login, err := s.issue(acct.ID, acct.Email, models.RoleAccount, acct)
	if err != nil {
		return Login{}, err
	}

	session := Session{ID: acct.ID, Email: acct.Email, LoggedInAt: s.now().UTC()}
	if err := s.cache.Set(ctx, cache.SessionKey(acct.ID), session, s.sessionTTL); err != nil {
		s.log.WithError(err).WithField("account_id", acct.ID).Warn("session write failed")
	}
	metrics.RecordLogin(models.RoleAccount, "success")
	s.log.WithField("account_id", acct.ID).Info("account logged in")
	return login, nil
}

// LoginSeller answers 401 for both unknown email and wrong password.
func (s *AuthService) LoginSeller(ctx context.Context, in LoginInput) (Login, error) {
	seller, err := s.store.GetSellerByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, store.ErrNotFound) {
		metrics.RecordLogin(models.RoleSeller, "unknown_email")
		return Login{}, apperr.Unauthorized(msgBadCredentials)
	}
	if err != nil {
		return Login{}, apperr.Internal(msgLoginFailed, err)
	}
	if !auth.CheckPassword(seller.PasswordHash, in.Password) {
		metrics.RecordLogin(models.RoleSeller, "bad_password")
		return Login{}, apperr.Unauthorized(msgBadCredentials)
	}

	login, err := s.issue(seller.ID, seller.Email, models.RoleSeller, seller)
	if err != nil {
		return Login{}, err
	}
	metrics.RecordLogin(models.RoleSeller, "success")
	s.log.WithField("seller_id", seller.ID).Info("seller logged in")
	return login, nil
}

func (s *AuthService) issue(id int64, email, role string, principal interface{}) (Login, error) {
	token, claims, err := s.issuer.Issue(id, email, role)
	if err != nil {
		return Login{}, apperr.Internal(msgLoginFailed, err)
	}
	return Login{
		Token:     token,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0).UTC(),
		Principal: principal,
	}, nil
}

// Logout revokes the presented token for the rest of its lifetime. With the no-op cache
// this does nothing and the token stays valid until it expires.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := revoke(ctx, s.cache, claims, s.now()); err != nil {
		return apperr.Internal(msgLogoutFailed, err)
	}
	if claims.Role == models.RoleAccount {
		if err := s.cache.Delete(ctx, cache.SessionKey(claims.ID)); err != nil {
			s.log.WithError(err).WithField("account_id", claims.ID).Warn("session cleanup failed")
		}
	}
	s.log.WithFields(logrus.Fields{"role": claims.Role, "id": claims.ID}).Info("logged out")
	return nil
}

// Active reports whether the account or seller behind a token still exists.
func (s *AuthService) Active(ctx context.Context, role string, id int64) (bool, error) {
	var err error
	switch role {
	case models.RoleAccount:
		_, err = s.store.GetAccount(ctx, id)
	case models.RoleSeller:
		_, err = s.store.GetSeller(ctx, id)
	default:
		return false, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// revoke marks the token's jti as revoked until the token would expire anyway.
func revoke(ctx context.Context, c cache.Cache, claims *auth.Claims, now time.Time) error {
	remaining := claims.Remaining(now)
	if remaining <= 0 {
		return nil
	}
	return c.Set(ctx, cache.RevokedKey(claims.Id), true, remaining)
}
