// Package service implements the account, seller, catalog, cart and order operations on
// top of the store interfaces. Inputs are assumed to have passed binding validation;
// every failure is returned as an *apperr.Error.
package service

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/store"
)

type Services struct {
	Accounts *AccountService
	Sellers  *SellerService
	Auth     *AuthService
	Products *ProductService
	Reviews  *ReviewService
	Cart     *CartService
	Orders   *OrderService
}

type Options struct {
	Store      store.Store
	Issuer     *auth.Issuer
	Cache      cache.Cache
	Logger     *logrus.Logger
	SessionTTL time.Duration
}

func New(opts Options) *Services {
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	log := opts.Logger
	return &Services{
		Accounts: &AccountService{store: opts.Store, cache: opts.Cache, log: log.WithField("service", "account")},
		Sellers:  &SellerService{store: opts.Store, cache: opts.Cache, log: log.WithField("service", "seller")},
		Auth: &AuthService{
			store:      opts.Store,
			issuer:     opts.Issuer,
			cache:      opts.Cache,
			sessionTTL: opts.SessionTTL,
			now:        time.Now,
			log:        log.WithField("service", "auth"),
		},
		Products: &ProductService{store: opts.Store, log: log.WithField("service", "product")},
		Reviews:  &ReviewService{store: opts.Store, log: log.WithField("service", "review")},
		Cart:     &CartService{store: opts.Store, log: log.WithField("service", "cart")},
		Orders:   &OrderService{store: opts.Store, log: log.WithField("service", "order")},
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func now() time.Time { return time.Now().UTC() }

// assign copies *src into *dst when src is set.
func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
