package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/auth"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/models"
	"storefront-backend/internal/store/memory"
)

type fixture struct {
	*Services
	store  *memory.Store
	cache  *cache.Redis
	redis  *miniredis.Miniredis
	issuer *auth.Issuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	srv := miniredis.RunT(t)
	c, err := cache.NewRedis(context.Background(), "redis://"+srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	st := memory.New()
	issuer := auth.NewIssuer("test-secret", time.Hour)
	return &fixture{
		Services: New(Options{Store: st, Issuer: issuer, Cache: c, Logger: log}),
		store:    st,
		cache:    c,
		redis:    srv,
		issuer:   issuer,
	}
}

func (f *fixture) account(t *testing.T, email string) models.Account {
	t.Helper()
	acct, err := f.Accounts.Create(context.Background(), CreateAccountInput{
		Email: email, FirstName: "Jane", LastName: "Doe", Password: "secret1",
	})
	require.NoError(t, err)
	return acct
}

func (f *fixture) seller(t *testing.T, email string) models.Seller {
	t.Helper()
	seller, err := f.Sellers.Create(context.Background(), CreateSellerInput{
		Name: "Ann", Email: email, CompanyName: "Acme", Password: "secret1",
	})
	require.NoError(t, err)
	return seller
}

func (f *fixture) product(t *testing.T, sellerID int64, price float64, category string) models.Product {
	t.Helper()
	p, err := f.Products.Add(context.Background(), sellerID, ProductInput{
		Name: "Runner", Price: price, BrandName: "Acme", Category: category,
	})
	require.NoError(t, err)
	return p
}

// token issues a token for id and returns its claims as the middleware would see them.
func (f *fixture) token(t *testing.T, role string, id int64) *auth.Claims {
	t.Helper()
	_, claims, err := f.issuer.Issue(id, "", role)
	require.NoError(t, err)
	return claims
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperr.Is(err, kind), "unexpected error: %v", err)
}

func strPtr(s string) *string { return &s }
