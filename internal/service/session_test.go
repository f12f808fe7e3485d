package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/models"
)

func TestLoginAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.account(t, "jane@example.com")

	login, err := f.Auth.LoginAccount(ctx, LoginInput{Email: "JANE@example.com", Password: "secret1"})
	require.NoError(t, err)
	claims, err := f.issuer.Parse(login.Token)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, claims.ID)
	assert.Equal(t, models.RoleAccount, claims.Role)
	assert.NotEmpty(t, claims.Id)

	raw, err := f.redis.Get(cache.SessionKey(acct.ID))
	require.NoError(t, err)
	var session Session
	require.NoError(t, json.Unmarshal([]byte(raw), &session))
	assert.Equal(t, acct.Email, session.Email)
	assert.Equal(t, 24*time.Hour, f.redis.TTL(cache.SessionKey(acct.ID)))
}

func TestLoginAccountFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.account(t, "jane@example.com")

	_, err := f.Auth.LoginAccount(ctx, LoginInput{Email: acct.Email, Password: "wrong-password"})
	assertKind(t, err, apperr.KindUnauthorized)

	_, err = f.Auth.LoginAccount(ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"})
	assertKind(t, err, apperr.KindNotFound)

	require.NoError(t, f.Accounts.Delete(ctx, f.token(t, models.RoleAccount, acct.ID)))
	_, err = f.Auth.LoginAccount(ctx, LoginInput{Email: acct.Email, Password: "secret1"})
	assertKind(t, err, apperr.KindNotFound)
}

func TestLoginSellerAlwaysUnauthorized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.seller(t, "ann@acme.test")

	_, err := f.Auth.LoginSeller(ctx, LoginInput{Email: "nobody@acme.test", Password: "secret1"})
	assertKind(t, err, apperr.KindUnauthorized)
	_, err = f.Auth.LoginSeller(ctx, LoginInput{Email: seller.Email, Password: "wrong-password"})
	assertKind(t, err, apperr.KindUnauthorized)

	login, err := f.Auth.LoginSeller(ctx, LoginInput{Email: seller.Email, Password: "secret1"})
	require.NoError(t, err)
	claims, err := f.issuer.Parse(login.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSeller, claims.Role)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.account(t, "jane@example.com")

	login, err := f.Auth.LoginAccount(ctx, LoginInput{Email: acct.Email, Password: "secret1"})
	require.NoError(t, err)
	claims, err := f.issuer.Parse(login.Token)
	require.NoError(t, err)

	require.NoError(t, f.Auth.Logout(ctx, claims))

	revoked, _ := f.cache.Exists(ctx, cache.RevokedKey(claims.Id))
	assert.True(t, revoked)
	ttl := f.redis.TTL(cache.RevokedKey(claims.Id))
	assert.True(t, ttl > 0 && ttl <= time.Hour, "ttl %s", ttl)
	session, _ := f.cache.Exists(ctx, cache.SessionKey(acct.ID))
	assert.False(t, session)
}
