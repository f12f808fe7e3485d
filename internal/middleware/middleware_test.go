package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/logging"
	"storefront-backend/internal/models"
	"storefront-backend/internal/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubCache struct {
	cache.Nop
	revoked map[string]bool
	err     error
}

func (s stubCache) Exists(_ context.Context, key string) (bool, error) {
	return s.revoked[key], s.err
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, "info", "json")

	r := gin.New()
	r.Use(RequestID(log), Logger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())
	assert.Contains(t, buf.String(), `"request_id":"`+id+`"`)
	assert.Contains(t, buf.String(), `"status":200`)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecoveryReturnsGenericError(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, "info", "json")

	r := gin.New()
	r.Use(RequestID(log), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, response.GenericError, decode(t, w).Message)
	assert.Contains(t, buf.String(), "kaboom")
}

func authRouter(a *Authenticator, role string) *gin.Engine {
	r := gin.New()
	r.GET("/me", a.Require(role), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": Claims(c).ID})
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRole(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	r := authRouter(NewAuthenticator(issuer, nil, nil), models.RoleAccount)

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, msgMissingToken, decode(t, w).Message)

	w = get(r, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, msgInvalidToken, decode(t, w).Message)

	sellerToken, _, err := issuer.Issue(3, "ann@acme.test", models.RoleSeller)
	require.NoError(t, err)
	w = get(r, sellerToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, msgWrongRole, decode(t, w).Message)

	token, _, err := issuer.Issue(7, "jane@example.com", models.RoleAccount)
	require.NoError(t, err)
	w = get(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7}`, w.Body.String())
}

func TestRequireRejectsOtherSecret(t *testing.T) {
	r := authRouter(NewAuthenticator(auth.NewIssuer("secret", time.Hour), nil, nil), models.RoleAccount)
	token, _, err := auth.NewIssuer("other", time.Hour).Issue(7, "jane@example.com", models.RoleAccount)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(r, token).Code)
}

func TestRequireRejectsRevokedToken(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	token, claims, err := issuer.Issue(7, "jane@example.com", models.RoleAccount)
	require.NoError(t, err)

	c := stubCache{revoked: map[string]bool{cache.RevokedKey(claims.Id): true}}
	r := authRouter(NewAuthenticator(issuer, c, nil), models.RoleAccount)
	assert.Equal(t, http.StatusUnauthorized, get(r, token).Code)
}

func TestRequireToleratesCacheFailure(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	token, _, err := issuer.Issue(7, "jane@example.com", models.RoleAccount)
	require.NoError(t, err)

	r := authRouter(NewAuthenticator(issuer, stubCache{err: errors.New("redis down")}, nil), models.RoleAccount)
	assert.Equal(t, http.StatusOK, get(r, token).Code)
}

type stubPrincipals struct {
	active map[int64]bool
	err    error
}

func (s stubPrincipals) Active(_ context.Context, _ string, id int64) (bool, error) {
	return s.active[id], s.err
}

func TestRequireRejectsDeletedPrincipal(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	live, _, err := issuer.Issue(7, "jane@example.com", models.RoleAccount)
	require.NoError(t, err)
	gone, _, err := issuer.Issue(8, "gone@example.com", models.RoleAccount)
	require.NoError(t, err)

	r := authRouter(NewAuthenticator(issuer, nil, stubPrincipals{active: map[int64]bool{7: true}}), models.RoleAccount)
	assert.Equal(t, http.StatusOK, get(r, live).Code)

	w := get(r, gone)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, msgInvalidToken, decode(t, w).Message)
}

func TestRequirePrincipalLookupFailure(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	token, _, err := issuer.Issue(7, "jane@example.com", models.RoleAccount)
	require.NoError(t, err)

	r := authRouter(NewAuthenticator(issuer, nil, stubPrincipals{err: errors.New("db down")}), models.RoleAccount)
	w := get(r, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, response.GenericError, decode(t, w).Message)
}

func TestRateLimiterPerClient(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.POST("/login", limiter.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestRateLimiterCleanupDropsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	clock := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return clock }

	for i := 0; i < 1000; i++ {
		limiter.limiter(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	assert.Equal(t, 1000, limiter.Len())

	clock = clock.Add(5 * time.Minute)
	limiter.limiter("10.9.9.9")
	limiter.Cleanup()
	assert.Equal(t, 1001, limiter.Len())

	clock = clock.Add(6 * time.Minute)
	limiter.Cleanup()
	assert.Equal(t, 1, limiter.Len())
}

func TestRateLimiterStartCleanup(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	limiter.idle = 0
	limiter.limiter("10.0.0.1")

	stop := limiter.StartCleanup(5 * time.Millisecond)
	defer stop()
	assert.Eventually(t, func() bool { return limiter.Len() == 0 }, time.Second, 5*time.Millisecond)
	stop()
}
