package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	r, err := NewRedis(context.Background(), "redis://"+srv.Addr()+"/2")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, srv
}

func TestRedisSetWithTTL(t *testing.T) {
	r, srv := newRedis(t)
	ctx := context.Background()

	session := map[string]interface{}{"id": 7, "email": "jane@example.com"}
	require.NoError(t, r.Set(ctx, SessionKey(7), session, 24*time.Hour))

	srv.Select(2)
	raw, err := srv.Get("session:7")
	require.NoError(t, err)
	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, "jane@example.com", stored["email"])
	assert.Equal(t, 24*time.Hour, srv.TTL("session:7"))

	srv.FastForward(25 * time.Hour)
	ok, err := r.Exists(ctx, SessionKey(7))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisExistsAndDelete(t *testing.T) {
	r, _ := newRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, RevokedKey("abc"), true, time.Minute))
	ok, err := r.Exists(ctx, RevokedKey("abc"))
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, r.Delete(ctx, RevokedKey("abc")))
	ok, err = r.Exists(ctx, RevokedKey("abc"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "http://nope")
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	ctx := context.Background()
	assert.NoError(t, c.Set(ctx, "k", "v", time.Second))
	ok, err := c.Exists(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, ok)
}
