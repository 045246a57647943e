package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	gw := NewMemory()
	ctx := context.Background()

	_, ok, err := gw.Load(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, gw.Save(ctx, "k", []byte("v1")))
	data, ok, err := gw.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), data)

	// Last write wins.
	require.NoError(t, gw.Save(ctx, "k", []byte("v2")))
	data, _, err = gw.Load(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), data)
}

func TestMemoryCopiesOnSave(t *testing.T) {
	gw := NewMemory()
	ctx := context.Background()

	buf := []byte("original")
	require.NoError(t, gw.Save(ctx, "k", buf))
	buf[0] = 'X'

	data, _, err := gw.Load(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("original"), data)
}

func newRedisGateway(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	gw, err := NewRedis(context.Background(), client)
	require.NoError(t, err)
	return gw
}

func TestRedisRoundTrip(t *testing.T) {
	gw := newRedisGateway(t)
	ctx := context.Background()

	_, ok, err := gw.Load(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, gw.Save(ctx, "k", []byte(`{"products":[]}`)))
	data, ok, err := gw.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"products":[]}`, string(data))
}

func TestRedisCopy(t *testing.T) {
	gw := newRedisGateway(t)
	ctx := context.Background()

	require.NoError(t, gw.Save(ctx, "live", []byte("blob")))
	require.NoError(t, gw.Copy(ctx, "live", "backup"))

	data, ok, err := gw.Load(ctx, "backup")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("blob"), data)
}

func TestRedisCopyMissingSource(t *testing.T) {
	gw := newRedisGateway(t)
	ctx := context.Background()

	require.NoError(t, gw.Copy(ctx, "absent", "backup"))
	_, ok, err := gw.Load(ctx, "backup")
	require.NoError(t, err)
	require.False(t, ok)
}
