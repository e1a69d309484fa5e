package adapter

import (
	"context"
	"net"
	"testing"

	"github.com/bootjp/txkv/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// countingStore wraps a Store and counts calls that reached it.
type countingStore struct {
	store.Store
	calls int
}

func newCountingStore() *countingStore {
	return &countingStore{Store: store.NewTxnStore()}
}

func (c *countingStore) Get(ctx context.Context, key string) (string, error) {
	c.calls++
	return c.Store.Get(ctx, key) //nolint:wrapcheck
}

func (c *countingStore) Set(ctx context.Context, key string, value string) {
	c.calls++
	c.Store.Set(ctx, key, value)
}

func (c *countingStore) Unset(ctx context.Context, key string) {
	c.calls++
	c.Store.Unset(ctx, key)
}

func (c *countingStore) Begin(ctx context.Context) {
	c.calls++
	c.Store.Begin(ctx)
}

// startRedisServer serves st on a loopback port and returns a client for it.
func startRedisServer(t *testing.T, st store.Store) *redis.Client {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewRedisServer(l, st)
	done := make(chan error, 1)
	go func() {
		done <- srv.Run()
	}()

	rdb := redis.NewClient(&redis.Options{Addr: l.Addr().String()})
	t.Cleanup(func() {
		_ = rdb.Close()
		srv.Stop()
		require.NoError(t, <-done)
	})
	return rdb
}
