package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsystem/posapi-bridge/internal/domain"
	"github.com/itsystem/posapi-bridge/internal/infrastructure/cache"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestInfoCache(t *testing.T) {
	mr, client := newRedis(t)
	c := cache.NewInfoCache(client)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "ebarimt:info:branches")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "ebarimt:info:branches", json.RawMessage(`[{"code":"3505"}]`), time.Minute))
	v, ok, err := c.Get(ctx, "ebarimt:info:branches")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"code":"3505"}]`, string(v))

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "ebarimt:info:branches")
	require.NoError(t, err)
	assert.False(t, ok, "expira con el TTL")
}

func TestOrderLocker_Serializa(t *testing.T) {
	mr, client := newRedis(t)
	locker := cache.NewOrderLocker(client, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var (
		mu    sync.Mutex
		order []string
	)
	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 2)

	go func() {
		done <- locker.WithLock(ctx, "posapi:order:T:1", func(context.Context) error {
			mu.Lock()
			order = append(order, "first")
			mu.Unlock()
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding
	assert.True(t, mr.Exists("posapi:order:T:1"))

	go func() {
		done <- locker.WithLock(ctx, "posapi:order:T:1", func(context.Context) error {
			mu.Lock()
			order = append(order, "second")
			mu.Unlock()
			return nil
		})
	}()
	close(release)

	require.NoError(t, <-done)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.False(t, mr.Exists("posapi:order:T:1"), "el lock se libera")
}

func TestOrderLocker_ContextoCancelado(t *testing.T) {
	mr, client := newRedis(t)
	require.NoError(t, mr.Set("posapi:order:T:2", "otro-token"))
	locker := cache.NewOrderLocker(client, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	called := false
	err := locker.WithLock(ctx, "posapi:order:T:2", func(context.Context) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
	assert.True(t, mr.Exists("posapi:order:T:2"), "no libera un lock ajeno")
}

func TestOrderLocker_EsperaAcotadaAlTTL(t *testing.T) {
	mr, client := newRedis(t)
	require.NoError(t, mr.Set("posapi:order:T:3", "otro-token"))
	locker := cache.NewOrderLocker(client, 150*time.Millisecond)

	called := false
	start := time.Now()
	err := locker.WithLock(context.Background(), "posapi:order:T:3", func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.False(t, called)
	assert.Less(t, time.Since(start), 2*time.Second)
}
