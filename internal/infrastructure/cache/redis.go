// Package cache adaptadores Redis: caché de consultas ebarimt y lock por pedido.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/itsystem/posapi-bridge/internal/application/billing"
	"github.com/itsystem/posapi-bridge/internal/domain"
	"github.com/itsystem/posapi-bridge/pkg/config"
)

var (
	_ billing.InfoCache   = (*InfoCache)(nil)
	_ billing.OrderLocker = (*OrderLocker)(nil)
)

// NewClient cliente Redis desde la configuración; verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// ── Caché de consultas ───────────────────────────────────────────────────────

// InfoCache guarda las respuestas del directorio ebarimt como JSON.
type InfoCache struct {
	client *redis.Client
}

// NewInfoCache construye la caché.
func NewInfoCache(client *redis.Client) *InfoCache {
	return &InfoCache{client: client}
}

func (c *InfoCache) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !json.Valid(val) {
		return nil, false, nil
	}
	return json.RawMessage(val), true, nil
}

func (c *InfoCache) Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error {
	if len(value) == 0 {
		return nil
	}
	return c.client.Set(ctx, key, []byte(value), ttl).Err()
}

// ── Lock por pedido ──────────────────────────────────────────────────────────

const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`

// OrderLocker lock distribuido SETNX con token; solo el dueño del token lo libera.
type OrderLocker struct {
	client       *redis.Client
	ttl          time.Duration
	retryBackoff time.Duration
}

// NewOrderLocker construye el lock. ttl <= 0 usa 60s.
func NewOrderLocker(client *redis.Client, ttl time.Duration) *OrderLocker {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &OrderLocker{client: client, ttl: ttl, retryBackoff: 50 * time.Millisecond}
}

// WithLock ejecuta fn con el lock de key. Espera como máximo el TTL del lock: pasado ese
// plazo devuelve domain.ErrConflict (el pedido sigue en proceso en otra petición).
func (l *OrderLocker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	token := uuid.NewString()
	deadline := time.NewTimer(l.ttl)
	defer deadline.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			defer l.release(key, token)
			return fn(ctx)
		}
		retry := time.NewTimer(l.retryBackoff)
		select {
		case <-ctx.Done():
			retry.Stop()
			return fmt.Errorf("lock %s: %w", key, ctx.Err())
		case <-deadline.C:
			retry.Stop()
			return fmt.Errorf("%w: el pedido sigue en proceso (%s)", domain.ErrConflict, key)
		case <-retry.C:
		}
	}
}

func (l *OrderLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unknown command") {
			_ = l.client.Del(ctx, key).Err()
		}
	}
}
