package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shopsphere/shopsphere-backend/internal/config"
	"github.com/shopsphere/shopsphere-backend/internal/logging"
	"github.com/shopsphere/shopsphere-backend/internal/models"
)

// ErrCacheMiss reports an absent cache entry. Callers fall through to the
// database and repopulate.
var ErrCacheMiss = errors.New("cache miss")

const cartKeyPrefix = "cart:"

// NewRedisClient builds a client from config and verifies connectivity.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// CartCache stores hydrated cart views keyed by user email. Misses are
// normal; errors other than ErrCacheMiss indicate an unhealthy backend and
// are logged but never surfaced as request failures by callers.
type CartCache interface {
	Get(ctx context.Context, email string) ([]models.HydratedCartLine, error)
	Set(ctx context.Context, email string, lines []models.HydratedCartLine) error
	Invalidate(ctx context.Context, email string) error
}

type RedisCartCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ CartCache = (*RedisCartCache)(nil)

func NewRedisCartCache(client *redis.Client, ttl time.Duration) *RedisCartCache {
	return &RedisCartCache{
		client: client,
		ttl:    ttl,
		logger: logging.New("cart-cache"),
	}
}

func (c *RedisCartCache) Get(ctx context.Context, email string) ([]models.HydratedCartLine, error) {
	data, err := c.client.Get(ctx, cartKeyPrefix+email).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var lines []models.HydratedCartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		// Corrupt entry; treat as a miss so it gets rewritten.
		c.logger.Warn("dropping corrupt cache entry", "email", email, "error", err)
		return nil, ErrCacheMiss
	}
	return lines, nil
}

func (c *RedisCartCache) Set(ctx context.Context, email string, lines []models.HydratedCartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cartKeyPrefix+email, data, c.jitteredTTL()).Err()
}

func (c *RedisCartCache) Invalidate(ctx context.Context, email string) error {
	return c.client.Del(ctx, cartKeyPrefix+email).Err()
}

// jitteredTTL spreads expirations by up to 10% to avoid synchronized misses.
func (c *RedisCartCache) jitteredTTL() time.Duration {
	if c.ttl < 10 {
		return c.ttl
	}
	jitter := time.Duration(rand.Int63n(int64(c.ttl) / 10))
	return c.ttl + jitter
}

// NoopCartCache is used when the cart cache feature is disabled; every read
// is a miss and writes are discarded.
type NoopCartCache struct{}

var _ CartCache = NoopCartCache{}

func (NoopCartCache) Get(ctx context.Context, email string) ([]models.HydratedCartLine, error) {
	return nil, ErrCacheMiss
}

func (NoopCartCache) Set(ctx context.Context, email string, lines []models.HydratedCartLine) error {
	return nil
}

func (NoopCartCache) Invalidate(ctx context.Context, email string) error {
	return nil
}
