package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/mnavarro-dev/pedidos-service/config"
)

type Client struct {
	rdb *redis.Client
}

func NewClient(cfg *config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error { return c.rdb.Close() }

// NextDailySequence atomically increments the per-day order counter and
// returns the new value. The key carries a 48h TTL so stale days expire
// on their own.
func (c *Client) NextDailySequence(ctx context.Context, day time.Time) (int64, error) {
	key := fmt.Sprintf("orders:seq:%s", day.Format("060102"))

	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrapf(err, "incr %s", key)
	}
	if n == 1 {
		// Best effort; a missing TTL only leaves a tiny stale key behind.
		_ = c.rdb.Expire(ctx, key, 48*time.Hour).Err()
	}
	return n, nil
}
