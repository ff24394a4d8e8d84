package exchangerate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// DefaultKey is where the rate feed publishes the IDR-per-CNY rate.
const DefaultKey = "fx:cny_idr"

// Redis reads the rate a feed keeps under one key.
type Redis struct {
	client  redis.Cmdable
	key     string
	timeout time.Duration
}

// NewRedis wraps client. An empty key uses DefaultKey; a zero timeout means
// the caller's deadline only.
func NewRedis(client redis.Cmdable, key string, timeout time.Duration) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{client: client, key: key, timeout: timeout}
}

// Current returns nil when the key is absent.
func (r *Redis) Current(ctx context.Context) (*decimal.Decimal, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	val, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read exchange rate %s: %w", r.key, err)
	}

	rate, err := decimal.NewFromString(val)
	if err != nil {
		return nil, fmt.Errorf("exchange rate %s holds %q: %w", r.key, val, err)
	}
	if !rate.IsPositive() {
		return nil, fmt.Errorf("exchange rate %s must be positive, got %s", r.key, rate)
	}
	return &rate, nil
}

// Publish stores rate with the given time to live (0 keeps it forever).
func (r *Redis) Publish(ctx context.Context, rate decimal.Decimal, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key, rate.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to publish exchange rate %s: %w", r.key, err)
	}
	return nil
}
