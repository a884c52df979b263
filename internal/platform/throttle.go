package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Throttle bounds the rate of outbound platform calls. Wait blocks until a
// call slot is available or the context is done.
type Throttle interface {
	Wait(ctx context.Context) error
}

// LocalThrottle is a single-process token bucket.
type LocalThrottle struct {
	limiter *rate.Limiter
}

// NewLocalThrottle allows rps calls per second with the given burst.
func NewLocalThrottle(rps float64, burst int) *LocalThrottle {
	if burst <= 0 {
		burst = 1
	}
	return &LocalThrottle{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until the bucket grants a token.
func (t *LocalThrottle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// RedisThrottle shares a per-second call budget across processes using a
// fixed-window counter in Redis. Each instance also keeps a local limiter so
// a Redis outage degrades to single-process throttling instead of a stampede.
type RedisThrottle struct {
	client   *redis.Client
	key      string
	limit    int64
	fallback *rate.Limiter
	logger   *zap.Logger
}

// NewRedisThrottle allows at most limit calls per second cluster-wide.
func NewRedisThrottle(client *redis.Client, key string, limit int64, logger *zap.Logger) *RedisThrottle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisThrottle{
		client:   client,
		key:      key,
		limit:    limit,
		fallback: rate.NewLimiter(rate.Limit(limit), int(limit)),
		logger:   logger,
	}
}

// Wait blocks until a call slot is available in the current one-second
// window.
func (t *RedisThrottle) Wait(ctx context.Context) error {
	for {
		window := time.Now().UTC().Unix()
		key := fmt.Sprintf("%s:%d", t.key, window)

		count, err := t.client.Incr(ctx, key).Result()
		if err != nil {
			t.logger.Warn("throttle redis unavailable, using local limiter", zap.Error(err))
			return t.fallback.Wait(ctx)
		}
		if count == 1 {
			t.client.Expire(ctx, key, 2*time.Second)
		}
		if count <= t.limit {
			return nil
		}

		// Window exhausted, sleep into the next one.
		wait := time.Until(time.Unix(window+1, 0))
		if wait < 10*time.Millisecond {
			wait = 10 * time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
