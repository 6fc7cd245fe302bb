package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/feedconv/internal/cfg"
	"github.com/DRSN-tech/feedconv/pkg/clients"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/jitter"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// slidingWindowScript атомарно чистит окно, считает запросы и либо добавляет новый, либо возвращает retry_after.
var slidingWindowScript = r.NewScript(`
	local key = KEYS[1]
	local counter_key = KEYS[2]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local count = redis.call('ZCARD', key)

	if count < limit then
		local counter = redis.call('INCR', counter_key)
		redis.call('ZADD', key, now, now .. ':' .. counter)
		redis.call('PEXPIRE', key, window_ms)
		redis.call('PEXPIRE', counter_key, window_ms)
		return {1, limit - count - 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local retry_after = 0
	if #oldest >= 2 then
		retry_after = oldest[2] + window_ms - now
	end
	return {0, 0, retry_after}
`)

// AllowResult — результат проверки лимита.
type AllowResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Fallback — лимитер, который используется, пока Redis недоступен.
type Fallback interface {
	Wait(ctx context.Context) error
}

// RateLimitRepo — общий для всех реплик лимит запросов к BaseLinker на скользящем окне в Redis.
type RateLimitRepo struct {
	client   *clients.RedisClient
	key      string
	limit    int
	window   time.Duration
	fallback Fallback
	logger   logger.Logger
}

func NewRateLimitRepo(
	client *clients.RedisClient,
	cfg *cfg.RedisCfg,
	name string,
	limit int,
	window time.Duration,
	fallback Fallback,
	logger logger.Logger,
) *RateLimitRepo {
	return &RateLimitRepo{
		client:   client,
		key:      fmt.Sprintf("%s:ratelimit:%s", cfg.KeyPrefix, name),
		limit:    limit,
		window:   window,
		fallback: fallback,
		logger:   logger,
	}
}

// Allow регистрирует запрос, если в окне есть место.
func (l *RateLimitRepo) Allow(ctx context.Context) (*AllowResult, error) {
	now := time.Now()

	res, err := slidingWindowScript.Run(ctx, l.client.Client, []string{l.key, l.key + ":counter"},
		now.UnixMilli(),
		now.Add(-l.window).UnixMilli(),
		l.limit,
		l.window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if len(res) < 3 {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("unexpected script result length: %d", len(res)))
	}

	return &AllowResult{
		Allowed:    res[0] == 1,
		Remaining:  int(res[1]),
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}

// Wait блокируется, пока окно не освободится. При ошибке Redis переключается на локальный лимитер.
func (l *RateLimitRepo) Wait(ctx context.Context) error {
	const minBackoff = 50 * time.Millisecond

	for {
		res, err := l.Allow(ctx)
		if err != nil {
			if l.fallback == nil {
				return err
			}
			l.logger.Warnf("redis rate limiter unavailable, using local limiter: %v", err)
			return l.fallback.Wait(ctx)
		}
		if res.Allowed {
			return nil
		}

		wait := jitter.Duration(max(res.RetryAfter, minBackoff), jitter.DefaultJitter)
		select {
		case <-ctx.Done():
			return e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %w", e.ErrRateLimited, ctx.Err()))
		case <-time.After(wait):
		}
	}
}
