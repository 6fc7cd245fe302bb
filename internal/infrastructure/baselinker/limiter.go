package baselinker

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// LocalLimiter — лимит запросов в пределах одного процесса.
type LocalLimiter struct {
	limiter *rate.Limiter
}

// NewLocalLimiter допускает perMinute запросов в минуту с небольшим запасом на всплеск.
func NewLocalLimiter(perMinute int) *LocalLimiter {
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &LocalLimiter{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
	}
}

func (l *LocalLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
