package providers

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limited paces calls to the wrapped provider. Hosted APIs throttle aggressively and a
// long folder run would otherwise hit their per-minute quotas.
type Limited struct {
	Provider
	limiter *rate.Limiter
}

// NewLimited wraps p so that at most requestsPerMinute Describe calls start per minute.
// A non-positive rate returns p unchanged.
func NewLimited(p Provider, requestsPerMinute int) Provider {
	if requestsPerMinute <= 0 {
		return p
	}
	return &Limited{
		Provider: p,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

func (l *Limited) Describe(ctx context.Context, config Config, payload Payload) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return l.Provider.Describe(ctx, config, payload)
}

// CheckHealth forwards to the wrapped provider when it supports health checks
func (l *Limited) CheckHealth(ctx context.Context, model string) error {
	if hc, ok := l.Provider.(HealthChecker); ok {
		return hc.CheckHealth(ctx, model)
	}
	return nil
}

// AcceptsVideo forwards to the wrapped provider when it takes whole videos
func (l *Limited) AcceptsVideo(mimeType string, size int64) bool {
	if va, ok := l.Provider.(VideoAccepter); ok {
		return va.AcceptsVideo(mimeType, size)
	}
	return false
}
