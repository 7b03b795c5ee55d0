package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer serializes request pacing per provider so independent call sites
// share one backoff state instead of reconstructing it.
type Pacer interface {
	Wait(ctx context.Context, provider string) error
}

// ProviderPacer is an in-memory Pacer keyed by provider name.
type ProviderPacer struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	interval time.Duration
}

// NewProviderPacer creates a pacer allowing one request per interval for each
// provider, with a burst of one.
func NewProviderPacer(interval time.Duration) *ProviderPacer {
	return &ProviderPacer{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
	}
}

var _ Pacer = (*ProviderPacer)(nil)

// Wait blocks until the provider's limiter grants a token or ctx is done.
func (p *ProviderPacer) Wait(ctx context.Context, provider string) error {
	p.mu.Lock()
	limiter, exists := p.limiters[provider]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(p.interval), 1)
		p.limiters[provider] = limiter
	}
	p.mu.Unlock()

	return limiter.Wait(ctx)
}
