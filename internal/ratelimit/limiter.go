// Package ratelimit provides a per-host request limiter used to keep
// outbound fetches polite.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum interval between requests to the same host.
type Limiter struct {
	mu          sync.Mutex
	hosts       map[string]*rate.Limiter
	minInterval time.Duration
}

// New creates a Limiter with the given minimum interval between requests
// per host.
func New(minInterval time.Duration) *Limiter {
	return &Limiter{
		hosts:       make(map[string]*rate.Limiter),
		minInterval: minInterval,
	}
}

func (l *Limiter) limiter(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.hosts[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.minInterval), 1)
		l.hosts[host] = lim
	}
	return lim
}

// Allow reports whether a request to host may proceed now. A denied
// request does not consume the next slot.
func (l *Limiter) Allow(host string) bool {
	return l.limiter(host).Allow()
}

// Wait blocks until a request to host may proceed or ctx is done. A
// canceled wait does not consume the next slot.
func (l *Limiter) Wait(ctx context.Context, host string) error {
	return l.limiter(host).Wait(ctx)
}

// Reset forgets the history for a single host.
func (l *Limiter) Reset(host string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hosts, host)
}

// ResetAll forgets the history for every host.
func (l *Limiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hosts = make(map[string]*rate.Limiter)
}
