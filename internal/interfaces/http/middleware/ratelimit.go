package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimitConfig controls the per-client token bucket limiter.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained refill rate.
	RequestsPerSecond float64
	// BurstSize is the bucket capacity.
	BurstSize int
	// KeyFunc extracts the limiting key; defaults to client IP.
	KeyFunc func(r *http.Request) string
	// SkipPaths bypass limiting entirely.
	SkipPaths []string
	// CleanupInterval bounds memory by evicting idle buckets.
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig returns the standard limiter settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		BurstSize:         100,
		KeyFunc:           clientIP,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		CleanupInterval:   5 * time.Minute,
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

// TokenBucketLimiter is an in-memory per-key token bucket.
type TokenBucketLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	rate    float64
	burst   float64
	now     func() time.Time
}

// NewTokenBucketLimiter creates a limiter with the given sustained rate and
// burst capacity.
func NewTokenBucketLimiter(rate float64, burst int) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		buckets: make(map[string]*tokenBucket),
		rate:    rate,
		burst:   float64(burst),
		now:     time.Now,
	}
}

// Allow consumes one token for key, reporting whether the request may
// proceed and how many whole tokens remain.
func (l *TokenBucketLimiter) Allow(key string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: l.burst}
		l.buckets[key] = b
	} else {
		b.tokens += now.Sub(b.lastSeen).Seconds() * l.rate
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false, 0
	}
	b.tokens--
	return true, int(b.tokens)
}

// cleanup evicts buckets idle longer than maxIdle.
func (l *TokenBucketLimiter) cleanup(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-maxIdle)
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// RateLimit rejects clients exceeding the configured rate with a 429.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	limiter := NewTokenBucketLimiter(cfg.RequestsPerSecond, cfg.BurstSize)
	if cfg.CleanupInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.CleanupInterval)
			defer ticker.Stop()
			for range ticker.C {
				limiter.cleanup(2 * cfg.CleanupInterval)
			}
		}()
	}

	limit := strconv.Itoa(cfg.BurstSize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			allowed, remaining := limiter.Allow(cfg.KeyFunc(r))
			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
