package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type bucket struct {
	count int
	until time.Time
}

// RateLimit caps requests per client IP over a fixed window. It keys on
// r.RemoteAddr, which chi's RealIP has already resolved from trusted headers.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	l := newIPLimiter(limit, per)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ok, retry := l.allow(clientIPForRateLimit(r)); !ok {
				tooManyRequests(w, retry)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type ipLimiter struct {
	mu        sync.Mutex
	limit     int
	per       time.Duration
	buckets   map[string]*bucket
	nextSweep time.Time
	now       func() time.Time
}

func newIPLimiter(limit int, per time.Duration) *ipLimiter {
	return &ipLimiter{limit: limit, per: per, buckets: make(map[string]*bucket), now: time.Now}
}

func (l *ipLimiter) allow(ip string) (bool, time.Duration) {
	if l.limit <= 0 {
		return true, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if !now.Before(l.nextSweep) {
		sweepExpired(l.buckets, now)
		l.nextSweep = now.Add(l.per)
	}
	b, ok := l.buckets[ip]
	if !ok || !now.Before(b.until) {
		b = &bucket{until: now.Add(l.per)}
		l.buckets[ip] = b
	}
	if b.count >= l.limit {
		return false, b.until.Sub(now)
	}
	b.count++
	return true, 0
}

// sweepExpired drops buckets whose window has closed.
func sweepExpired(buckets map[string]*bucket, now time.Time) {
	for k, b := range buckets {
		if !now.Before(b.until) {
			delete(buckets, k)
		}
	}
}

// KeyLimiter admits or rejects calls made with one API key.
type KeyLimiter interface {
	Allow(ctx context.Context, keyID string, perMinute int) (bool, time.Duration, error)
}

// RedisKeyLimiter counts calls per key in one-minute windows shared by every
// instance behind the same Redis.
type RedisKeyLimiter struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisKeyLimiter(client redis.UniversalClient) *RedisKeyLimiter {
	return &RedisKeyLimiter{client: client, prefix: "imagecraft:ratelimit:key", now: time.Now}
}

func (l *RedisKeyLimiter) Allow(ctx context.Context, keyID string, perMinute int) (bool, time.Duration, error) {
	if perMinute <= 0 {
		return true, 0, nil
	}
	now := l.now()
	window := now.Truncate(time.Minute)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, keyID, window.Unix())

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, time.Minute+5*time.Second)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: redis: %w", err)
	}
	if incr.Val() > int64(perMinute) {
		return false, window.Add(time.Minute).Sub(now), nil
	}
	return true, 0, nil
}

// MemoryKeyLimiter is the single-instance variant used when Redis is absent.
type MemoryKeyLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	nextSweep time.Time
	now       func() time.Time
}

func NewMemoryKeyLimiter() *MemoryKeyLimiter {
	return &MemoryKeyLimiter{buckets: make(map[string]*bucket), now: time.Now}
}

func (l *MemoryKeyLimiter) Allow(_ context.Context, keyID string, perMinute int) (bool, time.Duration, error) {
	if perMinute <= 0 {
		return true, 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if !now.Before(l.nextSweep) {
		sweepExpired(l.buckets, now)
		l.nextSweep = now.Add(time.Minute)
	}
	b, ok := l.buckets[keyID]
	if !ok || !now.Before(b.until) {
		b = &bucket{until: now.Truncate(time.Minute).Add(time.Minute)}
		l.buckets[keyID] = b
	}
	if b.count >= perMinute {
		return false, b.until.Sub(now), nil
	}
	b.count++
	return true, 0, nil
}

func tooManyRequests(w http.ResponseWriter, retry time.Duration) {
	secs := int(retry.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded")
}

// writeJSONError uses the flat {"error": "..."} body of the public functions API.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func clientIPForRateLimit(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}
