package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"finhealth-server/src/util"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// KeyLimiter applies a token bucket per key and evicts idle entries.
type KeyLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu    sync.Mutex
	byKey map[string]*limiterEntry
	hits  uint64
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyLimiter returns nil, which allows everything, when rps or burst is not positive.
func NewKeyLimiter(rps float64, burst int, idleTTL time.Duration) *KeyLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &KeyLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		byKey:   make(map[string]*limiterEntry),
	}
}

func (l *KeyLimiter) Allow(key string, now time.Time) bool {
	if l == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byKey[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(l.byKey, k)
			}
		}
	}
	return allowed
}

// clientIP reads RemoteAddr only. Forwarding headers count just when chi's
// RealIP has already rewritten it.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware answers 429 once a client IP exhausts its bucket.
func RateLimitMiddleware(l *KeyLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !l.Allow(ip, time.Now()) {
				log.Warn().Str("ip", ip).Str("path", r.URL.Path).Msg("rate limited")
				w.Header().Set("Retry-After", "1")
				util.WriteError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
