package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type window struct {
	count int
	reset time.Time
}

// Limiter counts requests per client in fixed windows.
type Limiter struct {
	limit int
	per   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	clients map[string]*window
	swept   time.Time
}

func NewLimiter(limit int, per time.Duration) *Limiter {
	return &Limiter{limit: limit, per: per, now: time.Now, clients: make(map[string]*window)}
}

// Allow records a hit for key. When the window is exhausted it reports how
// long until the next one opens.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)
	w, ok := l.clients[key]
	if !ok || !now.Before(w.reset) {
		w = &window{reset: now.Add(l.per)}
		l.clients[key] = w
	}
	if w.count >= l.limit {
		return false, w.reset.Sub(now)
	}
	w.count++
	return true, 0
}

// sweepLocked forgets expired windows at most once per period.
func (l *Limiter) sweepLocked(now time.Time) {
	if now.Sub(l.swept) < l.per {
		return
	}
	for key, w := range l.clients {
		if !now.Before(w.reset) {
			delete(l.clients, key)
		}
	}
	l.swept = now
}

func (l *Limiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// RateLimit rejects clients exceeding limit requests per window with 429.
// A non-positive limit disables it. Clients are keyed by RemoteAddr, so
// chi's RealIP must run first behind a proxy.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return NewLimiter(limit, per).Middleware
}

func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := l.Allow(clientKey(r))
		if !ok {
			secs := int(retry.Seconds())
			if retry%time.Second != 0 || secs == 0 {
				secs++
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "rate_limited",
				"message": "too many requests, try again shortly",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
