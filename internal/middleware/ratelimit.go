package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP.
//
// It expects chi's RealIP to have run first so that RemoteAddr holds the
// client address rather than the proxy's.
type RateLimiter struct {
	rps    rate.Limit
	burst  int
	logger *slog.Logger

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewRateLimiter starts a janitor goroutine that forgets idle clients; it
// exits when ctx is cancelled.
func NewRateLimiter(ctx context.Context, rps float64, burst int, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		logger:   logger,
		visitors: make(map[string]*visitor),
	}
	go rl.cleanup(ctx)
	return rl
}

func (rl *RateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.evict(now)
		}
	}
}

func (rl *RateLimiter) evict(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *RateLimiter) limiter(ip string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Handler rejects requests over the limit with 429 and a JSON body.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		now := time.Now()
		res := rl.limiter(ip, now).ReserveN(now, 1)
		if !res.OK() || res.DelayFrom(now) > 0 {
			retry := time.Second
			if res.OK() {
				retry = res.DelayFrom(now)
				res.CancelAt(now)
			}
			rl.logger.Warn("rate limit exceeded", slog.String("ip", ip))

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded","message":"Too many requests. Please slow down."}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
