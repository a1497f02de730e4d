package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter allows MaxRate requests per client IP in each fixed window of Period.
// When Redis is unreachable requests are let through.
type RateLimiter struct {
	Period  time.Duration
	MaxRate int64
	Store   *redis.Client
	Logger  *slog.Logger
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("index-symbols:ratelimit:%s", clientIP(r))
		ctx := r.Context()

		count, err := rl.Store.Incr(ctx, key).Result()
		if err != nil {
			if rl.Logger != nil {
				rl.Logger.Warn("rate limiter unavailable", slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			rl.Store.Expire(ctx, key, rl.Period)
		}

		if count > rl.MaxRate {
			ttl, err := rl.Store.TTL(ctx, key).Result()
			if err != nil || ttl < 0 {
				ttl = rl.Period
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip, _, _ := strings.Cut(fwd, ",")
		if ip = strings.TrimSpace(ip); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
