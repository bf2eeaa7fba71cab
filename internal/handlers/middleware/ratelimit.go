package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avelichko/contactkeeper/internal/handlers/render"
)

// RateLimit allows at most 'times' requests per client within 'window'.
// Fixed window on a redis counter. INCR and the expiry travel in one
// pipeline so the key can never end up without a TTL, EXPIRE NX keeps
// increments from pushing the window forward. If redis is down the
// request is let through, throttling is best effort.
func RateLimit(client redis.UniversalClient, times int64, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("ratelimit:%s:%s", clientIP(r), r.URL.Path)

			var incr *redis.IntCmd
			_, err := client.Pipelined(r.Context(), func(pipe redis.Pipeliner) error {
				incr = pipe.Incr(r.Context(), key)
				pipe.ExpireNX(r.Context(), key, window)
				return nil
			})
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			count := incr.Val()

			if count > times {
				retryAfter, err := client.TTL(r.Context(), key).Result()
				if err != nil || retryAfter < 0 {
					retryAfter = window
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				render.ServiceError(w, "Too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
