package cargo_api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const rateWindow = time.Minute

// rateLimit caps requests per client IP per minute. A limiter outage lets
// requests through.
func (a *API) rateLimit(scope string, perMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if a.Limiter == nil || perMinute <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "rl:" + scope + ":" + clientIP(r)
			ok, n, err := a.Limiter.Allow(r.Context(), key, int64(perMinute), rateWindow)
			if err != nil {
				slog.Warn("rate limiter unavailable", "scope", scope, "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				slog.Debug("rate limited", "scope", scope, "key", key, "count", n)
				w.Header().Set("Retry-After", strconv.Itoa(int(rateWindow.Seconds())))
				writeJSON(w, http.StatusTooManyRequests, messageBody{Success: false, Message: "Too many requests, try again later"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
