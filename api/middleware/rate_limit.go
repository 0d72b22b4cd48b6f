package middleware

import (
	"net/http"

	"github.com/webyarden/webyarden-backend/pkg/config"
	"github.com/webyarden/webyarden-backend/pkg/logger"
)

// RateLimit applies a fixed-window per-IP budget to every request it wraps.
func RateLimit(cfg config.RateLimitConfig, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || cfg.Window <= 0 || cfg.Requests <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := clientIP(r)
			key := "rl:api:" + ip

			allowed, count, err := allow(ctx, store, key, cfg.Window, int64(cfg.Requests))
			if err != nil {
				// Store failures fail open.
				logError(ctx, logg, "rate_limit.store_failed", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"ip":       ip,
						"attempts": count,
						"limit":    cfg.Requests,
					}), "rate_limit.blocked")
				}
				rejectRateLimited(ctx, w, cfg.Window, "too many requests, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
