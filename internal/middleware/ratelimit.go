package middleware

import (
	"net/http"
	"strconv"

	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"
)

// RateLimit throttles requests per client IP using the given limiter.
func RateLimit(l *limiter.Limiter, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := l.GetIPKey(r)
			lctx, err := l.Get(r.Context(), key)
			if err != nil {
				log.Error("failed to get rate limit context", zap.String("ip", key), zap.Error(err))
				WriteMessage(w, http.StatusInternalServerError, "internal error")
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			if lctx.Reached {
				log.Warn("rate limit exceeded", zap.String("ip", key), zap.Int64("limit", lctx.Limit))
				WriteMessage(w, http.StatusTooManyRequests, "too many requests, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
