package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"streakzillaAPI/internal/logger"
)

// RequestLogger writes one structured line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("route", routeTemplate(r)),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.statusCode),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", clientIP(r)),
			zap.String("user_agent", r.UserAgent()),
		}
		switch {
		case ww.statusCode >= 500:
			logger.Log.Error("request", fields...)
		case ww.statusCode >= 400:
			logger.Log.Warn("request", fields...)
		default:
			logger.Log.Info("request", fields...)
		}
	})
}
