package internal

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"asset-angel-api/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// requestLogger stores a request-scoped logger in the context and logs one
// line per request once the handler returns.
func requestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := base.With("request_id", middleware.GetReqID(r.Context()))
			ctx := logging.ContextWithLogger(r.Context(), logger)

			rw := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(rw, r.WithContext(ctx))

			route := r.URL.Path
			if rc := chi.RouteContext(ctx); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			attrs := []any{
				"method", r.Method,
				"route", route,
				"status", rw.code,
				"duration", time.Since(start),
			}

			level := slog.LevelInfo
			if rw.code >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(ctx, level, "http request", attrs...)
		})
	}
}

// corsOptions builds the CORS policy for a comma-separated origin list. An
// origin of "*" admits any caller while still echoing its origin, so
// credentialed requests keep working.
func corsOptions(origin string) cors.Options {
	opts := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Token-Expires-At", "X-Token-Expires-In", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           600,
	}

	var allowed []string
	for _, o := range strings.Split(origin, ",") {
		o = strings.TrimSpace(o)
		if o == "*" {
			opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
			return opts
		}
		if o != "" {
			allowed = append(allowed, o)
		}
	}
	opts.AllowedOrigins = allowed
	return opts
}
