// Package middleware holds the http middleware used by the sam-ui router besides request logging.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/jub0bs/cors"
	"golang.org/x/time/rate"

	"github.com/multiplica-sam/sam/internal/apperrors"
	"github.com/multiplica-sam/sam/internal/logger"
	"github.com/multiplica-sam/sam/internal/response"
	"github.com/multiplica-sam/sam/internal/ui/config"
)

// NewCORS builds the cors middleware for the public json routes.
// With no allowed origins every origin is accepted; credentials are never allowed.
func NewCORS(allowedOrigins []string) (*cors.Middleware, error) {
	origins := allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.NewMiddleware(cors.Config{
		Origins:         origins,
		Methods:         []string{http.MethodGet},
		RequestHeaders:  []string{"Accept", "HX-Request"},
		MaxAgeInSeconds: config.CORSMaxAgeInSeconds,
	})
}

// CORS returns a CORS middleware using the provided pre-built middleware instance.
func CORS(middleware *cors.Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return middleware.Wrap(next)
	}
}

// SecurityHeaders sets the browser hardening headers. htmx is the only script loaded from another origin.
func SecurityHeaders(environment string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// for legacy support
			w.Header().Set("X-Frame-Options", "DENY")

			w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; img-src 'self' data:; frame-ancestors 'none';")

			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if environment == "prod" || environment == "staging" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit limits requests per second across all clients. If requestsPerSecond <= 0, rate limiting is disabled.
// It guards the routes that fan out to the SAM api: report generation and the public state.
func RateLimit(requestsPerSecond int32, burst int32) func(http.Handler) http.Handler {
	if requestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				reqLogger := logger.ContextRequestLogger(r.Context())

				reqLogger.Warn("Rate limit exceeded",
					slog.String("component", "RateLimit"),
					slog.String("remote_addr", r.RemoteAddr),
				)

				// Add context for final request log
				logger.ContextWithLogAttrs(r.Context(),
					slog.String("remote_addr", r.RemoteAddr),
				)

				response.RespondWithError(w, r, http.StatusTooManyRequests,
					apperrors.ErrCodeRateLimitExceeded, "Muitas solicitações. Aguarde alguns segundos.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
