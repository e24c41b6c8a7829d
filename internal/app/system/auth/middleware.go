package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/Sherifrax/speakup-sub001/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

type contextKey string

const claimsKey contextKey = "auth.claims"

// RequireAuth returns middleware that validates bearer-token authentication.
//
// The middleware expects "Authorization: Bearer <token>". On success the
// verified Claims are stored in the request context (see CurrentUser); on
// any failure the request is rejected with 401 and a JSON error body, which
// the dashboard client interprets as "session gone, back to login".
//
// Usage in routes.go:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(apicors.Middleware())
//	    r.Use(auth.RequireAuth(tokens, logger))
//	    r.Mount("/api/speakup", speakupRoutes)
//	})
func RequireAuth(tokens *TokenManager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("request rejected: missing Authorization header",
					zap.String("path", r.URL.Path),
				)
				jsonutil.Unauthorized(w, "missing Authorization header")
				return
			}

			// Expect "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Debug("request rejected: invalid Authorization format",
					zap.String("path", r.URL.Path),
				)
				jsonutil.Unauthorized(w, "invalid Authorization format (expected: Bearer <token>)")
				return
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				logger.Debug("request rejected: token verification failed",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				jsonutil.Unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns middleware that rejects non-admin sessions with 403.
// Mount inside a RequireAuth group.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := CurrentUser(r)
			if !ok || !claims.IsAdmin() {
				logger.Warn("request rejected: admin role required",
					zap.String("path", r.URL.Path),
				)
				jsonutil.Forbidden(w, "admin role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentUser returns the verified claims for the request, if any.
func CurrentUser(r *http.Request) (*Claims, bool) {
	claims, ok := r.Context().Value(claimsKey).(*Claims)
	return claims, ok
}

// WithClaims returns a context carrying the given claims. Used by tests and
// by internal calls that bypass the HTTP middleware.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
