// Package apicors provides CORS middleware for the bearer-token API routes.
//
// The dashboard authenticates with a bearer token, not cookies, so:
//   - Credentials are never sent cross-origin; AllowCredentials stays false
//   - Origins can be "*" since there are no cookies to protect
//
// This is deliberately more permissive than cookie-session CORS would be.
package apicors

import (
	"net/http"
)

// Middleware returns CORS middleware suitable for bearer-token endpoints.
//
// It allows any origin, the common API methods and headers, and answers
// preflight OPTIONS requests directly.
//
// Usage in routes.go:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(apicors.Middleware())
//	    r.Use(auth.RequireAuth(tokens, logger))
//	    r.Mount("/api", apiRoutes)
//	})
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
