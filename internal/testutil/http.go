package testutil

import (
	"net/http"
	"net/http/httptest"

	"github.com/Sherifrax/speakup-sub001/internal/app/system/auth"
	"github.com/Sherifrax/speakup-sub001/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminClaims returns verified-looking claims for an admin session.
func AdminClaims() *auth.Claims {
	return &auth.Claims{
		UserID:   primitive.NewObjectID().Hex(),
		LoginID:  "admin@test.com",
		FullName: "Test Admin",
		Role:     models.RoleAdmin,
	}
}

// ReporterClaims returns verified-looking claims for a reporter session.
func ReporterClaims() *auth.Claims {
	return &auth.Claims{
		UserID:   primitive.NewObjectID().Hex(),
		LoginID:  "reporter@test.com",
		FullName: "Test Reporter",
		Role:     models.RoleReporter,
	}
}

// WithClaims attaches session claims to the request context, bypassing the
// bearer-token middleware the same way a verified request would arrive.
func WithClaims(r *http.Request, claims *auth.Claims) *http.Request {
	return r.WithContext(auth.WithClaims(r.Context(), claims))
}

// NewAuthenticatedRequest creates an HTTP request with claims in context.
func NewAuthenticatedRequest(method, target string, claims *auth.Claims) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithClaims(req, claims)
}
