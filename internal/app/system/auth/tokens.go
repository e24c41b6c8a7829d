// Package auth provides bearer-token authentication for the dashboard API.
//
// The login endpoint issues a signed JWT with an explicit expiry; every other
// API request carries it as "Authorization: Bearer <token>". Expired or
// invalid tokens are rejected with 401, which the dashboard client treats as
// "clear stored credentials and return to login".
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/Sherifrax/speakup-sub001/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors returned by token verification. All of them map to 401 at the HTTP
// boundary; the distinction exists for logging.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the JWT payload for a dashboard session.
type Claims struct {
	UserID   string `json:"uid"`
	LoginID  string `json:"login"`
	FullName string `json:"name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenManager creates a TokenManager. The secret must be non-empty;
// ttl is how long issued tokens stay valid.
func NewTokenManager(secret string, ttl time.Duration, issuer string) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("auth: token secret must not be empty")
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, issuer: issuer}, nil
}

// Issue creates a signed token for the user. The returned expiry is the
// exact instant encoded in the token, so clients can store it alongside the
// token and drop both without a round-trip once it passes.
func (m *TokenManager) Issue(user *models.User) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(m.ttl)

	claims := Claims{
		UserID:   user.ID.Hex(),
		LoginID:  user.LoginID,
		FullName: user.FullName,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify parses and validates a token string. Returns ErrTokenExpired for
// tokens past their expiry and ErrTokenInvalid for anything else wrong.
func (m *TokenManager) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// UserObjectID returns the claims' user id as a Mongo ObjectID.
func (c *Claims) UserObjectID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.UserID)
}

// IsAdmin reports whether the session belongs to an admin.
func (c *Claims) IsAdmin() bool { return c.Role == models.RoleAdmin }
