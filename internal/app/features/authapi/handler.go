// internal/app/features/authapi/handler.go
package authapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	userstore "github.com/Sherifrax/speakup-sub001/internal/app/store/users"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/auth"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/authutil"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/jsonutil"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles authentication requests.
type Handler struct {
	DB     *mongo.Database
	Tokens *auth.TokenManager
	Log    *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(db *mongo.Database, tokens *auth.TokenManager, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Tokens: tokens,
		Log:    logger,
	}
}

// LoginRequest is the body of POST auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginUser is the signed-in user as returned to the dashboard.
type LoginUser struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	LoginID  string `json:"loginId"`
	Role     string `json:"role"`
}

// LoginResponse carries the bearer token and its explicit expiry. The
// dashboard stores both and clears them on any 401.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      LoginUser `json:"user"`
}

// HandleLogin handles POST auth/login. Invalid login id and wrong password
// produce the same response so the endpoint cannot be used to probe for
// accounts.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var req LoginRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		jsonutil.Unauthorized(w, "invalid credentials")
		return
	}

	store := userstore.New(h.DB)
	user, err := store.GetByLoginID(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Error("login lookup failed", zap.Error(err))
		}
		jsonutil.Unauthorized(w, "invalid credentials")
		return
	}

	if !user.CanSignIn() {
		h.Log.Info("login rejected for disabled account", zap.String("login_id", user.LoginID))
		jsonutil.Unauthorized(w, "invalid credentials")
		return
	}
	if !authutil.CheckPassword(req.Password, user.PasswordHash) {
		jsonutil.Unauthorized(w, "invalid credentials")
		return
	}

	token, expiresAt, err := h.Tokens.Issue(user)
	if err != nil {
		h.Log.Error("token issue failed", zap.Error(err))
		jsonutil.InternalError(w, "login failed")
		return
	}

	if err := store.UpdateLastLogin(ctx, user.ID); err != nil {
		// Best effort; a failed stamp must not block the sign-in.
		h.Log.Warn("failed to stamp last login", zap.Error(err))
	}

	h.Log.Info("user signed in",
		zap.String("login_id", user.LoginID),
		zap.String("role", user.Role))

	jsonutil.OK(w, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: LoginUser{
			ID:       user.ID.Hex(),
			FullName: user.FullName,
			LoginID:  user.LoginID,
			Role:     user.Role,
		},
	})
}
