package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sherifrax/speakup-sub001/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func testUser() *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		FullName: "Ada Admin",
		LoginID:  "ada",
		Role:     models.RoleAdmin,
		Status:   models.UserStatusActive,
	}
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	tm, err := NewTokenManager("unit-test-secret", time.Hour, "speakup")
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}

	user := testUser()
	token, expiresAt, err := tm.Issue(user)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}
	if remaining := time.Until(expiresAt); remaining < 59*time.Minute || remaining > time.Hour {
		t.Errorf("expiry %v not ~1h out", remaining)
	}

	claims, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != user.ID.Hex() {
		t.Errorf("UserID = %q, want %q", claims.UserID, user.ID.Hex())
	}
	if claims.LoginID != "ada" || claims.Role != models.RoleAdmin {
		t.Errorf("claims = %+v, want login ada / role admin", claims)
	}
	if !claims.IsAdmin() {
		t.Error("IsAdmin() = false for admin claims")
	}
	if _, err := claims.UserObjectID(); err != nil {
		t.Errorf("UserObjectID() error = %v", err)
	}
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	tm, _ := NewTokenManager("unit-test-secret", time.Nanosecond, "speakup")
	token, _, err := tm.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := tm.Verify(token); err != ErrTokenExpired {
		t.Errorf("Verify() error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	a, _ := NewTokenManager("secret-a", time.Hour, "speakup")
	b, _ := NewTokenManager("secret-b", time.Hour, "speakup")

	token, _, _ := a.Issue(testUser())
	if _, err := b.Verify(token); err != ErrTokenInvalid {
		t.Errorf("Verify() error = %v, want ErrTokenInvalid", err)
	}
	if _, err := a.Verify("garbage.token.value"); err != ErrTokenInvalid {
		t.Errorf("Verify(garbage) error = %v, want ErrTokenInvalid", err)
	}
}

func TestNewTokenManager_EmptySecret(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour, "speakup"); err == nil {
		t.Error("NewTokenManager(\"\") expected error")
	}
}

func TestRequireAuth(t *testing.T) {
	tm, _ := NewTokenManager("unit-test-secret", time.Hour, "speakup")
	logger := zap.NewNop()

	var gotClaims *Claims
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = CurrentUser(r)
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(tm, logger)(inner)

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/speakup/search", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/speakup/search", nil)
		req.Header.Set("Authorization", "Basic abc123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		user := testUser()
		token, _, _ := tm.Issue(user)
		req := httptest.NewRequest(http.MethodPost, "/api/speakup/search", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotClaims == nil || gotClaims.UserID != user.ID.Hex() {
			t.Errorf("handler saw claims %+v, want user %s", gotClaims, user.ID.Hex())
		}
	})

	t.Run("expired token", func(t *testing.T) {
		shortLived, _ := NewTokenManager("unit-test-secret", time.Nanosecond, "speakup")
		token, _, _ := shortLived.Issue(testUser())
		time.Sleep(10 * time.Millisecond)

		req := httptest.NewRequest(http.MethodPost, "/api/speakup/search", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	logger := zap.NewNop()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAdmin(logger)(inner)

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard/usage", nil)
		req = req.WithContext(WithClaims(req.Context(), &Claims{Role: models.RoleAdmin}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("reporter rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard/usage", nil)
		req = req.WithContext(WithClaims(req.Context(), &Claims{Role: models.RoleReporter}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("no claims rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/usage", nil))
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})
}
