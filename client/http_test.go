package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Sherifrax/speakup-sub001/internal/listquery"
)

func TestAPI_LoginStoresSession(t *testing.T) {
	expires := time.Now().Add(8 * time.Hour).UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode login: %v", err)
		}
		if req.Username != "admin@example.com" {
			t.Errorf("username = %q", req.Username)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token":     "issued-token",
			"expiresAt": expires,
			"user":      map[string]string{"id": "u1", "fullName": "Admin", "loginId": req.Username, "role": "admin"},
		})
	}))
	defer srv.Close()

	session := NewSession()
	api := NewAPI(srv.URL, srv.Client(), session)

	user, err := api.Login(context.Background(), "admin@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Role != "admin" {
		t.Errorf("user.Role = %q", user.Role)
	}
	token, ok := session.Token()
	if !ok || token != "issued-token" {
		t.Errorf("session token = %q ok=%v", token, ok)
	}
}

func TestAPI_LoginFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, srv.Client(), NewSession())
	_, err := api.Login(context.Background(), "admin@example.com", "wrong")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Message != "invalid credentials" {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if api.Session().Active() {
		t.Error("failed login left a session active")
	}
}

func TestAPI_UnauthorizedClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid or expired token"})
	}))
	defer srv.Close()

	session := NewSession()
	expired := 0
	session.SetOnExpired(func() { expired++ })
	session.Set("stale-token", time.Now().Add(time.Hour))

	api := NewAPI(srv.URL, srv.Client(), session)
	_, err := api.SearchAPIKeys(context.Background(), listquery.Request[APIKeyFilters]{Search: DefaultAPIKeyFilters()})

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 APIError", err)
	}
	if session.Active() {
		t.Error("session still active after 401")
	}
	if expired != 1 {
		t.Errorf("expiry callback fired %d times, want 1", expired)
	}

	// Once the session is gone, calls fail locally without a request.
	if _, err := api.SearchAPIKeys(context.Background(), listquery.Request[APIKeyFilters]{}); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("err = %v, want ErrNotLoggedIn", err)
	}
}

func TestAPI_SearchSendsBearerAndDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		var req listquery.Request[APIKeyFilters]
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode search: %v", err)
		}
		if req.Pagination.Page != 1 || req.Pagination.SortBy != "clientName" {
			t.Errorf("pagination = %+v", req.Pagination)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data":       []map[string]any{{"encryptedData": "t1", "clientName": "acme", "isActive": true}},
			"total_rows": 37,
		})
	}))
	defer srv.Close()

	session := NewSession()
	session.Set("tok", time.Now().Add(time.Hour))
	api := NewAPI(srv.URL, srv.Client(), session)

	ctrl := NewAPIKeyController()
	result, err := api.SearchAPIKeys(context.Background(), ctrl.Query())
	if err != nil {
		t.Fatalf("SearchAPIKeys: %v", err)
	}
	if result.TotalRows != 37 || len(result.Data) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if result.Data[0].ClientName != "acme" || !result.Data[0].IsActive {
		t.Errorf("record = %+v", result.Data[0])
	}
}

func TestAPI_ValidationErrorFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error":  "validation failed",
			"fields": map[string]string{"clientName": "client name must be 50 characters or fewer"},
		})
	}))
	defer srv.Close()

	session := NewSession()
	session.Set("tok", time.Now().Add(time.Hour))
	api := NewAPI(srv.URL, srv.Client(), session)

	_, err := api.SaveAPIKey(context.Background(), APIKeyDraft{ClientName: "too long"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if !apiErr.IsValidation() {
		t.Error("IsValidation() = false")
	}
	if apiErr.Fields["clientName"] == "" {
		t.Errorf("fields = %+v", apiErr.Fields)
	}
	if session.Active() != true {
		t.Error("validation error cleared the session")
	}
}

func TestSession_ExpiryClearsToken(t *testing.T) {
	s := NewSession()
	now := time.Now()
	s.now = func() time.Time { return now }

	expired := 0
	s.SetOnExpired(func() { expired++ })
	s.Set("tok", now.Add(time.Minute))

	if !s.Active() {
		t.Fatal("fresh session inactive")
	}

	now = now.Add(2 * time.Minute)
	if s.Active() {
		t.Error("expired session still active")
	}
	if expired != 1 {
		t.Errorf("expiry callback fired %d times, want 1", expired)
	}

	// Explicit logout never fires the callback.
	s.Set("tok2", now.Add(time.Minute))
	s.Clear()
	if expired != 1 {
		t.Errorf("Clear fired expiry callback")
	}
}

func TestSession_ConcurrentUse(t *testing.T) {
	// Token mutates on expiry, so every accessor shares one mutex. Hammer
	// the session from multiple goroutines; the race detector does the
	// asserting.
	s := NewSession()
	s.SetOnExpired(func() {})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Set("tok", time.Now().Add(time.Minute))
				s.Token()
				s.Active()
				s.Expire()
				s.Clear()
			}
		}()
	}
	wg.Wait()

	if s.Active() {
		t.Error("session active after final Clear")
	}
}
