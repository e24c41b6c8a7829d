package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotLoggedIn is returned when a call requires a session and none is
// active.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("api error %d: %s (%d field errors)", e.Status, e.Message, len(e.Fields))
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsValidation reports whether the error carries field-level validation
// messages.
func (e *APIError) IsValidation() bool { return len(e.Fields) > 0 }

// API is the HTTP client for the Speak Up admin service.
type API struct {
	base    string
	http    *http.Client
	session *Session
}

// NewAPI creates an API client. baseURL is the service root (no trailing
// /api); httpClient may be nil for a default with a 30s timeout.
func NewAPI(baseURL string, httpClient *http.Client, session *Session) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &API{
		base:    strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		session: session,
	}
}

// Session returns the session the client authenticates with.
func (a *API) Session() *Session { return a.session }

// LoginUser is the account summary returned by login.
type LoginUser struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	LoginID  string `json:"loginId"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      LoginUser `json:"user"`
}

// Login authenticates and stores the issued token in the session.
func (a *API) Login(ctx context.Context, username, password string) (LoginUser, error) {
	var resp loginResponse
	if err := a.post(ctx, "/api/auth/login", loginRequest{Username: username, Password: password}, &resp, false); err != nil {
		return LoginUser{}, err
	}
	a.session.Set(resp.Token, resp.ExpiresAt)
	return resp.User, nil
}

// Logout drops the session. Tokens are stateless, so there is no server
// call; the token simply stops being sent.
func (a *API) Logout() {
	a.session.Clear()
}

// post sends a JSON request and decodes the JSON response into out (which
// may be nil). When authed is true the session token is attached and a 401
// response expires the session before the error is returned.
func (a *API) post(ctx context.Context, path string, body, out any, authed bool) error {
	return a.do(ctx, http.MethodPost, path, body, out, authed)
}

// get sends an authenticated GET and decodes the JSON response into out.
func (a *API) get(ctx context.Context, path string, out any) error {
	return a.do(ctx, http.MethodGet, path, nil, out, true)
}

func (a *API) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, ok := a.session.Token()
		if !ok {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		if resp.StatusCode == http.StatusUnauthorized && authed {
			a.session.Expire()
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: resp.Status}
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Fields = body.Fields
	}
	return apiErr
}
