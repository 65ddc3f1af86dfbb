package clients

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

const (
	LoginPath    = "/api/auth/login"
	RegisterPath = "/api/auth/register"
)

// User is the profile the API returns next to the token.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse is the success body of login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream error: status=%d message=%s", e.StatusCode, e.Message)
}

var ErrMalformedResponse = errors.New("malformed auth response")

type AuthClient struct {
	baseURL string
	client  *http.Client
}

func NewAuthClient(baseURL string, timeout time.Duration) *AuthClient {
	return &AuthClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (a *AuthClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	return a.post(ctx, LoginPath, map[string]string{"email": email, "password": password})
}

func (a *AuthClient) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	return a.post(ctx, RegisterPath, map[string]string{"name": name, "email": email, "password": password})
}

func (a *AuthClient) post(ctx context.Context, path string, payload any) (*AuthResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}

	var out AuthResponse
	if err := DecodeJSON(resp, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, ErrMalformedResponse
	}
	return &out, nil
}

// DecodeJSON decodes a 2xx body into out, or turns the answer into a *StatusError.
func DecodeJSON(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{StatusCode: resp.StatusCode, Message: upstreamMessage(raw)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

func upstreamMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(raw))
}
