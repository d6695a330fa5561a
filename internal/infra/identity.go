package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned by PasswordLogin when the provider rejects the pair.
var ErrInvalidCredentials = errors.New("identity: invalid credentials")

// IdentityUser is the subset of the provider's user object the backend needs.
type IdentityUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// IdentitySession is returned by the password grant.
type IdentitySession struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	TokenType    string       `json:"token_type"`
	User         IdentityUser `json:"user"`
}

// IdentityClient talks to a Supabase GoTrue compatible auth server.
// Every call goes through the circuit breaker so a downed provider fails fast.
type IdentityClient struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewIdentityClient(baseURL, anonKey, serviceKey string, cb *CircuitBreaker) *IdentityClient {
	if cb == nil {
		cb = NewCircuitBreaker(DefaultCBConfig())
	}
	return &IdentityClient{
		baseURL:    baseURL,
		anonKey:    anonKey,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cb:         cb,
	}
}

// Breaker exposes the circuit breaker for the health endpoint.
func (c *IdentityClient) Breaker() *CircuitBreaker { return c.cb }

// PasswordLogin exchanges email/password for a session.
func (c *IdentityClient) PasswordLogin(ctx context.Context, email, password string) (*IdentitySession, error) {
	var session IdentitySession
	body := map[string]string{"email": email, "password": password}
	status, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", c.anonKey, "", body, &session)
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Logout revokes the refresh tokens of the session that owns accessToken.
func (c *IdentityClient) Logout(ctx context.Context, accessToken string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", c.anonKey, accessToken, nil, nil)
	return err
}

// RecoverPassword sends the reset email; redirectTo is where the link lands.
func (c *IdentityClient) RecoverPassword(ctx context.Context, email, redirectTo string) error {
	path := "/auth/v1/recover"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	_, err := c.do(ctx, http.MethodPost, path, c.anonKey, "", map[string]string{"email": email}, nil)
	return err
}

// InviteUser creates the provider account and emails an invitation link.
func (c *IdentityClient) InviteUser(ctx context.Context, email, redirectTo string) (*IdentityUser, error) {
	path := "/auth/v1/invite"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	var user IdentityUser
	if _, err := c.do(ctx, http.MethodPost, path, c.serviceKey, c.serviceKey, map[string]string{"email": email}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// do performs one JSON request through the breaker. 4xx answers are returned as
// errors without tripping the breaker; only transport failures and 5xx count.
func (c *IdentityClient) do(ctx context.Context, method, path, apiKey, bearer string, in, out interface{}) (int, error) {
	if c.baseURL == "" {
		return 0, errors.New("identity: SUPABASE_URL not configured")
	}
	var status int
	var clientErr error
	err := c.cb.Execute(func() error {
		var reader io.Reader
		if in != nil {
			b, err := json.Marshal(in)
			if err != nil {
				return fmt.Errorf("identity: marshal body: %w", err)
			}
			reader = bytes.NewReader(b)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("identity: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("apikey", apiKey)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("identity: provider unreachable: %w", err)
		}
		defer resp.Body.Close()
		status = resp.StatusCode

		if resp.StatusCode >= 500 {
			return fmt.Errorf("identity: provider returned %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			clientErr = fmt.Errorf("identity: provider returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
			return nil
		}
		if out != nil && resp.StatusCode != http.StatusNoContent {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("identity: decode response: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return status, err
	}
	return status, clientErr
}
