// Package supabase wraps the hosted auth provider's REST API. Credential
// verification, password hashing and token issuance all live on the other
// side of this boundary.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/lebrely-io/backend/internal/config"
)

const authBasePath = "/auth/v1"

type Client struct {
	http *resty.Client
}

// NewClient builds a pooled client for the provider's auth endpoints. The
// timeout bounds every round trip; the provider call is the dominant
// latency source of each request.
func NewClient(cfg config.SupabaseConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/") + authBasePath).
		SetTimeout(timeout).
		SetHeader("apikey", cfg.Key).
		SetHeader("Content-Type", "application/json")

	return &Client{http: httpClient}
}

// SignUp registers the account with the provider. The returned session is
// nil when email confirmation is pending; that is not an error.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*AuthUser, *Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	if len(metadata) > 0 {
		body["data"] = metadata
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/signup")
	if err != nil {
		return nil, nil, fmt.Errorf("signup request failed: %w", err)
	}
	if resp.IsError() {
		return nil, nil, decodeError(resp)
	}

	// Autoconfirmed projects answer with a full token grant, projects with
	// confirmation enabled answer with the bare user object.
	var grant tokenResponse
	if err := json.Unmarshal(resp.Body(), &grant); err != nil {
		return nil, nil, fmt.Errorf("failed to decode signup response: %w", err)
	}

	if len(grant.AccessToken) > 0 {
		return grant.User, &grant.Session, nil
	}

	var user AuthUser
	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return nil, nil, fmt.Errorf("failed to decode signup response: %w", err)
	}
	if len(user.ID) == 0 {
		return nil, nil, fmt.Errorf("signup response contains no user")
	}

	return &user, nil, nil
}

// SignIn exchanges credentials for a token pair (password grant).
func (c *Client) SignIn(ctx context.Context, email, password string) (*AuthUser, *Session, error) {
	var grant tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{
			"email":    email,
			"password": password,
		}).
		SetResult(&grant).
		Post("/token")
	if err != nil {
		return nil, nil, fmt.Errorf("signin request failed: %w", err)
	}
	if resp.IsError() {
		return nil, nil, decodeError(resp)
	}

	if grant.User == nil || len(grant.AccessToken) == 0 {
		return nil, nil, &AuthError{Status: resp.StatusCode(), Reason: "invalid credentials"}
	}

	return grant.User, &grant.Session, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var grant tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "refresh_token").
		SetBody(map[string]string{
			"refresh_token": refreshToken,
		}).
		SetResult(&grant).
		Post("/token")
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	if resp.IsError() {
		return nil, decodeError(resp)
	}

	if len(grant.AccessToken) == 0 {
		return nil, &AuthError{Status: resp.StatusCode(), Reason: "invalid refresh token"}
	}

	return &grant.Session, nil
}

// GetUser resolves an access token to the provider's user record. This is
// how bearer tokens are validated.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*AuthUser, error) {
	var user AuthUser
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&user).
		Get("/user")
	if err != nil {
		return nil, fmt.Errorf("get user request failed: %w", err)
	}
	if resp.IsError() {
		return nil, decodeError(resp)
	}

	if len(user.ID) == 0 {
		return nil, &AuthError{Status: resp.StatusCode(), Reason: "invalid token"}
	}

	return &user, nil
}

// ResetPassword asks the provider to send a recovery email. The provider
// answers success regardless of whether the address exists.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email}).
		Post("/recover")
	if err != nil {
		return fmt.Errorf("reset password request failed: %w", err)
	}
	if resp.IsError() {
		return decodeError(resp)
	}
	return nil
}

// SignOut revokes the session behind the access token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Post("/logout")
	if err != nil {
		return fmt.Errorf("signout request failed: %w", err)
	}
	if resp.IsError() {
		return decodeError(resp)
	}
	return nil
}

func decodeError(resp *resty.Response) error {
	var body apiError
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		logrus.WithFields(logrus.Fields{
			"status": resp.StatusCode(),
			"url":    resp.Request.URL,
		}).Warnln("Unparseable error response from auth provider")
		return &AuthError{Status: resp.StatusCode(), Reason: resp.Status()}
	}

	return &AuthError{Status: resp.StatusCode(), Reason: body.reason()}
}
