// Package authclient is an HTTP client for the auth service, for services that
// sit behind it.
package authclient

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

	"github.com/Skotchmaster/auth_service/internal/transport"
)

const refreshCookieName = "refreshToken"

// ErrUnauthorized is returned for 401 responses.
var ErrUnauthorized = errors.New("authclient: unauthorized")

// StatusError carries a non-2xx response the client has no sentinel for.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("authclient: status %d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(authServiceURL string) *Client {
	return NewClientWithHTTP(authServiceURL, &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	})
}

func NewClientWithHTTP(authServiceURL string, hc *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(authServiceURL, "/"),
		httpClient: hc,
	}
}

// Session is the outcome of sign-up or sign-in. RefreshToken comes from the
// Set-Cookie header.
type Session struct {
	AccessToken  string
	RefreshToken string
	Message      string
}

func (c *Client) SignUp(ctx context.Context, email, name, password string) (*Session, error) {
	var out transport.SignUpResponse
	resp, err := c.post(ctx, "/auth/sign-up", transport.SignUpRequest{Email: email, Name: name, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: out.AccessToken, RefreshToken: refreshFrom(resp), Message: out.Message}, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var out transport.TokenResponse
	resp, err := c.post(ctx, "/auth/sign-in", transport.SignInRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: out.AccessToken, RefreshToken: refreshFrom(resp)}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	var out transport.TokenResponse
	if _, err := c.post(ctx, "/auth/refresh", transport.RefreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

func (c *Client) Dashboard(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/dashboard", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var out transport.MessageResponse
	if _, err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var msg transport.MessageResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&msg)
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, msg.Message)
		}
		return nil, &StatusError{Code: resp.StatusCode, Message: msg.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

func refreshFrom(resp *http.Response) string {
	for _, ck := range resp.Cookies() {
		if ck.Name == refreshCookieName {
			return ck.Value
		}
	}
	return ""
}
