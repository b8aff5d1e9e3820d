package eosc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// DefaultTokenURL is the EOSC AAI token endpoint.
const DefaultTokenURL = "https://aai.eosc-portal.eu/auth/realms/core/protocol/openid-connect/token"

// tokenManager exchanges the long-lived refresh token for short-lived
// access tokens and caches the current one. Safe for concurrent use.
type tokenManager struct {
	tokenURL     string
	clientID     string
	refreshToken string
	httpClient   *http.Client

	mu      sync.Mutex
	current string
}

// access returns the cached access token, refreshing when none is cached.
func (m *tokenManager) access(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.current) > 0 {
		return m.current, nil
	}
	return m.refreshLocked(ctx)
}

// refresh drops the cached token and obtains a fresh one.
func (m *tokenManager) refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = ""
	return m.refreshLocked(ctx)
}

func (m *tokenManager) refreshLocked(ctx context.Context) (string, error) {
	if len(m.clientID) == 0 || len(m.refreshToken) == 0 {
		return "", &AuthError{Reason: "client id or refresh token not configured"}
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", m.clientID)
	form.Set("refresh_token", m.refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("refreshing access token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading refresh response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{Reason: fmt.Sprintf("token endpoint returned %d: %s", resp.StatusCode, string(body))}
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("decoding refresh response: %w", err)
	}
	if len(tok.AccessToken) == 0 {
		return "", &AuthError{Reason: "token endpoint returned an empty access token"}
	}

	m.current = tok.AccessToken
	return m.current, nil
}
