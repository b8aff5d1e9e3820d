package bluecloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTokenURL is the D4Science identity provider token endpoint.
const DefaultTokenURL = "https://accounts.d4science.org/auth/realms/d4science/protocol/openid-connect/token"

// umaGrantType requests a token scoped to one VRE context.
const umaGrantType = "urn:ietf:params:oauth:grant-type:uma-ticket"

// contextPrefix is the D4Science path under which all Blue-Cloud VRE
// contexts live. The UMA audience is this prefix plus the VRE name.
const contextPrefix = "/d4science.research-infrastructures.eu/D4OS/"

// AllowedVREs lists the virtual research environments the synchronizer has
// been granted access to. Requesting a token for anything else fails fast
// instead of producing a confusing identity-provider error.
var AllowedVREs = []string{
	"MarineEnvironmentalIndicators",
	"Blue-CloudProject",
	"Blue-CloudLab",
	"FisheriesAtlas",
	"PlanktonGenomics",
	"Zoo-Phytoplankton_EOV",
}

// TokenProvider acquires VRE-scoped UMA access tokens using the client
// credentials of the synchronizer's service account.
type TokenProvider struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *slog.Logger
}

// TokenOption configures a TokenProvider.
type TokenOption func(*TokenProvider)

// WithTokenURL overrides the identity provider endpoint.
func WithTokenURL(u string) TokenOption {
	return func(p *TokenProvider) {
		p.tokenURL = u
	}
}

// WithTokenHTTPClient sets a custom HTTP client.
func WithTokenHTTPClient(c *http.Client) TokenOption {
	return func(p *TokenProvider) {
		p.httpClient = c
	}
}

// WithTokenLogger sets the logger.
func WithTokenLogger(logger *slog.Logger) TokenOption {
	return func(p *TokenProvider) {
		p.logger = logger
	}
}

// NewTokenProvider creates a TokenProvider for the given service-account
// credentials.
func NewTokenProvider(clientID, clientSecret string, opts ...TokenOption) *TokenProvider {
	p := &TokenProvider{
		tokenURL:     DefaultTokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token obtains a UMA access token scoped to the given VRE. The VRE must be
// in AllowedVREs.
func (p *TokenProvider) Token(ctx context.Context, vre string) (string, error) {
	if !vreAllowed(vre) {
		return "", &AuthError{Audience: vre, Reason: "VRE not in the access allow-list"}
	}
	if len(p.clientID) == 0 || len(p.clientSecret) == 0 {
		return "", &AuthError{Audience: vre, Reason: "client credentials not configured"}
	}

	form := url.Values{}
	form.Set("grant_type", umaGrantType)
	form.Set("audience", contextPrefix+vre)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.SetBasicAuth(p.clientID, p.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	p.logger.Debug("requesting VRE token", "vre", vre)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting token for %q: %w", vre, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &AuthError{Audience: vre, Reason: fmt.Sprintf("identity provider returned %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return "", &RemoteError{Operation: "token request", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if len(tok.AccessToken) == 0 {
		return "", &AuthError{Audience: vre, Reason: "identity provider returned an empty access token"}
	}
	return tok.AccessToken, nil
}

func vreAllowed(vre string) bool {
	for _, allowed := range AllowedVREs {
		if vre == allowed {
			return true
		}
	}
	return false
}
