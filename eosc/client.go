package eosc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/bluecloud-project/eoscsync/mapping"
)

// DefaultPortalURL is the providers API base of the EOSC portal.
const DefaultPortalURL = "https://api.eosc-portal.eu"

// dummyValidationID stands in for the real resource id when validating a
// profile that has not been created yet; the validation endpoint requires
// an id field but does not resolve it.
const dummyValidationID = "dummy_id_for_validation_only"

// maxResponseSize caps portal response bodies.
const maxResponseSize = 10 * 1024 * 1024

// Client talks to the providers portal. All operations authenticate with a
// bearer token managed by the embedded token manager; a 401 triggers
// exactly one refresh-and-retry before the operation fails.
type Client struct {
	baseURL    string
	catalogue  string
	tokens     *tokenManager
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithPortalURL overrides the providers API base.
func WithPortalURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTokenURL overrides the AAI token endpoint.
func WithTokenURL(u string) ClientOption {
	return func(c *Client) {
		c.tokens.tokenURL = u
	}
}

// WithCatalogue sets the catalogue id attached to created resources.
func WithCatalogue(id string) ClientOption {
	return func(c *Client) {
		c.catalogue = id
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
		c.tokens.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a portal client authenticating with the given AAI
// client id and offline refresh token.
func NewClient(clientID, refreshToken string, opts ...ClientOption) *Client {
	hc := &http.Client{Timeout: 60 * time.Second}
	c := &Client{
		baseURL: DefaultPortalURL,
		tokens: &tokenManager{
			tokenURL:     DefaultTokenURL,
			clientID:     clientID,
			refreshToken: refreshToken,
			httpClient:   hc,
		},
		httpClient: hc,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one authenticated request. On 401 the access token is
// refreshed and the request replayed once.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) (*http.Response, []byte, error) {
	token, err := c.tokens.access(ctx)
	if err != nil {
		return nil, nil, err
	}

	resp, body, err := c.send(ctx, method, path, payload, token)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, body, nil
	}

	c.logger.Debug("access token rejected, refreshing", "path", path)
	token, err = c.tokens.refresh(ctx)
	if err != nil {
		return nil, nil, err
	}
	return c.send(ctx, method, path, payload, token)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: reading response: %w", method, path, err)
	}
	return resp, body, nil
}

// ExistsByID reports whether a resource with the given portal id exists.
func (c *Client) ExistsByID(ctx context.Context, id string) (bool, error) {
	resp, body, err := c.do(ctx, http.MethodGet, "/resource/"+url.PathEscape(id), nil)
	if err != nil {
		return false, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, &RemoteError{Operation: "exists by id", StatusCode: resp.StatusCode, Body: string(body)}
	}
}

type resourcePage struct {
	Results []struct {
		ID                   string `json:"id"`
		Name                 string `json:"name"`
		ResourceOrganisation string `json:"resourceOrganisation"`
	} `json:"results"`
	Total int `json:"total"`
}

// ExistsByName searches the portal for a resource with the given name under
// the given organisation and returns its id. Only the first result page is
// inspected; with the catalogue's current size that covers everything, but
// a resource beyond the first hundred matches would be missed.
func (c *Client) ExistsByName(ctx context.Context, name, organisation string) (string, bool, error) {
	path := fmt.Sprintf("/resource/all?query=%s&quantity=100", url.QueryEscape(name))
	resp, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", false, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, &RemoteError{Operation: "exists by name", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var page resourcePage
	if err := json.Unmarshal(body, &page); err != nil {
		return "", false, fmt.Errorf("decoding resource search: %w", err)
	}

	for _, r := range page.Results {
		if r.Name == name && r.ResourceOrganisation == organisation {
			return r.ID, true, nil
		}
	}
	return "", false, nil
}

// Create registers a new resource and returns the portal-assigned id.
func (c *Client) Create(ctx context.Context, rec *mapping.TargetRecord) (string, error) {
	if len(c.catalogue) > 0 {
		rec.Catalogue = c.catalogue
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encoding resource %q: %w", rec.Name, err)
	}

	resp, body, err := c.do(ctx, http.MethodPost, "/resource", payload)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusCreated {
		return "", &RemoteError{Operation: fmt.Sprintf("creating resource %q", rec.Name), StatusCode: resp.StatusCode, Body: string(body)}
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decoding create response: %w", err)
	}
	if len(created.ID) == 0 {
		return "", fmt.Errorf("portal accepted resource %q but returned no id", rec.Name)
	}

	c.logger.Info("resource created", "name", rec.Name, "id", created.ID)
	return created.ID, nil
}

// Update replaces an existing resource. The record must carry its portal id.
func (c *Client) Update(ctx context.Context, rec *mapping.TargetRecord) error {
	if len(rec.ID) == 0 {
		return fmt.Errorf("updating resource %q: no portal id set", rec.Name)
	}
	if len(c.catalogue) > 0 {
		rec.Catalogue = c.catalogue
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding resource %q: %w", rec.Name, err)
	}

	resp, body, err := c.do(ctx, http.MethodPut, "/resource", payload)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &RemoteError{Operation: fmt.Sprintf("updating resource %q", rec.Name), StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.logger.Info("resource updated", "name", rec.Name, "id", rec.ID)
	return nil
}

// ValidateRemote asks the portal to validate a profile without storing it.
// It returns the portal's complaints; an empty slice means the profile
// passed. Records without an id get a dummy one on a copy, never on the
// caller's record. Timeouts are tolerated: remote validation is advisory
// and the endpoint is known to be slow.
func (c *Client) ValidateRemote(ctx context.Context, rec *mapping.TargetRecord) ([]string, error) {
	candidate := *rec
	if len(candidate.ID) == 0 {
		candidate.ID = dummyValidationID
	}

	payload, err := json.Marshal(&candidate)
	if err != nil {
		return nil, fmt.Errorf("encoding resource %q: %w", rec.Name, err)
	}

	resp, body, err := c.do(ctx, http.MethodPost, "/resource/validate", payload)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			c.logger.Warn("remote validation timed out, continuing without it", "name", rec.Name)
			return nil, nil
		}
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return nil, nil
	case http.StatusConflict:
		return parseValidationComplaints(body), nil
	default:
		return nil, &RemoteError{Operation: fmt.Sprintf("validating resource %q", rec.Name), StatusCode: resp.StatusCode, Body: string(body)}
	}
}

// parseValidationComplaints extracts the portal's error message from a 409
// body; an undecodable body is passed through raw.
func parseValidationComplaints(body []byte) []string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Error) > 0 {
		return []string{payload.Error}
	}
	return []string{string(body)}
}
