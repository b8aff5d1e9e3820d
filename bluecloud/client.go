package bluecloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/bluecloud-project/eoscsync/mapping"
)

// DefaultCatalogueURL is the gCat catalogue API base.
const DefaultCatalogueURL = "https://api.d4science.org/catalogue"

// serviceQuery selects catalogue items of system type Service; the
// catalogue also holds datasets and other item types we never synchronize.
const serviceQuery = "extras_systemtype:Service"

// maxResponseSize caps catalogue response bodies.
const maxResponseSize = 10 * 1024 * 1024

// Client reads catalogue items. Every call carries the VRE-scoped bearer
// token the Client was created with; a Client is therefore bound to one VRE.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the catalogue API base.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a catalogue client using the given VRE-scoped token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultCatalogueURL,
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListServices returns the names of all service items visible in the
// Client's VRE.
func (c *Client) ListServices(ctx context.Context) ([]string, error) {
	endpoint := fmt.Sprintf("%s/items?q=%s", c.baseURL, url.QueryEscape(serviceQuery))

	body, err := c.get(ctx, endpoint, "listing services")
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(body, &names); err != nil {
		return nil, fmt.Errorf("decoding service list: %w", err)
	}

	c.logger.Debug("listed catalogue services", "count", len(names))
	return names, nil
}

// GetService fetches one catalogue item by name.
func (c *Client) GetService(ctx context.Context, name string) (*mapping.SourceRecord, error) {
	endpoint := fmt.Sprintf("%s/items/%s", c.baseURL, url.PathEscape(name))

	body, err := c.get(ctx, endpoint, fmt.Sprintf("fetching service %q", name))
	if err != nil {
		return nil, err
	}

	var rec mapping.SourceRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decoding service %q: %w", name, err)
	}
	return &rec, nil
}

func (c *Client) get(ctx context.Context, endpoint, operation string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s: reading response: %w", operation, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{Operation: operation, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
