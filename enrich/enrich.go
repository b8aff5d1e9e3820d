// Package enrich derives description text from a service's webpage when
// the catalogue entry itself has none. The extracted text is advisory: it
// fills otherwise-empty mandatory fields so a record can pass validation,
// and curators replace it later.
package enrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/bluecloud-project/eoscsync/mapping"
)

// taglineMaxLen is the portal's tagline length limit.
const taglineMaxLen = 100

// maxPageSize caps fetched page bodies.
const maxPageSize = 5 * 1024 * 1024

var whitespaceRe = regexp.MustCompile(`\s+`)

// Description is the text derived from one webpage.
type Description struct {
	Description string
	Tagline     string
}

// Enricher fetches webpages and extracts readable text from them.
type Enricher struct {
	httpClient *http.Client
	converter  *md.Converter
	logger     *slog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(e *Enricher) {
		e.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) {
		e.logger = logger
	}
}

// New creates an Enricher.
func New(opts ...Option) *Enricher {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	e := &Enricher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		converter:  converter,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Describe fetches the webpage and extracts a description and a tagline
// from its main content. Readability extraction is tried first; when it
// finds nothing, all markup is stripped and the raw text used.
func (e *Enricher) Describe(ctx context.Context, webpage string) (*Description, error) {
	body, err := e.fetch(ctx, webpage)
	if err != nil {
		return nil, err
	}
	return e.extract(body, webpage)
}

func (e *Enricher) fetch(ctx context.Context, webpage string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, webpage, nil)
	if err != nil {
		return nil, fmt.Errorf("building page request for %q: %w", webpage, err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %q: %w", webpage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %q: unexpected status %d", webpage, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", webpage, err)
	}
	return body, nil
}

func (e *Enricher) extract(body []byte, webpage string) (*Description, error) {
	pageURL, err := url.Parse(webpage)
	if err != nil {
		return nil, fmt.Errorf("parsing webpage URL %q: %w", webpage, err)
	}

	var text, excerpt string
	article, err := readability.FromReader(strings.NewReader(string(body)), pageURL)
	if err == nil && len(strings.TrimSpace(article.Content)) > 0 {
		markdown, convErr := e.converter.ConvertString(article.Content)
		if convErr != nil {
			return nil, fmt.Errorf("converting %q to markdown: %w", webpage, convErr)
		}
		text = markdown
		excerpt = article.Excerpt
	} else {
		e.logger.Debug("readability extraction found no content, stripping tags", "webpage", webpage)
		text = stripTags(body)
	}

	text = collapseWhitespace(text)
	if len(text) == 0 {
		return nil, fmt.Errorf("no readable text on %q", webpage)
	}

	tagline := collapseWhitespace(excerpt)
	if len(tagline) == 0 {
		tagline = text
	}

	return &Description{
		Description: mapping.TruncateDescription(text),
		Tagline:     truncateTagline(tagline),
	}, nil
}

// stripTags walks the parsed document and concatenates its text nodes,
// skipping script and style subtrees.
func stripTags(body []byte) string {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return sb.String()
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func truncateTagline(s string) string {
	runes := []rune(s)
	if len(runes) <= taglineMaxLen {
		return s
	}
	return strings.TrimSpace(string(runes[:taglineMaxLen-4])) + " ..."
}
