// Package serper provides a client for the Serper web search API.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://google.serper.dev/search"

// ErrMissingAPIKey is returned by Search when the client has no API key.
var ErrMissingAPIKey = eris.New("serper: api key is not set")

// Client performs web search queries.
type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Result is one organic search result.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// searchRequest is the JSON body sent for every query.
type searchRequest struct {
	Q           string `json:"q"`
	Num         int    `json:"num"`
	GL          string `json:"gl"`
	HL          string `json:"hl"`
	Autocorrect bool   `json:"autocorrect"`
}

type searchResponse struct {
	Organic []organicResult `json:"organic"`
}

// organicResult tolerates both field spellings the provider has used.
type organicResult struct {
	Title              string `json:"title"`
	Link               string `json:"link"`
	URL                string `json:"url"`
	Snippet            string `json:"snippet"`
	SnippetHighlighted any    `json:"snippet_highlighted"`
	Description        string `json:"description"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default search endpoint. Empty keeps the default.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit throttles outgoing queries to rps requests per second.
// A non-positive rate disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLocale sets the country (gl) and language (hl) parameters.
func WithLocale(gl, hl string) Option {
	return func(c *httpClient) {
		c.gl = gl
		c.hl = hl
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	gl      string
	hl      string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Serper search client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		gl:      "us",
		hl:      "en",
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Search runs one query and returns its organic results in provider order.
// Results without a link are skipped.
func (c *httpClient) Search(ctx context.Context, query string) ([]Result, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "serper: rate limit wait")
		}
	}

	body, err := json.Marshal(searchRequest{
		Q:           query,
		Num:         10,
		GL:          c.gl,
		HL:          c.hl,
		Autocorrect: true,
	})
	if err != nil {
		return nil, eris.Wrap(err, "serper: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "serper: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "serper: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "serper: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncateBody(respBody)}
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, eris.Wrap(err, "serper: unmarshal response")
	}

	out := make([]Result, 0, len(parsed.Organic))
	for _, o := range parsed.Organic {
		link := firstNonEmpty(o.Link, o.URL)
		if link == "" {
			continue
		}
		out = append(out, Result{
			Title:   o.Title,
			Link:    link,
			Snippet: firstNonEmpty(o.Snippet, asString(o.SnippetHighlighted), o.Description),
		})
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// asString returns v when it is a JSON string; some result shapes carry arrays here.
func asString(v any) string {
	s, _ := v.(string)
	return s
}
