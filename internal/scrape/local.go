package scrape

import (
	"context"
	"io"
	"mime"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

const (
	// DefaultUserAgent identifies the fetcher to remote hosts.
	DefaultUserAgent = "Mozilla/5.0 (compatible; SupplementsBot/1.0)"
	// DefaultMaxBodyBytes caps how much of a page is read.
	DefaultMaxBodyBytes = 2 << 20

	defaultTimeout = 15 * time.Second
	maxRedirects   = 10
)

// LocalFetcher fetches HTML via net/http. One attempt per URL.
type LocalFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// Option configures a LocalFetcher.
type Option func(*LocalFetcher)

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(l *LocalFetcher) {
		if ua != "" {
			l.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(l *LocalFetcher) {
		if d > 0 {
			l.client.Timeout = d
		}
	}
}

// WithMaxBodyBytes caps the number of body bytes read.
func WithMaxBodyBytes(n int64) Option {
	return func(l *LocalFetcher) {
		if n > 0 {
			l.maxBody = n
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(l *LocalFetcher) {
		l.client = hc
	}
}

// NewLocalFetcher creates a LocalFetcher with sensible defaults.
func NewLocalFetcher(opts ...Option) *LocalFetcher {
	l := &LocalFetcher{
		client: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConnsPerHost: 4,
			},
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return eris.Errorf("local_http: stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
		maxBody:   DefaultMaxBodyBytes,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// FetchLight fetches a URL and pulls out its title and site name.
// Error statuses still return the page; only transport failures, non-text
// content and unreadable bodies are errors.
func (l *LocalFetcher) FetchLight(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: create request")
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	mediaType, charset := parseContentType(resp.Header.Get("Content-Type"))
	if !isTextual(mediaType) {
		return nil, eris.Errorf("local_http: unsupported content type %q", mediaType)
	}

	body, err := io.ReadAll(decodeBody(io.LimitReader(resp.Body, l.maxBody), charset))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: read body")
	}

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Page{
		URL:        finalURL,
		HTML:       string(body),
		Title:      extractTitle(body),
		SiteName:   extractSiteName(body),
		StatusCode: resp.StatusCode,
	}, nil
}

// parseContentType returns the lowercased media type and charset parameter.
func parseContentType(header string) (string, string) {
	if header == "" {
		return "", ""
	}
	mediaType, params, err := mime.ParseMediaType(header)
	if err != nil {
		mt, _, _ := strings.Cut(header, ";")
		return strings.ToLower(strings.TrimSpace(mt)), ""
	}
	return strings.ToLower(mediaType), params["charset"]
}

// isTextual accepts text/*, anything mentioning html or xml, and a missing type.
func isTextual(mediaType string) bool {
	if mediaType == "" {
		return true
	}
	return strings.HasPrefix(mediaType, "text/") ||
		strings.Contains(mediaType, "html") ||
		strings.Contains(mediaType, "xml")
}

// decodeBody converts r to UTF-8 when the server declared another charset.
// Unknown charsets pass through untouched.
func decodeBody(r io.Reader, charset string) io.Reader {
	if charset == "" {
		return r
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return r
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return r
	}
	return enc.NewDecoder().Reader(r)
}

var (
	titleRe    = regexp.MustCompile(`(?i)<title>([^<]+)</title>`)
	siteNameRe = regexp.MustCompile(`(?i)<meta[^>]+property=["']og:site_name["'][^>]*content=["']([^"']*)["']`)
)

// extractTitle pulls the <title> from HTML.
func extractTitle(body []byte) string {
	m := titleRe.FindSubmatch(body)
	if len(m) > 1 {
		return strings.TrimSpace(string(m[1]))
	}
	return ""
}

// extractSiteName pulls the og:site_name meta content from HTML.
func extractSiteName(body []byte) string {
	m := siteNameRe.FindSubmatch(body)
	if len(m) > 1 {
		return strings.TrimSpace(string(m[1]))
	}
	return ""
}
