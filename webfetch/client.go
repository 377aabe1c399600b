package webfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Page is a downloaded and decoded response.
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Kind detects the format of the page body.
func (p *Page) Kind() Kind {
	return Detect(p.Body)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Client fetches pages with a browser fingerprint and a request rate limit.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	logger     *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client, typically in tests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the per-request timeout of the underlying http.Client.
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// WithRateLimit allows perSecond requests with the given burst.
// A zero or negative rate disables limiting.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(client *Client) {
		if perSecond <= 0 {
			client.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		client.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) ClientOption {
	return func(client *Client) {
		client.userAgent = ua
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// NewCookieJar returns a cookie jar backed by the public suffix list.
func NewCookieJar() http.CookieJar {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		// cookiejar.New never fails with a non-nil options value.
		panic(err)
	}
	return jar
}

// NewClient creates a Client using the Chrome-fingerprint transport, a cookie
// jar, a 30s timeout and a limit of 2 requests per second.
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{
			Transport: NewTransport(false),
			Jar:       NewCookieJar(),
			Timeout:   30 * time.Second,
		},
		limiter:   rate.NewLimiter(rate.Limit(2), 1),
		userAgent: DefaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// Get downloads url and returns the decoded body. Responses outside the 2xx
// range are returned as *StatusError.
func (c *Client) Get(ctx context.Context, url string) (*Page, error) {
	return c.Do(ctx, http.MethodGet, url, nil)
}

// Do sends a request with the browser headers and extra headers applied.
func (c *Client) Do(ctx context.Context, method, url string, header http.Header) (*Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, br")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer res.Body.Close()

	if err := decodeBody(res); err != nil {
		return nil, fmt.Errorf("decoding body of %s: %w", url, err)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", url, err)
	}

	c.logger.Debug("fetched page",
		zap.String("url", url),
		zap.Int("status", res.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: res.StatusCode, Body: body}
	}

	return &Page{
		URL:         url,
		StatusCode:  res.StatusCode,
		ContentType: res.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
