// Package httpclient provides the HTTP wrapper every movekit API call goes
// through. It attaches the CSRF token header and cookie-based credentials to
// each outgoing request and converts non-2xx responses into structured
// transport errors. It performs no retries; retry policy belongs to callers.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/movelink/movekit/errors"
)

// DefaultCSRFCookieName is the cookie the backend stores the masked CSRF
// token in.
const DefaultCSRFCookieName = "masked_gorilla_csrf"

// CSRFHeader is the request header the backend validates the token from.
const CSRFHeader = "X-CSRF-TOKEN"

// Response is the parsed result of a successful HTTP exchange
type Response struct {
	Status  int
	Headers http.Header
	JSON    json.RawMessage
}

// Client wraps an http.Client with the session behavior the backend
// expects: a shared cookie jar (same-origin credentials) and the CSRF
// token header on every request.
type Client struct {
	baseURL        *url.URL
	httpClient     *http.Client
	csrfCookieName string
	logger         Logger
	userAgent      string
	timeout        time.Duration
	timeoutSet     bool
}

// NewClient creates a new API client for the given base URL with optional
// configuration
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.WrapContract(err, "Client", "NewClient", "parse base URL")
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.WrapContract(
			fmt.Errorf("base URL %q must be absolute", baseURL),
			"Client", "NewClient", "validate base URL")
	}
	// A trailing slash keeps any mount prefix ("/internal", "/admin/v1")
	// in resolved request URLs
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	c := &Client{
		baseURL:        parsed,
		csrfCookieName: DefaultCSRFCookieName,
		logger:         &defaultLogger{},
		timeout:        30 * time.Second,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.WrapContract(err, "Client", "NewClient", "apply option")
		}
	}

	// The cookie jar is what makes credentials same-origin: session and
	// CSRF cookies set by the backend ride along on every later request.
	if c.httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.WrapContract(err, "Client", "NewClient", "create cookie jar")
		}
		c.httpClient = &http.Client{Jar: jar, Timeout: c.timeout}
	} else {
		if c.httpClient.Jar == nil {
			jar, err := cookiejar.New(nil)
			if err != nil {
				return nil, errors.WrapContract(err, "Client", "NewClient", "create cookie jar")
			}
			c.httpClient.Jar = jar
		}
		// An explicit WithTimeout wins over the supplied client's own
		if c.timeoutSet {
			c.httpClient.Timeout = c.timeout
		}
	}

	c.logger.Debugf("Created API client for %s", baseURL)

	return c, nil
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Jar exposes the client's cookie jar so the session layer can seed the
// CSRF cookie during login handoff.
func (c *Client) Jar() http.CookieJar {
	return c.httpClient.Jar
}

// CSRFToken reads the current masked CSRF token from the cookie jar.
// Returns the empty string if the cookie is not present.
func (c *Client) CSRFToken() string {
	if c.httpClient.Jar == nil {
		return ""
	}
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		if cookie.Name == c.csrfCookieName {
			return cookie.Value
		}
	}
	return ""
}

// Do executes a request against the API. The path is resolved against the
// base URL unless it is already absolute. A non-nil body is encoded as
// JSON. Non-2xx responses are returned as transport errors carrying the
// status and the parsed body.
func (c *Client) Do(ctx context.Context, method, path string, body any, header http.Header) (*Response, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, errors.WrapContract(err, "Client", "Do", "resolve request URL")
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, errors.WrapContract(err, "Client", "Do", "encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.WrapContract(err, "Client", "Do", "build request")
	}

	// Ensure a headers container exists before decorating it
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	// The request is sent either way; the backend decides whether an
	// absent token matters for this endpoint.
	token := c.CSRFToken()
	if token == "" {
		c.logger.Warnf("Unable to retrieve CSRF token from cookie %q", c.csrfCookieName)
	}
	req.Header.Set(CSRFHeader, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WrapTransport(err, "Client", "Do", "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapTransport(err, "Client", "Do", "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		te := &errors.TransportError{Status: resp.StatusCode}
		if json.Valid(raw) {
			te.Body = json.RawMessage(raw)
		}
		c.logger.Debugf("%s %s failed with status %d", method, target, resp.StatusCode)
		return nil, errors.WrapTransport(te, "Client", "Do",
			fmt.Sprintf("%s %s", method, req.URL.Path))
	}

	result := &Response{
		Status:  resp.StatusCode,
		Headers: resp.Header,
	}
	if len(raw) > 0 && json.Valid(raw) {
		result.JSON = json.RawMessage(raw)
	}

	return result, nil
}

// resolve joins a request path with the base URL, passing absolute URLs
// through untouched. A leading slash is treated as relative to the base,
// never to the host root, so mount prefixes survive.
func (c *Client) resolve(path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	rel, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", err
	}
	return c.baseURL.ResolveReference(rel).String(), nil
}
