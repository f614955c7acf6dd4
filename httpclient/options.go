package httpclient

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Logger interface for injecting custom loggers
type Logger interface {
	Warnf(format string, v ...any)
	Debugf(format string, v ...any)
}

// defaultLogger implements Logger using slog's default logger
type defaultLogger struct{}

func (l *defaultLogger) Warnf(format string, v ...any) {
	slog.Warn(fmt.Sprintf(format, v...))
}

func (l *defaultLogger) Debugf(_ string, _ ...any) {
	// Silent by default
}

// slogLogger adapts a *slog.Logger to the Logger interface
type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l *slogLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

// ClientOption is a functional option for configuring the Client
type ClientOption func(*Client) error

// WithHTTPClient sets a custom http.Client. A cookie jar is attached if
// the provided client has none.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) error {
		if httpClient != nil {
			c.httpClient = httpClient
		}
		return nil
	}
}

// WithCSRFCookieName overrides the cookie the CSRF token is read from
func WithCSRFCookieName(name string) ClientOption {
	return func(c *Client) error {
		if name != "" {
			c.csrfCookieName = name
		}
		return nil
	}
}

// WithLogger sets a custom logger for the client
func WithLogger(logger Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			logger = &defaultLogger{}
		}
		c.logger = logger
		return nil
	}
}

// WithSlog sets a structured slog logger for the client
func WithSlog(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger != nil {
			c.logger = &slogLogger{logger: logger}
		}
		return nil
	}
}

// WithTimeout sets the per-request timeout. It applies whether the HTTP
// client is the built-in default or supplied via WithHTTPClient.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d > 0 {
			c.timeout = d
			c.timeoutSet = true
		}
		return nil
	}
}

// WithUserAgent sets the User-Agent header for all requests
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}
