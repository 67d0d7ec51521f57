// Package network issues authenticated requests to the KNoT cloud storage service.
//
// All failures are reported as *Error, which carries the http status of the
// response (or UnexpectedErrorCode when no response was received) and the message
// supplied by the service.
package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// AuthTokenHeader is the header used by the storage service to authenticate requests
const AuthTokenHeader = "auth_token"

// defaults used for zero value Config fields
const (
	DefaultProtocol = "https"
	DefaultHostname = "storage.knot.cloud"
	DefaultPort     = 443
)

var validProtocols = map[string]bool{
	"http":  true,
	"https": true,
}

// Doer executes http requests. *http.Client satisfies this interface.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config describes how to reach the storage service.
// Zero values are replaced with the defaults above, Token is required.
type Config struct {
	Protocol string
	Hostname string
	Port     int
	Pathname string // base path prepended to every request path, may be empty
	Token    string

	// HTTPClient is used to send requests (defaults to a plain *http.Client).
	// Timeouts, TLS and proxies are configured here.
	HTTPClient Doer

	// Logger receives request logs, nothing is logged when nil.
	Logger *slog.Logger
}

// HTTP sends GET requests to the storage service.
// It holds no mutable state and is safe for concurrent use.
type HTTP struct {
	baseURL string
	header  http.Header
	client  Doer
	logger  *slog.Logger
}

// New validates the config and returns a ready to use HTTP transport
func New(cfg Config) (*HTTP, error) {
	if cfg.Protocol == "" {
		cfg.Protocol = DefaultProtocol
	}
	if cfg.Hostname == "" {
		cfg.Hostname = DefaultHostname
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}

	if !validProtocols[cfg.Protocol] {
		return nil, fmt.Errorf("%w (got %q)", ErrInvalidProtocol, cfg.Protocol)
	}
	if cfg.Token == "" {
		return nil, ErrTokenNotProvided
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// not canonicalized: the name goes on the wire as auth_token
	header := http.Header{
		AuthTokenHeader: []string{cfg.Token},
	}

	return &HTTP{
		baseURL: fmt.Sprintf("%s://%s:%d%s", cfg.Protocol, cfg.Hostname, cfg.Port, cfg.Pathname),
		header:  header,
		client:  client,
		logger:  logger,
	}, nil
}

// BaseURL returns the url every request path is appended to
func (h *HTTP) BaseURL() string {
	return h.baseURL
}

// Header returns a copy of the headers sent with every request
func (h *HTTP) Header() http.Header {
	return h.header.Clone()
}

// Get sends a GET request to BaseURL()+path with the supplied query parameters.
//
// A successful response body is decoded as JSON into out. An empty body is a
// successful, empty result and leaves out untouched.
// Any failure is returned as *Error.
func (h *HTTP) Get(ctx context.Context, path string, query Query, out any) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+path, nil)
	if err != nil {
		return newConnectionError(err)
	}
	req.URL.RawQuery = query.Encode()
	req.Header = h.header.Clone()

	res, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("storage request failed",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return newConnectionError(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		storageErr := newResponseError(res)
		h.logger.Warn("storage request rejected",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.Int("status", res.StatusCode),
			slog.String("message", storageErr.Message),
			slog.Duration("duration", time.Since(start)),
		)
		return storageErr
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return newConnectionError(fmt.Errorf("reading response: %w", err))
	}

	h.logger.Debug("storage request completed",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("status", res.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Duration("duration", time.Since(start)),
	)

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return newConnectionError(fmt.Errorf("decoding response: %w", err))
	}

	return nil
}
