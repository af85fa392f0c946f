package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Requester performs one call against the backend and returns the raw body
// of a 2xx response. *Client implements it; collections depend on it.
type Requester interface {
	Do(ctx context.Context, call Call) ([]byte, error)
}

// Ensure Client implements Requester at compile time.
var _ Requester = (*Client)(nil)

// Authorization schemes.
const (
	SchemeBearer = "bearer"
	SchemeRaw    = "raw"
)

// Call describes one HTTP request.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	// Payload is sent as the body when non-nil.
	Payload *Payload
	// Multipart forces multipart encoding even without files.
	Multipart bool
	// Group selects the Authorization scheme.
	Group string
	// Anonymous suppresses the Authorization header.
	Anonymous bool
}

// Options configure a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	SchemeFor func(group string) string
	Logger    *zap.Logger
	// HTTPClient overrides the default transport.
	HTTPClient *http.Client
}

// Client talks to the booking backend.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	schemeFor func(group string) string
	logger    *zap.Logger

	mu    sync.RWMutex
	token string
}

const (
	defaultBaseURL   = "http://127.0.0.1:8000/api/v1"
	defaultUserAgent = "busadmin/0.1"
	requestTimeout   = 15 * time.Second
	maxErrorBody     = 1 << 20
)

// NewClient builds a Client for the given options.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = requestTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	schemeFor := opts.SchemeFor
	if schemeFor == nil {
		schemeFor = func(string) string { return SchemeBearer }
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   base,
		http:      httpClient,
		userAgent: defaultUserAgent,
		schemeFor: schemeFor,
		logger:    logger.Named("api"),
	}, nil
}

// SetToken replaces the credential attached to authenticated calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = strings.TrimSpace(token)
	c.mu.Unlock()
}

// Token returns the current credential.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do executes call and returns the body of a 2xx response. Failures are a
// *NetworkError, *ValidationError or *ServerError.
func (c *Client) Do(ctx context.Context, call Call) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	method := call.Method
	if method == "" {
		method = http.MethodGet
	}

	reqURL := c.resolve(call.Path, call.Query)

	var body encodedBody
	if call.Payload != nil {
		var err error
		if call.Multipart || call.Payload.HasFiles() {
			body, err = encodeMultipart(*call.Payload)
		} else {
			body, err = encodeJSON(*call.Payload)
		}
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body.reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body.contentType != "" {
		req.Header.Set("Content-Type", body.contentType)
	}
	if !call.Anonymous {
		if header := c.authorization(call.Group); header != "" {
			req.Header.Set("Authorization", header)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", call.Path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("request",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", call.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		apiErr := parseErrorBody(resp.StatusCode, data)
		c.logger.Info("request rejected",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", call.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("error", apiErr.Error()),
		)
		return nil, apiErr
	}
	return data, nil
}

func (c *Client) authorization(group string) string {
	token := c.Token()
	if token == "" {
		return ""
	}
	if c.schemeFor(group) == SchemeRaw {
		return token
	}
	return "Bearer " + token
}

// resolve joins path onto the base URL, keeping the base path prefix.
func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
