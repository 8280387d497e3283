package plandy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Client talks to the Plandy HTTP API. It is stateless with respect to
// domain data; the only mutable state is the bearer token, which login and
// register set and logout or a 401 clear.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	stream    *http.Client
	userAgent string

	mu    sync.Mutex
	token string
}

const (
	defaultAPIBase   = "http://127.0.0.1:8000/api"
	defaultUserAgent = "flandy/0.1"
	requestTimeout   = 10 * time.Second
	healthTimeout    = 3 * time.Second
)

// NewClient builds a Client for the given API base address. The address may
// include a path prefix (e.g. http://host:8000/api) which is preserved.
func NewClient(apiBase string) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		// Chat streams stay open for as long as the model takes to answer,
		// so the streaming client carries no overall timeout. Cancellation
		// happens through the request context.
		stream:    &http.Client{},
		userAgent: defaultUserAgent,
	}, nil
}

// SetToken installs a bearer token obtained elsewhere (e.g. a persisted
// session from a previous run).
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the currently stored bearer token, empty when logged out.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) clearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

// Health reports whether the backend answers its liveness endpoint. All
// failures collapse to false; this call never returns an error.
func (c *Client) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	reqURL := c.endpoint("/health", nil)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// do performs one request against the API and decodes the envelope's data
// payload into dest (which may be nil when the caller only cares about
// success). All failure paths map to the typed errors in errors.go.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	return c.decodeResponse(resp, dest)
}

// decodeResponse interprets the response envelope per the backend contract.
func (c *Client) decodeResponse(resp *http.Response, dest any) error {
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if !env.Success {
			if msg := strings.TrimSpace(env.Message); msg != "" {
				return fmt.Errorf("%w: %s", ErrRequestFailed, msg)
			}
			return ErrRequestFailed
		}
		if dest == nil || len(env.Data) == 0 || string(env.Data) == "null" {
			return nil
		}
		if err := json.Unmarshal(env.Data, dest); err != nil {
			return fmt.Errorf("decode data payload: %w", err)
		}
		return nil

	case http.StatusUnauthorized:
		// Session expiry is observable as a cleared token regardless of
		// which call tripped it.
		c.clearToken()
		return ErrSessionExpired

	case http.StatusUnprocessableEntity:
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return &ValidationError{}
		}
		return &ValidationError{Fields: env.Errors}

	default:
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(text)}
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// endpoint joins the base URL's path prefix with the endpoint path.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// classifyTransportError separates "backend unreachable" from everything
// else so callers can show a dedicated connectivity notice.
func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("execute request: %w", err)
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base %q: %w", apiBase, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
