package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// TokenHeader is the header the backend reads the session token from.
	TokenHeader = "token"

	successCode = "200"

	defaultTimeout = 10 * time.Second
)

// Client is the transport collaborator: it performs authenticated JSON
// exchanges against the TomatoMall API and unwraps the response envelope at
// the depth declared by each caller.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenProvider
	log     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTokenProvider injects the session token source.
func WithTokenProvider(tp TokenProvider) Option {
	return func(c *Client) { c.tokens = tp }
}

// WithLogger replaces the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTimeout bounds every request made by the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    NewHTTPClient(defaultTimeout),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// HTTPClient exposes the underlying http.Client for collaborators that talk
// to hosts outside the API root (e.g. the payment gateway hand-off).
func (c *Client) HTTPClient() *http.Client { return c.http }

// Do performs one request/response exchange. body is JSON-encoded when
// non-nil, out is filled from the unwrapped payload when non-nil. A non-2xx
// status yields a *StatusError, an envelope code other than "200" yields a
// *APIError, and a missing payload where one is expected yields a
// *MalformedResponseError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}, unwrap Unwrap) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.New().String())

	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil && !errors.Is(err, ErrNoToken) {
			return fmt.Errorf("resolve session token: %w", err)
		}
		if token != "" {
			req.Header.Set(TokenHeader, token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Msg: serverMessage(raw)}
	}

	if unwrap == UnwrapNone {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return Malformed("decode body: %v", err)
		}
		return nil
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Malformed("decode envelope: %v", err)
	}
	if env.Code != "" && env.Code != successCode {
		return &APIError{Code: env.Code, Msg: env.Msg}
	}

	if out == nil {
		return nil
	}

	payload, err := env.payload(unwrap)
	if err != nil {
		return err
	}
	if payload == nil {
		return Malformed("response payload missing")
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return Malformed("decode payload: %v", err)
	}
	return nil
}

// serverMessage best-effort extracts the envelope msg from an error body.
func serverMessage(raw []byte) string {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Msg != "" {
		return env.Msg
	}
	return ""
}
