package sipclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/bytedance/sonic"
)

const (
	defaultTimeout   = 15 * time.Second
	maxReadAttempts  = 3
	initialReadDelay = 200 * time.Millisecond
	maxReadDelay     = 2 * time.Second
)

// Credentials authenticate one call. Every method takes them explicitly so
// callers never depend on ambient session state.
type Credentials struct {
	AccessToken string
}

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sip api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("sip api: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// IsValidation reports a 400 carrying per-field messages
func (e *APIError) IsValidation() bool {
	return e.StatusCode == http.StatusBadRequest && len(e.Fields) > 0
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *APIError) IsForbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

// AsAPIError unwraps err into an *APIError
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	readDelay  time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetryDelay sets the first backoff step for retried reads
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.readDelay = d
	}
}

// New returns a client for the API mounted at baseURL, e.g. http://host/api/v1
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		readDelay:  initialReadDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get retries transport failures and 5xx answers. Client errors are returned at once.
func (c *Client) get(ctx context.Context, path string, creds *Credentials, out interface{}) error {
	return retry.Do(
		func() error {
			return c.do(ctx, http.MethodGet, path, creds, nil, out)
		},
		retry.Context(ctx),
		retry.Attempts(maxReadAttempts),
		retry.Delay(c.readDelay),
		retry.MaxDelay(maxReadDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
	)
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}

func (c *Client) do(ctx context.Context, method, path string, creds *Credentials, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := sonic.ConfigStd.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, creds, out)
}

func (c *Client) send(req *http.Request, creds *Credentials, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	if creds != nil && creds.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", req.Method, req.URL.Path, err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := sonic.ConfigStd.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: env.Message}
		if len(env.Error) > 0 {
			var fields map[string]string
			if sonic.ConfigStd.Unmarshal(env.Error, &fields) == nil && len(fields) > 0 {
				apiErr.Fields = fields
			}
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := sonic.ConfigStd.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
