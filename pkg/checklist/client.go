package checklist

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

	"github.com/dshills/flowcanvas/pkg/storage"
	"go.uber.org/zap"
)

// TokenKey is the credential store key holding the API bearer token
const TokenKey = "api_token"

// DefaultTimeout bounds every REST call
const DefaultTimeout = 30 * time.Second

// Repository is the checklist REST collaborator
type Repository interface {
	GetChecklist(ctx context.Context, id string) (*Checklist, error)
	GetPlatformChecklist(ctx context.Context, id string) (*Checklist, error)
	CreatePlatformChecklist(ctx context.Context, c *Checklist) (*Checklist, error)
	UpdatePlatformChecklist(ctx context.Context, id string, c *Checklist) (*Checklist, error)
}

// NetworkError reports a failed REST call. Calls are never retried.
type NetworkError struct {
	Op         string
	StatusCode int // 0 when no response arrived
	Err        error
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is or wraps a NetworkError
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// ClientConfig holds configuration for the REST client
type ClientConfig struct {
	BaseURL string
	Headers map[string]string
	Timeout time.Duration
	// Credentials supplies the bearer token under TokenKey; optional
	Credentials storage.KeyValueStore
	Logger      *zap.Logger
}

// Client talks JSON to the checklist REST service
type Client struct {
	baseURL     string
	headers     map[string]string
	httpClient  *http.Client
	credentials storage.KeyValueStore
	logger      *zap.Logger
}

// NewClient creates a REST client
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL cannot be empty")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid BaseURL: %w", err)
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		headers:     config.Headers,
		credentials: config.Credentials,
		logger:      logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// GetChecklist fetches a published checklist
func (c *Client) GetChecklist(ctx context.Context, id string) (*Checklist, error) {
	var out Checklist
	if err := c.do(ctx, http.MethodGet, "/checklists/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPlatformChecklist fetches an editable platform checklist
func (c *Client) GetPlatformChecklist(ctx context.Context, id string) (*Checklist, error) {
	var out Checklist
	if err := c.do(ctx, http.MethodGet, "/platform_checklists/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePlatformChecklist posts a new platform checklist
func (c *Client) CreatePlatformChecklist(ctx context.Context, cl *Checklist) (*Checklist, error) {
	var out Checklist
	if err := c.do(ctx, http.MethodPost, "/platform_checklists", cl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePlatformChecklist overwrites a platform checklist. Last write wins.
func (c *Client) UpdatePlatformChecklist(ctx context.Context, id string, cl *Checklist) (*Checklist, error) {
	var out Checklist
	if err := c.do(ctx, http.MethodPut, "/platform_checklists/"+url.PathEscape(id), cl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends one JSON request and decodes the response into out. An empty
// response body leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		reqJSON, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(reqJSON)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.headers {
		httpReq.Header.Set(key, value)
	}
	if token := c.token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("request failed", zap.String("op", op), zap.Error(err))
		return &NetworkError{Op: op, Err: err}
	}
	defer func() {
		if err := httpResp.Body.Close(); err != nil {
			c.logger.Debug("failed to close response body", zap.Error(err))
		}
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &NetworkError{Op: op, StatusCode: httpResp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		c.logger.Error("request rejected",
			zap.String("op", op),
			zap.Int("status", httpResp.StatusCode))
		return &NetworkError{
			Op:         op,
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("%s (body: %s)", httpResp.Status, strings.TrimSpace(string(respBody))),
		}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &NetworkError{Op: op, StatusCode: httpResp.StatusCode, Err: fmt.Errorf("failed to unmarshal response: %w", err)}
	}
	return nil
}

// token reads the bearer token, treating a missing credential as anonymous
func (c *Client) token() string {
	if c.credentials == nil {
		return ""
	}
	data, err := c.credentials.Get(TokenKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.Warn("failed to read API token", zap.Error(err))
		}
		return ""
	}
	return strings.TrimSpace(string(data))
}
