// Package fetch pulls raw listings from the ops backend. It returns
// untyped payloads; turning them into records is the job of the model
// package.
package fetch

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

	"github.com/user/podboard/internal/model"
	"github.com/user/podboard/internal/session"
)

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 32 * 1024 * 1024

// DefaultTimeout applies when no HTTP client is supplied.
const DefaultTimeout = 30 * time.Second

// ErrNoAPI is returned when the session names no backend.
var ErrNoAPI = errors.New("no backend configured (set PODBOARD_API or use --url with an absolute URL)")

// ErrUnexpectedShape is returned when a listing is neither an array nor a
// {"data": [...]} envelope.
var ErrUnexpectedShape = errors.New("unexpected listing shape")

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Detail     string `json:"error"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Detail
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, msg)
}

// IsUnauthorized reports whether err is a 401 or 403 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// Client talks to the backend on behalf of one session.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for sess. httpClient may be nil.
func NewClient(sess *session.Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	c := &Client{httpClient: httpClient}
	if sess != nil {
		c.baseURL = strings.TrimRight(sess.APIBase, "/")
		c.token = sess.Token
	}
	return c
}

// resolve turns path into a request URL. Absolute URLs are used as given.
func (c *Client) resolve(path string) (string, error) {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path, nil
	}
	if c.baseURL == "" {
		return "", ErrNoAPI
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path, nil
}

// GetPayloads fetches a listing and returns its elements as payloads.
// Both a bare JSON array and a {"data": [...]} envelope are accepted.
func (c *Client) GetPayloads(ctx context.Context, path string) ([]model.Payload, error) {
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	return DecodeListing(body)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	requestURL, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return body, nil
	}

	apiErr := &APIError{}
	// Non-JSON error bodies keep the raw text.
	if jsonErr := json.Unmarshal(body, apiErr); jsonErr != nil {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	apiErr.StatusCode = response.StatusCode
	return nil, apiErr
}

// DecodeListing parses a listing body into payloads.
func DecodeListing(body []byte) ([]model.Payload, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnexpectedShape)
	}

	switch body[0] {
	case '[':
		var items []model.Payload
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		return nonNil(items), nil
	case '{':
		var envelope struct {
			Data *[]model.Payload `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		if envelope.Data == nil {
			return nil, fmt.Errorf("%w: object without a data array", ErrUnexpectedShape)
		}
		return nonNil(*envelope.Data), nil
	}
	return nil, fmt.Errorf("%w: body is not a JSON array or object", ErrUnexpectedShape)
}

func nonNil(items []model.Payload) []model.Payload {
	if items == nil {
		return []model.Payload{}
	}
	return items
}
