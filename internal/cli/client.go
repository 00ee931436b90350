package cli

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
)

const apiPrefix = "/api/v1"

// Client talks to the stroop JSON API as one user
type Client struct {
	server string
	userID string
	calls  *http.Client
	stream *http.Client // no timeout, event streams stay open
}

// NewClient creates a client acting as userID. An empty userID sends
// anonymous requests, which only the user and health endpoints accept.
func NewClient(server, userID string) *Client {
	return &Client{
		server: strings.TrimSuffix(server, "/"),
		userID: userID,
		calls:  &http.Client{Timeout: 30 * time.Second},
		stream: &http.Client{},
	}
}

// APIError is an error body returned by the server
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// IsCode reports whether err is an API error with the given code
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// request builds a call against the server. Identity travels as a bearer
// user id.
func (c *Client) request(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.server+path, payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != "" {
		req.Header.Set("Authorization", "Bearer "+c.userID)
	}
	return req, nil
}

// decodeError turns a failed response into an *APIError when the body
// carries one
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	var body struct {
		Error APIError `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Code != "" {
		body.Error.Status = resp.StatusCode
		return &body.Error
	}
	return &APIError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode), Message: strings.TrimSpace(string(raw))}
}

// Call sends a JSON request and decodes the JSON reply into result
func (c *Client) Call(method, path string, body, result any) error {
	req, err := c.request(context.Background(), method, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.calls.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Get calls a path under /api/v1
func (c *Client) Get(path string, result any) error {
	return c.Call(http.MethodGet, apiPrefix+path, nil, result)
}

// Post calls a path under /api/v1
func (c *Client) Post(path string, body, result any) error {
	return c.Call(http.MethodPost, apiPrefix+path, body, result)
}

// Room scopes requests to one room code
func (c *Client) Room(code string) *RoomClient {
	return &RoomClient{client: c, base: "/rooms/" + url.PathEscape(code)}
}

// RoomClient issues requests under /api/v1/rooms/{code}
type RoomClient struct {
	client *Client
	base   string
}

// Get fetches a room resource; an empty suffix is the room itself
func (r *RoomClient) Get(suffix string, result any) error {
	return r.client.Get(r.base+suffix, result)
}

// Post acts on a room resource
func (r *RoomClient) Post(suffix string, body, result any) error {
	return r.client.Post(r.base+suffix, body, result)
}

// Stream opens the room's server-sent event stream. The caller closes the body.
func (r *RoomClient) Stream(ctx context.Context) (*http.Response, error) {
	req, err := r.client.request(ctx, http.MethodGet, apiPrefix+r.base+"/events", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := r.client.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		return nil, decodeError(resp)
	}
	return resp, nil
}
