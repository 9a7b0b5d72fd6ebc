// Package client implements the HTTP client for the MiniDeN webchat backend.
// It wraps the four REST endpoints the support widget consumes: session
// start, message polling, message submit, and the read-only FAQ tree.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds every backend call. The web widget relies on the
// browser's defaults; here we pick an explicit ceiling.
const DefaultTimeout = 10 * time.Second

// Client is a thin typed wrapper around the webchat REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Opts holds parameters for creating a Client.
type Opts struct {
	BaseURL    string
	Timeout    time.Duration // defaults to DefaultTimeout
	HTTPClient *http.Client  // optional; overrides Timeout when set
}

// New creates a Client.
func New(opts Opts) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("client: base url is required")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("client: parse base url %q: %w", opts.BaseURL, err)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
	}, nil
}

// BaseURL returns the normalized backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doJSON issues a request and decodes a JSON response body into out (when
// out is non-nil). Non-2xx responses are returned as errors; the body is
// drained either way so connections can be reused.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("client: %s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// An empty or truncated body is treated as an empty payload, not a
		// failure. The widget fills in defaults for missing fields.
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

func escapeQuery(v string) string {
	return url.QueryEscape(v)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
