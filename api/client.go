// Package api is a small JSON client for the credibuy REST API.
//
// It knows nothing about authentication: the *http.Client it is given decides
// that. The console wires it with transport.Transport for domain calls and
// with a plain client for the token endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/credibuy-console/internal/errors"
)

// maxErrorBody bounds how much of an error response is kept on StatusError.
const maxErrorBody = 4 << 10

const contentTypeJSON = "application/json"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client rooted at baseURL, e.g. "https://api.credibuy.co".
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api.New: invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api.New: base url %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: httpClient,
	}, nil
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends in as JSON (when non-nil) and decodes a 2xx body into out (when non-nil).
// The returned status code is set whenever a response was received.
// Non-2xx answers come back as *errors.StatusError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out any) (int, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("api %s %s: encode body: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, fmt.Errorf("api %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &errors.StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("api %s %s: decode response: %w", method, path, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	_, err := c.Do(ctx, http.MethodGet, path, query, nil, out)
	return err
}

func (c *Client) Post(ctx context.Context, path string, in, out any) (int, error) {
	return c.Do(ctx, http.MethodPost, path, nil, in, out)
}

func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	_, err := c.Do(ctx, http.MethodPatch, path, nil, in, out)
	return err
}
