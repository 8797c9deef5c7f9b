// Package token talks to the credibuy token endpoints.
//
// Requests here must never go through the authenticated transport: a 401 from
// the refresh endpoint would otherwise trigger another refresh.
package token

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/credibuy-console/api"
	"github.com/jrsteele09/credibuy-console/internal/errors"
)

const (
	ObtainPath  = "/token/"
	RefreshPath = "/token/refresh/"
)

type Client struct {
	api *api.Client
}

// NewClient returns a token client. apiClient must be built on an unauthenticated http.Client.
func NewClient(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

// Obtain exchanges credentials for an access/refresh pair.
// A 400 or 401 answer is reported as ErrInvalidCredentials.
func (c *Client) Obtain(ctx context.Context, email, password string) (*Pair, error) {
	var pair Pair
	_, err := c.api.Post(ctx, ObtainPath, ObtainRequest{Email: email, Password: password}, &pair)
	if err != nil {
		var statusErr *errors.StatusError
		if errors.As(err, &statusErr) &&
			(statusErr.StatusCode == http.StatusBadRequest || statusErr.StatusCode == http.StatusUnauthorized) {
			return nil, fmt.Errorf("%w: %w", errors.ErrInvalidCredentials, err)
		}
		return nil, err
	}
	if pair.Access == "" || pair.Refresh == "" {
		return nil, fmt.Errorf("token: login response is missing a token")
	}
	return &pair, nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	var resp RefreshResponse
	if _, err := c.api.Post(ctx, RefreshPath, RefreshRequest{Refresh: refreshToken}, &resp); err != nil {
		return "", err
	}
	if resp.Access == "" {
		return "", fmt.Errorf("token: refresh response has no access token")
	}
	return resp.Access, nil
}
