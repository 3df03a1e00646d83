package refresher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultRefreshPath is the token refresh endpoint relative to the API base URL.
const DefaultRefreshPath = "/gateway/ng/api/user/refreshToken"

// TokenClient obtains a fresh session token.
type TokenClient interface {
	RefreshToken(ctx context.Context, accountID string) (string, error)
}

// TokenClientFunc adapts a function to TokenClient.
type TokenClientFunc func(ctx context.Context, accountID string) (string, error)

// RefreshToken implements TokenClient.
func (f TokenClientFunc) RefreshToken(ctx context.Context, accountID string) (string, error) {
	return f(ctx, accountID)
}

// HTTPTokenClient calls the refresh endpoint through an http.Client.
// Authentication headers and response interception are the client's
// transport concern.
type HTTPTokenClient struct {
	client  *http.Client
	baseURL string
	path    string
}

// NewHTTPTokenClient creates a token client. An empty path uses DefaultRefreshPath.
func NewHTTPTokenClient(client *http.Client, baseURL, path string) *HTTPTokenClient {
	if client == nil {
		client = http.DefaultClient
	}
	if path == "" {
		path = DefaultRefreshPath
	}
	return &HTTPTokenClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    "/" + strings.TrimLeft(path, "/"),
	}
}

type refreshResponse struct {
	Status   string `json:"status"`
	Resource string `json:"resource"`
}

// RefreshToken implements TokenClient.
func (c *HTTPTokenClient) RefreshToken(ctx context.Context, accountID string) (string, error) {
	if accountID == "" {
		return "", ErrNoAccount
	}

	u := c.baseURL + c.path + "?" + url.Values{"routingId": {accountID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrRefreshFailed, resp.StatusCode)
	}

	var body refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode: %w", ErrRefreshFailed, err)
	}
	if body.Resource == "" {
		return "", ErrEmptyToken
	}
	return body.Resource, nil
}
