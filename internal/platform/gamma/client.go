// Package gamma is the REST client for the Polymarket Gamma API, used to map
// outcome-token asset ids to market questions and outcome labels.
package gamma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/alanyoungcy/polymirror/internal/domain"
)

// Client is the Gamma API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetMarketByToken looks up the market that lists assetID among its outcome
// tokens and returns its question plus the matching outcome label. An empty
// result list maps to domain.ErrNotFound.
func (c *Client) GetMarketByToken(ctx context.Context, assetID string) (domain.MarketMetadata, error) {
	params := url.Values{}
	params.Set("clob_token_ids_in", assetID)

	path := "/markets?" + params.Encode()

	body, err := c.doGet(ctx, path)
	if err != nil {
		return domain.MarketMetadata{}, fmt.Errorf("gamma: get market by token: %w", err)
	}

	var markets []APIMarket
	if err := json.Unmarshal(body, &markets); err != nil {
		return domain.MarketMetadata{}, fmt.Errorf("gamma: decode markets: %w", err)
	}
	if len(markets) == 0 {
		return domain.MarketMetadata{}, fmt.Errorf("gamma: %w: token=%s", domain.ErrNotFound, assetID)
	}

	return markets[0].ToMetadata(assetID), nil
}

// doGet sends an unauthenticated GET request to the Gamma API.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
