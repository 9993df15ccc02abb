package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/kiranalabs/lib-billing/billing"
)

const defaultTimeout = 10 * time.Second

// Config configures the trading-service catalog client.
type Config struct {
	// BaseURL is the trading service root, e.g. http://trading:8080/trading.
	BaseURL string
	// Timeout bounds each request. Zero means the default.
	Timeout time.Duration
	// HTTPClient overrides the transport; mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the trading service product endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a catalog client from config.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}

		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
	}
}

// ListProducts fetches the full catalog, sorted alphabetically by name.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.getJSON(ctx, c.baseURL+"/products", &products); err != nil {
		return nil, billing.WrapDomainError(billing.ErrorResolutionFailed, "products", "list products", err)
	}

	sort.Slice(products, func(i, j int) bool {
		return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
	})

	return products, nil
}

// ProductHistory fetches the recent sales/purchases of a product together
// with the recommended price derived from them.
func (c *Client) ProductHistory(ctx context.Context, productID string) (History, error) {
	if strings.TrimSpace(productID) == "" {
		return History{}, billing.NewDomainError(billing.ErrorInvalidInput, "productId", "product id is required")
	}

	var history History

	endpoint := fmt.Sprintf("%s/products/%s/transactions", c.baseURL, url.PathEscape(productID))
	if err := c.getJSON(ctx, endpoint, &history); err != nil {
		return History{}, billing.WrapDomainError(billing.ErrorResolutionFailed, "productId", "product history", err)
	}

	return history, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
