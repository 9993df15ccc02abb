// Package party provides customer/supplier lookup against the parties
// service, including the walk-in customer sentinel used for anonymous
// retail sales.
package party

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kiranalabs/lib-billing/billing"
)

// WalkInID is the sentinel id of the anonymous walk-in customer. A
// walk-in counts as a selected party but is submitted with a null party
// reference.
const WalkInID = "walk-in"

// Party is a customer or supplier.
type Party struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// WalkIn returns the anonymous walk-in party, optionally carrying a
// display name captured at the counter.
func WalkIn(name string) Party {
	if strings.TrimSpace(name) == "" {
		name = "Walk-in Customer"
	}

	return Party{ID: WalkInID, Name: name}
}

// IsWalkIn reports whether the party is the walk-in sentinel.
func (p Party) IsWalkIn() bool {
	return p.ID == WalkInID
}

const defaultTimeout = 10 * time.Second

// Config configures the parties client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the parties service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a parties client from config.
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

// Search returns parties matching the query.
func (c *Client) Search(ctx context.Context, query string) ([]Party, error) {
	endpoint := fmt.Sprintf("%s/parties?search=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, billing.WrapDomainError(billing.ErrorResolutionFailed, "parties", "build party search request", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, billing.WrapDomainError(billing.ErrorResolutionFailed, "parties", "party search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, billing.NewDomainError(billing.ErrorResolutionFailed, "parties",
			fmt.Sprintf("party search: unexpected status %d", resp.StatusCode))
	}

	var parties []Party
	if err := json.NewDecoder(resp.Body).Decode(&parties); err != nil {
		return nil, billing.WrapDomainError(billing.ErrorResolutionFailed, "parties", "decode party search", err)
	}

	return parties, nil
}
