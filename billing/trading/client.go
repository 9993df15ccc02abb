package trading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kiranalabs/lib-billing/billing"
)

const defaultTimeout = 15 * time.Second

// Config configures the trading transaction client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client persists transactions through the trading service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a trading client from config.
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

// CreateTransaction persists a new transaction and returns the record
// with its server-assigned id.
func (c *Client) CreateTransaction(ctx context.Context, payload Payload) (Transaction, error) {
	return c.send(ctx, http.MethodPost, c.baseURL+"/transactions", payload)
}

// UpdateTransaction replaces an existing transaction.
func (c *Client) UpdateTransaction(ctx context.Context, id string, payload Payload) (Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return Transaction{}, billing.NewDomainError(billing.ErrorInvalidInput, "id", "transaction id is required")
	}

	return c.send(ctx, http.MethodPut, fmt.Sprintf("%s/transactions/%s", c.baseURL, url.PathEscape(id)), payload)
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload Payload) (Transaction, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Transaction{}, billing.WrapDomainError(billing.ErrorSubmissionFailed, "", "encode transaction", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return Transaction{}, billing.WrapDomainError(billing.ErrorSubmissionFailed, "", "build request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Transaction{}, billing.WrapDomainError(billing.ErrorSubmissionFailed, "", "save transaction", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Transaction{}, billing.NewDomainError(billing.ErrorSubmissionFailed, "",
			fmt.Sprintf("save transaction: %s", readServerError(resp.Body, resp.StatusCode)))
	}

	var record Transaction
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return Transaction{}, billing.WrapDomainError(billing.ErrorSubmissionFailed, "", "decode transaction", err)
	}

	return record, nil
}

// readServerError surfaces the service error message verbatim when the
// body carries one, otherwise the bare status code.
func readServerError(body io.Reader, status int) string {
	var serverError struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	if err := json.NewDecoder(body).Decode(&serverError); err == nil {
		if serverError.Error != "" {
			return serverError.Error
		}

		if serverError.Message != "" {
			return serverError.Message
		}
	}

	return fmt.Sprintf("unexpected status %d", status)
}
