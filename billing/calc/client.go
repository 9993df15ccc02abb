package calc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kiranalabs/lib-billing/billing"
)

const defaultTimeout = 10 * time.Second

// Config configures the calculator client.
type Config struct {
	// BaseURL is the smart-ops service root.
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client posts calculation requests to the smart-ops service.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// NewClient creates a calculator client from config.
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
		tracer:  otel.Tracer("billing/calc"),
	}
}

// Calculate submits the current items, customer, date, and exclusions and
// returns the calculator verdict. Failures are calculation errors: the
// caller keeps prior totals on display and retries on the next edit.
func (c *Client) Calculate(ctx context.Context, request Request) (Response, error) {
	ctx, span := c.tracer.Start(ctx, "calc.Calculate",
		trace.WithAttributes(
			attribute.Int("billing.items", len(request.Products)),
			attribute.Int("billing.excluded_offers", len(request.ExcludedOffers)),
		),
	)
	defer span.End()

	response, err := c.post(ctx, request)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Response{}, billing.WrapDomainError(billing.ErrorCalculationFailed, "", "calculate transaction", err)
	}

	return response, nil
}

func (c *Client) post(ctx context.Context, request Request) (Response, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/calculate", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}

	return response, nil
}
