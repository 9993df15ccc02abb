package calc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranalabs/lib-billing/billing"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestClientCalculateRoundTrip(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/calculate", r.URL.Path)

		var request Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		require.Len(t, request.Products, 1)
		assert.Equal(t, "Rice", request.Products[0].Name)
		assert.Nil(t, request.CustomerID)
		assert.Equal(t, []string{"offer-9"}, request.ExcludedOffers)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"products": [{"id":"row-1","name":"Rice","qty":2,"price":50,"productId":"p-rice","isFree":false}],
			"totals": {"sub":100,"disc":0,"total":100},
			"appliedOffers": [],
			"availableOffers": [{"id":"offer-1","desc":"Buy 2 Get 1 Free"}]
		}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	response, err := client.Calculate(context.Background(), Request{
		Products: []Item{
			{ID: "row-1", Name: "Rice", Quantity: dec("2"), Price: dec("50"), ProductID: "p-rice"},
		},
		Date:           "2026-08-31",
		ExcludedOffers: []string{"offer-9"},
	})
	require.NoError(t, err)

	assert.True(t, response.Totals.Sub.Equal(dec("100")))
	assert.True(t, response.Totals.Total.Equal(dec("100")))
	require.Len(t, response.AvailableOffers, 1)
	assert.Equal(t, "offer-1", response.AvailableOffers[0].ID)
}

func TestClientCalculateFailureIsCalculationError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	_, err := client.Calculate(context.Background(), Request{})
	require.Error(t, err)

	var domainErr billing.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, billing.ErrorCalculationFailed, domainErr.Code)
}

func TestClientCalculateIdempotent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"products": [],
			"totals": {"sub":200,"disc":20,"total":180},
			"appliedOffers": [{"id":"offer-1","desc":"10% off","value":20}],
			"availableOffers": []
		}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	request := Request{
		Products:       []Item{{ID: "row-1", Name: "Rice", Quantity: dec("4"), Price: dec("50"), ProductID: "p-rice"}},
		Date:           "2026-08-31",
		ExcludedOffers: []string{},
	}

	first, err := client.Calculate(context.Background(), request)
	require.NoError(t, err)

	second, err := client.Calculate(context.Background(), request)
	require.NoError(t, err)

	assert.True(t, first.Totals.Sub.Equal(second.Totals.Sub))
	assert.True(t, first.Totals.Disc.Equal(second.Totals.Disc))
	assert.True(t, first.Totals.Total.Equal(second.Totals.Total))
}
