package party

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranalabs/lib-billing/billing"
)

func TestWalkIn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		given    string
		wantName string
	}{
		{name: "default name", given: "", wantName: "Walk-in Customer"},
		{name: "whitespace falls back", given: "   ", wantName: "Walk-in Customer"},
		{name: "captured name kept", given: "Counter 2", wantName: "Counter 2"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := WalkIn(tt.given)

			assert.Equal(t, WalkInID, p.ID)
			assert.Equal(t, tt.wantName, p.Name)
			assert.True(t, p.IsWalkIn())
		})
	}
}

func TestIsWalkIn(t *testing.T) {
	t.Parallel()

	assert.False(t, Party{ID: "party-1", Name: "Anita Stores"}.IsWalkIn())
	assert.True(t, Party{ID: WalkInID}.IsWalkIn())
}

func TestClientSearch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/parties", r.URL.Path)
		require.Equal(t, "ani", r.URL.Query().Get("search"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"party-1","name":"Anita Stores","phone":"9876543210"}]`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	parties, err := client.Search(context.Background(), "ani")
	require.NoError(t, err)

	require.Len(t, parties, 1)
	assert.Equal(t, "party-1", parties[0].ID)
	assert.Equal(t, "Anita Stores", parties[0].Name)
}

func TestClientSearchBadBaseURL(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{BaseURL: "://not-a-url"})

	_, err := client.Search(context.Background(), "ani")
	require.Error(t, err)

	var domainErr billing.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, billing.ErrorResolutionFailed, domainErr.Code)
	assert.Equal(t, "parties", domainErr.Field)
}

func TestClientSearchServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	_, err := client.Search(context.Background(), "ani")
	require.Error(t, err)
}
