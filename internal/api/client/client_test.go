package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		c, err := NewClient(nil)
		require.NoError(t, err)
		assert.Equal(t, ProdBaseURL, c.baseURL)
		assert.Equal(t, DefaultTimeout, c.timeout)
	})

	t.Run("normalizes the base URL to scheme and host", func(t *testing.T) {
		c, err := NewClient(&Options{
			BaseURL: "http://localhost:5173/some/path",
			APIKey:  "pb-key",
			Timeout: 5 * time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5173", c.baseURL)
		assert.Equal(t, "pb-key", c.apiKey)
		assert.Equal(t, 5*time.Second, c.timeout)
	})

	t.Run("rejects an unparseable base URL", func(t *testing.T) {
		_, err := NewClient(&Options{BaseURL: "://bad"})
		assert.Error(t, err)
	})
}

func TestGenerateBulkCap(t *testing.T) {
	c, err := NewClient(&Options{BaseURL: LocalBaseURL})
	require.NoError(t, err)

	payloads := make([]GenerationPayload, MaxBatchSize+1)
	for i := range payloads {
		payloads[i] = GenerationPayload{ID: uint(i + 1), Name: fmt.Sprintf("Item %d", i+1)}
	}

	// The cap is enforced before any request is built, so no server is needed.
	_, err = c.GenerateBulk(context.Background(), payloads)
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{name: "401 maps to ErrUnauthorized", status: 401, sentinel: ErrUnauthorized},
		{name: "402 maps to ErrInsufficientCredits", status: 402, sentinel: ErrInsufficientCredits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := error(&APIError{Status: tt.status, Body: "denied"})
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Contains(t, err.Error(), fmt.Sprint(tt.status))
		})
	}

	t.Run("other statuses map to no sentinel", func(t *testing.T) {
		err := error(&APIError{Status: 500})
		assert.False(t, errors.Is(err, ErrUnauthorized))
		assert.False(t, errors.Is(err, ErrInsufficientCredits))

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 500, apiErr.Status)
	})
}
