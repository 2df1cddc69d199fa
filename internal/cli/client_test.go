package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendsBodyAndIdempotencyKey(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"balance": 12.5}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	out, err := c.BuyCar(context.Background(), "biz 1", 2, "key-1")
	require.NoError(t, err)
	assert.Equal(t, 12.5, out["balance"])
	assert.Equal(t, "/v1/businesses/biz 1/cars", gotPath)
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, 2.0, gotBody["car"])
}

func TestClientReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"missing materials: Wood x30","total_cost":300}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).StartConstruction(context.Background(), "b", 0, false, "")
	require.Error(t, err)
	require.True(t, IsAPIError(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "missing materials: Wood x30", apiErr.Message)
	assert.Equal(t, 300.0, apiErr.Body["total_cost"])
}

func TestClientTransportErrorIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Click(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, IsAPIError(err))
}

func TestIsRejection(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&APIError{Status: http.StatusBadRequest}, true},
		{&APIError{Status: http.StatusConflict}, true},
		{fmt.Errorf("wrapped: %w", &APIError{Status: http.StatusNotFound}), true},
		{&APIError{Status: http.StatusTooManyRequests}, false},
		{&APIError{Status: http.StatusRequestTimeout}, false},
		{&APIError{Status: http.StatusBadGateway}, false},
		{errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsRejection(tc.err), tc.err.Error())
	}
}
