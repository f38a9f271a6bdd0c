package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jjmcli/internal/config"
	apperrors "jjmcli/internal/errors"
	"jjmcli/internal/shared/testutil"
)

func testClient(t *testing.T, serverURL string, retries int) *Client {
	logger, _ := testutil.NewTestLogger(t)
	client := NewClient(config.IngestionConfig{
		BaseURL:           serverURL,
		Timeout:           5 * time.Second,
		RetryAttempts:     retries,
		RequestsPerSecond: 1000,
		FetchConcurrency:  4,
	}, logger)
	client.sleep = func(time.Duration) {}
	return client
}

func TestClient_FetchDistrict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/household_coverage", r.URL.Path)
		assert.Equal(t, "D001", r.URL.Query().Get("district_code"))
		assert.Equal(t, "fhtc", r.URL.Query().Get("data_type"))
		assert.Equal(t, "2019-2020", r.URL.Query().Get("financial_year"))
		assert.Equal(t, "2019", r.URL.Query().Get("year_id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"district":{"code":"D001"},"coverage_percent":61.5}`))
	}))
	defer server.Close()

	payload, err := testClient(t, server.URL, 3).FetchDistrict(context.Background(), "D001", "2019-2020", "")
	require.NoError(t, err)
	assert.Equal(t, 61.5, payload["coverage_percent"])
}

func TestClient_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"coverage_percent":40}`))
	}))
	defer server.Close()

	payload, err := testClient(t, server.URL, 3).FetchDistrict(context.Background(), "D002", "2019-2020", "2019")
	require.NoError(t, err)
	assert.Equal(t, float64(40), payload["coverage_percent"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testClient(t, server.URL, 3).FetchDistrict(context.Background(), "D003", "2019-2020", "2019")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNetwork))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_MalformedBodyIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	_, err := testClient(t, server.URL, 3).FetchDistrict(context.Background(), "D004", "2019-2020", "2019")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_EmptyDistrictCode(t *testing.T) {
	_, err := testClient(t, "http://unused.invalid", 3).FetchDistrict(context.Background(), "", "2019-2020", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}
