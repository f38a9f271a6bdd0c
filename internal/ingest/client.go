package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"jjmcli/internal/config"
	apperrors "jjmcli/internal/errors"
)

// coverageEndpoint is the IMIS resource carrying district-level FHTC
// (Functional Household Tap Connection) figures.
const coverageEndpoint = "/household_coverage"

// Client fetches district coverage data from the JJM IMIS API. Requests
// are rate limited and retried with exponential backoff; a Client is safe
// for concurrent use.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	retryAttempts int
	limiter       *rate.Limiter
	logger        *slog.Logger

	// sleep is swappable so tests don't wait out real backoff.
	sleep func(time.Duration)
}

// NewClient creates an API client from the ingestion configuration.
func NewClient(cfg config.IngestionConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		baseURL:       cfg.BaseURL,
		retryAttempts: cfg.RetryAttempts,
		limiter:       rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:        logger,
		sleep:         time.Sleep,
	}
}

// FetchDistrict retrieves the raw coverage payload for one district. The
// financial year uses the portal's "YYYY-YYYY" form; yearID may be empty,
// in which case it is derived from the financial year's opening year.
func (c *Client) FetchDistrict(ctx context.Context, districtCode, financialYear, yearID string) (map[string]any, error) {
	if districtCode == "" {
		return nil, apperrors.NewValidationError("district code is required")
	}
	if yearID == "" && len(financialYear) >= 4 {
		yearID = financialYear[:4]
	}

	endpoint := c.baseURL + coverageEndpoint
	params := url.Values{}
	params.Set("district_code", districtCode)
	params.Set("data_type", "fhtc")
	params.Set("financial_year", financialYear)
	if yearID != "" {
		params.Set("year_id", yearID)
	}
	requestURL := endpoint + "?" + params.Encode()

	var lastErr error
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperrors.NewNetworkError("rate limit wait canceled", err)
		}

		c.logger.DebugContext(ctx, "fetching district coverage",
			slog.String("district_code", districtCode),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", c.retryAttempts))

		payload, err := c.doRequest(ctx, requestURL)
		if err == nil {
			c.logger.InfoContext(ctx, "fetched district coverage",
				slog.String("district_code", districtCode))
			return payload, nil
		}
		lastErr = err

		// Malformed bodies never improve on retry.
		if apperrors.IsType(err, apperrors.ErrTypeParsing) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, apperrors.NewNetworkError("fetch canceled", ctx.Err())
		}

		if attempt < c.retryAttempts {
			backoff := time.Duration(1<<attempt) * time.Second
			c.logger.WarnContext(ctx, "district fetch failed, retrying",
				slog.String("district_code", districtCode),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
				slog.String("error", err.Error()))
			c.sleep(backoff)
		}
	}

	c.logger.ErrorContext(ctx, "district fetch exhausted retries",
		slog.String("district_code", districtCode),
		slog.Int("attempts", c.retryAttempts),
		slog.String("error", lastErr.Error()))
	return nil, apperrors.NewNetworkError(
		fmt.Sprintf("failed to fetch district %s after %d attempts", districtCode, c.retryAttempts),
		lastErr)
}

func (c *Client) doRequest(ctx context.Context, requestURL string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, apperrors.NewNetworkError(
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewParsingError("failed to decode response body", err)
	}
	return payload, nil
}
