package swapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kapu/cantina-go/internal/constants"
	"github.com/kapu/cantina-go/internal/domain"
	"github.com/kapu/cantina-go/internal/util"
	"github.com/kapu/cantina-go/pkg/errors"
	"go.uber.org/zap"
)

// peoplePageRaw is the wire shape of GET /people/?page=N.
type peoplePageRaw struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []domain.Person `json:"results"`
}

type ClientConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
}

// Client reads pages of people from the SWAPI REST API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxAttempts  int
	breaker      *util.CircuitBreaker
	logger       *zap.Logger
	computeDelay func(attempt int) time.Duration
}

// NewClient builds a client. A nil httpClient gets one with cfg.Timeout.
func NewClient(httpClient *http.Client, cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.APIConfig.SWAPIBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.APIConfig.SWAPITimeout
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = constants.RetryConfig.MaxAttempts
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		maxAttempts: cfg.MaxAttempts,
		breaker: util.NewCircuitBreaker(
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			logger.Named("swapi.breaker"),
		),
		logger:       logger,
		computeDelay: backoffDelay,
	}
}

// Fetch implements people.PeopleSource.
func (c *Client) Fetch(ctx context.Context, page int) (*domain.PageResult, error) {
	if page < 1 {
		return nil, errors.NewValidationError("page must be at least 1", "page", page)
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	body, reqURL, err := c.doRequest(ctx, http.MethodGet, constants.APIConfig.PeoplePath, params)
	if err != nil {
		c.logger.Error("Failed to get people page", zap.Int("page", page), zap.Error(err))
		return nil, err
	}

	var raw peoplePageRaw
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.NewDecodeError(reqURL, err)
	}

	c.logger.Debug("SWAPI people page",
		zap.Int("page", page),
		zap.Int("count", raw.Count),
		zap.Int("results", len(raw.Results)),
		zap.Bool("has_next", raw.Next != nil),
	)

	return &domain.PageResult{
		Next:    raw.Next,
		Results: raw.Results,
	}, nil
}

// IsCircuitOpen reports whether requests are currently short-circuited.
func (c *Client) IsCircuitOpen() bool {
	return !c.breaker.CanExecute()
}

func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values) ([]byte, string, error) {
	reqURL := c.baseURL + path
	if params != nil {
		reqURL += "?" + params.Encode()
	}

	if !c.breaker.CanExecute() {
		remainingMs := c.breaker.RetryAfter().Milliseconds()
		c.logger.Warn("Circuit breaker is open", zap.Int64("retry_after_ms", remainingMs))
		return nil, reqURL, errors.NewAPIError("Circuit breaker open", http.StatusServiceUnavailable, map[string]any{
			"retry_after_ms": remainingMs,
		})
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.computeDelay(attempt - 1)
			c.logger.Warn("Request failed, retrying",
				zap.Error(lastErr),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
			)
			if err := sleepContext(ctx, delay); err != nil {
				return nil, reqURL, err
			}
			if !c.breaker.CanExecute() {
				break
			}
		}

		body, err := c.attempt(ctx, method, reqURL)
		if err == nil {
			c.breaker.RecordSuccess()
			return body, reqURL, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, reqURL, ctx.Err()
		}

		var apiErr *errors.APIError
		if stderrors.As(err, &apiErr) {
			if !apiErr.Retryable() {
				// the server answered; only the request was wrong
				c.breaker.RecordSuccess()
				return nil, reqURL, err
			}
			if apiErr.StatusCode == http.StatusTooManyRequests {
				c.breaker.RecordFailure(constants.CircuitBreakerConfig.RateLimitTimeout)
				continue
			}
		}
		c.breaker.RecordFailure(0)
	}

	if lastErr != nil {
		return nil, reqURL, lastErr
	}
	return nil, reqURL, errors.NewAPIError("SWAPI request failed after all retries", http.StatusBadGateway, nil)
}

func (c *Client) attempt(ctx context.Context, method, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constants.APIConfig.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.APIConfig.MaxBodyBytes))
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, errors.NewAPIError(fmt.Sprintf("Server error: %d", resp.StatusCode), resp.StatusCode, map[string]any{
			"url": reqURL,
		})
	case resp.StatusCode >= 400:
		return nil, errors.NewAPIError(fmt.Sprintf("Client error: %d", resp.StatusCode), resp.StatusCode, map[string]any{
			"url":  reqURL,
			"body": util.TruncateString(string(body), 200),
		})
	}
	return body, nil
}

func backoffDelay(attempt int) time.Duration {
	base := constants.RetryConfig.BaseDelay * time.Duration(math.Pow(2, float64(attempt)))
	jitter := time.Duration(rand.Float64() * float64(constants.RetryConfig.Jitter))
	return base + jitter
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
