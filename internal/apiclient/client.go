package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hostelhub/hostelctl/internal/config"
	"github.com/hostelhub/hostelctl/internal/logging"
	"github.com/hostelhub/hostelctl/internal/version"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed GET requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 10 * time.Second

	// DefaultCacheDuration is how long lookup lists (floors, rooms, beds,
	// payment methods) are served from memory
	DefaultCacheDuration = 30 * time.Second

	// DefaultRequestsPerSecond is the client-side request rate limit
	DefaultRequestsPerSecond = 10

	// DefaultBurst is the client-side request burst size
	DefaultBurst = 5

	// RequestIDHeader carries the per-request correlation id
	RequestIDHeader = "X-Request-ID"

	cacheSize = 256
)

// Client is an HTTP client for the hostel management REST API.
// It unwraps the {status, data} response envelope, retries idempotent
// requests, rate-limits outgoing traffic and caches lookup lists.
type Client struct {
	// BaseURL is the API root (e.g., "https://api.hostel.example")
	BaseURL string

	// Token is the bearer token sent with each request (may be empty)
	Token string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed GET requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool

	limiter *rate.Limiter

	cacheMutex    sync.RWMutex
	cache         *expirable.LRU[string, json.RawMessage]
	cacheDuration time.Duration
}

// NewClient creates a new API client with default settings
// baseURL: API root, with or without a trailing slash
func NewClient(baseURL string) *Client {
	c := &Client{
		BaseURL:               strings.TrimRight(baseURL, "/"),
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
		limiter:               rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultBurst),
	}
	c.SetCacheDuration(DefaultCacheDuration)
	return c
}

// NewClientFromProfile creates a client configured from a config profile
func NewClientFromProfile(p *config.Profile, token string) *Client {
	c := NewClient(p.BaseURL)
	c.SetToken(token)
	if p.TimeoutSeconds > 0 {
		c.SetTimeout(time.Duration(p.TimeoutSeconds) * time.Second)
	}
	if p.MaxRetries >= 0 {
		c.MaxRetries = p.MaxRetries
	}
	c.SetRateLimit(p.RequestsPerSecond, p.Burst)
	c.SetCacheDuration(time.Duration(p.CacheSeconds) * time.Second)
	return c
}

// SetToken sets the bearer token
func (c *Client) SetToken(token string) {
	c.Token = token
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// SetRateLimit limits outgoing requests per second.
// A non-positive rate disables limiting.
func (c *Client) SetRateLimit(perSecond float64, burst int) {
	if perSecond <= 0 {
		c.limiter = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// SetCacheDuration sets the lookup cache validity duration.
// Set to 0 to disable caching entirely.
func (c *Client) SetCacheDuration(duration time.Duration) {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	c.cacheDuration = duration
	if duration <= 0 {
		c.cache = nil
		return
	}
	c.cache = expirable.NewLRU[string, json.RawMessage](cacheSize, nil, duration)
}

// InvalidateCache drops every cached lookup, forcing fresh fetches
func (c *Client) InvalidateCache() {
	c.cacheMutex.RLock()
	defer c.cacheMutex.RUnlock()
	if c.cache != nil {
		c.cache.Purge()
	}
}

func (c *Client) cached(key string) (json.RawMessage, bool) {
	c.cacheMutex.RLock()
	defer c.cacheMutex.RUnlock()
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *Client) store(key string, payload json.RawMessage) {
	c.cacheMutex.RLock()
	defer c.cacheMutex.RUnlock()
	if c.cache != nil {
		c.cache.Add(key, payload)
	}
}

// Get performs a GET request and decodes the unwrapped payload into out.
// out may be nil when the payload is not needed.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	payload, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	return decodeInto(payload, out)
}

// Post performs a POST request with a JSON body and decodes the unwrapped
// payload into out. POST requests are never retried.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	payload, err := c.post(ctx, path, body)
	if err != nil {
		return err
	}
	return decodeInto(payload, out)
}

// getCached serves a lookup GET from the cache when possible
func (c *Client) getCached(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	key := path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}
	if payload, ok := c.cached(key); ok {
		logging.Debug("API cache hit", zap.String("path", key))
		return payload, nil
	}

	payload, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	c.store(key, payload)
	return payload, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	requestID := uuid.NewString()

	var lastErr error
	currentDelay := c.RetryDelay

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, currentDelay); err != nil {
				return nil, NewNetworkError("request cancelled", err)
			}

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		payload, err := c.doAttempt(ctx, http.MethodGet, path, query, nil, requestID, attempt+1)
		if err == nil {
			return payload, nil
		}

		lastErr = err

		if ctx.Err() != nil || !IsRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return nil, NewValidationError(fmt.Sprintf("failed to encode request body: %v", err))
		}
	}
	return c.doAttempt(ctx, http.MethodPost, path, nil, encoded, uuid.NewString(), 1)
}

// doAttempt performs a single HTTP round trip and unwraps the response envelope
func (c *Client) doAttempt(ctx context.Context, method, path string, query url.Values, body []byte, requestID string, attempt int) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, NewNetworkError("request cancelled while rate limited", err)
		}
	}

	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, NewNetworkError(fmt.Sprintf("failed to create %s request", method), err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	logging.LogAPIRequest(method, path, requestID, attempt)
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		apiErr := NewNetworkError(fmt.Sprintf("%s %s failed", method, path), err)
		apiErr.RequestID = requestID
		return nil, apiErr
	}
	defer func() { _ = resp.Body.Close() }()

	logging.LogAPIResponse(method, path, requestID, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := NewNetworkError("failed to read response body", err)
		apiErr.RequestID = requestID
		return nil, apiErr
	}

	payload, err := unwrapResponse(resp.StatusCode, raw)
	if err != nil {
		if apiErr, ok := asAPIError(err); ok {
			apiErr.RequestID = requestID
		}
		return nil, err
	}
	return payload, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
