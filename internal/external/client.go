// Package external provides the anti-corruption layer between Tenki domain
// logic and third-party provider APIs (weather, restaurant, and facility
// providers). All outbound HTTP calls are routed through the BaseClient,
// which enforces consistent resilience patterns: bounded timeouts, circuit
// breaking, trace propagation, and error mapping.
//
// Gateways never retry: a failed provider call is reported to the caller as
// "no data available" and the surrounding layer decides what to do with it.
package external

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"tenki/internal/types"
)

// BaseClient wraps an *http.Client and a circuit breaker to enforce
// consistent behavior on all outbound HTTP calls. Provider clients embed a
// BaseClient to inherit it.
type BaseClient struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	userAgent string
	failCode  types.ErrorCode
}

// NewBaseClient creates a BaseClient for the named provider. failCode is the
// upstream error code used when the provider is unreachable, so each
// provider's failures stay distinguishable in logs and responses.
func NewBaseClient(httpClient *http.Client, breakerName string, userAgent string, failCode types.ErrorCode) *BaseClient {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	return &BaseClient{
		client:    httpClient,
		breaker:   cb,
		userAgent: userAgent,
		failCode:  failCode,
	}
}

// Do executes the HTTP request with:
//  1. Trace ID injection (X-Request-Id from context)
//  2. User-Agent header injection
//  3. Circuit breaker wrapping
//
// Responses with any status code are returned as-is for the provider client
// to interpret; 5xx and 429 additionally count as failures toward tripping
// the breaker. There is deliberately no retry loop here: gateway policy is
// one attempt per request.
//
// The caller is responsible for closing the response body.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	if traceID := types.GetRequestID(req.Context()); traceID != "" {
		req.Header.Set("X-Request-Id", traceID)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		// 5xx and 429 count toward tripping the breaker.
		if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
			return r, fmt.Errorf("upstream returned %d", r.StatusCode)
		}
		return r, nil
	})

	if err == nil {
		return resp, nil
	}

	// A failing status still yields a usable response; the provider client
	// logs the status and body before converting it to absence.
	if resp != nil {
		return resp, nil
	}

	return nil, c.mapError(err)
}

// mapError translates transport-level failures into domain-level AppErrors.
func (c *BaseClient) mapError(err error) *types.AppError {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return types.NewAppError(
			types.ErrCodeUpstreamRateLimited,
			"circuit breaker is open; upstream service unavailable",
			err,
		)
	}

	// Network error, DNS failure, timeout.
	return types.NewAppError(
		c.failCode,
		"upstream request failed",
		err,
	)
}
