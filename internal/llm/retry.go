package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// RetryClient wraps a Provider with a single bounded retry. Transient
// failures (network, 5xx) get exactly one more attempt after a short
// backoff; rate-limit and auth errors surface immediately so a
// hammered or misconfigured key is never hit twice. Failure after the
// retry is reported as ErrCompletionFailed.
type RetryClient struct {
	provider   Provider
	retryDelay time.Duration
}

// RetryOption configures the retry client.
type RetryOption func(*RetryClient)

// WithRetryDelay sets the backoff before the second attempt.
func WithRetryDelay(d time.Duration) RetryOption {
	return func(c *RetryClient) { c.retryDelay = d }
}

// NewRetryClient wraps the given provider.
func NewRetryClient(provider Provider, opts ...RetryOption) *RetryClient {
	c := &RetryClient{
		provider:   provider,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the wrapped provider's identifier.
func (c *RetryClient) Name() string { return c.provider.Name() }

// Ping checks the wrapped provider's health.
func (c *RetryClient) Ping(ctx context.Context) error { return c.provider.Ping(ctx) }

// Complete runs the request with at most one retry.
func (c *RetryClient) Complete(ctx context.Context, system, prompt string, opts *Options) (*Completion, error) {
	var lastErr error
	for attempt := 0; attempt <= 1; attempt++ {
		if attempt > 0 {
			log.Printf("llm/retry: %s failed: %v, retrying", c.provider.Name(), lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		comp, err := c.provider.Complete(ctx, system, prompt, opts)
		if err == nil {
			return comp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isNonRetryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrCompletionFailed, lastErr)
}

func isNonRetryable(err error) bool {
	return errors.Is(err, ErrNoAPIKey) || errors.Is(err, ErrRateLimit)
}
