// Package llm provides the completion service used to synthesize
// catalyst and risk narratives: a small provider interface, an
// Anthropic Messages API implementation, and a retry wrapper with a
// single bounded retry.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider names for configuration.
const (
	ProviderAnthropic = "anthropic"
)

// Common errors returned by completion providers.
var (
	ErrNoAPIKey         = errors.New("llm: API key not configured")
	ErrRateLimit        = errors.New("llm: rate limit exceeded")
	ErrProviderDown     = errors.New("llm: provider unavailable")
	ErrCompletionFailed = errors.New("llm: completion failed")
)

// Options configures a single completion request. Zero values fall
// back to the provider's defaults.
type Options struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// Usage tracks token consumption for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the result of a completion request.
type Completion struct {
	Text     string        `json:"text"`
	Model    string        `json:"model"`
	Provider string        `json:"provider"`
	Usage    Usage         `json:"usage"`
	Latency  time.Duration `json:"latency"`
}

// Provider is the interface a completion backend must implement.
type Provider interface {
	// Name returns the provider identifier (e.g., "anthropic").
	Name() string

	// Complete sends a system prompt and a user prompt and returns the
	// generated text.
	Complete(ctx context.Context, system, prompt string, opts *Options) (*Completion, error)

	// Ping checks if the provider is reachable and the API key is valid.
	Ping(ctx context.Context) error
}

// String returns a human-readable summary of the completion.
func (c *Completion) String() string {
	truncated := c.Text
	if len(truncated) > 100 {
		truncated = truncated[:100] + "..."
	}
	return fmt.Sprintf("[%s/%s] %q, %d tokens, %v",
		c.Provider, c.Model, truncated, c.Usage.TotalTokens, c.Latency.Round(time.Millisecond))
}
