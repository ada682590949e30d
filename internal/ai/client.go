package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Client is the interface for text-generation providers.
type Client interface {
	// Complete sends a prompt and returns the generated text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// RateLimitError wraps an upstream throttling response. Delay is the
// machine-readable retry hint advertised by the API; the retry policy
// honors it exactly instead of backing off exponentially.
type RateLimitError struct {
	Delay time.Duration
	Err   error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s: %v", e.Delay, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// RetryAfter satisfies the retry package's hint interface.
func (e *RateLimitError) RetryAfter() time.Duration { return e.Delay }

// cleanMarkdown removes backticks and a "json"/language prefix if the model
// tries to be helpful and wraps its output in a fenced block.
func cleanMarkdown(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.Index(content, "\n"); idx != -1 && idx < 16 {
			content = content[idx+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return strings.TrimSpace(content)
}
