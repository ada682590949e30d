// Package retry implements bounded retry with exponential backoff for every
// network-facing call in the pipelines.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Hinted is implemented by errors that carry an upstream-provided retry
// delay, e.g. a rate-limit response. When present, the hint replaces the
// exponential backoff so upstream throttling is respected exactly.
type Hinted interface {
	RetryAfter() time.Duration
}

const hintJitterMax = 2 * time.Second

type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration

	// overridable in tests
	sleep  func(time.Duration)
	jitter func() time.Duration
}

func New(maxAttempts int, initialDelay time.Duration) *Policy {
	return &Policy{
		MaxAttempts:  maxAttempts,
		InitialDelay: initialDelay,
		sleep:        time.Sleep,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(hintJitterMax)))
		},
	}
}

// Do runs op up to p.MaxAttempts times. Attempt n waits
// initialDelay * 2^(n-1) before attempt n+1, unless the error carries a
// retry hint. After the final attempt the last error is returned unchanged
// so callers can still distinguish error kinds.
func Do[T any](ctx context.Context, p *Policy, op func() (T, error)) (T, error) {
	var (
		result  T
		lastErr error
	)
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return result, lastErr
			}
			return result, err
		}

		result, lastErr = op()
		if lastErr == nil {
			return result, nil
		}
		if attempt == p.MaxAttempts {
			break
		}

		delay := p.InitialDelay << (attempt - 1)
		var hinted Hinted
		if errors.As(lastErr, &hinted) {
			delay = hinted.RetryAfter() + p.jitter()
		}
		p.sleep(delay)
	}
	return result, lastErr
}
