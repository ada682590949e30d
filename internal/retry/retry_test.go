package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type rateLimited struct {
	after time.Duration
}

func (e *rateLimited) Error() string             { return "429 resource exhausted" }
func (e *rateLimited) RetryAfter() time.Duration { return e.after }

func testPolicy(maxAttempts int, initialDelay time.Duration, slept *[]time.Duration) *Policy {
	p := New(maxAttempts, initialDelay)
	p.sleep = func(d time.Duration) { *slept = append(*slept, d) }
	return p
}

func TestDo_SucceedsOnLastAttempt(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(3, time.Second, &slept)

	calls := 0
	result, err := Do(context.Background(), p, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
	//exactly maxAttempts-1 delays, doubling each time
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, slept)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(3, time.Second, &slept)

	wantErr := errors.New("still broken")
	calls := 0
	_, err := Do(context.Background(), p, func() (int, error) {
		calls++
		return 0, wantErr
	})

	assert.Equal(t, 3, calls)
	//the original error propagates unchanged
	assert.Same(t, wantErr, err)
	//no delay after the final attempt
	assert.Len(t, slept, 2)
}

func TestDo_HonorsRetryHint(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(2, time.Second, &slept)

	calls := 0
	_, err := Do(context.Background(), p, func() (int, error) {
		calls++
		if calls == 1 {
			return 0, &rateLimited{after: 5 * time.Second}
		}
		return 42, nil
	})

	assert.NoError(t, err)
	//hint of 5s plus jitter in [0, 2s)
	assert.Len(t, slept, 1)
	assert.GreaterOrEqual(t, slept[0], 5*time.Second)
	assert.Less(t, slept[0], 7*time.Second)
}

func TestDo_HintWrappedError(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(2, time.Second, &slept)

	calls := 0
	_, _ = Do(context.Background(), p, func() (int, error) {
		calls++
		if calls == 1 {
			return 0, &rateLimited{after: 10 * time.Second}
		}
		return 0, nil
	})

	assert.GreaterOrEqual(t, slept[0], 10*time.Second)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(3, time.Second)
	calls := 0
	_, err := Do(ctx, p, func() (int, error) {
		calls++
		return 0, nil
	})

	assert.Error(t, err)
	assert.Equal(t, 0, calls)
}
