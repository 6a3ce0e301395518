package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nichiki/markitdown-rag-sample/pkg/llm/resilience"
)

func fastRetryConfig(attempts int) *resilience.RetryConfig {
	return &resilience.RetryConfig{
		MaxAttempts:     attempts,
		InitialDelay:    time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		Multiplier:      2.0,
		RetryableErrors: func(error) bool { return true },
	}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), fastRetryConfig(3), func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversAfterFailures(t *testing.T) {
	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), fastRetryConfig(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient failure")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), fastRetryConfig(3), func() error {
		calls++
		return errors.New("persistent failure")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "max retry attempts")
	assert.Contains(t, err.Error(), "persistent failure")
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	cfg := fastRetryConfig(5)
	cfg.RetryableErrors = func(error) bool { return false }

	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), cfg, func() error {
		calls++
		return errors.New("bad request")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := resilience.RetryWithBackoff(ctx, fastRetryConfig(10), func() error {
		calls++
		cancel()
		return errors.New("failure")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestCircuitBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := resilience.NewCircuitBreaker(&resilience.CircuitBreakerConfig{
		MaxFailures:      3,
		Timeout:          time.Minute,
		HalfOpenMaxCalls: 1,
	})

	failing := func() error { return errors.New("backend down") }

	for i := 0; i < 3; i++ {
		assert.Error(t, cb.Execute(failing))
	}
	assert.Equal(t, resilience.StateOpen, cb.State())

	// Open breaker rejects without invoking the function
	calls := 0
	err := cb.Execute(func() error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, resilience.ErrCircuitBreakerOpen)
	assert.Zero(t, calls)
}

func TestCircuitBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := resilience.NewCircuitBreaker(&resilience.CircuitBreakerConfig{
		MaxFailures:      1,
		Timeout:          10 * time.Millisecond,
		HalfOpenMaxCalls: 1,
	})

	require.Error(t, cb.Execute(func() error { return errors.New("fail") }))
	require.Equal(t, resilience.StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	// The first probe succeeds and the breaker closes
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, resilience.StateClosed, cb.State())
}

func TestCircuitBreakerReopensOnHalfOpenFailure(t *testing.T) {
	cb := resilience.NewCircuitBreaker(&resilience.CircuitBreakerConfig{
		MaxFailures:      1,
		Timeout:          10 * time.Millisecond,
		HalfOpenMaxCalls: 1,
	})

	require.Error(t, cb.Execute(func() error { return errors.New("fail") }))
	time.Sleep(20 * time.Millisecond)

	require.Error(t, cb.Execute(func() error { return errors.New("still failing") }))
	assert.Equal(t, resilience.StateOpen, cb.State())
}

func TestCircuitBreakerReset(t *testing.T) {
	cb := resilience.NewCircuitBreaker(&resilience.CircuitBreakerConfig{
		MaxFailures:      1,
		Timeout:          time.Minute,
		HalfOpenMaxCalls: 1,
	})

	require.Error(t, cb.Execute(func() error { return errors.New("fail") }))
	require.Equal(t, resilience.StateOpen, cb.State())

	cb.Reset()
	assert.Equal(t, resilience.StateClosed, cb.State())
	assert.NoError(t, cb.Execute(func() error { return nil }))
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"breaker open", resilience.ErrCircuitBreakerOpen, false},
		{"server error 500", errors.New("API error: status code 500"), true},
		{"server error 503", fmt.Errorf("request failed: status code 503"), true},
		{"rate limited", errors.New("API error: status code 429"), true},
		{"rate limit message", errors.New("rate limit exceeded"), true},
		{"request timeout", errors.New("API error: status code 408"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "api.example.com"}, true},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"client error 400", errors.New("API error: status code 400"), false},
		{"plain failure", errors.New("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, resilience.IsRetryableError(tt.err))
		})
	}
}

func TestRetryWithCircuitBreakerStopsWhenOpen(t *testing.T) {
	cb := resilience.NewCircuitBreaker(&resilience.CircuitBreakerConfig{
		MaxFailures:      2,
		Timeout:          time.Minute,
		HalfOpenMaxCalls: 1,
	})
	cfg := fastRetryConfig(5)
	cfg.RetryableErrors = resilience.IsRetryableError

	calls := 0
	err := resilience.RetryWithCircuitBreaker(context.Background(), cfg, cb, func() error {
		calls++
		return errors.New("status code 503")
	})

	// Two failures open the breaker; the next attempt is rejected
	// without calling the function, and the rejection is not retried
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, resilience.StateOpen, cb.State())
}
