package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyDelay(t *testing.T) {
	p := Policy{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 4 * time.Second}

	assert.Equal(t, time.Duration(0), p.Delay(0))
	assert.Equal(t, time.Second, p.Delay(1))
	assert.Equal(t, 2*time.Second, p.Delay(2))
	assert.Equal(t, 4*time.Second, p.Delay(3))
	assert.Equal(t, 4*time.Second, p.Delay(10))
}

func TestDoRetriesUntilExhausted(t *testing.T) {
	p := Policy{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}
	var waits []time.Duration
	p.OnRetry = func(_ int, _ error, wait time.Duration) { waits = append(waits, wait) }

	boom := errors.New("boom")
	attempts, err := Do(context.Background(), p, func(context.Context, int) error { return boom })

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 4, attempts)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond}, waits)
}

func TestDoStopsOnSuccess(t *testing.T) {
	p := Policy{MaxRetries: 3, BaseDelay: time.Millisecond}

	attempts, err := Do(context.Background(), p, func(_ context.Context, attempt int) error {
		if attempt < 2 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestDoPermanentErrorIsNotRetried(t *testing.T) {
	notFound := errors.New("not found")
	p := Policy{MaxRetries: 3, BaseDelay: time.Millisecond}

	attempts, err := Do(context.Background(), p, func(context.Context, int) error {
		return Permanent(notFound)
	})

	assert.Equal(t, 1, attempts)
	assert.Same(t, notFound, err)
}

func TestDoHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxRetries: 5, BaseDelay: time.Hour}

	attempts, err := Do(ctx, p, func(context.Context, int) error {
		cancel()
		return errors.New("transient")
	})

	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, context.Canceled)
}
