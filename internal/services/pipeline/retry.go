package pipeline

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/clipforge/media-api/internal/services/providers"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 2 * time.Second
)

// Executor wraps adapter calls with bounded exponential backoff. Transient
// errors sleep baseDelay * 2^(attempt-1) between attempts; Terminal and
// Unconfigured errors fail fast without burning retry budget. The last error
// is always returned to the caller unmodified.
type Executor struct {
	maxAttempts int
	baseDelay   time.Duration

	// timer is injectable so tests can observe backoff sleeps; nil uses the
	// real clock
	timer backoff.Timer
}

// NewExecutor creates a retry executor. Attempts below 1 are clamped to 1.
func NewExecutor(maxAttempts int, baseDelay time.Duration) *Executor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return &Executor{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}
}

// Execute runs op, retrying transient failures with exponential backoff up
// to the configured attempt budget. The context cancels both the operation
// and any pending backoff sleep.
func (e *Executor) Execute(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.baseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0 // deterministic: baseDelay * 2^(attempt-1)
	b.MaxInterval = time.Hour
	b.MaxElapsedTime = 0

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		switch providers.KindOf(err) {
		case providers.KindTerminal, providers.KindUnconfigured:
			return backoff.Permanent(err)
		default:
			return err
		}
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(b, uint64(e.maxAttempts-1)), ctx)
	return backoff.RetryNotifyWithTimer(wrapped, bo, nil, e.timer)
}
