// Package retry provides exponential backoff retry for transient failures.
//
// Errors classified as invalid or fatal by the errors package stop the
// retry loop immediately; only transient and unclassified errors are
// retried. All operations respect context cancellation, both during the
// operation and during backoff delays.
package retry

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/c360/edistreams/errors"
)

var (
	randMu     sync.Mutex
	randSource = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Config provides retry configuration.
type Config struct {
	MaxAttempts  int           // maximum attempts (0 = run once, no retry)
	InitialDelay time.Duration // delay before the second attempt
	MaxDelay     time.Duration // cap on the backoff delay
	Multiplier   float64       // backoff multiplier, typically 2.0
	AddJitter    bool          // randomize delays to avoid thundering herd
}

// DefaultConfig returns sensible defaults for normal operations.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		AddJitter:    true,
	}
}

// Quick returns a config for component startup: many fast attempts.
func Quick() Config {
	return Config{
		MaxAttempts:  10,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		AddJitter:    true,
	}
}

// Persistent returns a config for critical resources that must come up.
func Persistent() Config {
	return Config{
		MaxAttempts:  30,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		AddJitter:    true,
	}
}

// Do executes fn with exponential backoff, retrying transient failures.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		// Invalid and fatal errors do not heal with time.
		if errors.IsInvalid(lastErr) || errors.IsFatal(lastErr) {
			return lastErr
		}

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(jittered(delay, cfg.AddJitter)):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("retry exhausted after %d attempts: %w", attempts, lastErr)
}

// DoWithResult executes fn with retry, returning its result.
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func() error {
		var innerErr error
		result, innerErr = fn()
		return innerErr
	})
	return result, err
}

func (c Config) validate() error {
	if c.InitialDelay < 0 {
		return stderrors.New("retry: InitialDelay cannot be negative")
	}
	if c.MaxDelay < 0 {
		return stderrors.New("retry: MaxDelay cannot be negative")
	}
	if c.Multiplier < 0 {
		return stderrors.New("retry: Multiplier cannot be negative")
	}
	return nil
}

// jittered applies up to 25% random jitter to a delay.
func jittered(d time.Duration, add bool) time.Duration {
	if !add || d <= 0 {
		return d
	}
	randMu.Lock()
	factor := 0.75 + randSource.Float64()*0.5
	randMu.Unlock()
	return time.Duration(float64(d) * factor)
}
