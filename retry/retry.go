// Package retry provides exponential backoff retry logic with jitter.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Config holds retry configuration.
type Config struct {
	// MaxRetries is the maximum number of retry attempts after the first try.
	MaxRetries int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between retries. Zero means no cap.
	MaxBackoff time.Duration
	// Multiplier is the exponential backoff multiplier.
	Multiplier float64
	// JitterFraction adds uniform random jitter in [0, JitterFraction*backoff)
	// on top of each backoff sleep, to avoid synchronized retries.
	JitterFraction float64
	// Sleep waits for the given duration or until the context is done.
	// Nil uses a time.After based default. Tests inject a recorder here.
	Sleep func(context.Context, time.Duration) error
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     5,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.2,
	}
}

// ErrorClassifier reports whether an error is worth retrying.
type ErrorClassifier func(error) bool

// Do executes fn, retrying per cfg while classifier approves the error.
// Context errors always stop the loop. When retries run out the last error
// is returned wrapped in a RetryableError.
func Do(ctx context.Context, cfg Config, classifier ErrorClassifier, fn func(context.Context) error) error {
	if classifier == nil {
		classifier = func(err error) bool { return true }
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = defaultSleep
	}

	var lastErr error
	backoff := cfg.InitialBackoff

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if !classifier(err) {
			return err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		wait := backoff + jitter(backoff, cfg.JitterFraction)
		if cfg.MaxBackoff > 0 && wait > cfg.MaxBackoff {
			wait = cfg.MaxBackoff
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}

		backoff = time.Duration(float64(backoff) * cfg.Multiplier)
		if cfg.MaxBackoff > 0 && backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}

	return &RetryableError{Err: lastErr, Retries: cfg.MaxRetries}
}

func defaultSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// jitter returns a uniformly random duration in [0, fraction*d).
func jitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 || d <= 0 {
		return 0
	}
	return time.Duration(rand.Float64() * fraction * float64(d))
}

// RetryableError reports that an operation kept failing after all retries.
type RetryableError struct {
	Err     error
	Retries int
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("failed after %d retries: %v", e.Retries, e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}
