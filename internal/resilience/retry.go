// Package resilience retries calls to the hosted backend that can fail
// transiently, such as reading a profile row right after sign-in.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/utils"
)

// RetryOptions configures Retry. The delay between attempts is fixed.
type RetryOptions struct {
	Attempts int
	Delay    time.Duration

	// Retryable decides whether an error is worth another attempt.
	// Nil means DefaultRetryable.
	Retryable func(error) bool
}

// DefaultRetryOptions returns three attempts one second apart.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		Attempts: constants.DefaultProfileFetchRetries,
		Delay:    constants.DefaultProfileFetchDelay,
	}
}

// DefaultRetryable retries everything except missing rows, validation
// failures and context cancellation.
func DefaultRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !utils.IsNotFoundError(err) && !utils.IsValidationError(err)
}

// Retry calls fn until it succeeds, returns a non-retryable error, ctx is done
// or opts.Attempts calls were made. It returns the last error.
func Retry(ctx context.Context, opts RetryOptions, operation string, fn func(context.Context) error) error {
	attempts := opts.Attempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := opts.Retryable
	if retryable == nil {
		retryable = DefaultRetryable
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				log.Info().
					Str("operation", operation).
					Int("attempt", attempt).
					Msg("Operation succeeded after retries")
			}
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		log.Debug().
			Err(err).
			Str("operation", operation).
			Int("attempt", attempt).
			Dur("delay", opts.Delay).
			Msg("Retrying operation after error")

		timer := time.NewTimer(opts.Delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	log.Warn().
		Err(lastErr).
		Str("operation", operation).
		Int("attempts", attempts).
		Msg("All retry attempts failed")
	return lastErr
}
