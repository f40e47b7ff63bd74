// Copyright 2025 Reelworthy
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Executor wraps external calls of one call class with minimum inter-call
// spacing and retry with exponential backoff. Each external service gets
// its own Executor so the services' rate limits stay independent.
//
// Transient failures are retried up to the configured attempt count with
// delay baseDelay * 2^(attempt-1). Failures wrapped with Permanent (and
// context cancellation) propagate immediately without consuming retry
// budget. The final failure is surfaced wrapped with the executor label.
type Executor struct {
	label       string
	limiter     *rate.Limiter
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor creates an Executor for one class of external calls.
// minInterval is the minimum spacing between consecutive calls; zero
// disables throttling. maxAttempts must be > 0.
func NewExecutor(label string, minInterval time.Duration, maxAttempts int, baseDelay time.Duration, opts ...Option) (*Executor, error) {
	if maxAttempts <= 0 {
		return nil, ErrInvalidMaxAttempts
	}

	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}

	e := &Executor{
		label:       label,
		limiter:     rate.NewLimiter(limit, 1),
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.logger = e.logger.With("call_class", label)
	return e, nil
}

// Execute runs operation under the executor's spacing and retry policy.
func (e *Executor) Execute(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		// The limiter enforces the minimum spacing; Wait also honors
		// context cancellation.
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				e.logger.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		if IsPermanent(lastErr) {
			return fmt.Errorf("%s: %w", e.label, lastErr)
		}

		e.logger.Debug("operation failed, will retry",
			"attempt", attempt, "maxAttempts", e.maxAttempts, "error", lastErr)

		// Don't sleep after the last attempt
		if attempt == e.maxAttempts {
			break
		}

		// Exponential backoff: baseDelay * 2^(attempt-1)
		delay := e.baseDelay
		for i := 1; i < attempt; i++ {
			delay *= 2
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%s: %w after %d attempts", e.label, lastErr, e.maxAttempts)
}
