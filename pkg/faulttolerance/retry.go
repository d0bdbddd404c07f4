// Package faulttolerance provides explicit, inspectable retry policies for
// upstream adapter calls.
package faulttolerance

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryConfig holds configuration for a retry policy.
type RetryConfig struct {
	MaxAttempts int               // Maximum number of attempts (including the first)
	Delay       time.Duration     // Fixed delay between attempts
	Name        string            // Name for logging
	Retryable   func(error) bool  // Predicate deciding whether an error is worth retrying
}

// DefaultRetryConfig returns a retry configuration that retries every error.
func DefaultRetryConfig(name string) RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		Delay:       1 * time.Second,
		Name:        name,
	}
}

// RetryableFunc is a function that can be retried.
type RetryableFunc func() error

// Retryer executes functions under a bounded retry-with-delay policy.
type Retryer struct {
	config RetryConfig
	logger *logrus.Logger
}

// NewRetryer creates a new retryer.
func NewRetryer(config RetryConfig, logger *logrus.Logger) *Retryer {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.Delay <= 0 {
		config.Delay = 1 * time.Second
	}
	if config.Name == "" {
		config.Name = "Retryer"
	}

	return &Retryer{
		config: config,
		logger: logger,
	}
}

// Execute executes the function with retry logic. A non-retryable error is
// returned immediately; exhausting the attempt budget wraps the last error.
func (r *Retryer) Execute(ctx context.Context, fn RetryableFunc) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			if attempt > 1 {
				r.logger.Infof("[%s] Operation succeeded on attempt %d", r.config.Name, attempt)
			}
			return nil
		}

		lastErr = err

		if !r.isRetryable(err) {
			return err
		}

		if attempt == r.config.MaxAttempts {
			r.logger.Errorf("[%s] All %d attempts failed, last error: %v", r.config.Name, attempt, err)
			break
		}

		r.logger.Warnf("[%s] Attempt %d failed: %v. Retrying in %v...", r.config.Name, attempt, err, r.config.Delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.config.Delay):
			continue
		}
	}

	return fmt.Errorf("max retry attempts (%d) exceeded: %w", r.config.MaxAttempts, lastErr)
}

// isRetryable checks if an error should trigger a retry.
func (r *Retryer) isRetryable(err error) bool {
	if r.config.Retryable == nil {
		return true
	}
	return r.config.Retryable(err)
}
