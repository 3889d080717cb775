package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pasar/internal/models"
)

const (
	maxRetryAttempts = 3
	baseBackoff      = 100 * time.Millisecond
)

// isBusinessError reports whether err is an expected business-rule rejection
// that must be surfaced to the caller rather than retried.
func isBusinessError(err error) bool {
	return errors.Is(err, models.ErrInsufficientStock) ||
		errors.Is(err, models.ErrStoreNotSellable) ||
		errors.Is(err, models.ErrOrderLimitExceeded) ||
		errors.Is(err, models.ErrInvalidTransition) ||
		errors.Is(err, models.ErrInvalidQuantity) ||
		errors.Is(err, models.ErrNotFound)
}

// withRetry runs op up to maxRetryAttempts times with exponential backoff.
// Business-rule rejections are returned immediately; an exhausted retry
// budget surfaces as models.ErrUnavailable so callers can tell "try a smaller
// quantity" apart from "try again shortly".
func withRetry(ctx context.Context, label string, op func() error) error {
	var err error
	backoff := baseBackoff
	for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
		err = op()
		if err == nil || isBusinessError(err) {
			return err
		}
		if attempt == maxRetryAttempts {
			break
		}
		log.Printf("%s failed (attempt %d/%d), retrying in %v: %v", label, attempt, maxRetryAttempts, backoff, err)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled: %v: %w", label, ctx.Err(), models.ErrUnavailable)
		}
		backoff *= 2
	}
	log.Printf("%s failed after %d attempts: %v", label, maxRetryAttempts, err)
	return fmt.Errorf("%s: %v: %w", label, err, models.ErrUnavailable)
}
