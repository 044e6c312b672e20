package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/docgraph/ai"
)

// retryExecutor wraps the extraction call with bounded, classified retries.
// Only errors ai.IsRetryable recognizes are retried; anything else fails
// the document immediately.
type retryExecutor struct {
	maxRetries int // total attempt budget, including the first attempt
	baseDelay  time.Duration
	logger     *slog.Logger
}

func newRetryExecutor(maxRetries int, baseDelay time.Duration, logger *slog.Logger) *retryExecutor {
	return &retryExecutor{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger.With("component", "retry"),
	}
}

// execute runs fn until it succeeds, a non-retryable error occurs, the
// attempt budget is exhausted, or the context is cancelled. The backoff
// before attempt n+1 is baseDelay * 2^(n-1).
func (r *retryExecutor) execute(ctx context.Context, fn func(ctx context.Context) (*ai.Extraction, error)) (*ai.Extraction, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		if attempt > 1 {
			delay := r.baseDelay << (attempt - 2)
			r.logger.Debug("retrying extraction", "attempt", attempt, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		extraction, err := fn(ctx)
		if err == nil {
			return extraction, nil
		}
		lastErr = err

		if !ai.IsRetryable(err) {
			r.logger.Warn("extraction failed with non-retryable error", "attempt", attempt, "err", err)
			return nil, err
		}
		r.logger.Warn("extraction attempt failed", "attempt", attempt, "err", err)
	}

	return nil, lastErr
}
