package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/poiesic/docgraph/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryExecutor_SuccessFirstAttempt(t *testing.T) {
	retry := newRetryExecutor(3, 0, slog.Default())

	calls := 0
	extraction, err := retry.execute(context.Background(), func(ctx context.Context) (*ai.Extraction, error) {
		calls++
		return &ai.Extraction{}, nil
	})

	require.NoError(t, err)
	require.NotNil(t, extraction)
	assert.Equal(t, 1, calls)
}

func TestRetryExecutor_TransientThenSuccess(t *testing.T) {
	retry := newRetryExecutor(3, 0, slog.Default())

	calls := 0
	extraction, err := retry.execute(context.Background(), func(ctx context.Context) (*ai.Extraction, error) {
		calls++
		if calls < 3 {
			return nil, fmt.Errorf("%w: service hiccup", ai.ErrTransient)
		}
		return &ai.Extraction{}, nil
	})

	require.NoError(t, err)
	require.NotNil(t, extraction)
	assert.Equal(t, 3, calls)
}

func TestRetryExecutor_ExhaustsBudget(t *testing.T) {
	retry := newRetryExecutor(3, 0, slog.Default())

	calls := 0
	_, err := retry.execute(context.Background(), func(ctx context.Context) (*ai.Extraction, error) {
		calls++
		return nil, fmt.Errorf("%w: still down", ai.ErrTransient)
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ai.ErrTransient))
	assert.Equal(t, 3, calls)
}

func TestRetryExecutor_MalformedResponseIsRetried(t *testing.T) {
	retry := newRetryExecutor(2, 0, slog.Default())

	calls := 0
	_, err := retry.execute(context.Background(), func(ctx context.Context) (*ai.Extraction, error) {
		calls++
		return nil, fmt.Errorf("%w: bad json", ai.ErrMalformedResponse)
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryExecutor_FatalErrorNotRetried(t *testing.T) {
	retry := newRetryExecutor(3, 0, slog.Default())

	calls := 0
	fatal := errors.New("invalid credentials")
	_, err := retry.execute(context.Background(), func(ctx context.Context) (*ai.Extraction, error) {
		calls++
		return nil, fatal
	})

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestRetryExecutor_ContextCancelledDuringBackoff(t *testing.T) {
	retry := newRetryExecutor(3, time.Second, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := retry.execute(ctx, func(ctx context.Context) (*ai.Extraction, error) {
		calls++
		cancel()
		return nil, fmt.Errorf("%w: down", ai.ErrTransient)
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
