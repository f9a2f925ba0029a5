package repository

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"
)

// Connect retry delays. Attempts past the end reuse the last delay.
var connectDelays = []time.Duration{
	250 * time.Millisecond,
	time.Second,
	4 * time.Second,
}

// JitterFactor is the ±fraction of jitter applied to connect delays.
const JitterFactor = 0.2

// connectDelay returns the wait before retry number attempt (0-indexed),
// with jitter so concurrent clients do not reconnect in lockstep.
func connectDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(connectDelays) {
		attempt = len(connectDelays) - 1
	}

	base := connectDelays[attempt]
	jitter := (rand.Float64()*2 - 1) * float64(base) * JitterFactor
	return time.Duration(float64(base) + jitter)
}

// Connect calls New up to attempts times, waiting between failures. A
// malformed URL or a cancelled context is not retried.
func Connect(ctx context.Context, databaseURL string, opts PoolOptions, attempts int, logger *slog.Logger) (*Repository, error) {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		repo, err := New(ctx, databaseURL, opts)
		if err == nil {
			return repo, nil
		}
		lastErr = err

		if errors.Is(err, ErrInvalidDatabaseURL) || attempt == attempts-1 {
			break
		}

		delay := connectDelay(attempt)
		logger.Warn("database connect failed, retrying",
			"attempt", attempt+1,
			"max_attempts", attempts,
			"retry_in", delay,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.Join(lastErr, ctx.Err())
		case <-timer.C:
		}
	}

	return nil, lastErr
}
