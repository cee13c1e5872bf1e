package ai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds transport retries.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(p.MaxRetries, 0))), ctx)
}

// WithRetry retries c with exponential backoff while it fails with
// ErrTransport. Any other error is returned immediately.
func WithRetry(c Capability, policy RetryPolicy, logger *slog.Logger) Capability {
	return CapabilityFunc(func(ctx context.Context, prompt, image string, opts Options) (any, error) {
		var (
			result  any
			lastErr error
			attempt int
		)

		op := func() error {
			attempt++
			r, err := c.Invoke(ctx, prompt, image, opts)
			if err == nil {
				result = r
				return nil
			}
			lastErr = err
			if !errors.Is(err, ErrTransport) {
				return backoff.Permanent(err)
			}
			return err
		}

		notify := func(err error, wait time.Duration) {
			logger.Warn("ai call failed, retrying",
				"attempt", attempt,
				"model", opts.Model,
				"wait", wait,
				"error", err,
			)
		}

		err := backoff.RetryNotify(op, policy.backOff(ctx), notify)
		if err != nil {
			if ctx.Err() != nil && lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}
		return result, nil
	})
}
