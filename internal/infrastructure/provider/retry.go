package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fxledger-service/internal/application"
	"fxledger-service/internal/domain"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Retrying re-invokes next on temporary provider errors with exponential backoff.
type Retrying struct {
	next       application.RateFetcher
	maxRetries uint64
	newBackOff func() backoff.BackOff
	log        *zap.Logger
}

var _ application.RateFetcher = (*Retrying)(nil)

// WithRetry wraps next unless maxRetries is zero, in which case next is returned as is.
func WithRetry(next application.RateFetcher, maxRetries int, log *zap.Logger) application.RateFetcher {
	if maxRetries <= 0 {
		return next
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Retrying{
		next:       next,
		maxRetries: uint64(maxRetries),
		newBackOff: defaultBackOff,
		log:        log,
	}
}

func defaultBackOff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 1 * time.Second
	exp.MaxElapsedTime = 3 * time.Second
	return exp
}

func (r *Retrying) Fetch(ctx context.Context, pair domain.Pair) (domain.Rate, error) {
	var (
		out     domain.Rate
		lastErr *domain.ProviderError
	)
	op := func() error {
		v, err := r.next.Fetch(ctx, pair)
		if err != nil {
			var perr *domain.ProviderError
			if errors.As(err, &perr) {
				lastErr = perr
				if perr.Temporary {
					return err
				}
			}
			return backoff.Permanent(err)
		}
		out = v
		return nil
	}
	notify := func(err error, wait time.Duration) {
		r.log.Warn("provider.retry",
			zap.String("pair", pair.Key()),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
	b := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), r.maxRetries), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		var perr *domain.ProviderError
		if errors.As(err, &perr) || ctx.Err() == nil {
			return domain.Rate{}, err
		}
		// The deadline ended the backoff wait; report it against the upstream.
		provider, status := "retry", 0
		if lastErr != nil {
			provider, status = lastErr.Provider, lastErr.StatusCode
		}
		return domain.Rate{}, &domain.ProviderError{
			Provider:   provider,
			StatusCode: status,
			Temporary:  true,
			Err:        fmt.Errorf("retry: %w", err),
		}
	}
	return out, nil
}
