package provider

import (
	"context"
	"net/http"
	"time"

	"fxledger-service/internal/application"
	"fxledger-service/internal/domain"

	"golang.org/x/time/rate"
)

// RateLimited keeps calls to next under the upstream's request budget.
type RateLimited struct {
	next    application.RateFetcher
	limiter *rate.Limiter
}

var _ application.RateFetcher = (*RateLimited)(nil)

// NewRateLimited allows perMinute calls per minute with the given burst.
// A non-positive perMinute disables limiting.
func NewRateLimited(next application.RateFetcher, perMinute, burst int) *RateLimited {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (r *RateLimited) Fetch(ctx context.Context, pair domain.Pair) (domain.Rate, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		// Wait fails early when the next token lands after the deadline.
		return domain.Rate{}, &domain.ProviderError{
			Provider:   "ratelimit",
			StatusCode: http.StatusTooManyRequests,
			Temporary:  true,
			Err:        err,
		}
	}
	return r.next.Fetch(ctx, pair)
}
