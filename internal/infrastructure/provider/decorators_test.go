package provider

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"fxledger-service/internal/domain"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pair = domain.Pair{From: "EUR", To: "USD"}

// scriptedFetcher returns errs in order, then a fixed rate.
type scriptedFetcher struct {
	calls atomic.Int32
	errs  []error
}

func (s *scriptedFetcher) Fetch(context.Context, domain.Pair) (domain.Rate, error) {
	n := int(s.calls.Add(1)) - 1
	if n < len(s.errs) {
		return domain.Rate{}, s.errs[n]
	}
	return domain.Rate{Value: decimal.RequireFromString("1.1")}, nil
}

func fastRetry(next *scriptedFetcher, n int) *Retrying {
	r := WithRetry(next, n, nil).(*Retrying)
	r.newBackOff = func() backoff.BackOff { return backoff.NewConstantBackOff(time.Millisecond) }
	return r
}

func temporary() error {
	return &domain.ProviderError{Provider: "x", StatusCode: 503, Temporary: true, Err: errors.New("busy")}
}

func TestWithRetry_ZeroIsPassthrough(t *testing.T) {
	next := &scriptedFetcher{}
	require.Same(t, next, WithRetry(next, 0, nil))
}

func TestWithRetry_RetriesTemporary(t *testing.T) {
	next := &scriptedFetcher{errs: []error{temporary(), temporary()}}
	r, err := fastRetry(next, 3).Fetch(context.Background(), pair)
	require.NoError(t, err)
	require.Equal(t, "1.1", r.Value.String())
	require.Equal(t, int32(3), next.calls.Load())
}

func TestWithRetry_StopsOnPermanent(t *testing.T) {
	perm := &domain.ProviderError{Provider: "x", StatusCode: 400, Err: errors.New("bad pair")}
	next := &scriptedFetcher{errs: []error{perm}}
	_, err := fastRetry(next, 3).Fetch(context.Background(), pair)
	require.ErrorIs(t, err, perm)
	require.Equal(t, int32(1), next.calls.Load())
}

func TestWithRetry_GivesUpAfterMax(t *testing.T) {
	next := &scriptedFetcher{errs: []error{temporary(), temporary(), temporary(), temporary()}}
	_, err := fastRetry(next, 2).Fetch(context.Background(), pair)
	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, int32(3), next.calls.Load())
}

func TestRateLimited_Burst(t *testing.T) {
	next := &scriptedFetcher{}
	rl := NewRateLimited(next, 1, 2)

	for i := 0; i < 2; i++ {
		_, err := rl.Fetch(context.Background(), pair)
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := rl.Fetch(ctx, pair)
	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	require.True(t, perr.Temporary)
	require.Equal(t, int32(2), next.calls.Load())
}

func TestRateLimited_Disabled(t *testing.T) {
	next := &scriptedFetcher{}
	rl := NewRateLimited(next, 0, 0)
	for i := 0; i < 50; i++ {
		_, err := rl.Fetch(context.Background(), pair)
		require.NoError(t, err)
	}
}

func TestRateLimited_CanceledContext(t *testing.T) {
	rl := NewRateLimited(&scriptedFetcher{}, 1, 1)
	_, _ = rl.Fetch(context.Background(), pair)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := rl.Fetch(ctx, pair)
	require.ErrorIs(t, err, context.Canceled)
	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, int32(1), rl.next.(*scriptedFetcher).calls.Load())
}

func TestWithRetry_DeadlineDuringBackoffIsProviderError(t *testing.T) {
	next := &scriptedFetcher{errs: []error{temporary(), temporary(), temporary()}}
	r := &Retrying{
		next:       next,
		maxRetries: 5,
		newBackOff: func() backoff.BackOff { return backoff.NewConstantBackOff(time.Second) },
		log:        zap.NewNop(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := r.Fetch(ctx, pair)

	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	require.True(t, perr.Temporary)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, int32(1), next.calls.Load())
}
