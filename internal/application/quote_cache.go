package application

import (
	"context"
	"fmt"
	"time"

	"fxledger-service/internal/domain"
	"fxledger-service/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// FetchFunc produces a fresh quote on a cache miss.
type FetchFunc func(ctx context.Context) (domain.Quote, error)

// QuoteCache maps a pair to its latest unexpired quote and allows at most one
// upstream fetch in flight per pair.
type QuoteCache struct {
	store        QuoteStore
	clock        Clock
	fetchTimeout time.Duration
	log          *zap.Logger
	group        singleflight.Group
}

type CacheOption func(*QuoteCache)

func WithCacheClock(c Clock) CacheOption           { return func(qc *QuoteCache) { qc.clock = c } }
func WithCacheLogger(l *zap.Logger) CacheOption    { return func(qc *QuoteCache) { qc.log = l } }
func WithFetchTimeout(d time.Duration) CacheOption { return func(qc *QuoteCache) { qc.fetchTimeout = d } }

func NewQuoteCache(store QuoteStore, opts ...CacheOption) *QuoteCache {
	c := &QuoteCache{store: store}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = realClock{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

type flightResult struct {
	quote  domain.Quote
	cached bool
}

// Lookup returns the cached quote for pair if it has not expired. The store is
// read exactly once; a read error counts as a miss.
func (c *QuoteCache) Lookup(ctx context.Context, pair domain.Pair) (domain.Quote, bool) {
	q, ok, err := c.store.Get(ctx, pair)
	if err != nil {
		c.log.Warn("quote_cache.lookup_failed", zap.String("pair", pair.Key()), zap.Error(err))
		return domain.Quote{}, false
	}
	if !ok || !q.Valid(c.clock.Now()) {
		return domain.Quote{}, false
	}
	return q, true
}

// Store replaces the entry for q.Pair unconditionally.
func (c *QuoteCache) Store(ctx context.Context, q domain.Quote) error {
	if err := c.store.Set(ctx, q); err != nil {
		c.log.Warn("quote_cache.store_failed", zap.String("pair", q.Pair.Key()), zap.Error(err))
		return err
	}
	return nil
}

// GetOrFetch returns the cached quote for pair or runs fetch once for all
// concurrent callers of the same pair. The bool reports a cache hit.
//
// The fetch runs detached from ctx: a caller that gives up gets ctx.Err(),
// while the fetch completes and populates the cache for the other waiters.
// Failed fetches are not cached.
func (c *QuoteCache) GetOrFetch(ctx context.Context, pair domain.Pair, fetch FetchFunc) (domain.Quote, bool, error) {
	if q, ok := c.Lookup(ctx, pair); ok {
		metrics.QuoteCacheLookups.WithLabelValues("hit").Inc()
		return q, true, nil
	}
	metrics.QuoteCacheLookups.WithLabelValues("miss").Inc()

	ch := c.group.DoChan(pair.Key(), func() (val any, err error) {
		// singleflight re-panics on a goroutine nobody can recover.
		defer func() {
			if r := recover(); r != nil {
				c.log.Error("quote_cache.fetch_panic", zap.String("pair", pair.Key()), zap.Any("panic", r))
				val, err = nil, fmt.Errorf("fetch %s panicked: %v", pair.Key(), r)
			}
		}()
		fctx := context.WithoutCancel(ctx)
		if c.fetchTimeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, c.fetchTimeout)
			defer cancel()
		}
		// A flight for this pair may have finished between our lookup and now.
		if q, ok := c.Lookup(fctx, pair); ok {
			return flightResult{quote: q, cached: true}, nil
		}
		q, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		_ = c.Store(fctx, q)
		return flightResult{quote: q}, nil
	})

	select {
	case <-ctx.Done():
		return domain.Quote{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Quote{}, false, res.Err
		}
		fr := res.Val.(flightResult)
		if res.Shared {
			c.log.Debug("quote_cache.shared_fetch", zap.String("pair", pair.Key()), zap.String("quote_id", fr.quote.ID))
		}
		return fr.quote, fr.cached, nil
	}
}
