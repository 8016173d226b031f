package application

import (
	"context"
	"time"

	"fxledger-service/internal/domain"
	"fxledger-service/internal/metrics"

	"go.uber.org/zap"
)

type QuoteService struct {
	cache   *QuoteCache
	fetcher RateFetcher
	journal QuoteJournal
	ttl     time.Duration
	clock   Clock
	idgen   IDGen
	log     *zap.Logger
}

type Option func(*QuoteService)

func WithClock(c Clock) Option          { return func(s *QuoteService) { s.clock = c } }
func WithIDGen(g IDGen) Option          { return func(s *QuoteService) { s.idgen = g } }
func WithJournal(j QuoteJournal) Option { return func(s *QuoteService) { s.journal = j } }
func WithLogger(l *zap.Logger) Option   { return func(s *QuoteService) { s.log = l } }

func NewQuoteService(cache *QuoteCache, fetcher RateFetcher, ttl time.Duration, opts ...Option) *QuoteService {
	s := &QuoteService{
		cache:   cache,
		fetcher: fetcher,
		ttl:     ttl,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.idgen == nil {
		s.idgen = defaultIDGen{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// GetQuote returns the current quote for from/to, fetching upstream only when
// no unexpired quote is cached.
func (s *QuoteService) GetQuote(ctx context.Context, from, to string) (domain.Quote, error) {
	pair, err := domain.ParsePair(from, to)
	if err != nil {
		return domain.Quote{}, err
	}
	q, hit, err := s.cache.GetOrFetch(ctx, pair, func(fctx context.Context) (domain.Quote, error) {
		return s.fetch(fctx, pair)
	})
	if err != nil {
		return domain.Quote{}, err
	}
	s.log.Debug("quote.served",
		zap.String("pair", pair.Key()),
		zap.String("quote_id", q.ID),
		zap.Bool("cache_hit", hit),
	)
	return q, nil
}

// GetQuoteSummary is GetQuote without the rate.
func (s *QuoteService) GetQuoteSummary(ctx context.Context, from, to string) (domain.QuoteSummary, error) {
	q, err := s.GetQuote(ctx, from, to)
	if err != nil {
		return domain.QuoteSummary{}, err
	}
	return q.Summary(), nil
}

// GetIssuedQuote returns a previously issued quote by id, expired or not.
func (s *QuoteService) GetIssuedQuote(ctx context.Context, id string) (domain.Quote, error) {
	if s.journal == nil || id == "" {
		return domain.Quote{}, domain.ErrQuoteNotFound
	}
	return s.journal.Get(ctx, id)
}

func (s *QuoteService) fetch(ctx context.Context, pair domain.Pair) (domain.Quote, error) {
	start := time.Now()
	rate, err := s.fetcher.Fetch(ctx, pair)
	metrics.ProviderFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderFetches.WithLabelValues("error").Inc()
		s.log.Warn("quote.fetch_failed", zap.String("pair", pair.Key()), zap.Error(err))
		return domain.Quote{}, err
	}
	metrics.ProviderFetches.WithLabelValues("ok").Inc()

	now := s.clock.Now()
	q := domain.Quote{
		ID:                s.idgen.NewID(),
		Pair:              pair,
		Rate:              rate.Value,
		FetchedAt:         now,
		Expiry:            now.Add(s.ttl),
		ProviderTimestamp: rate.Timestamp,
	}
	if s.journal != nil {
		if err := s.journal.Append(ctx, q); err != nil {
			s.log.Warn("quote.journal_append_failed", zap.String("quote_id", q.ID), zap.Error(err))
		}
	}
	s.log.Info("quote.fetched",
		zap.String("pair", pair.Key()),
		zap.String("quote_id", q.ID),
		zap.String("rate", q.Rate.String()),
		zap.Time("expiry", q.Expiry),
	)
	return q, nil
}
