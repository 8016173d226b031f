package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fxledger-service/internal/application"
	"fxledger-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const quoteKeyPrefix = "fxquote:v1:"

var _ application.QuoteStore = (*QuoteStore)(nil)

// QuoteStore keeps one JSON entry per pair and lets Redis evict it at expiry,
// so every replica sharing the instance sees the same quote id.
type QuoteStore struct {
	Client *redis.Client
	now    func() time.Time
}

func NewQuoteStore(client *redis.Client) *QuoteStore {
	return &QuoteStore{Client: client, now: time.Now}
}

type quoteEntry struct {
	QuoteID           string          `json:"quoteId"`
	From              string          `json:"from"`
	To                string          `json:"to"`
	Rate              decimal.Decimal `json:"rate"`
	FetchedAt         time.Time       `json:"fetchedAt"`
	Expiry            time.Time       `json:"expiry"`
	ProviderTimestamp string          `json:"providerTimestamp,omitempty"`
}

func quoteKey(p domain.Pair) string { return quoteKeyPrefix + p.Key() }

func (s *QuoteStore) Get(ctx context.Context, pair domain.Pair) (domain.Quote, bool, error) {
	b, err := s.Client.Get(ctx, quoteKey(pair)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Quote{}, false, nil
	}
	if err != nil {
		return domain.Quote{}, false, err
	}
	var e quoteEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return domain.Quote{}, false, fmt.Errorf("decode quote entry: %w", err)
	}
	return domain.Quote{
		ID:                e.QuoteID,
		Pair:              domain.Pair{From: e.From, To: e.To},
		Rate:              e.Rate,
		FetchedAt:         e.FetchedAt,
		Expiry:            e.Expiry,
		ProviderTimestamp: e.ProviderTimestamp,
	}, true, nil
}

func (s *QuoteStore) Set(ctx context.Context, q domain.Quote) error {
	key := quoteKey(q.Pair)
	ttl := q.Expiry.Sub(s.now())
	if ttl <= 0 {
		return s.Client.Del(ctx, key).Err()
	}
	b, err := json.Marshal(quoteEntry{
		QuoteID:           q.ID,
		From:              q.Pair.From,
		To:                q.Pair.To,
		Rate:              q.Rate,
		FetchedAt:         q.FetchedAt,
		Expiry:            q.Expiry,
		ProviderTimestamp: q.ProviderTimestamp,
	})
	if err != nil {
		return fmt.Errorf("encode quote entry: %w", err)
	}
	return s.Client.Set(ctx, key, b, ttl).Err()
}
