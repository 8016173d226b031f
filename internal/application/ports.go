package application

import (
	"context"

	"fxledger-service/internal/domain"
)

// RateFetcher calls an upstream provider once for a pair.
type RateFetcher interface {
	Fetch(ctx context.Context, pair domain.Pair) (domain.Rate, error)
}

// QuoteStore is the substrate behind QuoteCache. Get returns ok=false when no
// entry exists; expiry is checked by the cache, not the store.
type QuoteStore interface {
	Get(ctx context.Context, pair domain.Pair) (domain.Quote, bool, error)
	Set(ctx context.Context, q domain.Quote) error
}

// QuoteJournal records every issued quote so it can be retrieved by id later.
type QuoteJournal interface {
	Append(ctx context.Context, q domain.Quote) error
	Get(ctx context.Context, id string) (domain.Quote, error)
}

// AccountStore persists accounts. FindByUserID returns domain.ErrAccountNotFound
// when the user has no account. Save returns the account as stored, with its
// new version, or domain.ErrVersionConflict when the stored version moved.
type AccountStore interface {
	FindByUserID(ctx context.Context, userID string) (domain.Account, error)
	Save(ctx context.Context, acc domain.Account) (domain.Account, error)
}

// EventSink receives committed balance changes. Emit must not block.
type EventSink interface {
	Emit(ctx context.Context, ev domain.BalanceEvent)
}

type noopSink struct{}

func (noopSink) Emit(context.Context, domain.BalanceEvent) {}
