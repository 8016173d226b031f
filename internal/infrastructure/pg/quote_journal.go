package pg

import (
	"context"
	"errors"
	"fmt"

	"fxledger-service/internal/application"
	"fxledger-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var _ application.QuoteJournal = (*QuoteJournal)(nil)

type QuoteJournal struct{ db *DB }

func NewQuoteJournal(db *DB) *QuoteJournal { return &QuoteJournal{db: db} }

func (j *QuoteJournal) Append(ctx context.Context, q domain.Quote) error {
	_, err := conn(ctx, j.db.Pool).Exec(ctx, `
        INSERT INTO quotes_history(id, from_currency, to_currency, rate, fetched_at, expires_at, provider_ts)
        VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
        ON CONFLICT (id) DO NOTHING
    `, q.ID, q.Pair.From, q.Pair.To, q.Rate.String(), q.FetchedAt, q.Expiry, q.ProviderTimestamp)
	return err
}

func (j *QuoteJournal) Get(ctx context.Context, id string) (domain.Quote, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Quote{}, domain.ErrQuoteNotFound
	}
	var (
		out  domain.Quote
		rate string
	)
	err := conn(ctx, j.db.Pool).QueryRow(ctx, `
        SELECT id::text, from_currency, to_currency, rate::text, fetched_at, expires_at, provider_ts
        FROM quotes_history WHERE id=$1
    `, id).Scan(&out.ID, &out.Pair.From, &out.Pair.To, &rate, &out.FetchedAt, &out.Expiry, &out.ProviderTimestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quote{}, domain.ErrQuoteNotFound
	}
	if err != nil {
		return domain.Quote{}, fmt.Errorf("select quote: %w", err)
	}
	if out.Rate, err = decimal.NewFromString(rate); err != nil {
		return domain.Quote{}, fmt.Errorf("parse rate: %w", err)
	}
	return out, nil
}
