package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is an immutable snapshot of an upstream rate for a pair.
// ID and Rate are fixed at fetch time; a refetch produces a new Quote.
type Quote struct {
	ID                string
	Pair              Pair
	Rate              decimal.Decimal
	FetchedAt         time.Time
	Expiry            time.Time
	ProviderTimestamp string
}

// Valid reports whether the quote is still usable at now.
func (q Quote) Valid(now time.Time) bool {
	return now.Before(q.Expiry)
}

// QuoteSummary is the part of a quote a caller commits to before reading the rate.
type QuoteSummary struct {
	ID     string
	Expiry time.Time
}

func (q Quote) Summary() QuoteSummary {
	return QuoteSummary{ID: q.ID, Expiry: q.Expiry}
}

// Rate is what a provider returns for a single pair.
type Rate struct {
	Value     decimal.Decimal
	Timestamp string
}
