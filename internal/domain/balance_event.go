package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceEvent is emitted after a top-up has been persisted.
type BalanceEvent struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	Currency   string          `json:"currency"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	OccurredAt time.Time       `json:"occurredAt"`
}
