package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a user's balances keyed by currency code.
// A currency absent from Balances has a balance of zero.
type Account struct {
	UserID    string
	Balances  map[string]decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewAccount(userID string, now time.Time) Account {
	return Account{
		UserID:    userID,
		Balances:  map[string]decimal.Decimal{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Balance returns the balance for currency, or zero when it was never credited.
func (a Account) Balance(currency string) decimal.Decimal {
	if v, ok := a.Balances[currency]; ok {
		return v
	}
	return decimal.Zero
}

// Credit adds amount to the currency balance and returns the new balance.
func (a *Account) Credit(currency string, amount decimal.Decimal) decimal.Decimal {
	if a.Balances == nil {
		a.Balances = map[string]decimal.Decimal{}
	}
	next := a.Balance(currency).Add(amount)
	a.Balances[currency] = next
	return next
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (a Account) Clone() Account {
	out := a
	out.Balances = make(map[string]decimal.Decimal, len(a.Balances))
	for k, v := range a.Balances {
		out.Balances[k] = v
	}
	return out
}
