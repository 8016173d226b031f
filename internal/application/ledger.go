package application

import (
	"context"
	"errors"

	"fxledger-service/internal/domain"
	"fxledger-service/internal/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger owns per-user balances. Mutations for one user are serialized by a
// per-user lock; different users proceed independently.
type Ledger struct {
	store  AccountStore
	locks  *keyedLock
	events EventSink
	clock  Clock
	idgen  IDGen
	log    *zap.Logger
}

type LedgerOption func(*Ledger)

func WithEvents(s EventSink) LedgerOption          { return func(l *Ledger) { l.events = s } }
func WithLedgerClock(c Clock) LedgerOption         { return func(l *Ledger) { l.clock = c } }
func WithLedgerIDGen(g IDGen) LedgerOption         { return func(l *Ledger) { l.idgen = g } }
func WithLedgerLogger(lg *zap.Logger) LedgerOption { return func(l *Ledger) { l.log = lg } }

func NewLedger(store AccountStore, opts ...LedgerOption) *Ledger {
	l := &Ledger{store: store, locks: newKeyedLock()}
	for _, opt := range opts {
		opt(l)
	}
	if l.events == nil {
		l.events = noopSink{}
	}
	if l.clock == nil {
		l.clock = realClock{}
	}
	if l.idgen == nil {
		l.idgen = defaultIDGen{}
	}
	if l.log == nil {
		l.log = zap.NewNop()
	}
	return l
}

// TopUp credits amount to the user's currency balance and returns the new
// balance. The account is created on first top-up. Nothing is committed
// unless the store accepts the save.
func (l *Ledger) TopUp(ctx context.Context, userID, currency string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		metrics.LedgerTopUps.WithLabelValues("rejected").Inc()
		return decimal.Zero, domain.ErrInvalidAmount
	}
	currency = domain.NormalizeCurrency(currency)
	if !domain.ValidCurrency(currency) {
		metrics.LedgerTopUps.WithLabelValues("rejected").Inc()
		return decimal.Zero, domain.ErrInvalidCurrency
	}

	unlock, err := l.locks.Lock(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	defer unlock()

	acc, err := l.store.FindByUserID(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		acc = domain.NewAccount(userID, l.clock.Now())
	case err != nil:
		metrics.LedgerTopUps.WithLabelValues("storage_error").Inc()
		return decimal.Zero, &domain.StorageError{Op: "find account", Err: err}
	}

	next := acc.Clone()
	balance := next.Credit(currency, amount)
	next.UpdatedAt = l.clock.Now()

	if _, err := l.store.Save(ctx, next); err != nil {
		metrics.LedgerTopUps.WithLabelValues("storage_error").Inc()
		l.log.Error("ledger.top_up_save_failed",
			zap.String("user_id", userID),
			zap.String("currency", currency),
			zap.Error(err),
		)
		return decimal.Zero, &domain.StorageError{Op: "save account", Err: err}
	}
	metrics.LedgerTopUps.WithLabelValues("committed").Inc()

	l.log.Info("ledger.top_up_committed",
		zap.String("user_id", userID),
		zap.String("currency", currency),
		zap.String("amount", amount.String()),
		zap.String("balance", balance.String()),
	)
	l.events.Emit(ctx, domain.BalanceEvent{
		ID:         l.idgen.NewID(),
		UserID:     userID,
		Currency:   currency,
		Amount:     amount,
		Balance:    balance,
		OccurredAt: next.UpdatedAt,
	})
	return balance, nil
}

// GetBalance returns the balance for currency, zero if it was never credited.
func (l *Ledger) GetBalance(ctx context.Context, userID, currency string) (decimal.Decimal, error) {
	acc, err := l.load(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Balance(domain.NormalizeCurrency(currency)), nil
}

// GetBalances returns a copy of every credited currency balance.
func (l *Ledger) GetBalances(ctx context.Context, userID string) (map[string]decimal.Decimal, error) {
	acc, err := l.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return acc.Clone().Balances, nil
}

// OpenAccount creates an empty account for userID. When one already exists it
// is returned unchanged with created=false.
func (l *Ledger) OpenAccount(ctx context.Context, userID string) (domain.Account, bool, error) {
	unlock, err := l.locks.Lock(ctx, userID)
	if err != nil {
		return domain.Account{}, false, err
	}
	defer unlock()

	acc, err := l.store.FindByUserID(ctx, userID)
	if err == nil {
		return acc, false, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return domain.Account{}, false, &domain.StorageError{Op: "find account", Err: err}
	}

	saved, err := l.store.Save(ctx, domain.NewAccount(userID, l.clock.Now()))
	if err != nil {
		return domain.Account{}, false, &domain.StorageError{Op: "create account", Err: err}
	}
	l.log.Info("ledger.account_opened", zap.String("user_id", userID))
	return saved, true, nil
}

func (l *Ledger) load(ctx context.Context, userID string) (domain.Account, error) {
	acc, err := l.store.FindByUserID(ctx, userID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, &domain.StorageError{Op: "find account", Err: err}
	}
	return acc, nil
}
