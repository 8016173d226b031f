package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fxledger-service/internal/domain"

	"github.com/shopspring/decimal"
)

var ErrRepo = errors.New("repo error")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type seqIDGen struct{ n atomic.Int64 }

func (g *seqIDGen) NewID() string { return fmt.Sprintf("quote-%d", g.n.Add(1)) }

type fakeQuoteStore struct {
	mu     sync.Mutex
	store  map[string]domain.Quote
	getErr error
	setErr error
}

func (f *fakeQuoteStore) Get(_ context.Context, pair domain.Pair) (domain.Quote, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.Quote{}, false, f.getErr
	}
	q, ok := f.store[pair.Key()]
	return q, ok, nil
}

func (f *fakeQuoteStore) Set(_ context.Context, q domain.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	if f.store == nil {
		f.store = map[string]domain.Quote{}
	}
	f.store[q.Pair.Key()] = q
	return nil
}

// fakeFetcher counts calls and can hold every call until release is closed.
type fakeFetcher struct {
	calls   atomic.Int32
	rate    string
	err     error
	release chan struct{}
	started chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context, _ domain.Pair) (domain.Rate, error) {
	f.calls.Add(1)
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return domain.Rate{}, ctx.Err()
		}
	}
	if f.err != nil {
		return domain.Rate{}, f.err
	}
	return domain.Rate{Value: decimal.RequireFromString(f.rate), Timestamp: "2024-04-25 15:35:01"}, nil
}

type fakeJournal struct {
	mu     sync.Mutex
	quotes map[string]domain.Quote
	err    error
}

func (f *fakeJournal) Append(_ context.Context, q domain.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.quotes == nil {
		f.quotes = map[string]domain.Quote{}
	}
	f.quotes[q.ID] = q
	return nil
}

func (f *fakeJournal) Get(_ context.Context, id string) (domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quotes[id]
	if !ok {
		return domain.Quote{}, domain.ErrQuoteNotFound
	}
	return q, nil
}

// fakeAccountStore keeps accounts by value. beforeSave, when set, runs
// outside the store mutex so tests can park a save.
type fakeAccountStore struct {
	mu         sync.Mutex
	accounts   map[string]domain.Account
	findErr    error
	saveErr    error
	beforeSave func(acc domain.Account)
	saves      atomic.Int32
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: map[string]domain.Account{}}
}

func (f *fakeAccountStore) FindByUserID(_ context.Context, userID string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return domain.Account{}, f.findErr
	}
	acc, ok := f.accounts[userID]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return acc.Clone(), nil
}

func (f *fakeAccountStore) Save(_ context.Context, acc domain.Account) (domain.Account, error) {
	if f.beforeSave != nil {
		f.beforeSave(acc)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves.Add(1)
	if f.saveErr != nil {
		return domain.Account{}, f.saveErr
	}
	if cur, ok := f.accounts[acc.UserID]; ok && cur.Version != acc.Version {
		return domain.Account{}, domain.ErrVersionConflict
	}
	stored := acc.Clone()
	stored.Version++
	f.accounts[acc.UserID] = stored
	return stored.Clone(), nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.BalanceEvent
}

func (r *recordingSink) Emit(_ context.Context, ev domain.BalanceEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recordingSink) all() []domain.BalanceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.BalanceEvent(nil), r.events...)
}
