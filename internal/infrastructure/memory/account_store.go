package memory

import (
	"context"
	"sync"

	"fxledger-service/internal/application"
	"fxledger-service/internal/domain"
)

var _ application.AccountStore = (*AccountStore)(nil)

// AccountStore holds accounts by value; callers never share a Balances map
// with the store.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: map[string]domain.Account{}}
}

func (s *AccountStore) FindByUserID(_ context.Context, userID string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[userID]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return acc.Clone(), nil
}

func (s *AccountStore) Save(_ context.Context, acc domain.Account) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.accounts[acc.UserID]
	if (ok && cur.Version != acc.Version) || (!ok && acc.Version != 0) {
		return domain.Account{}, domain.ErrVersionConflict
	}
	stored := acc.Clone()
	stored.Version++
	s.accounts[acc.UserID] = stored
	return stored.Clone(), nil
}

// Ping always succeeds; it lets the readiness probe treat every store alike.
func (s *AccountStore) Ping(context.Context) error { return nil }
