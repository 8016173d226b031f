package memory

import (
	"context"
	"sync"

	"fxledger-service/internal/application"
	"fxledger-service/internal/domain"
)

var _ application.QuoteStore = (*QuoteStore)(nil)

// QuoteStore keeps the latest quote per pair in process memory.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes map[string]domain.Quote
}

func NewQuoteStore() *QuoteStore {
	return &QuoteStore{quotes: map[string]domain.Quote{}}
}

func (s *QuoteStore) Get(_ context.Context, pair domain.Pair) (domain.Quote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[pair.Key()]
	return q, ok, nil
}

func (s *QuoteStore) Set(_ context.Context, q domain.Quote) error {
	s.mu.Lock()
	s.quotes[q.Pair.Key()] = q
	s.mu.Unlock()
	return nil
}
