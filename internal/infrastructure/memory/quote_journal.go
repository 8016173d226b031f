package memory

import (
	"context"
	"sync"

	"fxledger-service/internal/application"
	"fxledger-service/internal/domain"
)

var _ application.QuoteJournal = (*QuoteJournal)(nil)

type QuoteJournal struct {
	mu     sync.RWMutex
	quotes map[string]domain.Quote
}

func NewQuoteJournal() *QuoteJournal {
	return &QuoteJournal{quotes: map[string]domain.Quote{}}
}

func (j *QuoteJournal) Append(_ context.Context, q domain.Quote) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.quotes[q.ID]; ok {
		return nil
	}
	j.quotes[q.ID] = q
	return nil
}

func (j *QuoteJournal) Get(_ context.Context, id string) (domain.Quote, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	q, ok := j.quotes[id]
	if !ok {
		return domain.Quote{}, domain.ErrQuoteNotFound
	}
	return q, nil
}
