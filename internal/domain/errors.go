package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrQuoteNotFound   = fmt.Errorf("quote %w", ErrNotFound)
	ErrInvalidPair     = errors.New("invalid currency pair")
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrVersionConflict = errors.New("account version conflict")
)

// ProviderError reports a failed or unparseable upstream rate fetch.
type ProviderError struct {
	Provider   string
	StatusCode int
	// Temporary is set for failures a retry may fix: transport errors, 429 and 5xx.
	Temporary bool
	Err       error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// StorageError wraps a persistence failure. No in-memory change is committed
// when one is returned.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }
