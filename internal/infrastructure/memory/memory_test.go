package memory_test

import (
	"context"
	"testing"
	"time"

	"fxledger-service/internal/domain"
	"fxledger-service/internal/infrastructure/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestQuoteStore_SetGet(t *testing.T) {
	s := memory.NewQuoteStore()
	ctx := context.Background()
	pair := domain.Pair{From: "USD", To: "INR"}

	_, ok, err := s.Get(ctx, pair)
	require.NoError(t, err)
	require.False(t, ok)

	q := domain.Quote{ID: "q1", Pair: pair, Rate: decimal.RequireFromString("83.31"), Expiry: time.Now().Add(time.Minute)}
	require.NoError(t, s.Set(ctx, q))
	got, ok, err := s.Get(ctx, pair)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "q1", got.ID)

	_, ok, _ = s.Get(ctx, domain.Pair{From: "INR", To: "USD"})
	require.False(t, ok)
}

func TestQuoteJournal(t *testing.T) {
	j := memory.NewQuoteJournal()
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, domain.Quote{ID: "q1", Rate: decimal.RequireFromString("1.1")}))
	// First write wins.
	require.NoError(t, j.Append(ctx, domain.Quote{ID: "q1", Rate: decimal.RequireFromString("9.9")}))

	got, err := j.Get(ctx, "q1")
	require.NoError(t, err)
	require.Equal(t, "1.1", got.Rate.String())

	_, err = j.Get(ctx, "q2")
	require.ErrorIs(t, err, domain.ErrQuoteNotFound)
}

func TestAccountStore_SaveAndFind(t *testing.T) {
	s := memory.NewAccountStore()
	ctx := context.Background()

	_, err := s.FindByUserID(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	acc := domain.NewAccount("u1", time.Now())
	acc.Credit("USD", decimal.NewFromInt(100))
	saved, err := s.Save(ctx, acc)
	require.NoError(t, err)
	require.Equal(t, int64(1), saved.Version)

	found, err := s.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(1), found.Version)
	require.Equal(t, "100", found.Balance("USD").String())

	// Mutating the returned copy must not leak into the store.
	found.Balances["USD"] = decimal.NewFromInt(1)
	again, err := s.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "100", again.Balance("USD").String())
}

func TestAccountStore_VersionConflict(t *testing.T) {
	s := memory.NewAccountStore()
	ctx := context.Background()

	_, err := s.Save(ctx, domain.NewAccount("u1", time.Now()))
	require.NoError(t, err)

	a, err := s.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	b, err := s.FindByUserID(ctx, "u1")
	require.NoError(t, err)

	a.Credit("USD", decimal.NewFromInt(1))
	_, err = s.Save(ctx, a)
	require.NoError(t, err)

	b.Credit("USD", decimal.NewFromInt(2))
	_, err = s.Save(ctx, b)
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	// A second create for an existing user is a conflict too.
	_, err = s.Save(ctx, domain.NewAccount("u1", time.Now()))
	require.ErrorIs(t, err, domain.ErrVersionConflict)
}
