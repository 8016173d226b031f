package pg

import (
	"context"
	"errors"
	"fmt"

	"fxledger-service/internal/application"
	"fxledger-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var _ application.AccountStore = (*AccountStore)(nil)

type AccountStore struct {
	db  *DB
	uow *UnitOfWork
}

func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db, uow: &UnitOfWork{Pool: db.Pool}}
}

func (s *AccountStore) Ping(ctx context.Context) error { return s.db.Ping(ctx) }

func (s *AccountStore) FindByUserID(ctx context.Context, userID string) (domain.Account, error) {
	q := conn(ctx, s.db.Pool)
	acc := domain.Account{UserID: userID, Balances: map[string]decimal.Decimal{}}
	err := q.QueryRow(ctx,
		`SELECT version, created_at, updated_at FROM accounts WHERE user_id=$1`, userID,
	).Scan(&acc.Version, &acc.CreatedAt, &acc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("select account: %w", err)
	}

	rows, err := q.Query(ctx,
		`SELECT currency, amount::text FROM account_balances WHERE user_id=$1`, userID)
	if err != nil {
		return domain.Account{}, fmt.Errorf("select balances: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cur, amt string
		if err := rows.Scan(&cur, &amt); err != nil {
			return domain.Account{}, fmt.Errorf("scan balance: %w", err)
		}
		v, err := decimal.NewFromString(amt)
		if err != nil {
			return domain.Account{}, fmt.Errorf("parse balance %s: %w", cur, err)
		}
		acc.Balances[cur] = v
	}
	if err := rows.Err(); err != nil {
		return domain.Account{}, fmt.Errorf("iterate balances: %w", err)
	}
	return acc, nil
}

// Save writes the account and all of its balances in one transaction. The
// version row acts as a compare-and-swap: zero rows affected means another
// writer got there first.
func (s *AccountStore) Save(ctx context.Context, acc domain.Account) (domain.Account, error) {
	out := acc.Clone()
	out.Version = acc.Version + 1

	err := s.uow.Do(ctx, func(ctx context.Context) error {
		q := conn(ctx, s.db.Pool)

		var sql string
		var args []any
		if acc.Version == 0 {
			sql = `INSERT INTO accounts(user_id, version, created_at, updated_at)
			       VALUES ($1, 1, $2, $3)
			       ON CONFLICT (user_id) DO NOTHING`
			args = []any{acc.UserID, acc.CreatedAt, acc.UpdatedAt}
		} else {
			sql = `UPDATE accounts SET version = version + 1, updated_at = $3
			       WHERE user_id = $1 AND version = $2`
			args = []any{acc.UserID, acc.Version, acc.UpdatedAt}
		}
		tag, err := q.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("write account: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrVersionConflict
		}

		if len(acc.Balances) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for cur, amt := range acc.Balances {
			batch.Queue(`
				INSERT INTO account_balances(user_id, currency, amount)
				VALUES ($1, $2, $3::numeric)
				ON CONFLICT (user_id, currency) DO UPDATE SET amount = EXCLUDED.amount`,
				acc.UserID, cur, amt.String())
		}
		br := q.SendBatch(ctx, batch)
		for range acc.Balances {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("write balance: %w", err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return domain.Account{}, err
	}
	return out, nil
}
