package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

type balanceRepository struct {
	db *sql.DB
}

// NewBalanceRepositoryImpl returns a BalanceRepository over the given db.
func NewBalanceRepositoryImpl(db *sql.DB) domain.BalanceRepository {
	return &balanceRepository{db}
}

func (r *balanceRepository) GetBalance(
	ctx context.Context, owner, asset domain.Pubkey,
) (uint64, error) {
	var amount string
	err := getQuerier(ctx, r.db).QueryRowContext(
		ctx, "SELECT amount FROM balance WHERE owner = ? AND asset = ?",
		owner.Bytes(), asset.Bytes(),
	).Scan(&amount)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseUint(amount, 10, 64)
}

func (r *balanceRepository) SetBalance(
	ctx context.Context, owner, asset domain.Pubkey, amount uint64,
) error {
	q := getQuerier(ctx, r.db)
	if amount == 0 {
		if _, err := q.ExecContext(
			ctx, "DELETE FROM balance WHERE owner = ? AND asset = ?",
			owner.Bytes(), asset.Bytes(),
		); err != nil {
			return fmt.Errorf("failed to delete balance of %s: %w", owner, err)
		}
		return nil
	}

	if _, err := q.ExecContext(
		ctx,
		`INSERT INTO balance (owner, asset, amount) VALUES (?,?,?)
		 ON CONFLICT (owner, asset) DO UPDATE SET amount = excluded.amount`,
		owner.Bytes(), asset.Bytes(), strconv.FormatUint(amount, 10),
	); err != nil {
		return fmt.Errorf("failed to update balance of %s: %w", owner, err)
	}
	return nil
}

func (r *balanceRepository) GetBalancesByOwner(
	ctx context.Context, owner domain.Pubkey,
) ([]domain.Balance, error) {
	rows, err := getQuerier(ctx, r.db).QueryContext(
		ctx, "SELECT asset, amount FROM balance WHERE owner = ? ORDER BY asset",
		owner.Bytes(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make([]domain.Balance, 0)
	for rows.Next() {
		var (
			asset  []byte
			amount string
		)
		if err := rows.Scan(&asset, &amount); err != nil {
			return nil, err
		}
		assetKey, err := domain.NewPubkeyFromBytes(asset)
		if err != nil {
			return nil, err
		}
		value, err := strconv.ParseUint(amount, 10, 64)
		if err != nil {
			return nil, err
		}
		balances = append(balances, domain.Balance{
			Owner: owner, Asset: assetKey, Amount: value,
		})
	}
	return balances, rows.Err()
}
