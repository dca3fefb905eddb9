package inmemory

import (
	"bytes"
	"context"
	"sort"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

type balanceRepository struct {
	store *store
}

// NewBalanceRepositoryImpl returns a new empty BalanceRepository.
func NewBalanceRepositoryImpl() domain.BalanceRepository {
	return &balanceRepository{newStore()}
}

func (r *balanceRepository) GetBalance(
	ctx context.Context, owner, asset domain.Pubkey,
) (uint64, error) {
	var balance uint64
	err := r.store.withTx(ctx, func(t *tx) error {
		balance = t.getBalance(balanceKey{owner, asset})
		return nil
	})
	return balance, err
}

func (r *balanceRepository) SetBalance(
	ctx context.Context, owner, asset domain.Pubkey, amount uint64,
) error {
	return r.store.withTx(ctx, func(t *tx) error {
		t.putBalance(balanceKey{owner, asset}, amount)
		return nil
	})
}

func (r *balanceRepository) GetBalancesByOwner(
	ctx context.Context, owner domain.Pubkey,
) ([]domain.Balance, error) {
	balances := make([]domain.Balance, 0)
	err := r.store.withTx(ctx, func(t *tx) error {
		for k, v := range t.allBalances() {
			if k.owner == owner {
				balances = append(balances, domain.Balance{
					Owner: k.owner, Asset: k.asset, Amount: v,
				})
			}
		}
		return nil
	})
	sort.Slice(balances, func(i, j int) bool {
		return bytes.Compare(balances[i].Asset[:], balances[j].Asset[:]) < 0
	})
	return balances, err
}
