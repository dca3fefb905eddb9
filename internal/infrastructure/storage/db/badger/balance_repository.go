package dbbadger

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type balanceRecord struct {
	Owner  string
	Asset  string
	Amount uint64
}

type balanceRepository struct {
	store *badgerhold.Store
}

// NewBalanceRepositoryImpl returns a BalanceRepository over the given store.
func NewBalanceRepositoryImpl(
	store *badgerhold.Store,
) domain.BalanceRepository {
	return &balanceRepository{store}
}

func (r *balanceRepository) GetBalance(
	ctx context.Context, owner, asset domain.Pubkey,
) (uint64, error) {
	var (
		record balanceRecord
		err    error
	)
	key := balanceKey(owner, asset)
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, key, &record)
	} else {
		err = r.store.Get(key, &record)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return record.Amount, nil
}

func (r *balanceRepository) SetBalance(
	ctx context.Context, owner, asset domain.Pubkey, amount uint64,
) error {
	key := balanceKey(owner, asset)
	tx := txFromContext(ctx)

	if amount == 0 {
		var err error
		if tx != nil {
			err = r.store.TxDelete(tx, key, balanceRecord{})
		} else {
			err = r.store.Delete(key, balanceRecord{})
		}
		if err != nil && err != badgerhold.ErrNotFound {
			return err
		}
		return nil
	}

	record := balanceRecord{
		Owner:  owner.String(),
		Asset:  asset.String(),
		Amount: amount,
	}
	if tx != nil {
		return r.store.TxUpsert(tx, key, record)
	}
	return r.store.Upsert(key, record)
}

func (r *balanceRepository) GetBalancesByOwner(
	ctx context.Context, owner domain.Pubkey,
) ([]domain.Balance, error) {
	var (
		records []balanceRecord
		err     error
	)
	query := badgerhold.Where("Owner").Eq(owner.String()).SortBy("Asset")
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxFind(tx, &records, query)
	} else {
		err = r.store.Find(&records, query)
	}
	if err != nil {
		return nil, err
	}

	balances := make([]domain.Balance, 0, len(records))
	for _, record := range records {
		asset, err := domain.NewPubkeyFromString(record.Asset)
		if err != nil {
			return nil, err
		}
		balances = append(balances, domain.Balance{
			Owner:  owner,
			Asset:  asset,
			Amount: record.Amount,
		})
	}
	return balances, nil
}

func balanceKey(owner, asset domain.Pubkey) string {
	return owner.String() + asset.String()
}
