package dbbadger

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type vaultRecord struct {
	Address string
	Escrow  string
	Asset   string
	Bump    uint8
}

type vaultRepository struct {
	store *badgerhold.Store
}

// NewVaultRepositoryImpl returns a VaultRepository over the given store.
func NewVaultRepositoryImpl(store *badgerhold.Store) domain.VaultRepository {
	return &vaultRepository{store}
}

func (r *vaultRepository) AddVault(
	ctx context.Context, vault domain.Vault,
) error {
	record := vaultRecord{
		Address: vault.Address.String(),
		Escrow:  vault.Escrow.String(),
		Asset:   vault.Asset.String(),
		Bump:    vault.Bump,
	}

	var err error
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxInsert(tx, record.Address, record)
	} else {
		err = r.store.Insert(record.Address, record)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrVaultAlreadyExists
		}
		return err
	}
	return nil
}

func (r *vaultRepository) GetVault(
	ctx context.Context, address domain.Pubkey,
) (*domain.Vault, error) {
	record, err := r.getRecord(ctx, address.String())
	if err != nil {
		return nil, err
	}
	return record.toDomain()
}

func (r *vaultRepository) DeleteVault(
	ctx context.Context, address domain.Pubkey,
) error {
	key := address.String()
	if _, err := r.getRecord(ctx, key); err != nil {
		return err
	}

	if tx := txFromContext(ctx); tx != nil {
		return r.store.TxDelete(tx, key, vaultRecord{})
	}
	return r.store.Delete(key, vaultRecord{})
}

func (r *vaultRepository) getRecord(
	ctx context.Context, key string,
) (*vaultRecord, error) {
	var (
		record vaultRecord
		err    error
	)
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, key, &record)
	} else {
		err = r.store.Get(key, &record)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrVaultNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r vaultRecord) toDomain() (*domain.Vault, error) {
	address, err := domain.NewPubkeyFromString(r.Address)
	if err != nil {
		return nil, err
	}
	escrow, err := domain.NewPubkeyFromString(r.Escrow)
	if err != nil {
		return nil, err
	}
	asset, err := domain.NewPubkeyFromString(r.Asset)
	if err != nil {
		return nil, err
	}
	return &domain.Vault{
		Address: address,
		Escrow:  escrow,
		Asset:   asset,
		Bump:    r.Bump,
	}, nil
}
