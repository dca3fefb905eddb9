package inmemory

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

type vaultRepository struct {
	store *store
}

// NewVaultRepositoryImpl returns a new empty VaultRepository.
func NewVaultRepositoryImpl() domain.VaultRepository {
	return &vaultRepository{newStore()}
}

func (r *vaultRepository) AddVault(
	ctx context.Context, vault domain.Vault,
) error {
	return r.store.withTx(ctx, func(t *tx) error {
		if _, ok := t.getVault(vault.Address); ok {
			return domain.ErrVaultAlreadyExists
		}
		t.putVault(vault.Address, &vault)
		return nil
	})
}

func (r *vaultRepository) GetVault(
	ctx context.Context, address domain.Pubkey,
) (*domain.Vault, error) {
	var vault domain.Vault
	err := r.store.withTx(ctx, func(t *tx) error {
		v, ok := t.getVault(address)
		if !ok {
			return domain.ErrVaultNotFound
		}
		vault = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &vault, nil
}

func (r *vaultRepository) DeleteVault(
	ctx context.Context, address domain.Pubkey,
) error {
	return r.store.withTx(ctx, func(t *tx) error {
		if _, ok := t.getVault(address); !ok {
			return domain.ErrVaultNotFound
		}
		t.putVault(address, nil)
		return nil
	})
}
