package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

type vaultRepository struct {
	db *sql.DB
}

// NewVaultRepositoryImpl returns a VaultRepository over the given db.
func NewVaultRepositoryImpl(db *sql.DB) domain.VaultRepository {
	return &vaultRepository{db}
}

func (r *vaultRepository) AddVault(
	ctx context.Context, vault domain.Vault,
) error {
	res, err := getQuerier(ctx, r.db).ExecContext(
		ctx,
		`INSERT INTO vault (address, escrow, asset, bump) VALUES (?,?,?,?)
		 ON CONFLICT (address) DO NOTHING`,
		vault.Address.Bytes(), vault.Escrow.Bytes(), vault.Asset.Bytes(),
		vault.Bump,
	)
	if err != nil {
		return fmt.Errorf("failed to insert vault %s: %w", vault.Address, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.ErrVaultAlreadyExists
	}
	return nil
}

func (r *vaultRepository) GetVault(
	ctx context.Context, address domain.Pubkey,
) (*domain.Vault, error) {
	var (
		escrow, asset []byte
		bump          uint8
	)
	err := getQuerier(ctx, r.db).QueryRowContext(
		ctx, "SELECT escrow, asset, bump FROM vault WHERE address = ?",
		address.Bytes(),
	).Scan(&escrow, &asset, &bump)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrVaultNotFound
		}
		return nil, err
	}

	vault := &domain.Vault{Address: address, Bump: bump}
	if vault.Escrow, err = domain.NewPubkeyFromBytes(escrow); err != nil {
		return nil, err
	}
	if vault.Asset, err = domain.NewPubkeyFromBytes(asset); err != nil {
		return nil, err
	}
	return vault, nil
}

func (r *vaultRepository) DeleteVault(
	ctx context.Context, address domain.Pubkey,
) error {
	res, err := getQuerier(ctx, r.db).ExecContext(
		ctx, "DELETE FROM vault WHERE address = ?", address.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete vault %s: %w", address, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.ErrVaultNotFound
	}
	return nil
}
