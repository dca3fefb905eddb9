package domain

import "context"

// VaultRepository is the abstraction for any kind of database intended to
// persist escrow Vaults.
type VaultRepository interface {
	// AddVault stores the vault or fails with ErrVaultAlreadyExists.
	AddVault(ctx context.Context, vault Vault) error
	// GetVault returns the vault at the given address or ErrVaultNotFound.
	GetVault(ctx context.Context, address Pubkey) (*Vault, error)
	// DeleteVault removes the vault at the given address or returns
	// ErrVaultNotFound.
	DeleteVault(ctx context.Context, address Pubkey) error
}
