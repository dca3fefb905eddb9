package domain

import "context"

// Balance is the amount of an asset held by an owner.
type Balance struct {
	Owner  Pubkey
	Asset  Pubkey
	Amount uint64
}

// BalanceRepository is the abstraction for any kind of database intended to
// persist account balances.
type BalanceRepository interface {
	// GetBalance returns the amount of asset held by owner, zero if none.
	GetBalance(ctx context.Context, owner, asset Pubkey) (uint64, error)
	// SetBalance overwrites the amount of asset held by owner. Setting a zero
	// amount removes the balance.
	SetBalance(ctx context.Context, owner, asset Pubkey, amount uint64) error
	// GetBalancesByOwner returns all non-zero balances of owner.
	GetBalancesByOwner(ctx context.Context, owner Pubkey) ([]Balance, error)
}
