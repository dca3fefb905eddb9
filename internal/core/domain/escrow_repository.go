package domain

import "context"

// EscrowRepository is the abstraction for any kind of database intended to
// persist open Escrows. The existence of an escrow at a given address is what
// makes it open: closing an escrow means deleting it.
type EscrowRepository interface {
	// AddEscrow stores the escrow at the given address. It must fail with
	// ErrEscrowAlreadyExists if the address is already occupied.
	AddEscrow(ctx context.Context, address Pubkey, escrow Escrow) error
	// GetEscrow returns the escrow at the given address or ErrEscrowNotFound.
	GetEscrow(ctx context.Context, address Pubkey) (*Escrow, error)
	// GetEscrowsByMaker returns all open escrows created by maker.
	GetEscrowsByMaker(ctx context.Context, maker Pubkey) ([]Escrow, error)
	// GetAllEscrows returns all open escrows.
	GetAllEscrows(ctx context.Context) ([]Escrow, error)
	// DeleteEscrow removes the escrow at the given address or returns
	// ErrEscrowNotFound.
	DeleteEscrow(ctx context.Context, address Pubkey) error
}
