package ports

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

// RepoManager interface defines the methods for escrow, vault and balance
// repositories.
type RepoManager interface {
	EscrowRepository() domain.EscrowRepository
	VaultRepository() domain.VaultRepository
	BalanceRepository() domain.BalanceRepository

	// RunTransaction executes the handler within a database transaction that
	// is committed if the handler returns no error, discarded otherwise.
	// Repositories read and write through the transaction carried by the
	// context given to the handler. Read-write transactions are serialized.
	RunTransaction(
		ctx context.Context,
		readOnly bool,
		handler func(ctx context.Context) (interface{}, error),
	) (interface{}, error)

	Close()
}
