package application

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/application/ledger"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

type LedgerService interface {
	GetBalances(
		ctx context.Context, owner domain.Pubkey,
	) ([]domain.Balance, error)
	GetBalance(
		ctx context.Context, owner, asset domain.Pubkey,
	) (uint64, error)
	Mint(ctx context.Context, to, asset domain.Pubkey, amount uint64) error
}

func NewLedgerService(
	repoManager ports.RepoManager, enableFaucet bool,
) (LedgerService, error) {
	return ledger.NewService(repoManager, enableFaucet)
}
