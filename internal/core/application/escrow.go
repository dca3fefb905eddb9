package application

import (
	"context"
	"time"

	"github.com/tdex-network/tdex-escrow/internal/core/application/escrow"
	"github.com/tdex-network/tdex-escrow/internal/core/application/pubsub"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

type EscrowAddresses = escrow.Addresses

type EscrowService interface {
	MakeEscrow(
		ctx context.Context, maker domain.Pubkey, args domain.MakeArgs,
	) (*domain.EscrowHandle, error)
	TakeEscrow(
		ctx context.Context, taker, address domain.Pubkey,
	) (*domain.Settlement, error)
	RefundEscrow(
		ctx context.Context, caller, address domain.Pubkey,
	) (*domain.Settlement, error)
	GetEscrow(
		ctx context.Context, address domain.Pubkey,
	) (*domain.EscrowHandle, error)
	ListEscrows(
		ctx context.Context, maker domain.Pubkey,
	) ([]domain.EscrowHandle, error)
	DeriveEscrowAddress(
		ctx context.Context, maker domain.Pubkey, seed uint64,
	) (*EscrowAddresses, error)
}

func NewEscrowService(
	repoManager ports.RepoManager, pubsubSvc PubSubService,
	programID domain.Pubkey, policy domain.Policy, now func() time.Time,
) (EscrowService, error) {
	p, _ := pubsubSvc.(*pubsub.Service)
	return escrow.NewService(repoManager, p, programID, policy, now)
}
