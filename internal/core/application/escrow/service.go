package escrow

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/application/pubsub"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/pkg/stats"
)

// Addresses are the program addresses derived for a maker and a seed.
type Addresses struct {
	Escrow domain.Pubkey `json:"escrow"`
	Vault  domain.Pubkey `json:"vault"`
}

type Service struct {
	repoManager ports.RepoManager
	pubsub      *pubsub.Service
	protocol    *domain.EscrowProtocol
}

// NewService returns the escrow service. A nil clock means the system one.
func NewService(
	repoManager ports.RepoManager,
	pubsubSvc *pubsub.Service,
	programID domain.Pubkey,
	policy domain.Policy,
	now func() time.Time,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}

	// Repositories resolve the transaction from the context, so a single
	// protocol instance serves every unit of work.
	protocol, err := domain.NewEscrowProtocol(
		programID, policy,
		repoManager.EscrowRepository(),
		repoManager.VaultRepository(),
		repoManager.BalanceRepository(),
		now,
	)
	if err != nil {
		return nil, err
	}

	return &Service{repoManager, pubsubSvc, protocol}, nil
}

func (s *Service) MakeEscrow(
	ctx context.Context, maker domain.Pubkey, args domain.MakeArgs,
) (*domain.EscrowHandle, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			return s.protocol.Make(ctx, maker, args)
		},
	)
	if err != nil {
		stats.FailedOperations.WithLabelValues(
			"make", domain.ErrorCode(err),
		).Inc()
		return nil, err
	}
	escrow := res.(*domain.EscrowHandle)

	stats.EscrowsOpened.Inc()
	log.WithFields(log.Fields{
		"address": escrow.Address,
		"maker":   maker,
		"seed":    args.Seed,
	}).Info("escrow opened")

	if err := s.pubsub.PublishEscrowOpenedEvent(*escrow); err != nil {
		log.WithError(err).Warnf(
			"pubsub: failed to publish event for opened escrow %s",
			escrow.Address,
		)
	}
	return escrow, nil
}

func (s *Service) TakeEscrow(
	ctx context.Context, taker, address domain.Pubkey,
) (*domain.Settlement, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			return s.protocol.Take(ctx, taker, address)
		},
	)
	if err != nil {
		stats.FailedOperations.WithLabelValues(
			"take", domain.ErrorCode(err),
		).Inc()
		return nil, err
	}
	settlement := res.(*domain.Settlement)

	stats.EscrowsSettled.Inc()
	log.WithFields(log.Fields{
		"address": address,
		"taker":   taker,
	}).Info("escrow settled")

	if err := s.pubsub.PublishEscrowSettledEvent(*settlement); err != nil {
		log.WithError(err).Warnf(
			"pubsub: failed to publish event for settled escrow %s", address,
		)
	}
	return settlement, nil
}

func (s *Service) RefundEscrow(
	ctx context.Context, caller, address domain.Pubkey,
) (*domain.Settlement, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			return s.protocol.Refund(ctx, caller, address)
		},
	)
	if err != nil {
		stats.FailedOperations.WithLabelValues(
			"refund", domain.ErrorCode(err),
		).Inc()
		return nil, err
	}
	settlement := res.(*domain.Settlement)

	stats.EscrowsRefunded.Inc()
	log.WithField("address", address).Info("escrow refunded")

	if err := s.pubsub.PublishEscrowRefundedEvent(*settlement); err != nil {
		log.WithError(err).Warnf(
			"pubsub: failed to publish event for refunded escrow %s", address,
		)
	}
	return settlement, nil
}

func (s *Service) GetEscrow(
	ctx context.Context, address domain.Pubkey,
) (*domain.EscrowHandle, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			return s.protocol.GetEscrow(ctx, address)
		},
	)
	if err != nil {
		return nil, err
	}
	return res.(*domain.EscrowHandle), nil
}

// ListEscrows returns the open escrows of maker, or all of them if maker is
// zero.
func (s *Service) ListEscrows(
	ctx context.Context, maker domain.Pubkey,
) ([]domain.EscrowHandle, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			return s.protocol.ListEscrows(ctx, maker)
		},
	)
	if err != nil {
		return nil, err
	}
	return res.([]domain.EscrowHandle), nil
}

// DeriveEscrowAddress returns the escrow and vault addresses that an escrow
// opened by maker with the given seed would have. Nothing is read from storage.
func (s *Service) DeriveEscrowAddress(
	_ context.Context, maker domain.Pubkey, seed uint64,
) (*Addresses, error) {
	escrow, err := s.protocol.EscrowAddress(maker, seed)
	if err != nil {
		return nil, err
	}
	vault, err := s.protocol.VaultAddress(escrow)
	if err != nil {
		return nil, err
	}
	return &Addresses{escrow, vault}, nil
}
