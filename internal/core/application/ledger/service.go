package ledger

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

var (
	// ErrFaucetDisabled is returned when minting with the faucet turned off.
	ErrFaucetDisabled = errors.New("faucet is disabled")
	// ErrZeroAmount ...
	ErrZeroAmount = fmt.Errorf(
		"%w: amount must be greater than zero", domain.ErrValidation,
	)
	// ErrMissingOwner ...
	ErrMissingOwner = fmt.Errorf("%w: missing account owner", domain.ErrValidation)
)

type Service struct {
	repoManager  ports.RepoManager
	enableFaucet bool
}

func NewService(
	repoManager ports.RepoManager, enableFaucet bool,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	return &Service{repoManager, enableFaucet}, nil
}

// GetBalances returns all non-zero balances of owner.
func (s *Service) GetBalances(
	ctx context.Context, owner domain.Pubkey,
) ([]domain.Balance, error) {
	if owner.IsZero() {
		return nil, ErrMissingOwner
	}
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			return s.repoManager.BalanceRepository().GetBalancesByOwner(ctx, owner)
		},
	)
	if err != nil {
		return nil, err
	}
	return res.([]domain.Balance), nil
}

func (s *Service) GetBalance(
	ctx context.Context, owner, asset domain.Pubkey,
) (uint64, error) {
	if owner.IsZero() {
		return 0, ErrMissingOwner
	}
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			ledger := domain.NewLedger(s.repoManager.BalanceRepository())
			return ledger.Balance(ctx, owner, asset)
		},
	)
	if err != nil {
		return 0, err
	}
	return res.(uint64), nil
}

// Mint credits amount of asset to the given account, if the faucet is
// enabled.
func (s *Service) Mint(
	ctx context.Context, to, asset domain.Pubkey, amount uint64,
) error {
	if !s.enableFaucet {
		return ErrFaucetDisabled
	}
	if to.IsZero() {
		return ErrMissingOwner
	}
	if amount == 0 {
		return ErrZeroAmount
	}

	if _, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			ledger := domain.NewLedger(s.repoManager.BalanceRepository())
			return nil, ledger.Mint(ctx, to, asset, amount)
		},
	); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"account": to,
		"asset":   asset,
		"amount":  amount,
	}).Debug("faucet: minted funds")
	return nil
}
