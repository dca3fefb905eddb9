package inmemory

import (
	"context"
	"sync"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/internal/storageutil/uow"
)

type repoManager struct {
	store     *store
	unit      *uow.UnitOfWork
	writeLock sync.Mutex

	escrowRepository  domain.EscrowRepository
	vaultRepository   domain.VaultRepository
	balanceRepository domain.BalanceRepository
}

// NewRepoManager returns a RepoManager whose repositories share a volatile
// store.
func NewRepoManager() ports.RepoManager {
	s := newStore()
	return &repoManager{
		store:             s,
		unit:              uow.NewUnitOfWork(s),
		escrowRepository:  &escrowRepository{s},
		vaultRepository:   &vaultRepository{s},
		balanceRepository: &balanceRepository{s},
	}
}

func (m *repoManager) EscrowRepository() domain.EscrowRepository {
	return m.escrowRepository
}

func (m *repoManager) VaultRepository() domain.VaultRepository {
	return m.vaultRepository
}

func (m *repoManager) BalanceRepository() domain.BalanceRepository {
	return m.balanceRepository
}

func (m *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	if !readOnly {
		m.writeLock.Lock()
		defer m.writeLock.Unlock()
	}

	var result interface{}
	if err := m.unit.Run(ctx, func(ctx context.Context) error {
		res, err := handler(ctx)
		if err != nil {
			return err
		}
		result = res
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func (m *repoManager) Close() {}
