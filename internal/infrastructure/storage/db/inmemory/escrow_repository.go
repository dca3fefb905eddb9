package inmemory

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

type escrowRepository struct {
	store *store
}

// NewEscrowRepositoryImpl returns a new empty EscrowRepository.
func NewEscrowRepositoryImpl() domain.EscrowRepository {
	return &escrowRepository{newStore()}
}

func (r *escrowRepository) AddEscrow(
	ctx context.Context, address domain.Pubkey, escrow domain.Escrow,
) error {
	return r.store.withTx(ctx, func(t *tx) error {
		if _, ok := t.getEscrow(address); ok {
			return domain.ErrEscrowAlreadyExists
		}
		t.putEscrow(address, &escrow)
		return nil
	})
}

func (r *escrowRepository) GetEscrow(
	ctx context.Context, address domain.Pubkey,
) (*domain.Escrow, error) {
	var escrow domain.Escrow
	err := r.store.withTx(ctx, func(t *tx) error {
		e, ok := t.getEscrow(address)
		if !ok {
			return domain.ErrEscrowNotFound
		}
		escrow = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &escrow, nil
}

func (r *escrowRepository) GetEscrowsByMaker(
	ctx context.Context, maker domain.Pubkey,
) ([]domain.Escrow, error) {
	return r.findEscrows(ctx, func(e domain.Escrow) bool {
		return e.Maker == maker
	})
}

func (r *escrowRepository) GetAllEscrows(
	ctx context.Context,
) ([]domain.Escrow, error) {
	return r.findEscrows(ctx, nil)
}

func (r *escrowRepository) DeleteEscrow(
	ctx context.Context, address domain.Pubkey,
) error {
	return r.store.withTx(ctx, func(t *tx) error {
		if _, ok := t.getEscrow(address); !ok {
			return domain.ErrEscrowNotFound
		}
		t.putEscrow(address, nil)
		return nil
	})
}

func (r *escrowRepository) findEscrows(
	ctx context.Context, filter func(domain.Escrow) bool,
) ([]domain.Escrow, error) {
	escrows := make([]domain.Escrow, 0)
	err := r.store.withTx(ctx, func(t *tx) error {
		for _, e := range t.allEscrows() {
			if filter == nil || filter(e) {
				escrows = append(escrows, e)
			}
		}
		return nil
	})
	return escrows, err
}
