package domain_test

import (
	"context"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

/*
 * Repositories
 */

type mockEscrowRepository struct {
	lock    sync.Mutex
	escrows map[domain.Pubkey]domain.Escrow
}

func newMockEscrowRepository() *mockEscrowRepository {
	return &mockEscrowRepository{escrows: map[domain.Pubkey]domain.Escrow{}}
}

func (r *mockEscrowRepository) AddEscrow(
	_ context.Context, address domain.Pubkey, escrow domain.Escrow,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.escrows[address]; ok {
		return domain.ErrEscrowAlreadyExists
	}
	r.escrows[address] = escrow
	return nil
}

func (r *mockEscrowRepository) GetEscrow(
	_ context.Context, address domain.Pubkey,
) (*domain.Escrow, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	escrow, ok := r.escrows[address]
	if !ok {
		return nil, domain.ErrEscrowNotFound
	}
	return &escrow, nil
}

func (r *mockEscrowRepository) GetEscrowsByMaker(
	_ context.Context, maker domain.Pubkey,
) ([]domain.Escrow, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	escrows := make([]domain.Escrow, 0)
	for _, e := range r.escrows {
		if e.Maker == maker {
			escrows = append(escrows, e)
		}
	}
	return escrows, nil
}

func (r *mockEscrowRepository) GetAllEscrows(
	_ context.Context,
) ([]domain.Escrow, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	escrows := make([]domain.Escrow, 0, len(r.escrows))
	for _, e := range r.escrows {
		escrows = append(escrows, e)
	}
	return escrows, nil
}

func (r *mockEscrowRepository) DeleteEscrow(
	_ context.Context, address domain.Pubkey,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.escrows[address]; !ok {
		return domain.ErrEscrowNotFound
	}
	delete(r.escrows, address)
	return nil
}

type mockVaultRepository struct {
	lock   sync.Mutex
	vaults map[domain.Pubkey]domain.Vault
}

func newMockVaultRepository() *mockVaultRepository {
	return &mockVaultRepository{vaults: map[domain.Pubkey]domain.Vault{}}
}

func (r *mockVaultRepository) AddVault(
	_ context.Context, vault domain.Vault,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.vaults[vault.Address]; ok {
		return domain.ErrVaultAlreadyExists
	}
	r.vaults[vault.Address] = vault
	return nil
}

func (r *mockVaultRepository) GetVault(
	_ context.Context, address domain.Pubkey,
) (*domain.Vault, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	vault, ok := r.vaults[address]
	if !ok {
		return nil, domain.ErrVaultNotFound
	}
	return &vault, nil
}

func (r *mockVaultRepository) DeleteVault(
	_ context.Context, address domain.Pubkey,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.vaults[address]; !ok {
		return domain.ErrVaultNotFound
	}
	delete(r.vaults, address)
	return nil
}

type balanceKey struct {
	owner, asset domain.Pubkey
}

type mockBalanceRepository struct {
	lock     sync.Mutex
	balances map[balanceKey]uint64
}

func newMockBalanceRepository() *mockBalanceRepository {
	return &mockBalanceRepository{balances: map[balanceKey]uint64{}}
}

func (r *mockBalanceRepository) GetBalance(
	_ context.Context, owner, asset domain.Pubkey,
) (uint64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.balances[balanceKey{owner, asset}], nil
}

func (r *mockBalanceRepository) SetBalance(
	_ context.Context, owner, asset domain.Pubkey, amount uint64,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if amount == 0 {
		delete(r.balances, balanceKey{owner, asset})
		return nil
	}
	r.balances[balanceKey{owner, asset}] = amount
	return nil
}

func (r *mockBalanceRepository) GetBalancesByOwner(
	_ context.Context, owner domain.Pubkey,
) ([]domain.Balance, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	balances := make([]domain.Balance, 0)
	for k, v := range r.balances {
		if k.owner == owner {
			balances = append(balances, domain.Balance{
				Owner: k.owner, Asset: k.asset, Amount: v,
			})
		}
	}
	return balances, nil
}

/*
 * Helpers
 */

func newTestIdentity(t *testing.T) domain.Pubkey {
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return domain.NewPubkeyFromPublicKey(key.PubKey())
}

func newTestAsset(b byte) domain.Pubkey {
	var asset domain.Pubkey
	for i := range asset {
		asset[i] = b
	}
	return asset
}

// offCurvePubkey returns a pubkey that is not a valid x-only key.
func offCurvePubkey(t *testing.T) domain.Pubkey {
	// x >= field prime is never a valid x coordinate.
	pk := newTestAsset(0xff)
	require.False(t, pk.IsOnCurve())
	return pk
}
