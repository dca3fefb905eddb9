package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

var (
	programID = newTestAsset(0x01)
	assetA    = newTestAsset(0xaa)
	assetB    = newTestAsset(0xbb)
	feeAsset  = newTestAsset(0xcc)
	startTime = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
)

type testProtocol struct {
	*domain.EscrowProtocol
	escrowRepo  *mockEscrowRepository
	vaultRepo   *mockVaultRepository
	balanceRepo *mockBalanceRepository
	clock       time.Time
}

func newTestProtocol(t *testing.T, policy domain.Policy) *testProtocol {
	p := &testProtocol{
		escrowRepo:  newMockEscrowRepository(),
		vaultRepo:   newMockVaultRepository(),
		balanceRepo: newMockBalanceRepository(),
		clock:       startTime,
	}
	protocol, err := domain.NewEscrowProtocol(
		programID, policy, p.escrowRepo, p.vaultRepo,
		p.balanceRepo, func() time.Time { return p.clock },
	)
	require.NoError(t, err)
	p.EscrowProtocol = protocol
	return p
}

func (p *testProtocol) balance(
	t *testing.T, owner, asset domain.Pubkey,
) uint64 {
	balance, err := p.Ledger().Balance(context.Background(), owner, asset)
	require.NoError(t, err)
	return balance
}

func (p *testProtocol) fund(
	t *testing.T, owner, asset domain.Pubkey, amount uint64,
) {
	err := p.Ledger().Mint(context.Background(), owner, asset, amount)
	require.NoError(t, err)
}

func TestNewEscrowProtocol(t *testing.T) {
	repo := newMockBalanceRepository()

	_, err := domain.NewEscrowProtocol(
		domain.Pubkey{}, domain.Policy{}, nil, nil, repo, nil,
	)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = domain.NewEscrowProtocol(
		programID, domain.Policy{StorageDeposit: 1}, nil, nil, repo, nil,
	)
	require.ErrorIs(t, err, domain.ErrInvalidPolicy)
}

func TestMakeTakeRefund(t *testing.T) {
	ctx := context.Background()
	p := newTestProtocol(t, domain.Policy{})
	maker := newTestIdentity(t)
	taker := newTestIdentity(t)
	p.fund(t, maker, assetA, 1000)
	p.fund(t, taker, assetB, 10)

	handle, err := p.Make(ctx, maker, domain.MakeArgs{
		Seed: 123, Deposit: 10, Receive: 10, AssetA: assetA, AssetB: assetB,
	})
	require.NoError(t, err)
	require.NotNil(t, handle)
	require.Equal(t, uint64(10), handle.Deposit)
	require.Equal(t, startTime.Unix(), handle.Escrow.CreatedAt)
	require.Equal(t, uint64(10), p.balance(t, handle.Vault.Address, assetA))
	require.Equal(t, uint64(990), p.balance(t, maker, assetA))

	expectedAddress, err := p.EscrowAddress(maker, 123)
	require.NoError(t, err)
	require.Equal(t, expectedAddress, handle.Address)
	expectedVault, err := p.VaultAddress(handle.Address)
	require.NoError(t, err)
	require.Equal(t, expectedVault, handle.Vault.Address)

	settlement, err := p.Take(ctx, taker, handle.Address)
	require.NoError(t, err)
	require.Equal(t, uint64(10), settlement.Deposit)
	require.Equal(t, taker, settlement.Counterparty)

	require.Equal(t, uint64(10), p.balance(t, taker, assetA))
	require.Equal(t, uint64(0), p.balance(t, taker, assetB))
	require.Equal(t, uint64(10), p.balance(t, maker, assetB))
	require.Equal(t, uint64(0), p.balance(t, handle.Vault.Address, assetA))

	_, err = p.GetEscrow(ctx, handle.Address)
	require.ErrorIs(t, err, domain.ErrEscrowNotFound)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Empty(t, p.vaultRepo.vaults)

	// The seed can be reused once the escrow is closed.
	handle, err = p.Make(ctx, maker, domain.MakeArgs{
		Seed: 123, Deposit: 100, Receive: 100, AssetA: assetA, AssetB: assetB,
	})
	require.NoError(t, err)
	require.Equal(t, expectedAddress, handle.Address)
	require.Equal(t, uint64(890), p.balance(t, maker, assetA))

	settlement, err = p.Refund(ctx, maker, handle.Address)
	require.NoError(t, err)
	require.Equal(t, uint64(100), settlement.Deposit)
	require.Equal(t, maker, settlement.Counterparty)
	require.Equal(t, uint64(990), p.balance(t, maker, assetA))
	require.Empty(t, p.escrowRepo.escrows)
	require.Empty(t, p.vaultRepo.vaults)
}

func TestFailingMake(t *testing.T) {
	ctx := context.Background()
	maker := newTestIdentity(t)

	t.Run("invalid args", func(t *testing.T) {
		p := newTestProtocol(t, domain.Policy{})
		p.fund(t, maker, assetA, 100)

		tests := []struct {
			name          string
			maker         domain.Pubkey
			args          domain.MakeArgs
			expectedError error
		}{
			{
				name:  "zero deposit",
				maker: maker,
				args: domain.MakeArgs{
					Seed: 1, Receive: 10, AssetA: assetA, AssetB: assetB,
				},
				expectedError: domain.ErrZeroDeposit,
			},
			{
				name:  "same asset",
				maker: maker,
				args: domain.MakeArgs{
					Seed: 1, Deposit: 10, AssetA: assetA, AssetB: assetA,
				},
				expectedError: domain.ErrSameAsset,
			},
			{
				name:  "zero asset",
				maker: maker,
				args: domain.MakeArgs{
					Seed: 1, Deposit: 10, AssetA: assetA,
				},
				expectedError: domain.ErrInvalidAsset,
			},
			{
				name:  "maker off curve",
				maker: offCurvePubkey(t),
				args: domain.MakeArgs{
					Seed: 1, Deposit: 10, AssetA: assetA, AssetB: assetB,
				},
				expectedError: domain.ErrInvalidIdentity,
			},
		}

		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				handle, err := p.Make(ctx, tt.maker, tt.args)
				require.ErrorIs(t, err, tt.expectedError)
				require.ErrorIs(t, err, domain.ErrValidation)
				require.Nil(t, handle)
				require.Empty(t, p.escrowRepo.escrows)
				require.Empty(t, p.vaultRepo.vaults)
				require.Equal(t, uint64(100), p.balance(t, maker, assetA))
			})
		}
	})

	t.Run("seed collision", func(t *testing.T) {
		p := newTestProtocol(t, domain.Policy{})
		p.fund(t, maker, assetA, 100)

		args := domain.MakeArgs{
			Seed: 7, Deposit: 10, Receive: 5, AssetA: assetA, AssetB: assetB,
		}
		handle, err := p.Make(ctx, maker, args)
		require.NoError(t, err)

		args.Deposit = 50
		_, err = p.Make(ctx, maker, args)
		require.ErrorIs(t, err, domain.ErrEscrowAlreadyExists)
		require.ErrorIs(t, err, domain.ErrAlreadyExists)

		got, err := p.GetEscrow(ctx, handle.Address)
		require.NoError(t, err)
		require.Equal(t, *handle, *got)
		require.Equal(t, uint64(90), p.balance(t, maker, assetA))
	})

	t.Run("vault already funded", func(t *testing.T) {
		p := newTestProtocol(t, domain.Policy{})
		p.fund(t, maker, assetA, 100)

		addr, err := p.EscrowAddress(maker, 9)
		require.NoError(t, err)
		vault, err := p.VaultAddress(addr)
		require.NoError(t, err)

		err = p.Ledger().Mint(ctx, vault, assetA, 1)
		require.ErrorIs(t, err, domain.ErrInvalidIdentity)

		err = p.balanceRepo.SetBalance(ctx, vault, assetA, 1)
		require.NoError(t, err)

		_, err = p.Make(ctx, maker, domain.MakeArgs{
			Seed: 9, Deposit: 10, AssetA: assetA, AssetB: assetB,
		})
		require.ErrorIs(t, err, domain.ErrVaultAlreadyFunded)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		p := newTestProtocol(t, domain.Policy{})
		p.fund(t, maker, assetA, 5)

		_, err := p.Make(ctx, maker, domain.MakeArgs{
			Seed: 1, Deposit: 10, AssetA: assetA, AssetB: assetB,
		})
		require.ErrorIs(t, err, domain.ErrInsufficientBalance)
		require.Equal(t, uint64(5), p.balance(t, maker, assetA))
	})
}

func TestFailingTake(t *testing.T) {
	ctx := context.Background()
	maker := newTestIdentity(t)
	taker := newTestIdentity(t)

	t.Run("not found", func(t *testing.T) {
		p := newTestProtocol(t, domain.Policy{})
		addr, err := p.EscrowAddress(maker, 1)
		require.NoError(t, err)

		_, err = p.Take(ctx, taker, addr)
		require.ErrorIs(t, err, domain.ErrEscrowNotFound)
	})

	t.Run("already taken", func(t *testing.T) {
		p := newTestProtocol(t, domain.Policy{})
		p.fund(t, maker, assetA, 10)
		p.fund(t, taker, assetB, 20)

		handle, err := p.Make(ctx, maker, domain.MakeArgs{
			Seed: 1, Deposit: 10, Receive: 10, AssetA: assetA, AssetB: assetB,
		})
		require.NoError(t, err)

		_, err = p.Take(ctx, taker, handle.Address)
		require.NoError(t, err)

		_, err = p.Take(ctx, taker, handle.Address)
		require.ErrorIs(t, err, domain.ErrNotFound)
		_, err = p.Refund(ctx, maker, handle.Address)
		require.ErrorIs(t, err, domain.ErrNotFound)

		require.Equal(t, uint64(10), p.balance(t, taker, assetB))
		require.Equal(t, uint64(10), p.balance(t, taker, assetA))
	})

	t.Run("insufficient balance", func(t *testing.T) {
		p := newTestProtocol(t, domain.Policy{})
		p.fund(t, maker, assetA, 10)
		p.fund(t, taker, assetB, 9)

		handle, err := p.Make(ctx, maker, domain.MakeArgs{
			Seed: 1, Deposit: 10, Receive: 10, AssetA: assetA, AssetB: assetB,
		})
		require.NoError(t, err)

		_, err = p.Take(ctx, taker, handle.Address)
		require.ErrorIs(t, err, domain.ErrInsufficientBalance)

		got, err := p.GetEscrow(ctx, handle.Address)
		require.NoError(t, err)
		require.Equal(t, uint64(10), got.Deposit)
	})
}

func TestFailingRefund(t *testing.T) {
	ctx := context.Background()
	maker := newTestIdentity(t)

	t.Run("not maker", func(t *testing.T) {
		p := newTestProtocol(t, domain.Policy{})
		p.fund(t, maker, assetA, 10)

		handle, err := p.Make(ctx, maker, domain.MakeArgs{
			Seed: 1, Deposit: 10, Receive: 10, AssetA: assetA, AssetB: assetB,
		})
		require.NoError(t, err)

		_, err = p.Refund(ctx, newTestIdentity(t), handle.Address)
		require.ErrorIs(t, err, domain.ErrNotMaker)
		require.ErrorIs(t, err, domain.ErrAuthorization)

		got, err := p.GetEscrow(ctx, handle.Address)
		require.NoError(t, err)
		require.Equal(t, uint64(10), got.Deposit)
	})

	t.Run("too early", func(t *testing.T) {
		p := newTestProtocol(t, domain.Policy{MinHoldingPeriod: time.Hour})
		p.fund(t, maker, assetA, 10)

		handle, err := p.Make(ctx, maker, domain.MakeArgs{
			Seed: 1, Deposit: 10, Receive: 10, AssetA: assetA, AssetB: assetB,
		})
		require.NoError(t, err)

		p.clock = startTime.Add(59 * time.Minute)
		_, err = p.Refund(ctx, maker, handle.Address)
		require.ErrorIs(t, err, domain.ErrTooEarly)

		p.clock = startTime.Add(time.Hour)
		_, err = p.Refund(ctx, maker, handle.Address)
		require.NoError(t, err)
		require.Equal(t, uint64(10), p.balance(t, maker, assetA))
	})
}

func TestStorageDeposit(t *testing.T) {
	ctx := context.Background()
	policy := domain.Policy{StorageAsset: feeAsset, StorageDeposit: 2}
	maker := newTestIdentity(t)
	taker := newTestIdentity(t)

	p := newTestProtocol(t, policy)
	p.fund(t, maker, assetA, 10)
	p.fund(t, taker, assetB, 10)

	_, err := p.Make(ctx, maker, domain.MakeArgs{
		Seed: 1, Deposit: 10, Receive: 10, AssetA: assetA, AssetB: assetB,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	p = newTestProtocol(t, policy)
	p.fund(t, maker, assetA, 10)
	p.fund(t, maker, feeAsset, 5)
	p.fund(t, taker, assetB, 10)

	handle, err := p.Make(ctx, maker, domain.MakeArgs{
		Seed: 1, Deposit: 10, Receive: 10, AssetA: assetA, AssetB: assetB,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(3), p.balance(t, maker, feeAsset))
	require.Equal(t, uint64(2), p.balance(t, handle.Address, feeAsset))

	settlement, err := p.Take(ctx, taker, handle.Address)
	require.NoError(t, err)
	require.Equal(t, uint64(2), settlement.StorageDeposit)
	require.Equal(t, uint64(5), p.balance(t, maker, feeAsset))
	require.Equal(t, uint64(0), p.balance(t, handle.Address, feeAsset))
}

func TestListEscrows(t *testing.T) {
	ctx := context.Background()
	p := newTestProtocol(t, domain.Policy{})
	maker := newTestIdentity(t)
	otherMaker := newTestIdentity(t)
	p.fund(t, maker, assetA, 100)
	p.fund(t, otherMaker, assetA, 100)

	for seed := uint64(0); seed < 3; seed++ {
		_, err := p.Make(ctx, maker, domain.MakeArgs{
			Seed: seed, Deposit: 10, Receive: 1, AssetA: assetA, AssetB: assetB,
		})
		require.NoError(t, err)
	}
	_, err := p.Make(ctx, otherMaker, domain.MakeArgs{
		Seed: 0, Deposit: 10, Receive: 1, AssetA: assetA, AssetB: assetB,
	})
	require.NoError(t, err)

	escrows, err := p.ListEscrows(ctx, maker)
	require.NoError(t, err)
	require.Len(t, escrows, 3)
	for _, e := range escrows {
		require.Equal(t, maker, e.Escrow.Maker)
		require.Equal(t, uint64(10), e.Deposit)
		addr, err := p.EscrowAddress(maker, e.Escrow.Seed)
		require.NoError(t, err)
		require.Equal(t, addr, e.Address)
	}

	escrows, err = p.ListEscrows(ctx, domain.Pubkey{})
	require.NoError(t, err)
	require.Len(t, escrows, 4)
}
