package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Policy defines the optional rules enforced by the escrow protocol on top of
// the base exchange semantics.
type Policy struct {
	// MinHoldingPeriod is the time the maker must wait after creation before
	// refunding an escrow. Zero disables the check.
	MinHoldingPeriod time.Duration
	// StorageAsset is the asset used to pay the storage deposit.
	StorageAsset Pubkey
	// StorageDeposit is the amount of StorageAsset reserved by the escrow
	// account for as long as it's open, and given back to the maker on close.
	// Zero disables the storage deposit.
	StorageDeposit uint64
}

func (p Policy) Validate() error {
	if p.MinHoldingPeriod < 0 {
		return fmt.Errorf("%w: negative min holding period", ErrValidation)
	}
	if p.StorageDeposit > 0 && p.StorageAsset.IsZero() {
		return ErrInvalidPolicy
	}
	return nil
}

// MakeArgs are the arguments to open a new escrow.
type MakeArgs struct {
	Seed    uint64
	Deposit uint64
	Receive uint64
	AssetA  Pubkey
	AssetB  Pubkey
}

func (a MakeArgs) Validate() error {
	if a.Deposit == 0 {
		return ErrZeroDeposit
	}
	if a.AssetA.IsZero() || a.AssetB.IsZero() {
		return ErrInvalidAsset
	}
	if a.AssetA == a.AssetB {
		return ErrSameAsset
	}
	return nil
}

// EscrowHandle is an open escrow along with its live deposit.
type EscrowHandle struct {
	Address Pubkey
	Escrow  Escrow
	Vault   Vault
	Deposit uint64
}

// Settlement is the outcome of a closed escrow.
type Settlement struct {
	Address Pubkey
	Escrow  Escrow
	// Deposit is the amount of AssetA released from the vault.
	Deposit uint64
	// Counterparty is the taker of a settled escrow, or the maker of a
	// refunded one.
	Counterparty Pubkey
	// StorageDeposit is the amount of storage asset returned to the maker.
	StorageDeposit uint64
}

// EscrowProtocol implements the operations of the exchange protocol over
// transaction-scoped repositories: every operation either applies all of its
// effects or, returning an error, expects the caller to discard them.
type EscrowProtocol struct {
	programID  Pubkey
	policy     Policy
	escrowRepo EscrowRepository
	vaultRepo  VaultRepository
	ledger     *Ledger
	now        func() time.Time
}

// NewEscrowProtocol returns a new protocol instance. If now is nil the
// system clock is used.
func NewEscrowProtocol(
	programID Pubkey, policy Policy,
	escrowRepo EscrowRepository, vaultRepo VaultRepository,
	balanceRepo BalanceRepository, now func() time.Time,
) (*EscrowProtocol, error) {
	if programID.IsZero() {
		return nil, fmt.Errorf("%w: missing program id", ErrValidation)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &EscrowProtocol{
		programID:  programID,
		policy:     policy,
		escrowRepo: escrowRepo,
		vaultRepo:  vaultRepo,
		ledger:     NewLedger(balanceRepo),
		now:        now,
	}, nil
}

// Ledger returns the asset ledger used by the protocol.
func (p *EscrowProtocol) Ledger() *Ledger {
	return p.ledger
}

// EscrowAddress returns the address of the escrow of maker for seed.
func (p *EscrowProtocol) EscrowAddress(maker Pubkey, seed uint64) (Pubkey, error) {
	addr, _, err := FindEscrowAddress(p.programID, maker, seed)
	return addr, err
}

// VaultAddress returns the address of the vault of the given escrow.
func (p *EscrowProtocol) VaultAddress(escrow Pubkey) (Pubkey, error) {
	addr, _, err := FindVaultAddress(p.programID, escrow)
	return addr, err
}

// Make opens a new escrow for maker and moves the deposit into its vault.
func (p *EscrowProtocol) Make(
	ctx context.Context, maker Pubkey, args MakeArgs,
) (*EscrowHandle, error) {
	if err := args.Validate(); err != nil {
		return nil, err
	}
	if !maker.IsOnCurve() {
		return nil, ErrInvalidIdentity
	}

	addr, bump, err := FindEscrowAddress(p.programID, maker, args.Seed)
	if err != nil {
		return nil, err
	}
	if _, err := p.escrowRepo.GetEscrow(ctx, addr); err == nil {
		return nil, ErrEscrowAlreadyExists
	} else if !errors.Is(err, ErrEscrowNotFound) {
		return nil, err
	}

	vault, err := NewVault(p.programID, addr, args.AssetA)
	if err != nil {
		return nil, err
	}
	vaultBalance, err := p.ledger.Balance(ctx, vault.Address, vault.Asset)
	if err != nil {
		return nil, err
	}
	if vaultBalance > 0 {
		return nil, ErrVaultAlreadyFunded
	}

	escrow := Escrow{
		Seed:      args.Seed,
		Maker:     maker,
		AssetA:    args.AssetA,
		AssetB:    args.AssetB,
		Receive:   args.Receive,
		CreatedAt: p.now().Unix(),
		Bump:      bump,
	}
	if err := p.escrowRepo.AddEscrow(ctx, addr, escrow); err != nil {
		return nil, err
	}
	if err := p.vaultRepo.AddVault(ctx, *vault); err != nil {
		return nil, err
	}

	signer := UserSigner(maker)
	if err := p.ledger.Transfer(
		ctx, signer, maker, vault.Address, vault.Asset, args.Deposit,
	); err != nil {
		return nil, err
	}
	if p.policy.StorageDeposit > 0 {
		if err := p.ledger.Transfer(
			ctx, signer, maker, addr, p.policy.StorageAsset,
			p.policy.StorageDeposit,
		); err != nil {
			return nil, fmt.Errorf("storage deposit: %w", err)
		}
	}

	return &EscrowHandle{
		Address: addr,
		Escrow:  escrow,
		Vault:   *vault,
		Deposit: args.Deposit,
	}, nil
}

// Take settles the escrow at the given address: taker pays the requested
// amount to the maker and receives the whole deposit, then the escrow is
// closed.
func (p *EscrowProtocol) Take(
	ctx context.Context, taker, address Pubkey,
) (*Settlement, error) {
	escrow, vault, err := p.getOpenEscrow(ctx, address)
	if err != nil {
		return nil, err
	}
	deposit, err := p.ledger.Balance(ctx, vault.Address, vault.Asset)
	if err != nil {
		return nil, err
	}

	if err := p.ledger.Transfer(
		ctx, UserSigner(taker), taker, escrow.Maker, escrow.AssetB,
		escrow.Receive,
	); err != nil {
		return nil, err
	}

	authority := newVaultAuthority(vault)
	if err := p.ledger.Transfer(
		ctx, authority, vault.Address, taker, vault.Asset, deposit,
	); err != nil {
		return nil, err
	}

	storage, err := p.close(ctx, authority, address, escrow, vault)
	if err != nil {
		return nil, err
	}

	return &Settlement{
		Address:        address,
		Escrow:         *escrow,
		Deposit:        deposit,
		Counterparty:   taker,
		StorageDeposit: storage,
	}, nil
}

// Refund gives the deposit back to the maker and closes the escrow at the
// given address. Only the maker can refund.
func (p *EscrowProtocol) Refund(
	ctx context.Context, caller, address Pubkey,
) (*Settlement, error) {
	escrow, vault, err := p.getOpenEscrow(ctx, address)
	if err != nil {
		return nil, err
	}
	if caller != escrow.Maker {
		return nil, ErrNotMaker
	}
	if period := p.policy.MinHoldingPeriod; period > 0 {
		unlockTime := time.Unix(escrow.CreatedAt, 0).Add(period)
		if p.now().Before(unlockTime) {
			return nil, fmt.Errorf(
				"%w: escrow can be refunded after %s",
				ErrTooEarly, unlockTime.UTC().Format(time.RFC3339),
			)
		}
	}

	deposit, err := p.ledger.Balance(ctx, vault.Address, vault.Asset)
	if err != nil {
		return nil, err
	}

	authority := newVaultAuthority(vault)
	if err := p.ledger.Transfer(
		ctx, authority, vault.Address, escrow.Maker, vault.Asset, deposit,
	); err != nil {
		return nil, err
	}

	storage, err := p.close(ctx, authority, address, escrow, vault)
	if err != nil {
		return nil, err
	}

	return &Settlement{
		Address:        address,
		Escrow:         *escrow,
		Deposit:        deposit,
		Counterparty:   escrow.Maker,
		StorageDeposit: storage,
	}, nil
}

// GetEscrow returns the open escrow at the given address.
func (p *EscrowProtocol) GetEscrow(
	ctx context.Context, address Pubkey,
) (*EscrowHandle, error) {
	escrow, vault, err := p.getOpenEscrow(ctx, address)
	if err != nil {
		return nil, err
	}
	return p.toHandle(ctx, address, escrow, vault)
}

// ListEscrows returns all open escrows of maker, or all open escrows if
// maker is zero, from the oldest.
func (p *EscrowProtocol) ListEscrows(
	ctx context.Context, maker Pubkey,
) ([]EscrowHandle, error) {
	var (
		escrows []Escrow
		err     error
	)
	if maker.IsZero() {
		escrows, err = p.escrowRepo.GetAllEscrows(ctx)
	} else {
		escrows, err = p.escrowRepo.GetEscrowsByMaker(ctx, maker)
	}
	if err != nil {
		return nil, err
	}

	handles := make([]EscrowHandle, 0, len(escrows))
	for i := range escrows {
		escrow := escrows[i]
		address, err := escrow.Address(p.programID)
		if err != nil {
			return nil, fmt.Errorf("escrow of maker %s: %w", escrow.Maker, err)
		}
		vault, err := p.getVault(ctx, address)
		if err != nil {
			return nil, err
		}
		handle, err := p.toHandle(ctx, address, &escrow, vault)
		if err != nil {
			return nil, err
		}
		handles = append(handles, *handle)
	}

	sort.SliceStable(handles, func(i, j int) bool {
		if handles[i].Escrow.CreatedAt != handles[j].Escrow.CreatedAt {
			return handles[i].Escrow.CreatedAt < handles[j].Escrow.CreatedAt
		}
		return handles[i].Escrow.Seed < handles[j].Escrow.Seed
	})
	return handles, nil
}

func (p *EscrowProtocol) getOpenEscrow(
	ctx context.Context, address Pubkey,
) (*Escrow, *Vault, error) {
	escrow, err := p.escrowRepo.GetEscrow(ctx, address)
	if err != nil {
		return nil, nil, err
	}
	vault, err := p.getVault(ctx, address)
	if err != nil {
		return nil, nil, err
	}
	return escrow, vault, nil
}

func (p *EscrowProtocol) getVault(
	ctx context.Context, escrowAddress Pubkey,
) (*Vault, error) {
	vaultAddress, _, err := FindVaultAddress(p.programID, escrowAddress)
	if err != nil {
		return nil, err
	}
	return p.vaultRepo.GetVault(ctx, vaultAddress)
}

func (p *EscrowProtocol) toHandle(
	ctx context.Context, address Pubkey, escrow *Escrow, vault *Vault,
) (*EscrowHandle, error) {
	deposit, err := p.ledger.Balance(ctx, vault.Address, vault.Asset)
	if err != nil {
		return nil, err
	}
	return &EscrowHandle{
		Address: address,
		Escrow:  *escrow,
		Vault:   *vault,
		Deposit: deposit,
	}, nil
}

// close returns the storage deposit to the maker and deletes both vault and
// escrow. The vault must be empty.
func (p *EscrowProtocol) close(
	ctx context.Context, authority *VaultAuthority,
	address Pubkey, escrow *Escrow, vault *Vault,
) (uint64, error) {
	defer authority.revoke()

	var storage uint64
	if asset := p.policy.StorageAsset; !asset.IsZero() {
		balance, err := p.ledger.Balance(ctx, address, asset)
		if err != nil {
			return 0, err
		}
		if err := p.ledger.Transfer(
			ctx, authority, address, escrow.Maker, asset, balance,
		); err != nil {
			return 0, err
		}
		storage = balance
	}

	residual, err := p.ledger.Balance(ctx, vault.Address, vault.Asset)
	if err != nil {
		return 0, err
	}
	if residual > 0 {
		return 0, ErrVaultNotEmpty
	}

	if err := p.vaultRepo.DeleteVault(ctx, vault.Address); err != nil {
		return 0, err
	}
	if err := p.escrowRepo.DeleteEscrow(ctx, address); err != nil {
		return 0, err
	}
	return storage, nil
}
