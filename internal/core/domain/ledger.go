package domain

import (
	"context"
	"fmt"

	"github.com/tdex-network/tdex-escrow/pkg/mathutil"
)

// Ledger moves fungible balances between accounts. It's backed by a
// BalanceRepository and it's meant to be used within a transaction, so that
// all the transfers of an operation are either committed or discarded.
type Ledger struct {
	repo BalanceRepository
}

// NewLedger returns a Ledger over the given balances.
func NewLedger(repo BalanceRepository) *Ledger {
	return &Ledger{repo}
}

// Balance returns the balance of owner for asset. Absent balances are zero.
func (l *Ledger) Balance(ctx context.Context, owner, asset Pubkey) (uint64, error) {
	return l.repo.GetBalance(ctx, owner, asset)
}

// Transfer moves amount of asset from an account to another. The signer must
// authorize the debit of the source account, that must hold at least amount.
// Nothing is moved in case of zero amount or if source and destination
// coincide.
func (l *Ledger) Transfer(
	ctx context.Context, signer Signer, from, to, asset Pubkey, amount uint64,
) error {
	if signer == nil || !signer.Authorizes(from) {
		return ErrUnauthorizedDebit
	}

	fromBalance, err := l.repo.GetBalance(ctx, from, asset)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return fmt.Errorf(
			"%w: account %s holds %d of asset %s, requested %d",
			ErrInsufficientBalance, from, fromBalance, asset, amount,
		)
	}
	if amount == 0 || from == to {
		return nil
	}

	toBalance, err := l.repo.GetBalance(ctx, to, asset)
	if err != nil {
		return err
	}
	newToBalance, err := mathutil.SafeAdd(toBalance, amount)
	if err != nil {
		return ErrBalanceOverflow
	}
	newFromBalance, err := mathutil.SafeSub(fromBalance, amount)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrArithmetic, err)
	}

	if err := l.repo.SetBalance(ctx, from, asset, newFromBalance); err != nil {
		return err
	}
	return l.repo.SetBalance(ctx, to, asset, newToBalance)
}

// Mint credits amount of asset to the given account. Only identities can be
// credited, program derived addresses are funded through transfers.
func (l *Ledger) Mint(
	ctx context.Context, to, asset Pubkey, amount uint64,
) error {
	if asset.IsZero() {
		return ErrInvalidAsset
	}
	if !to.IsOnCurve() {
		return ErrInvalidIdentity
	}
	balance, err := l.repo.GetBalance(ctx, to, asset)
	if err != nil {
		return err
	}
	newBalance, err := mathutil.SafeAdd(balance, amount)
	if err != nil {
		return ErrBalanceOverflow
	}
	return l.repo.SetBalance(ctx, to, asset, newBalance)
}
