package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the escrow protocol wraps exactly
// one of these, so that callers can classify failures with errors.Is.
var (
	// ErrValidation is returned for malformed arguments.
	ErrValidation = errors.New("validation error")
	// ErrAlreadyExists is returned when creating something that is still open.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotFound is returned when addressing something absent or closed.
	ErrNotFound = errors.New("not found")
	// ErrAuthorization is returned when the caller is not allowed to operate.
	ErrAuthorization = errors.New("unauthorized")
	// ErrInsufficientBalance is returned when an account can't cover a debit.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrArithmetic is returned on overflows/underflows of amounts.
	ErrArithmetic = errors.New("arithmetic error")
	// ErrTooEarly is returned when refunding before the min holding period.
	ErrTooEarly = errors.New("too early")
)

var (
	// ErrZeroDeposit ...
	ErrZeroDeposit = fmt.Errorf(
		"%w: deposit amount must be greater than zero", ErrValidation,
	)
	// ErrSameAsset ...
	ErrSameAsset = fmt.Errorf(
		"%w: deposited and requested assets must be different", ErrValidation,
	)
	// ErrInvalidAsset ...
	ErrInvalidAsset = fmt.Errorf("%w: asset must not be zero", ErrValidation)
	// ErrInvalidIdentity is returned if an identity is not a valid x-only
	// public key.
	ErrInvalidIdentity = fmt.Errorf(
		"%w: identity must be a valid x-only public key", ErrValidation,
	)
	// ErrInvalidPubkey ...
	ErrInvalidPubkey = fmt.Errorf(
		"%w: pubkey must be a 32-byte hex string", ErrValidation,
	)

	// ErrEscrowAlreadyExists is returned when reusing the seed of an escrow
	// that is still open.
	ErrEscrowAlreadyExists = fmt.Errorf("escrow %w", ErrAlreadyExists)
	// ErrVaultAlreadyExists ...
	ErrVaultAlreadyExists = fmt.Errorf("vault %w", ErrAlreadyExists)
	// ErrVaultAlreadyFunded is returned if the derived vault holds funds
	// before the deposit.
	ErrVaultAlreadyFunded = fmt.Errorf(
		"%w: vault holds funds not belonging to any escrow", ErrAlreadyExists,
	)

	// ErrEscrowNotFound ...
	ErrEscrowNotFound = fmt.Errorf("escrow %w", ErrNotFound)
	// ErrVaultNotFound ...
	ErrVaultNotFound = fmt.Errorf("vault %w", ErrNotFound)

	// ErrNotMaker is returned when someone else than the maker refunds.
	ErrNotMaker = fmt.Errorf(
		"%w: caller is not the maker of the escrow", ErrAuthorization,
	)
	// ErrUnauthorizedDebit is returned when the signer of a transfer doesn't
	// own the debited account.
	ErrUnauthorizedDebit = fmt.Errorf(
		"%w: signer is not allowed to debit the account", ErrAuthorization,
	)

	// ErrBalanceOverflow ...
	ErrBalanceOverflow = fmt.Errorf("%w: balance overflow", ErrArithmetic)

	// ErrVaultNotEmpty is returned when closing a vault with a residual
	// balance.
	ErrVaultNotEmpty = errors.New("vault balance must be zero to close it")
	// ErrInvalidEscrowData ...
	ErrInvalidEscrowData = errors.New("invalid escrow record data")
	// ErrInvalidPolicy ...
	ErrInvalidPolicy = errors.New(
		"storage deposit requires a storage asset to be defined",
	)
)

// Program address derivation errors.
var (
	// ErrMaxSeedLengthExceeded ...
	ErrMaxSeedLengthExceeded = errors.New("seeds exceed max number or length")
	// ErrInvalidSeeds is returned if the seeds produce an address on curve.
	ErrInvalidSeeds = errors.New("seeds produce an invalid program address")
	// ErrNoViableBump ...
	ErrNoViableBump = errors.New("unable to find a viable program address bump")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrValidation, "validation"},
	{ErrAlreadyExists, "already_exists"},
	{ErrNotFound, "not_found"},
	{ErrAuthorization, "unauthorized"},
	{ErrInsufficientBalance, "insufficient_balance"},
	{ErrArithmetic, "arithmetic"},
	{ErrTooEarly, "too_early"},
}

// ErrorCode returns the code of the category of err, "internal" for errors
// not belonging to any category.
func ErrorCode(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}
