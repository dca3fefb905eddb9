package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{domain.ErrZeroDeposit, "validation"},
		{domain.ErrInvalidPubkey, "validation"},
		{domain.ErrEscrowAlreadyExists, "already_exists"},
		{domain.ErrVaultAlreadyFunded, "already_exists"},
		{domain.ErrEscrowNotFound, "not_found"},
		{domain.ErrNotMaker, "unauthorized"},
		{domain.ErrUnauthorizedDebit, "unauthorized"},
		{fmt.Errorf("transfer: %w", domain.ErrInsufficientBalance), "insufficient_balance"},
		{domain.ErrBalanceOverflow, "arithmetic"},
		{domain.ErrTooEarly, "too_early"},
		{domain.ErrVaultNotEmpty, "internal"},
		{errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.code, domain.ErrorCode(tt.err), tt.err.Error())
	}
}
