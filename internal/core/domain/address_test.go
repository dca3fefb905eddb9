package domain_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

func TestPubkey(t *testing.T) {
	t.Run("from string", func(t *testing.T) {
		pk := newTestIdentity(t)
		got, err := domain.NewPubkeyFromString(pk.String())
		require.NoError(t, err)
		require.Equal(t, pk, got)
		require.True(t, got.IsOnCurve())
		require.False(t, got.IsZero())
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []string{"", "zz", "00ff", pubkeyHex(33)}
		for _, tt := range tests {
			_, err := domain.NewPubkeyFromString(tt)
			require.ErrorIs(t, err, domain.ErrInvalidPubkey)
			require.ErrorIs(t, err, domain.ErrValidation)
		}
	})

	t.Run("text encoding", func(t *testing.T) {
		pk := newTestIdentity(t)
		text, err := pk.MarshalText()
		require.NoError(t, err)

		var got domain.Pubkey
		require.NoError(t, got.UnmarshalText(text))
		require.Equal(t, pk, got)
	})
}

func TestFindProgramAddress(t *testing.T) {
	programID := newTestAsset(0x01)
	maker := newTestIdentity(t)

	t.Run("deterministic and off curve", func(t *testing.T) {
		seeds := domain.EscrowSeeds(maker, 123)

		addr, bump, err := domain.FindProgramAddress(seeds, programID)
		require.NoError(t, err)
		require.False(t, addr.IsOnCurve())

		sameAddr, sameBump, err := domain.FindProgramAddress(seeds, programID)
		require.NoError(t, err)
		require.Equal(t, addr, sameAddr)
		require.Equal(t, bump, sameBump)

		recreated, err := domain.CreateProgramAddress(
			append(seeds, []byte{bump}), programID,
		)
		require.NoError(t, err)
		require.Equal(t, addr, recreated)
	})

	t.Run("distinct inputs", func(t *testing.T) {
		addr, _, err := domain.FindEscrowAddress(programID, maker, 123)
		require.NoError(t, err)

		otherSeed, _, err := domain.FindEscrowAddress(programID, maker, 124)
		require.NoError(t, err)
		require.NotEqual(t, addr, otherSeed)

		otherMaker, _, err := domain.FindEscrowAddress(
			programID, newTestIdentity(t), 123,
		)
		require.NoError(t, err)
		require.NotEqual(t, addr, otherMaker)

		otherProgram, _, err := domain.FindEscrowAddress(
			newTestAsset(0x02), maker, 123,
		)
		require.NoError(t, err)
		require.NotEqual(t, addr, otherProgram)

		vault, _, err := domain.FindVaultAddress(programID, addr)
		require.NoError(t, err)
		require.NotEqual(t, addr, vault)
		require.False(t, vault.IsOnCurve())
	})

	t.Run("invalid seeds", func(t *testing.T) {
		tooMany := make([][]byte, domain.MaxSeeds)
		_, _, err := domain.FindProgramAddress(tooMany, programID)
		require.ErrorIs(t, err, domain.ErrMaxSeedLengthExceeded)

		tooLong := [][]byte{bytes.Repeat([]byte{1}, domain.MaxSeedLen+1)}
		_, _, err = domain.FindProgramAddress(tooLong, programID)
		require.ErrorIs(t, err, domain.ErrMaxSeedLengthExceeded)
	})
}

func pubkeyHex(size int) string {
	return string(bytes.Repeat([]byte("ab"), size))
}
