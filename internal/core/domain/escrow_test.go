package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

func TestEscrowBinaryLayout(t *testing.T) {
	programID := newTestAsset(0x01)
	maker := newTestIdentity(t)
	_, bump, err := domain.FindEscrowAddress(programID, maker, 123)
	require.NoError(t, err)

	escrow := domain.Escrow{
		Seed:      123,
		Maker:     maker,
		AssetA:    newTestAsset(0xaa),
		AssetB:    newTestAsset(0xbb),
		Receive:   10,
		CreatedAt: -1,
		Bump:      bump,
	}

	data, err := escrow.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, domain.EscrowRecordSize)
	require.Equal(t, 129, domain.EscrowRecordSize)
	// seed is little endian right after the tag.
	require.Equal(t, byte(123), data[8])
	require.Equal(t, maker[:], data[16:48])
	require.Equal(t, bump, data[len(data)-1])

	var got domain.Escrow
	require.NoError(t, got.UnmarshalBinary(data))
	require.Equal(t, escrow, got)

	addr, err := got.Address(programID)
	require.NoError(t, err)
	expectedAddr, _, err := domain.FindEscrowAddress(programID, maker, 123)
	require.NoError(t, err)
	require.Equal(t, expectedAddr, addr)
}

func TestFailingEscrowUnmarshal(t *testing.T) {
	data, err := domain.Escrow{Seed: 1}.MarshalBinary()
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", data[:len(data)-1]},
		{"long", append(append([]byte{}, data...), 0)},
		{"wrong tag", append([]byte{data[0] ^ 0xff}, data[1:]...)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var escrow domain.Escrow
			err := escrow.UnmarshalBinary(tt.data)
			require.ErrorIs(t, err, domain.ErrInvalidEscrowData)
		})
	}
}
