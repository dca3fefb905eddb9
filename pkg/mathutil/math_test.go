package mathutil_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/pkg/mathutil"
)

func TestSafeArithmetic(t *testing.T) {
	sum, err := mathutil.SafeAdd(10, 20)
	require.NoError(t, err)
	require.Equal(t, uint64(30), sum)

	_, err = mathutil.SafeAdd(math.MaxUint64, 1)
	require.ErrorIs(t, err, mathutil.ErrOverflow)

	diff, err := mathutil.SafeSub(20, 20)
	require.NoError(t, err)
	require.Zero(t, diff)

	_, err = mathutil.SafeSub(10, 11)
	require.ErrorIs(t, err, mathutil.ErrUnderflow)

	tot, err := mathutil.SafeSum(1, 2, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(6), tot)

	_, err = mathutil.SafeSum(1, math.MaxUint64)
	require.ErrorIs(t, err, mathutil.ErrOverflow)
}

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		amount    string
		precision uint
		expected  uint64
	}{
		{"10", 0, 10},
		{"10.5", 1, 105},
		{"0.00000001", 8, 1},
		{"1", 8, 100000000},
		{"18446744073709551615", 0, math.MaxUint64},
	}

	for _, tt := range tests {
		units, err := mathutil.ToBaseUnits(tt.amount, tt.precision)
		require.NoError(t, err)
		require.Equal(t, tt.expected, units)
		require.Equal(
			t, tt.amount, mathutil.FromBaseUnits(units, tt.precision),
		)
	}
}

func TestFailingToBaseUnits(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		precision uint
	}{
		{"not_a_number", "ten", 0},
		{"negative", "-1", 0},
		{"too_many_decimals", "0.001", 2},
		{"overflow", "18446744073709551616", 0},
		{"precision_out_of_range", "1", 19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mathutil.ToBaseUnits(tt.amount, tt.precision)
			require.Error(t, err)
		})
	}
}
