package mathutil

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// MaxPrecision is the max number of decimal places an asset can have.
const MaxPrecision = 18

var maxUint64 = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

// ToBaseUnits converts a human readable amount, like "10.5", into the
// integer amount of base units for an asset with the given precision.
// Amounts with more decimal places than precision are rejected instead of
// rounded.
func ToBaseUnits(amount string, precision uint) (uint64, error) {
	if precision > MaxPrecision {
		return 0, fmt.Errorf("precision must be in range [0, %d]", MaxPrecision)
	}
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if dec.IsNegative() {
		return 0, fmt.Errorf("amount must not be negative")
	}

	units := dec.Shift(int32(precision))
	if !units.Equal(units.Truncate(0)) {
		return 0, fmt.Errorf(
			"amount %s has more than %d decimal places", amount, precision,
		)
	}
	if units.GreaterThan(maxUint64) {
		return 0, ErrOverflow
	}
	return units.BigInt().Uint64(), nil
}

// FromBaseUnits is the inverse of ToBaseUnits.
func FromBaseUnits(amount uint64, precision uint) string {
	dec := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0)
	return dec.Shift(-int32(precision)).String()
}
