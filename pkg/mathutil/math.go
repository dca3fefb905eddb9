package mathutil

import (
	"errors"
	"math/bits"
)

var (
	// ErrOverflow is returned when the result of an operation exceeds the
	// uint64 range.
	ErrOverflow = errors.New("uint64 overflow")
	// ErrUnderflow is returned when subtracting a greater value from a lower
	// one.
	ErrUnderflow = errors.New("uint64 underflow")
)

// SafeAdd returns x + y or ErrOverflow if the sum doesn't fit in 64 bits.
func SafeAdd(x, y uint64) (uint64, error) {
	sum, carry := bits.Add64(x, y, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// SafeSub returns x - y or ErrUnderflow if y > x.
func SafeSub(x, y uint64) (uint64, error) {
	diff, borrow := bits.Sub64(x, y, 0)
	if borrow != 0 {
		return 0, ErrUnderflow
	}
	return diff, nil
}

// SafeSum adds up all the given values and fails at the first overflow.
func SafeSum(values ...uint64) (uint64, error) {
	var tot uint64
	for _, v := range values {
		var err error
		if tot, err = SafeAdd(tot, v); err != nil {
			return 0, err
		}
	}
	return tot, nil
}
