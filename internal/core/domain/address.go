package domain

import (
	"crypto/sha256"
	"errors"
	"math"
)

const (
	// MaxSeeds is the max number of seeds, bump included, used to derive a
	// program address.
	MaxSeeds = 16
	// MaxSeedLen is the max length in bytes of every seed.
	MaxSeedLen = 32

	programAddressMarker = "ProgramDerivedAddress"
)

// CreateProgramAddress deterministically derives an address from the given
// seeds and program identity. The derived address must be off curve, so that
// no private key exists for it and only the program can authorize its debits.
func CreateProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, error) {
	if len(seeds) > MaxSeeds {
		return Pubkey{}, ErrMaxSeedLengthExceeded
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return Pubkey{}, ErrMaxSeedLengthExceeded
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(programAddressMarker))

	var addr Pubkey
	copy(addr[:], h.Sum(nil))
	if addr.IsOnCurve() {
		return Pubkey{}, ErrInvalidSeeds
	}
	return addr, nil
}

// FindProgramAddress looks for the first bump, starting from 255 down to 0,
// that combined with seeds produces a valid program address. It returns the
// address and the bump, that can be used later to recreate the same address
// with CreateProgramAddress without searching again.
func FindProgramAddress(
	seeds [][]byte, programID Pubkey,
) (Pubkey, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return Pubkey{}, 0, ErrMaxSeedLengthExceeded
	}

	seedsWithBump := make([][]byte, len(seeds)+1)
	copy(seedsWithBump, seeds)

	for bump := math.MaxUint8; bump >= 0; bump-- {
		seedsWithBump[len(seeds)] = []byte{uint8(bump)}
		addr, err := CreateProgramAddress(seedsWithBump, programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrInvalidSeeds) {
			return Pubkey{}, 0, err
		}
	}
	return Pubkey{}, 0, ErrNoViableBump
}
