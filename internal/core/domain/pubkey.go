package domain

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// PubkeySize is the size in bytes of a Pubkey.
const PubkeySize = 32

// Pubkey is the 32-byte identifier used for identities, asset types, the
// program identity and program derived addresses.
type Pubkey [PubkeySize]byte

// NewPubkeyFromBytes ...
func NewPubkeyFromBytes(buf []byte) (Pubkey, error) {
	var pk Pubkey
	if len(buf) != PubkeySize {
		return pk, ErrInvalidPubkey
	}
	copy(pk[:], buf)
	return pk, nil
}

// NewPubkeyFromString parses the hex representation of a Pubkey.
func NewPubkeyFromString(str string) (Pubkey, error) {
	buf, err := hex.DecodeString(str)
	if err != nil {
		return Pubkey{}, ErrInvalidPubkey
	}
	return NewPubkeyFromBytes(buf)
}

// NewPubkeyFromPublicKey returns the x-only serialization of the given
// secp256k1 public key.
func NewPubkeyFromPublicKey(key *btcec.PublicKey) Pubkey {
	var pk Pubkey
	copy(pk[:], schnorr.SerializePubKey(key))
	return pk
}

func (p Pubkey) String() string {
	return hex.EncodeToString(p[:])
}

func (p Pubkey) Bytes() []byte {
	return append([]byte{}, p[:]...)
}

func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// IsOnCurve returns whether the pubkey is a valid x-only secp256k1 public
// key, meaning that somebody may hold the relative private key.
// Program derived addresses are never on curve.
func (p Pubkey) IsOnCurve() bool {
	_, err := schnorr.ParsePubKey(p[:])
	return err == nil
}

func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pubkey) UnmarshalText(text []byte) error {
	pk, err := NewPubkeyFromString(string(text))
	if err != nil {
		return err
	}
	*p = pk
	return nil
}
