package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
)

const (
	escrowSeedPrefix = "escrow"

	escrowTagSize = 8
	// EscrowRecordSize is the size in bytes of a serialized escrow record.
	EscrowRecordSize = escrowTagSize + 8 + 3*PubkeySize + 8 + 8 + 1
)

// escrowTag is the leading type tag of every serialized escrow record.
var escrowTag = func() []byte {
	h := sha256.Sum256([]byte("account:Escrow"))
	return h[:escrowTagSize]
}()

// Escrow is the record of an open offer. Its fields are written once at
// creation and never updated. The amount deposited is not part of the record
// since it's the live balance of the escrow's vault.
type Escrow struct {
	// Seed chosen by the maker to derive the escrow address.
	Seed uint64
	// Maker is the identity that created the escrow.
	Maker Pubkey
	// AssetA is the type of the deposited asset.
	AssetA Pubkey
	// AssetB is the type of the requested asset.
	AssetB Pubkey
	// Receive is the amount of AssetB required to settle the escrow.
	Receive uint64
	// CreatedAt is the creation unix timestamp.
	CreatedAt int64
	// Bump is the nonce that makes the escrow address a valid program address.
	Bump uint8
}

// EscrowSeeds returns the seeds used to derive the address of an escrow.
func EscrowSeeds(maker Pubkey, seed uint64) [][]byte {
	seedBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(seedBytes, seed)
	return [][]byte{[]byte(escrowSeedPrefix), maker[:], seedBytes}
}

// FindEscrowAddress returns the address of the escrow for the given maker and
// seed, along with its bump.
func FindEscrowAddress(
	programID, maker Pubkey, seed uint64,
) (Pubkey, uint8, error) {
	return FindProgramAddress(EscrowSeeds(maker, seed), programID)
}

// Address recreates the escrow address by using its stored bump.
func (e *Escrow) Address(programID Pubkey) (Pubkey, error) {
	seeds := append(EscrowSeeds(e.Maker, e.Seed), []byte{e.Bump})
	return CreateProgramAddress(seeds, programID)
}

func (e *Escrow) IsZero() bool {
	return *e == Escrow{}
}

// MarshalBinary serializes the escrow into its fixed-size layout:
// tag | seed | maker | asset_a | asset_b | receive | created_at | bump.
// Integers are little endian.
func (e Escrow) MarshalBinary() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, EscrowRecordSize))
	buf.Write(escrowTag)
	binary.Write(buf, binary.LittleEndian, e.Seed)
	buf.Write(e.Maker[:])
	buf.Write(e.AssetA[:])
	buf.Write(e.AssetB[:])
	binary.Write(buf, binary.LittleEndian, e.Receive)
	binary.Write(buf, binary.LittleEndian, e.CreatedAt)
	buf.WriteByte(e.Bump)
	return buf.Bytes(), nil
}

// UnmarshalBinary deserializes an escrow record, rejecting data with wrong
// size or type tag.
func (e *Escrow) UnmarshalBinary(data []byte) error {
	if len(data) != EscrowRecordSize {
		return ErrInvalidEscrowData
	}
	if !bytes.Equal(data[:escrowTagSize], escrowTag) {
		return ErrInvalidEscrowData
	}

	r := bytes.NewReader(data[escrowTagSize:])
	var escrow Escrow
	binary.Read(r, binary.LittleEndian, &escrow.Seed)
	r.Read(escrow.Maker[:])
	r.Read(escrow.AssetA[:])
	r.Read(escrow.AssetB[:])
	binary.Read(r, binary.LittleEndian, &escrow.Receive)
	binary.Read(r, binary.LittleEndian, &escrow.CreatedAt)
	escrow.Bump, _ = r.ReadByte()

	*e = escrow
	return nil
}
