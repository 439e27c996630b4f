// Package secp256r1 implements the byte layout of the secp256r1 (P-256)
// signature-verification instruction: the header and offset table, a builder
// for the single-claim form, a defensive parser for untrusted instruction
// data, and the ECDSA verification the precompile performs. P-256 is the
// curve used by platform authenticators, so a passkey can act as the
// authorizing key without ever becoming a ledger-native signer.
package secp256r1

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// ProgramID is the address of the secp256r1 signature-verification program.
var ProgramID = solana.MustPublicKeyFromBase58("Secp256r1SigVerify1111111111111111111111111")

const (
	// PublicKeyLength is the size of a compressed P-256 public key: one
	// parity prefix byte plus the 32-byte x coordinate.
	PublicKeyLength = 33

	// SignatureLength is the size of a fixed-width r‖s signature.
	SignatureLength = 64

	offsetsStart   = 2  // u8 count + u8 padding
	offsetsSize    = 14 // seven u16 fields
	claimDataStart = offsetsStart + offsetsSize

	// instructionIndexCurrent marks an offset as referring to the data of
	// the verification instruction itself rather than a sibling.
	instructionIndexCurrent = 0xFFFF
)

var (
	ErrTruncatedInstruction   = errors.New("secp256r1: truncated instruction data")
	ErrOffsetOutOfBounds      = errors.New("secp256r1: offset out of bounds")
	ErrForeignInstructionData = errors.New("secp256r1: claim references another instruction's data")
	ErrInvalidPublicKey       = errors.New("secp256r1: public key is not a point on the curve")
	ErrNonCanonicalSignature  = errors.New("secp256r1: signature s is not in the low half of the order")
	ErrVerificationFailed     = errors.New("secp256r1: signature verification failed")
)

// signatureOffsets is the per-claim offset table. All offsets are relative to
// the start of the instruction data identified by the paired index field.
type signatureOffsets struct {
	SignatureOffset           uint16
	SignatureInstructionIndex uint16
	PublicKeyOffset           uint16
	PublicKeyInstructionIndex uint16
	MessageDataOffset         uint16
	MessageDataSize           uint16
	MessageInstructionIndex   uint16
}

// SignatureClaim is one verified (public key, signature, message) triple
// extracted from a parsed verification instruction.
type SignatureClaim struct {
	PublicKey [PublicKeyLength]byte
	Signature [SignatureLength]byte
	Message   []byte
}

// VerifyInstruction is the parsed form of a secp256r1 verification
// instruction.
type VerifyInstruction struct {
	NumSignatures uint8
	Claims        []SignatureClaim
}

// Parse deserializes untrusted verification-instruction data. Claims that
// point into a sibling instruction's data are rejected: everything a claim
// asserts must be carried by the instruction itself.
func Parse(data []byte) (*VerifyInstruction, error) {
	if len(data) < offsetsStart {
		return nil, ErrTruncatedInstruction
	}
	num := data[0]
	if len(data) < offsetsStart+int(num)*offsetsSize {
		return nil, ErrTruncatedInstruction
	}

	parsed := &VerifyInstruction{NumSignatures: num}
	for i := 0; i < int(num); i++ {
		off := parseOffsets(data[offsetsStart+i*offsetsSize:])
		if off.SignatureInstructionIndex != instructionIndexCurrent ||
			off.PublicKeyInstructionIndex != instructionIndexCurrent ||
			off.MessageInstructionIndex != instructionIndexCurrent {
			return nil, ErrForeignInstructionData
		}

		var claim SignatureClaim
		pubkey, err := sliceAt(data, off.PublicKeyOffset, PublicKeyLength)
		if err != nil {
			return nil, err
		}
		copy(claim.PublicKey[:], pubkey)

		sig, err := sliceAt(data, off.SignatureOffset, SignatureLength)
		if err != nil {
			return nil, err
		}
		copy(claim.Signature[:], sig)

		claim.Message, err = sliceAt(data, off.MessageDataOffset, int(off.MessageDataSize))
		if err != nil {
			return nil, err
		}

		parsed.Claims = append(parsed.Claims, claim)
	}
	return parsed, nil
}

func parseOffsets(b []byte) signatureOffsets {
	return signatureOffsets{
		SignatureOffset:           binary.LittleEndian.Uint16(b[0:]),
		SignatureInstructionIndex: binary.LittleEndian.Uint16(b[2:]),
		PublicKeyOffset:           binary.LittleEndian.Uint16(b[4:]),
		PublicKeyInstructionIndex: binary.LittleEndian.Uint16(b[6:]),
		MessageDataOffset:         binary.LittleEndian.Uint16(b[8:]),
		MessageDataSize:           binary.LittleEndian.Uint16(b[10:]),
		MessageInstructionIndex:   binary.LittleEndian.Uint16(b[12:]),
	}
}

func sliceAt(data []byte, offset uint16, length int) ([]byte, error) {
	start := int(offset)
	end := start + length
	if end > len(data) || end < start {
		return nil, ErrOffsetOutOfBounds
	}
	return data[start:end], nil
}

// BuildVerifyData serializes a single-claim verification instruction:
// header, offset table, then public key, signature and message back to back.
func BuildVerifyData(pubkey [PublicKeyLength]byte, sig [SignatureLength]byte, message []byte) []byte {
	off := signatureOffsets{
		PublicKeyOffset:           claimDataStart,
		PublicKeyInstructionIndex: instructionIndexCurrent,
		SignatureOffset:           claimDataStart + PublicKeyLength,
		SignatureInstructionIndex: instructionIndexCurrent,
		MessageDataOffset:         claimDataStart + PublicKeyLength + SignatureLength,
		MessageDataSize:           uint16(len(message)),
		MessageInstructionIndex:   instructionIndexCurrent,
	}

	data := make([]byte, 0, claimDataStart+PublicKeyLength+SignatureLength+len(message))
	data = append(data, 1, 0)
	data = binary.LittleEndian.AppendUint16(data, off.SignatureOffset)
	data = binary.LittleEndian.AppendUint16(data, off.SignatureInstructionIndex)
	data = binary.LittleEndian.AppendUint16(data, off.PublicKeyOffset)
	data = binary.LittleEndian.AppendUint16(data, off.PublicKeyInstructionIndex)
	data = binary.LittleEndian.AppendUint16(data, off.MessageDataOffset)
	data = binary.LittleEndian.AppendUint16(data, off.MessageDataSize)
	data = binary.LittleEndian.AppendUint16(data, off.MessageInstructionIndex)
	data = append(data, pubkey[:]...)
	data = append(data, sig[:]...)
	data = append(data, message...)
	return data
}

// NewInstruction wraps BuildVerifyData into a program instruction. The
// verification program takes no accounts.
func NewInstruction(pubkey [PublicKeyLength]byte, sig [SignatureLength]byte, message []byte) solana.Instruction {
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{}, BuildVerifyData(pubkey, sig, message))
}

// Verify checks a 64-byte r‖s signature over sha256(message) against a
// compressed P-256 public key. Signatures with a high s are rejected as
// non-canonical.
func Verify(pubkey [PublicKeyLength]byte, message []byte, sig [SignatureLength]byte) error {
	curve := elliptic.P256()
	x, y := elliptic.UnmarshalCompressed(curve, pubkey[:])
	if x == nil {
		return ErrInvalidPublicKey
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	if !isLowS(curve, s) {
		return ErrNonCanonicalSignature
	}

	digest := sha256.Sum256(message)
	pub := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	if !ecdsa.Verify(pub, digest[:], r, s) {
		return ErrVerificationFailed
	}
	return nil
}

// Sign produces a canonical low-s, fixed-width r‖s signature over
// sha256(message).
func Sign(priv *ecdsa.PrivateKey, message []byte) ([SignatureLength]byte, error) {
	var sig [SignatureLength]byte

	digest := sha256.Sum256(message)
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	if err != nil {
		return sig, err
	}

	if !isLowS(priv.Curve, s) {
		s = new(big.Int).Sub(priv.Curve.Params().N, s)
	}

	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])
	return sig, nil
}

// CompressedPublicKey returns the 33-byte compressed encoding of the key's
// public point.
func CompressedPublicKey(priv *ecdsa.PrivateKey) [PublicKeyLength]byte {
	var pubkey [PublicKeyLength]byte
	copy(pubkey[:], elliptic.MarshalCompressed(priv.Curve, priv.X, priv.Y))
	return pubkey
}

func isLowS(curve elliptic.Curve, s *big.Int) bool {
	halfOrder := new(big.Int).Rsh(curve.Params().N, 1)
	return s.Cmp(halfOrder) <= 0
}
