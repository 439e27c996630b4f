package vault

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/r1vault/r1vault/secp256r1"
	"github.com/r1vault/r1vault/vm"
)

// introspectSignatureClaim reads the instruction immediately after the
// current one out of the instructions sysvar and extracts its single
// signature claim. The sibling's structure is untrusted input: it must be a
// genuine secp256r1 verification instruction carrying exactly one claim.
// Batched verification instructions are rejected outright.
func introspectSignatureClaim(sysvarData []byte) (*secp256r1.SignatureClaim, error) {
	sibling, err := vm.LoadInstructionRelative(sysvarData, 1)
	if err != nil {
		return nil, vm.ErrInvalidInstructionData
	}
	if sibling.ProgramID != secp256r1.ProgramID {
		return nil, vm.ErrInvalidInstructionData
	}

	parsed, err := secp256r1.Parse(sibling.Data)
	if err != nil {
		return nil, vm.ErrInvalidInstructionData
	}
	if parsed.NumSignatures != 1 {
		return nil, vm.ErrInvalidInstructionData
	}
	return &parsed.Claims[0], nil
}

// splitAuthorizationMessage takes the signed message apart into the claimed
// payer address and the expiry timestamp.
func splitAuthorizationMessage(msg []byte) (solana.PublicKey, int64, error) {
	if len(msg) < solana.PublicKeyLength {
		return solana.PublicKey{}, 0, vm.ErrInvalidAccountData
	}
	payer := solana.PublicKeyFromBytes(msg[:solana.PublicKeyLength])

	expiryBytes := msg[solana.PublicKeyLength:]
	if len(expiryBytes) != 8 {
		return solana.PublicKey{}, 0, vm.ErrInvalidInstructionData
	}
	expiry := int64(binary.LittleEndian.Uint64(expiryBytes))

	return payer, expiry, nil
}
