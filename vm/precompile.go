package vm

import (
	"github.com/gagliardetto/solana-go"

	"github.com/r1vault/r1vault/secp256r1"
)

var secp256r1ProgramID solana.PublicKey = secp256r1.ProgramID

// secp256r1ProgramExecute is the signature-verification precompile. It
// parses its own instruction data and runs real ECDSA-P256 verification over
// every claim; any structural or cryptographic failure aborts the
// transaction, which is what lets sibling instructions trust the claims
// afterwards.
func secp256r1ProgramExecute(ic *InstructionContext) error {
	parsed, err := secp256r1.Parse(ic.Data)
	if err != nil {
		return ErrInvalidInstructionData
	}
	if parsed.NumSignatures == 0 {
		return ErrInvalidInstructionData
	}

	for _, claim := range parsed.Claims {
		if err := secp256r1.Verify(claim.PublicKey, claim.Message, claim.Signature); err != nil {
			return ErrPrecompileVerifyFailure
		}
	}
	return nil
}
