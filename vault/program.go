// Package vault is a custody-vault program: native value deposited against a
// secp256r1 (P-256) public key can only be withdrawn, in full, by presenting
// a fresh signature from the matching private key inside the same
// transaction. The vault account is a program-derived address over the key's
// bytes, so the program can act as its signing authority without any stored
// access control.
package vault

import (
	"github.com/gagliardetto/solana-go"

	"github.com/r1vault/r1vault/vm"
)

// ProgramID is the vault program's address.
var ProgramID = solana.PublicKeyFromBytes([]byte{
	0x0f, 0x1e, 0x6b, 0x14, 0x21, 0xc0, 0x4a, 0x07,
	0x04, 0x31, 0x26, 0x5c, 0x19, 0xc5, 0xbb, 0xee,
	0x19, 0x92, 0xba, 0xe8, 0xaf, 0xd1, 0xcd, 0x07,
	0x8e, 0xf8, 0xaf, 0x70, 0x47, 0xdc, 0x11, 0xf7,
})

// Instruction discriminators, the leading byte of every payload.
const (
	DepositDiscriminator  byte = 0
	WithdrawDiscriminator byte = 1
)

// Execute is the program entrypoint: it splits the discriminator off the
// payload and routes to the matching operation. Empty payloads and unknown
// discriminators never partially dispatch.
func Execute(ic *vm.InstructionContext) error {
	if len(ic.Data) == 0 {
		return vm.ErrInvalidAccountData
	}

	switch ic.Data[0] {
	case DepositDiscriminator:
		return processDeposit(ic, ic.Data[1:])
	case WithdrawDiscriminator:
		return processWithdraw(ic, ic.Data[1:])
	default:
		return vm.ErrInvalidAccountData
	}
}
