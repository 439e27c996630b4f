package vault

import (
	"github.com/gagliardetto/solana-go"

	"github.com/r1vault/r1vault/vm"
)

// depositAccounts is Deposit's fixed account shape: payer, vault, and one
// reserved trailing slot.
type depositAccounts struct {
	payer *vm.BorrowedAccount
	vault *vm.BorrowedAccount
}

func depositAccountsFrom(ic *vm.InstructionContext) (*depositAccounts, error) {
	if ic.NumAccounts() < 3 {
		return nil, vm.ErrNotEnoughAccountKeys
	}
	return &depositAccounts{payer: ic.Account(0), vault: ic.Account(1)}, nil
}

// validate checks the preconditions that must hold before any value moves:
// the payer signed the transaction, and the vault is a system-owned account
// that has not been funded yet.
func (a *depositAccounts) validate() error {
	if !a.payer.IsSigner {
		return vm.ErrInvalidAccountOwner
	}
	if !a.vault.IsOwnedBy(solana.SystemProgramID) {
		return vm.ErrInvalidAccountOwner
	}
	if a.vault.Lamports() != 0 {
		return vm.ErrInvalidAccountData
	}
	return nil
}

// withdrawAccounts is Withdraw's fixed account shape: payer, vault, the
// instructions sysvar, and one reserved trailing slot.
type withdrawAccounts struct {
	payer        *vm.BorrowedAccount
	vault        *vm.BorrowedAccount
	instructions *vm.BorrowedAccount
}

func withdrawAccountsFrom(ic *vm.InstructionContext) (*withdrawAccounts, error) {
	if ic.NumAccounts() < 4 {
		return nil, vm.ErrNotEnoughAccountKeys
	}
	return &withdrawAccounts{
		payer:        ic.Account(0),
		vault:        ic.Account(1),
		instructions: ic.Account(2),
	}, nil
}

func (a *withdrawAccounts) validate() error {
	if !a.payer.IsSigner {
		return vm.ErrInvalidAccountOwner
	}
	if !a.vault.IsOwnedBy(solana.SystemProgramID) {
		return vm.ErrInvalidAccountOwner
	}
	if a.vault.Lamports() == 0 {
		return vm.ErrInvalidAccountData
	}
	if a.instructions.Key() != solana.SysVarInstructionsPubkey {
		return vm.ErrInvalidAccountOwner
	}
	return nil
}
