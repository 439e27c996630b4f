package vault

import (
	"github.com/r1vault/r1vault/vm"
)

// processDeposit funds the vault tied to the stated authorizing key. The
// supplied vault account must sit exactly at the address derived from that
// key, otherwise a depositor could be steered into funding a vault whose
// withdrawal authority belongs to a different key.
func processDeposit(ic *vm.InstructionContext, data []byte) error {
	accounts, err := depositAccountsFrom(ic)
	if err != nil {
		return err
	}
	req, err := parseDepositData(data)
	if err != nil {
		return err
	}
	if err := accounts.validate(); err != nil {
		return err
	}

	expected, _, err := DeriveVaultAddress(req.Pubkey)
	if err != nil {
		return vm.ErrInvalidAccountOwner
	}
	if expected != accounts.vault.Key() {
		return vm.ErrInvalidAccountOwner
	}

	// The payer signs the transaction itself, so the transfer needs no
	// derived authority.
	return ic.Invoke(vm.NewTransferInstruction(
		accounts.payer.Key(),
		accounts.vault.Key(),
		req.Amount,
	))
}
