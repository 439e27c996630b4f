package vault

import (
	"github.com/r1vault/r1vault/vm"
)

// processWithdraw drains the vault's entire balance to the payer. The
// authority to do so is proven structurally: a sibling instruction in the
// same transaction already verified a secp256r1 signature, and this program
// checks that the verified claim names this payer, has not expired, and that
// the signer key derives exactly this vault address.
func processWithdraw(ic *vm.InstructionContext, data []byte) error {
	accounts, err := withdrawAccountsFrom(ic)
	if err != nil {
		return err
	}
	req, err := parseWithdrawData(data)
	if err != nil {
		return err
	}
	if err := accounts.validate(); err != nil {
		return err
	}

	claim, err := introspectSignatureClaim(accounts.instructions.DataBytes())
	if err != nil {
		return err
	}

	payerClaim, expiry, err := splitAuthorizationMessage(claim.Message)
	if err != nil {
		return err
	}

	// The signature must name the transaction's actual payer; a claim signed
	// for someone else cannot be submitted by this payer.
	if payerClaim != accounts.payer.Key() {
		return vm.ErrInvalidAccountOwner
	}

	// Freshness is evaluated against ledger time at execution, with no grace
	// window. expiry == now still passes.
	if ic.Clock().UnixTimestamp > expiry {
		return vm.ErrInvalidAccountData
	}

	authority, err := vaultAuthority(claim.PublicKey, req.Bump)
	if err != nil {
		return err
	}
	if authority != accounts.vault.Key() {
		return vm.ErrInvalidAccountOwner
	}

	return ic.InvokeSigned(
		vm.NewTransferInstruction(
			accounts.vault.Key(),
			accounts.payer.Key(),
			accounts.vault.Lamports(),
		),
		vaultSignerSeeds(claim.PublicKey, req.Bump),
	)
}
