package vault

import (
	"github.com/gagliardetto/solana-go"

	"github.com/r1vault/r1vault/vm"
)

// vaultSeedPrefix is the literal first seed segment of every vault address.
const vaultSeedPrefix = "vault"

// vaultSeeds splits the authorizing key into its prefix byte and x
// coordinate; each derivation seed segment has a small maximum length, so
// the 33-byte key cannot travel as one segment.
func vaultSeeds(pubkey [AuthorizingKeyLength]byte) [][]byte {
	return [][]byte{
		[]byte(vaultSeedPrefix),
		pubkey[:1],
		pubkey[1:],
	}
}

func vaultSignerSeeds(pubkey [AuthorizingKeyLength]byte, bump uint8) [][]byte {
	return append(vaultSeeds(pubkey), []byte{bump})
}

// DeriveVaultAddress computes the program-derived vault address for an
// authorizing key, along with the bump that put it off-curve.
func DeriveVaultAddress(pubkey [AuthorizingKeyLength]byte) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(vaultSeeds(pubkey), ProgramID)
}

// vaultAuthority recomputes the vault address from the signer key and a
// caller-supplied bump. The bump is untrusted input: a wrong bump either
// fails derivation or yields an address that will not match the vault
// account, so it can never redirect signing authority.
func vaultAuthority(pubkey [AuthorizingKeyLength]byte, bump uint8) (solana.PublicKey, error) {
	addr, err := solana.CreateProgramAddress(vaultSignerSeeds(pubkey, bump), ProgramID)
	if err != nil {
		return solana.PublicKey{}, vm.ErrInvalidAccountOwner
	}
	return addr, nil
}
