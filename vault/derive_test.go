package vault

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r1vault/r1vault/secp256r1"
)

func randomAuthorizingKey(t *testing.T) [AuthorizingKeyLength]byte {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return secp256r1.CompressedPublicKey(priv)
}

func TestDeriveVaultAddress(t *testing.T) {
	t.Run("is deterministic", func(t *testing.T) {
		key := randomAuthorizingKey(t)

		addrA, bumpA, err := DeriveVaultAddress(key)
		require.NoError(t, err)
		addrB, bumpB, err := DeriveVaultAddress(key)
		require.NoError(t, err)

		assert.Equal(t, addrA, addrB)
		assert.Equal(t, bumpA, bumpB)
	})

	t.Run("distinct keys yield distinct vaults", func(t *testing.T) {
		addrA, _, err := DeriveVaultAddress(randomAuthorizingKey(t))
		require.NoError(t, err)
		addrB, _, err := DeriveVaultAddress(randomAuthorizingKey(t))
		require.NoError(t, err)

		assert.NotEqual(t, addrA, addrB)
	})

	t.Run("bump recomputes to the same address", func(t *testing.T) {
		key := randomAuthorizingKey(t)
		addr, bump, err := DeriveVaultAddress(key)
		require.NoError(t, err)

		recomputed, err := vaultAuthority(key, bump)
		require.NoError(t, err)
		assert.Equal(t, addr, recomputed)
	})
}
