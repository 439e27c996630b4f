package secp256r1

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKey(t *testing.T) (*ecdsa.PrivateKey, [PublicKeyLength]byte) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return priv, CompressedPublicKey(priv)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, pubkey := newTestKey(t)
	msg := []byte("withdrawal authorization")

	sig, err := Sign(priv, msg)
	require.NoError(t, err)

	require.NoError(t, Verify(pubkey, msg, sig))
}

func TestVerifyRejections(t *testing.T) {
	priv, pubkey := newTestKey(t)
	msg := []byte("withdrawal authorization")
	sig, err := Sign(priv, msg)
	require.NoError(t, err)

	t.Run("tampered message", func(t *testing.T) {
		tampered := append([]byte(nil), msg...)
		tampered[0] ^= 0x01
		require.ErrorIs(t, Verify(pubkey, tampered, sig), ErrVerificationFailed)
	})

	t.Run("tampered signature", func(t *testing.T) {
		bad := sig
		bad[0] ^= 0x01
		require.ErrorIs(t, Verify(pubkey, msg, bad), ErrVerificationFailed)
	})

	t.Run("wrong public key", func(t *testing.T) {
		_, other := newTestKey(t)
		require.ErrorIs(t, Verify(other, msg, sig), ErrVerificationFailed)
	})

	t.Run("invalid point", func(t *testing.T) {
		var bad [PublicKeyLength]byte
		bad[0] = 0x05
		require.ErrorIs(t, Verify(bad, msg, sig), ErrInvalidPublicKey)
	})

	t.Run("high s is non-canonical", func(t *testing.T) {
		curve := elliptic.P256()
		s := new(big.Int).SetBytes(sig[32:])
		high := new(big.Int).Sub(curve.Params().N, s)

		var flipped [SignatureLength]byte
		copy(flipped[:32], sig[:32])
		high.FillBytes(flipped[32:])

		require.ErrorIs(t, Verify(pubkey, msg, flipped), ErrNonCanonicalSignature)
	})
}

func TestSignProducesLowS(t *testing.T) {
	priv, _ := newTestKey(t)
	halfOrder := new(big.Int).Rsh(elliptic.P256().Params().N, 1)

	for i := 0; i < 16; i++ {
		sig, err := Sign(priv, []byte{byte(i)})
		require.NoError(t, err)
		s := new(big.Int).SetBytes(sig[32:])
		assert.LessOrEqual(t, s.Cmp(halfOrder), 0)
	}
}

func TestBuildParseRoundTrip(t *testing.T) {
	priv, pubkey := newTestKey(t)
	msg := []byte("payer and expiry bytes")
	sig, err := Sign(priv, msg)
	require.NoError(t, err)

	parsed, err := Parse(BuildVerifyData(pubkey, sig, msg))
	require.NoError(t, err)

	require.Equal(t, uint8(1), parsed.NumSignatures)
	require.Len(t, parsed.Claims, 1)
	assert.Equal(t, pubkey, parsed.Claims[0].PublicKey)
	assert.Equal(t, sig, parsed.Claims[0].Signature)
	assert.Equal(t, msg, parsed.Claims[0].Message)
	require.NoError(t, Verify(parsed.Claims[0].PublicKey, parsed.Claims[0].Message, parsed.Claims[0].Signature))
}

func TestParseRejections(t *testing.T) {
	priv, pubkey := newTestKey(t)
	msg := []byte("payer and expiry bytes")
	sig, err := Sign(priv, msg)
	require.NoError(t, err)
	valid := BuildVerifyData(pubkey, sig, msg)

	t.Run("empty data", func(t *testing.T) {
		_, err := Parse(nil)
		require.ErrorIs(t, err, ErrTruncatedInstruction)
	})

	t.Run("offset table cut short", func(t *testing.T) {
		_, err := Parse(valid[:claimDataStart-1])
		require.ErrorIs(t, err, ErrTruncatedInstruction)
	})

	t.Run("claim data cut short", func(t *testing.T) {
		_, err := Parse(valid[:len(valid)-1])
		require.ErrorIs(t, err, ErrOffsetOutOfBounds)
	})

	t.Run("count larger than offset tables", func(t *testing.T) {
		bad := append([]byte(nil), valid...)
		bad[0] = 0xFF
		_, err := Parse(bad)
		require.ErrorIs(t, err, ErrTruncatedInstruction)
	})

	t.Run("offset pointing past the end", func(t *testing.T) {
		bad := append([]byte(nil), valid...)
		// public key offset
		binary.LittleEndian.PutUint16(bad[offsetsStart+4:], uint16(len(bad)))
		_, err := Parse(bad)
		require.ErrorIs(t, err, ErrOffsetOutOfBounds)
	})

	t.Run("claim referencing a sibling instruction", func(t *testing.T) {
		for _, field := range []int{2, 6, 12} {
			bad := append([]byte(nil), valid...)
			binary.LittleEndian.PutUint16(bad[offsetsStart+field:], 0)
			_, err := Parse(bad)
			require.ErrorIs(t, err, ErrForeignInstructionData, "index field at %d", field)
		}
	})
}

func TestCompressedPublicKey(t *testing.T) {
	priv, pubkey := newTestKey(t)

	x, y := elliptic.UnmarshalCompressed(elliptic.P256(), pubkey[:])
	require.NotNil(t, x)
	assert.Zero(t, priv.X.Cmp(x))
	assert.Zero(t, priv.Y.Cmp(y))
}
