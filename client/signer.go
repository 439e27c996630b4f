package client

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"

	"github.com/r1vault/r1vault/secp256r1"
	"github.com/r1vault/r1vault/vault"
)

const ecPrivateKeyPEMType = "EC PRIVATE KEY"

// AuthorizingKey holds the P-256 private key whose signatures authorize
// withdrawals. The key never touches the chain; only its compressed public
// form does, as a derivation seed and as the expected signer of the
// verification instruction.
type AuthorizingKey struct {
	priv *ecdsa.PrivateKey
}

// GenerateAuthorizingKey creates a fresh P-256 authorizing key.
func GenerateAuthorizingKey() (*AuthorizingKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate P-256 key: %w", err)
	}
	return &AuthorizingKey{priv: priv}, nil
}

// LoadAuthorizingKey reads a PEM-encoded P-256 private key from disk.
func LoadAuthorizingKey(path string) (*AuthorizingKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read authorizing key %s: %w", path, err)
	}

	block, _ := pem.Decode(raw)
	if block == nil || block.Type != ecPrivateKeyPEMType {
		return nil, fmt.Errorf("file %s does not contain an EC private key", path)
	}

	priv, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse authorizing key %s: %w", path, err)
	}
	if priv.Curve != elliptic.P256() {
		return nil, fmt.Errorf("authorizing key %s is not on P-256", path)
	}
	return &AuthorizingKey{priv: priv}, nil
}

// Save writes the key to path as PEM, readable only by the owner.
func (k *AuthorizingKey) Save(path string) error {
	der, err := x509.MarshalECPrivateKey(k.priv)
	if err != nil {
		return fmt.Errorf("failed to encode authorizing key: %w", err)
	}
	raw := pem.EncodeToMemory(&pem.Block{Type: ecPrivateKeyPEMType, Bytes: der})
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write authorizing key %s: %w", path, err)
	}
	return nil
}

// PublicKeyBytes returns the 33-byte compressed public key: the identity a
// vault is derived from.
func (k *AuthorizingKey) PublicKeyBytes() [vault.AuthorizingKeyLength]byte {
	return secp256r1.CompressedPublicKey(k.priv)
}

// SignWithdrawal signs the authorization message binding a withdrawal to
// payer until expiry, returning the signature and the message it covers.
func (k *AuthorizingKey) SignWithdrawal(payer solana.PublicKey, expiry int64) ([secp256r1.SignatureLength]byte, []byte, error) {
	msg := vault.AuthorizationMessage(payer, expiry)
	sig, err := secp256r1.Sign(k.priv, msg)
	if err != nil {
		return sig, nil, fmt.Errorf("failed to sign withdrawal authorization: %w", err)
	}
	return sig, msg, nil
}
