package client

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/r1vault/r1vault/secp256r1"
	"github.com/r1vault/r1vault/vault"
)

// TxBuilder assembles and signs vault transactions.
type TxBuilder struct {
	rpcClient *RPCClient
	logger    zerolog.Logger
}

// NewTxBuilder creates a transaction builder over the given RPC pool.
func NewTxBuilder(rpcClient *RPCClient, logger zerolog.Logger) (*TxBuilder, error) {
	if rpcClient == nil {
		return nil, fmt.Errorf("rpcClient is required")
	}
	return &TxBuilder{
		rpcClient: rpcClient,
		logger:    logger.With().Str("component", "tx_builder").Logger(),
	}, nil
}

// BuildDeposit builds and signs a transaction depositing amount lamports
// into the vault derived from the authorizing key. Returns the transaction
// and the vault address it funds.
func (tb *TxBuilder) BuildDeposit(
	ctx context.Context,
	payer solana.PrivateKey,
	authorizingKey [vault.AuthorizingKeyLength]byte,
	amount uint64,
) (*solana.Transaction, solana.PublicKey, error) {
	vaultAddr, _, err := vault.DeriveVaultAddress(authorizingKey)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("failed to derive vault address: %w", err)
	}

	instr := vault.NewDepositInstruction(payer.PublicKey(), vaultAddr, authorizingKey, amount)

	tx, err := tb.signTransaction(ctx, payer, instr)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	tb.logger.Debug().
		Str("vault", vaultAddr.String()).
		Uint64("amount", amount).
		Msg("built deposit transaction")

	return tx, vaultAddr, nil
}

// BuildWithdraw builds and signs a transaction draining the key's vault back
// to the payer. The withdraw instruction comes first; the secp256r1
// verification instruction over (payer ‖ expiry) sits immediately after it,
// where the program's introspection expects it.
func (tb *TxBuilder) BuildWithdraw(
	ctx context.Context,
	payer solana.PrivateKey,
	key *AuthorizingKey,
	expiry int64,
) (*solana.Transaction, solana.PublicKey, error) {
	pubkey := key.PublicKeyBytes()
	vaultAddr, bump, err := vault.DeriveVaultAddress(pubkey)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("failed to derive vault address: %w", err)
	}

	sig, msg, err := key.SignWithdrawal(payer.PublicKey(), expiry)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	withdrawInstr := vault.NewWithdrawInstruction(payer.PublicKey(), vaultAddr, bump)
	verifyInstr := secp256r1.NewInstruction(pubkey, sig, msg)

	tx, err := tb.signTransaction(ctx, payer, withdrawInstr, verifyInstr)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	tb.logger.Debug().
		Str("vault", vaultAddr.String()).
		Int64("expiry", expiry).
		Msg("built withdraw transaction")

	return tx, vaultAddr, nil
}

func (tb *TxBuilder) signTransaction(
	ctx context.Context,
	payer solana.PrivateKey,
	instrs ...solana.Instruction,
) (*solana.Transaction, error) {
	recentBlockhash, err := tb.rpcClient.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instrs,
		recentBlockhash,
		solana.TransactionPayer(payer.PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			privKey := payer
			return &privKey
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	return tx, nil
}
