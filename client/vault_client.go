package client

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/r1vault/r1vault/db"
	"github.com/r1vault/r1vault/store"
	"github.com/r1vault/r1vault/vault"
)

// VaultClient ties the transaction builder, the RPC pool and the local
// submission store together into the two operations the program offers.
type VaultClient struct {
	rpcClient *RPCClient
	builder   *TxBuilder
	database  *db.DB
	logger    zerolog.Logger
}

// NewVaultClient creates a vault client. The database is optional; without
// it submissions are simply not recorded.
func NewVaultClient(rpcClient *RPCClient, database *db.DB, logger zerolog.Logger) (*VaultClient, error) {
	builder, err := NewTxBuilder(rpcClient, logger)
	if err != nil {
		return nil, err
	}
	return &VaultClient{
		rpcClient: rpcClient,
		builder:   builder,
		database:  database,
		logger:    logger.With().Str("component", "vault_client").Logger(),
	}, nil
}

// Deposit funds the vault derived from the authorizing key and records the
// submission. Returns the transaction signature.
func (vc *VaultClient) Deposit(
	ctx context.Context,
	payer solana.PrivateKey,
	authorizingKey [vault.AuthorizingKeyLength]byte,
	amount uint64,
) (string, error) {
	tx, vaultAddr, err := vc.builder.BuildDeposit(ctx, payer, authorizingKey, amount)
	if err != nil {
		return "", err
	}

	// The program rejects deposits into a funded vault; check before
	// broadcasting.
	if acct, err := vc.rpcClient.GetAccountInfo(ctx, vaultAddr); err == nil && acct != nil && acct.Lamports > 0 {
		return "", fmt.Errorf("vault %s is already funded with %d lamports", vaultAddr, acct.Lamports)
	}

	txHash, err := vc.rpcClient.BroadcastTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to broadcast deposit: %w", err)
	}

	vc.record(&store.VaultTransaction{
		TxHash: txHash,
		Kind:   store.KindDeposit,
		Vault:  vaultAddr.String(),
		Payer:  payer.PublicKey().String(),
		Amount: amount,
		Status: store.StatusSubmitted,
	})

	vc.logger.Info().
		Str("tx_hash", txHash).
		Str("vault", vaultAddr.String()).
		Uint64("amount", amount).
		Msg("deposit broadcast")

	return txHash, nil
}

// Withdraw drains the key's vault back to the payer, authorizing it with a
// signature valid for expiryWindow from now. Returns the transaction
// signature.
func (vc *VaultClient) Withdraw(
	ctx context.Context,
	payer solana.PrivateKey,
	key *AuthorizingKey,
	expiryWindow time.Duration,
) (string, error) {
	expiry := time.Now().Add(expiryWindow).Unix()

	tx, vaultAddr, err := vc.builder.BuildWithdraw(ctx, payer, key, expiry)
	if err != nil {
		return "", err
	}

	balance, err := vc.rpcClient.GetBalance(ctx, vaultAddr)
	if err != nil {
		vc.logger.Warn().Err(err).Str("vault", vaultAddr.String()).Msg("failed to read vault balance before withdrawal")
	}

	txHash, err := vc.rpcClient.BroadcastTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to broadcast withdrawal: %w", err)
	}

	vc.record(&store.VaultTransaction{
		TxHash: txHash,
		Kind:   store.KindWithdraw,
		Vault:  vaultAddr.String(),
		Payer:  payer.PublicKey().String(),
		Amount: balance,
		Expiry: expiry,
		Status: store.StatusSubmitted,
	})

	vc.logger.Info().
		Str("tx_hash", txHash).
		Str("vault", vaultAddr.String()).
		Int64("expiry", expiry).
		Msg("withdrawal broadcast")

	return txHash, nil
}

// VaultBalance returns the current balance and address of the vault derived
// from the authorizing key.
func (vc *VaultClient) VaultBalance(
	ctx context.Context,
	authorizingKey [vault.AuthorizingKeyLength]byte,
) (uint64, solana.PublicKey, error) {
	vaultAddr, _, err := vault.DeriveVaultAddress(authorizingKey)
	if err != nil {
		return 0, solana.PublicKey{}, fmt.Errorf("failed to derive vault address: %w", err)
	}
	balance, err := vc.rpcClient.GetBalance(ctx, vaultAddr)
	if err != nil {
		return 0, vaultAddr, err
	}
	return balance, vaultAddr, nil
}

func (vc *VaultClient) record(tx *store.VaultTransaction) {
	if vc.database == nil {
		return
	}
	if err := vc.database.Client().Create(tx).Error; err != nil {
		vc.logger.Error().Err(err).Str("tx_hash", tx.TxHash).Msg("failed to record vault transaction")
	}
}
