// Package client is the off-chain side of the vault program: an RPC pool
// with round-robin failover, a transaction builder for deposits and
// withdrawals, and the P-256 authorization signer.
package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
)

// RPCClient provides ledger RPC operations with round-robin failover across
// a set of endpoints.
type RPCClient struct {
	clients []*rpc.Client
	index   uint64
	mu      sync.RWMutex
	logger  zerolog.Logger
}

// NewRPCClient connects to the given RPC URLs, keeping only endpoints that
// report healthy.
func NewRPCClient(rpcURLs []string, logger zerolog.Logger) (*RPCClient, error) {
	if len(rpcURLs) == 0 {
		return nil, fmt.Errorf("no RPC URLs provided")
	}

	log := logger.With().Str("component", "rpc_client").Logger()
	clients := make([]*rpc.Client, 0, len(rpcURLs))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for _, url := range rpcURLs {
		client := rpc.New(url)

		health, err := client.GetHealth(ctx)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("failed to connect to RPC endpoint, skipping")
			continue
		}
		if health != "ok" {
			log.Warn().Str("url", url).Str("health", health).Msg("node is not healthy, skipping")
			continue
		}

		clients = append(clients, client)
		log.Info().Str("url", url).Msg("connected to RPC endpoint")
	}

	if len(clients) == 0 {
		return nil, fmt.Errorf("failed to connect to any valid RPC endpoints")
	}

	return &RPCClient{clients: clients, logger: log}, nil
}

// executeWithFailover executes a function with round-robin failover.
func (rc *RPCClient) executeWithFailover(ctx context.Context, operation string, fn func(*rpc.Client) error) error {
	rc.mu.RLock()
	clients := rc.clients
	rc.mu.RUnlock()

	if len(clients) == 0 {
		return fmt.Errorf("no RPC clients available for %s", operation)
	}

	maxAttempts := len(clients)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		index := atomic.AddUint64(&rc.index, 1) - 1
		client := clients[index%uint64(len(clients))]

		err := fn(client)
		if err == nil {
			return nil
		}

		rc.logger.Warn().
			Str("operation", operation).
			Int("attempt", attempt+1).
			Err(err).
			Msg("operation failed, trying next endpoint")
	}

	return fmt.Errorf("operation %s failed after trying %d endpoints", operation, maxAttempts)
}

// GetRecentBlockhash gets a recent blockhash for transaction building.
func (rc *RPCClient) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	var blockhash solana.Hash
	err := rc.executeWithFailover(ctx, "get_recent_blockhash", func(client *rpc.Client) error {
		resp, innerErr := client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
		if innerErr != nil {
			return innerErr
		}
		blockhash = resp.Value.Blockhash
		return nil
	})
	return blockhash, err
}

// GetBalance returns the lamport balance of an account.
func (rc *RPCClient) GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	var balance uint64
	err := rc.executeWithFailover(ctx, "get_balance", func(client *rpc.Client) error {
		resp, innerErr := client.GetBalance(ctx, address, rpc.CommitmentFinalized)
		if innerErr != nil {
			return innerErr
		}
		balance = resp.Value
		return nil
	})
	return balance, err
}

// GetAccountInfo fetches an account's current state, or nil if the account
// does not exist.
func (rc *RPCClient) GetAccountInfo(ctx context.Context, address solana.PublicKey) (*rpc.Account, error) {
	var account *rpc.Account
	err := rc.executeWithFailover(ctx, "get_account_info", func(client *rpc.Client) error {
		resp, innerErr := client.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
			Commitment: rpc.CommitmentFinalized,
		})
		if innerErr != nil {
			if innerErr == rpc.ErrNotFound {
				account = nil
				return nil
			}
			return innerErr
		}
		account = resp.Value
		return nil
	})
	return account, err
}

// BroadcastTransaction broadcasts a signed transaction and returns its
// signature.
func (rc *RPCClient) BroadcastTransaction(ctx context.Context, tx *solana.Transaction) (string, error) {
	if len(tx.Signatures) == 0 {
		return "", fmt.Errorf("transaction has no signatures")
	}
	txHash := tx.Signatures[0].String()

	err := rc.executeWithFailover(ctx, "send_transaction", func(client *rpc.Client) error {
		_, innerErr := client.SendTransaction(ctx, tx)
		return innerErr
	})
	return txHash, err
}

// IsHealthy reports whether any endpoint in the pool responds.
func (rc *RPCClient) IsHealthy(ctx context.Context) bool {
	rc.mu.RLock()
	hasClients := len(rc.clients) > 0
	rc.mu.RUnlock()
	if !hasClients {
		return false
	}

	err := rc.executeWithFailover(ctx, "get_health", func(client *rpc.Client) error {
		_, innerErr := client.GetHealth(ctx)
		return innerErr
	})
	return err == nil
}

// Close drops all RPC connections.
func (rc *RPCClient) Close() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.clients = nil
}
