package main

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/r1vault/r1vault/client"
	"github.com/r1vault/r1vault/config"
	"github.com/r1vault/r1vault/db"
	"github.com/r1vault/r1vault/logger"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func InitRootCmd(rootCmd *cobra.Command) {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(keysCmd())
	rootCmd.AddCommand(depositCmd())
	rootCmd.AddCommand(withdrawCmd())
	rootCmd.AddCommand(balanceCmd())
	rootCmd.AddCommand(versionCmd())
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to the home directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := cmd.Flags().GetString("home")
			if err != nil {
				return err
			}
			cfg, err := config.Default()
			if err != nil {
				return err
			}
			if err := config.Save(cfg, home); err != nil {
				return err
			}
			cmd.Printf("Initialized %s\n", home)
			return nil
		},
	}
}

func depositCmd() *cobra.Command {
	var amount uint64

	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit lamports into the vault of the configured authorizing key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount == 0 {
				return fmt.Errorf("--amount must be greater than zero")
			}

			env, err := setupEnv(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			txHash, err := env.vault.Deposit(cmd.Context(), env.payer, env.key.PublicKeyBytes(), amount)
			if err != nil {
				return err
			}
			cmd.Printf("Deposit submitted: %s\n", txHash)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount to deposit, in lamports")
	return cmd
}

func withdrawCmd() *cobra.Command {
	var expirySeconds int64

	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Drain the vault back to the payer with a fresh authorization",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setupEnv(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			window := time.Duration(expirySeconds) * time.Second
			if expirySeconds <= 0 {
				window = time.Duration(env.cfg.WithdrawExpirySeconds) * time.Second
			}

			txHash, err := env.vault.Withdraw(cmd.Context(), env.payer, env.key, window)
			if err != nil {
				return err
			}
			cmd.Printf("Withdrawal submitted: %s\n", txHash)
			return nil
		},
	}

	cmd.Flags().Int64Var(&expirySeconds, "expiry", 0, "authorization validity window in seconds (default from config)")
	return cmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the vault address and balance for the configured authorizing key",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setupEnv(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			balance, vaultAddr, err := env.vault.VaultBalance(cmd.Context(), env.key.PublicKeyBytes())
			if err != nil {
				return err
			}
			cmd.Printf("Vault:   %s\n", vaultAddr)
			cmd.Printf("Balance: %d lamports\n", balance)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print r1vaultd version info",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("r1vaultd %s\n", Version)
		},
	}
}

// cmdEnv is everything a transaction-submitting command needs, assembled
// from the configuration in the home directory.
type cmdEnv struct {
	cfg      *config.Config
	payer    solana.PrivateKey
	key      *client.AuthorizingKey
	vault    *client.VaultClient
	database *db.DB
	rpc      *client.RPCClient
}

func setupEnv(cmd *cobra.Command) (*cmdEnv, error) {
	home, cfg, err := loadHomeConfig(cmd)
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	payer, err := loadPayerKeypair(resolveKeyPath(home, cfg.KeypairFile))
	if err != nil {
		return nil, err
	}
	key, err := client.LoadAuthorizingKey(resolveKeyPath(home, cfg.AuthorizingKeyFile))
	if err != nil {
		return nil, err
	}

	rpcClient, err := client.NewRPCClient(cfg.RPCURLs, log)
	if err != nil {
		return nil, err
	}

	database, err := db.OpenFileDB(home, cfg.DatabaseFile, true)
	if err != nil {
		rpcClient.Close()
		return nil, err
	}

	vaultClient, err := client.NewVaultClient(rpcClient, database, log)
	if err != nil {
		rpcClient.Close()
		_ = database.Close()
		return nil, err
	}

	return &cmdEnv{
		cfg:      cfg,
		payer:    payer,
		key:      key,
		vault:    vaultClient,
		database: database,
		rpc:      rpcClient,
	}, nil
}

func (e *cmdEnv) close() {
	if e.rpc != nil {
		e.rpc.Close()
	}
	if e.database != nil {
		_ = e.database.Close()
	}
}
