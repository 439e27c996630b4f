package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/r1vault/r1vault/client"
	"github.com/r1vault/r1vault/config"
	"github.com/r1vault/r1vault/vault"
)

// loadPayerKeypair reads a payer keypair stored as a JSON array of 64 bytes:
// 32-byte private key followed by the 32-byte public key.
func loadPayerKeypair(path string) (solana.PrivateKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payer key file %s: %w", path, err)
	}

	var keyBytes []byte
	if err := json.Unmarshal(keyData, &keyBytes); err != nil {
		return nil, fmt.Errorf("failed to parse key file as JSON array: %w", err)
	}
	if len(keyBytes) != 64 {
		return nil, fmt.Errorf("invalid key length: expected 64 bytes, got %d", len(keyBytes))
	}

	return solana.PrivateKey(keyBytes), nil
}

func resolveKeyPath(home, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(home, file)
}

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the P-256 authorizing key",
	}
	cmd.AddCommand(keysGenerateCmd())
	cmd.AddCommand(keysShowCmd())
	return cmd
}

func keysGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a new authorizing key and print its vault address",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, cfg, err := loadHomeConfig(cmd)
			if err != nil {
				return err
			}

			path := resolveKeyPath(home, cfg.AuthorizingKeyFile)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("authorizing key already exists at %s", path)
			}

			key, err := client.GenerateAuthorizingKey()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
				return fmt.Errorf("failed to create key directory: %w", err)
			}
			if err := key.Save(path); err != nil {
				return err
			}

			return printKeyInfo(cmd, key)
		},
	}
}

func keysShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the authorizing public key and its vault address",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, cfg, err := loadHomeConfig(cmd)
			if err != nil {
				return err
			}
			key, err := client.LoadAuthorizingKey(resolveKeyPath(home, cfg.AuthorizingKeyFile))
			if err != nil {
				return err
			}
			return printKeyInfo(cmd, key)
		},
	}
}

func printKeyInfo(cmd *cobra.Command, key *client.AuthorizingKey) error {
	pubkey := key.PublicKeyBytes()
	vaultAddr, bump, err := vault.DeriveVaultAddress(pubkey)
	if err != nil {
		return fmt.Errorf("failed to derive vault address: %w", err)
	}

	cmd.Printf("Authorizing key: %s\n", base58.Encode(pubkey[:]))
	cmd.Printf("Vault address:   %s\n", vaultAddr)
	cmd.Printf("Bump:            %d\n", bump)
	return nil
}

func loadHomeConfig(cmd *cobra.Command) (string, *config.Config, error) {
	home, err := cmd.Flags().GetString("home")
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.Load(home)
	if err != nil {
		return "", nil, err
	}
	return home, cfg, nil
}
