package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "R1VAULT"

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "r1vaultd",
		Short: "Custody vault client for the secp256r1 vault program",
	}

	rootCmd.PersistentFlags().String("home", defaultHome(), "home directory for config, keys and local state")

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	_ = viper.BindPFlag("home", rootCmd.PersistentFlags().Lookup("home"))

	InitRootCmd(rootCmd)

	return rootCmd
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".r1vault"
	}
	return filepath.Join(home, ".r1vault")
}
