package cmd

import (
	"os"

	"github.com/ricky-lee-athena/odoo-demo/internal/config"
	"github.com/ricky-lee-athena/odoo-demo/internal/logger"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "oauth-api-bridge",
	Short: "OAuth to API-key bridge",
	Long:  `oauth-api-bridge mints bearer API keys for frontend clients after a provider OAuth login`,
}

func Execute(c *config.Config) {
	cfg = c
	logger.Info("Starting CLI", "env", cfg.AppEnv)
	if err := rootCmd.Execute(); err != nil {
		logger.Error("CLI error", "error", err)
		os.Exit(1)
	}
}
