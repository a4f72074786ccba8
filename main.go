// Package main is the entry point for the oauth-api-bridge service.
package main

import (
	"github.com/joho/godotenv"
	"github.com/ricky-lee-athena/odoo-demo/cmd"
	"github.com/ricky-lee-athena/odoo-demo/internal/config"
	"github.com/ricky-lee-athena/odoo-demo/internal/logger"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.AppEnv == config.EnvProd)

	if err := config.Validate(cfg); err != nil {
		logger.Error("Invalid configuration", "error", err)
	}

	cmd.Execute(cfg)
}
