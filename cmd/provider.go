package cmd

import (
	"context"

	"github.com/ricky-lee-athena/odoo-demo/internal/db"
	"github.com/ricky-lee-athena/odoo-demo/internal/logger"
	"github.com/ricky-lee-athena/odoo-demo/internal/repository"
	"github.com/spf13/cobra"
)

var providerFlags struct {
	id                 int64
	name               string
	clientID           string
	authEndpoint       string
	validationEndpoint string
	jwksURI            string
	scope              string
	disabled           bool
}

// providerAddCmd registers an OAuth provider row so the bridge can build
// authorization URLs for it.
var providerAddCmd = &cobra.Command{
	Use:   "provider-add",
	Short: "Register an OAuth provider",
	Run: func(_ *cobra.Command, _ []string) {
		dbService, err := db.NewService(cfg)
		if err != nil {
			logger.Error("Failed to initialize database", "error", err)
			return
		}
		defer func() { _ = dbService.Close() }()

		repo := repository.NewRepository(dbService)
		provider, err := repo.Providers().CreateProvider(context.Background(), repository.CreateProviderParams{
			ID:                 providerFlags.id,
			Name:               providerFlags.name,
			Enabled:            !providerFlags.disabled,
			ClientID:           providerFlags.clientID,
			AuthEndpoint:       providerFlags.authEndpoint,
			ValidationEndpoint: providerFlags.validationEndpoint,
			JWKSURI:            providerFlags.jwksURI,
			Scope:              providerFlags.scope,
		})
		if err != nil {
			logger.Error("Failed to create provider", "error", err)
			return
		}
		logger.Info("Provider registered", "id", provider.ID, "name", provider.Name, "enabled", provider.Enabled)
	},
}

func init() {
	providerAddCmd.Flags().Int64Var(&providerFlags.id, "id", 0, "provider id (as referenced by the frontend)")
	providerAddCmd.Flags().StringVar(&providerFlags.name, "name", "", "display name")
	providerAddCmd.Flags().StringVar(&providerFlags.clientID, "client-id", "", "OAuth client id")
	providerAddCmd.Flags().StringVar(&providerFlags.authEndpoint, "auth-endpoint", "", "authorization endpoint URL")
	providerAddCmd.Flags().StringVar(&providerFlags.validationEndpoint, "validation-endpoint", "", "token validation endpoint URL")
	providerAddCmd.Flags().StringVar(&providerFlags.jwksURI, "jwks-uri", "", "JWKS URL for id_token verification")
	providerAddCmd.Flags().StringVar(&providerFlags.scope, "scope", "openid email profile", "requested scope")
	providerAddCmd.Flags().BoolVar(&providerFlags.disabled, "disabled", false, "register the provider without enabling it")
	_ = providerAddCmd.MarkFlagRequired("id")
	_ = providerAddCmd.MarkFlagRequired("name")
	_ = providerAddCmd.MarkFlagRequired("client-id")
	_ = providerAddCmd.MarkFlagRequired("auth-endpoint")

	rootCmd.AddCommand(providerAddCmd)
}
