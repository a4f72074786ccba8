// Package server wires the bridge's HTTP surface together and runs it.
package server

import (
	"net/http"

	"github.com/ricky-lee-athena/odoo-demo/internal/apikey"
	"github.com/ricky-lee-athena/odoo-demo/internal/config"
	"github.com/ricky-lee-athena/odoo-demo/internal/db"
	"github.com/ricky-lee-athena/odoo-demo/internal/identity"
	"github.com/ricky-lee-athena/odoo-demo/internal/logger"
	"github.com/ricky-lee-athena/odoo-demo/internal/oauth"
	"github.com/ricky-lee-athena/odoo-demo/internal/repository"
	"github.com/ricky-lee-athena/odoo-demo/internal/session"
	authhandlers "github.com/ricky-lee-athena/odoo-demo/server/auth-handlers"
	healthhandlers "github.com/ricky-lee-athena/odoo-demo/server/health-handlers"
)

// NewMux assembles the full route table over the given database service.
func NewMux(cfg *config.Config, dbService *db.Service) *http.ServeMux {
	repo := repository.NewRepository(dbService)

	keys := apikey.NewService(repo.Users(), repo.APIKeys())
	sessions := session.NewService(repo.Users(), repo.Sessions())
	identities := identity.NewStore(cfg, repo.Users(), repo.Providers(), nil)
	urlBuilder := oauth.NewURLBuilder(cfg, repo.Providers())

	mux := http.NewServeMux()
	authhandlers.RegisterRoutes(mux, cfg, authhandlers.Deps{
		URLBuilder: urlBuilder,
		Identities: identities,
		Sessions:   sessions,
		Keys:       keys,
		Users:      repo.Users(),
	})
	healthhandlers.RegisterRoutes(mux, "", cfg, dbService)

	return mux
}

// Start opens the database and serves the bridge until the listener fails.
func Start(cfg *config.Config) {
	dbService, err := db.NewService(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return
	}
	defer func() {
		if err := dbService.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	mux := NewMux(cfg, dbService)

	addr := ":" + cfg.Port
	logger.Info("Starting oauth api bridge", "addr", addr, "env", cfg.AppEnv)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Server stopped", "error", err)
	}
}
