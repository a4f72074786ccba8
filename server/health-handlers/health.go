// Package health exposes liveness and readiness probes.
package health

import (
	"fmt"
	"net/http"

	"github.com/ricky-lee-athena/odoo-demo/internal/config"
	"github.com/ricky-lee-athena/odoo-demo/internal/db"
	"github.com/ricky-lee-athena/odoo-demo/internal/svrlib"
)

type HealthRouter struct {
	*svrlib.Router
	dbService *db.Service
}

// RegisterRoutes registers the health check routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, baseRoute string, cfg *config.Config, dbService *db.Service) {
	router := &HealthRouter{svrlib.NewRouter(mux, baseRoute, cfg), dbService}
	mux.HandleFunc(baseRoute+"/healthz", router.HealthzHandler)
	mux.HandleFunc(baseRoute+"/readyz", router.ReadyzHandler)
}

// HealthzHandler reports process liveness.
func (rt *HealthRouter) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "ok")
}

// ReadyzHandler reports whether the credential store is reachable.
func (rt *HealthRouter) ReadyzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if err := rt.dbService.DB().PingContext(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, "database unavailable")
		return
	}
	fmt.Fprintln(w, "ok")
}
