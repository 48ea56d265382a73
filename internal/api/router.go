package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lobbysight/lobbysight/internal/api/handler"
	apimiddleware "github.com/lobbysight/lobbysight/internal/api/middleware"
	"github.com/lobbysight/lobbysight/internal/dependencies/clock"
	"github.com/lobbysight/lobbysight/internal/middleware"
	"github.com/lobbysight/lobbysight/internal/overlay"
	"github.com/lobbysight/lobbysight/internal/roster"
	"github.com/lobbysight/lobbysight/internal/services/denick"
	"github.com/lobbysight/lobbysight/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	State         *overlay.State
	Tracker       *roster.Tracker
	DenickService *denick.Service
	Storage       storage.Storage
	Clock         clock.Clock
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	snapshotHandler := handler.NewSnapshotHandler(cfg.State)
	rosterHandler := handler.NewRosterHandler(cfg.Tracker)
	aliasHandler := handler.NewAliasHandler(cfg.Storage, cfg.DenickService, cfg.Clock)
	resolveHandler := handler.NewResolveHandler(cfg.DenickService)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(apimiddleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	api.HandleFunc("/snapshot", snapshotHandler.Get).Methods(http.MethodGet)

	api.HandleFunc("/roster/reset", rosterHandler.Reset).Methods(http.MethodPost)
	api.HandleFunc("/roster/out-of-sync", rosterHandler.MarkOutOfSync).Methods(http.MethodPost)

	api.HandleFunc("/aliases", aliasHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/aliases/{alias}", aliasHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/aliases/{alias}", aliasHandler.Put).Methods(http.MethodPut)
	api.HandleFunc("/aliases/{alias}", aliasHandler.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/resolve/{name}", resolveHandler.Get).Methods(http.MethodGet)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
