package app

import (
	"log/slog"
	"net/http"

	"github.com/ldaehi0205/go-board-backend/internal/config"
	"github.com/ldaehi0205/go-board-backend/internal/observability"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
}

func New(cfg *config.Config, logger *slog.Logger, server *http.Server, obs *observability.Runtime) *App {
	return &App{Config: cfg, Logger: logger, Server: server, Observability: obs}
}
