package main

import (
	"fmt"
	"os"
	"time"

	"call-analytics-exporter/internal/auth"
	"call-analytics-exporter/internal/config"
	"call-analytics-exporter/internal/export"
	httphandler "call-analytics-exporter/internal/http"
	"call-analytics-exporter/internal/http/middleware"
	"call-analytics-exporter/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	if cfg.Auth.AccessSecret == "" {
		appLogger.Error().Msg("JWT_ACCESS_SECRET is required for the trigger API")
		os.Exit(1)
	}

	trigger := export.NewTrigger(cfg.Export.ExporterBin, time.Duration(cfg.Export.TimeoutSeconds)*time.Second, appLogger)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(trigger, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting export trigger api")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
