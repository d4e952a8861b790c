// certextractd serves the certificate extraction pipeline over HTTP.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/certvault/cert-extractor/internal/app"
	"github.com/certvault/cert-extractor/internal/common"
	"github.com/certvault/cert-extractor/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config.invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup.failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	logger.Info("startup",
		"addr", cfg.Server.Addr,
		"ocr_engine", a.Adapter.EngineName(),
		"llm_provider", cfg.LLM.Provider,
		"schema_variant", string(cfg.Pipeline.SchemaVariant),
	)

	srv := server.New(a.Pipeline, a.Adapter.EngineName(), cfg.LLM.Provider, logger)
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout); err != nil {
		logger.Error("server.failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown.complete")
}
