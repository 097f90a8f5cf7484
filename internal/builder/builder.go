package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/futig/rag-chatbot/internal/api"
	"github.com/futig/rag-chatbot/internal/api/chat"
	"github.com/futig/rag-chatbot/internal/config"
	"github.com/futig/rag-chatbot/internal/pkg/logger"
	"github.com/futig/rag-chatbot/web"
)

// routerTimeoutMargin keeps the router's own timeout from firing before the
// chat handler has written its 504.
const routerTimeoutMargin = 5 * time.Second

// Build loads the configuration for environment and wires the application.
// A configuration error is fatal; a chain composition error is not, the
// server still starts and reports the chain as not initialized.
func Build(environment string) (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig(environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	log.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("env_file", cfg.EnvFile),
	)

	invoker := composeChain(ctx, cfg, log)

	pages, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}

	chatHandler := chat.NewHandler(invoker, pages, cfg.ChatTimeout)
	log.Info("API handlers initialized")

	router := api.SetupRouter(chatHandler, log, cfg.ChatTimeout+routerTimeoutMargin)
	log.Info("HTTP router configured")

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	log.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
		zap.Bool("chain_ready", invoker != nil),
	)

	return &App{
		server:          server,
		logger:          log,
		shutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}
