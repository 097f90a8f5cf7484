package builder

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"go.uber.org/zap"

	"github.com/futig/rag-chatbot/internal/api/chat"
	"github.com/futig/rag-chatbot/internal/chain"
	"github.com/futig/rag-chatbot/internal/config"
	"github.com/futig/rag-chatbot/internal/integration/embedding"
	"github.com/futig/rag-chatbot/internal/integration/llm"
	"github.com/futig/rag-chatbot/internal/integration/vectorstore"
	"github.com/futig/rag-chatbot/internal/pkg/metrics"
)

// composeChain builds the retrieval chain once. On failure it logs the cause
// and returns nil, which the chat handler reports as not initialized.
func composeChain(ctx context.Context, cfg *config.Config, logger *zap.Logger) chat.ChainInvoker {
	c, err := newChain(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize RAG chain; chat requests will return 503",
			zap.Error(err),
		)
		metrics.SetChainReady(false)
		// A typed nil *chain.Chain would not compare equal to nil in the handler.
		return nil
	}

	metrics.SetChainReady(true)
	logger.Info("RAG chain initialized",
		zap.String("index", cfg.PineconeCfg.IndexName),
		zap.String("model", cfg.OpenAICfg.Model),
		zap.Int("top_k", cfg.PineconeCfg.TopK),
	)
	return c
}

func newChain(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*chain.Chain, error) {
	var (
		embedder  embeddings.Embedder
		retriever chain.Retriever
		generator chain.Generator
	)

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		embedder = embedding.NewMockConnector()
		retriever = vectorstore.NewMockConnector(embedder, cfg.PineconeCfg.TopK)
		generator = llm.NewMockConnector()
	} else {
		logger.Info("Using real connectors for external services")
		embedder = embedding.NewCachedEmbedder(
			embedding.NewConnector(cfg.EmbeddingCfg),
			cfg.EmbeddingCfg.Model,
			cfg.EmbeddingCfg.CacheTTL,
			cfg.EmbeddingCfg.CacheCleanup,
		)

		store, err := vectorstore.NewConnector(ctx, cfg.PineconeCfg, embedder)
		if err != nil {
			return nil, fmt.Errorf("attach vector store: %w", err)
		}
		retriever = store

		model, err := llm.NewConnector(cfg.OpenAICfg)
		if err != nil {
			return nil, fmt.Errorf("open language model: %w", err)
		}
		generator = model
	}

	c, err := chain.New(retriever, chain.NewPrompt(), generator)
	if err != nil {
		return nil, fmt.Errorf("compose chain: %w", err)
	}
	return c, nil
}
