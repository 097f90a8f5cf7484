package embedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/tmc/langchaingo/embeddings"
	"go.uber.org/zap"

	"github.com/futig/rag-chatbot/internal/config"
	"github.com/futig/rag-chatbot/internal/entity"
	"github.com/futig/rag-chatbot/internal/integration/common"
	"github.com/futig/rag-chatbot/internal/pkg/retry"
	pkghttp "github.com/futig/rag-chatbot/pkg/http"
)

const embedEndpoint = "/embed"

// Connector talks to a Hugging Face text-embeddings-inference server hosting
// the sentence-transformers model the index was built with.
type Connector struct {
	config    config.EmbeddingConfig
	connector *pkghttp.Connector
}

var _ embeddings.Embedder = (*Connector)(nil)

func NewConnector(cfg config.EmbeddingConfig) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig),
		config:    cfg,
	}
}

// EmbedDocuments returns one vector per text, in order.
// POST {service_url}/embed {"inputs": [...]}
func (c *Connector) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := entity.EmbedRequest{
		Inputs:    texts,
		Normalize: true,
		Truncate:  true,
	}

	vectors, err := retry.Do(ctx, c.config.Retry, "embed", func() (entity.EmbedResponse, error) {
		var resp entity.EmbedResponse
		err := c.connector.DoRequest(ctx, http.MethodPost, embedEndpoint, req, &resp)
		return resp, err
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to embed texts",
			zap.String("model", c.config.Model),
			zap.Int("text_count", len(texts)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("embed texts: %w", err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d, got %d", entity.ErrEmbeddingMismatch, len(texts), len(vectors))
	}

	ctxzap.Debug(ctx, "texts embedded",
		zap.String("model", c.config.Model),
		zap.Int("text_count", len(texts)),
		zap.Int("dimension", len(vectors[0])),
	)

	return vectors, nil
}

// EmbedQuery embeds a single retriever query.
func (c *Connector) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
