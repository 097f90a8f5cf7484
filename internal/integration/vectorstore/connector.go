package vectorstore

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
	"github.com/tmc/langchaingo/vectorstores/pinecone"
	"go.uber.org/zap"

	"github.com/futig/rag-chatbot/internal/chain"
	"github.com/futig/rag-chatbot/internal/config"
	"github.com/futig/rag-chatbot/internal/integration/common"
	pkghttp "github.com/futig/rag-chatbot/pkg/http"
)

// Searcher is the part of a langchaingo vector store the retriever needs.
type Searcher interface {
	SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error)
}

// Connector retrieves the top-k most similar documents from an existing,
// externally populated Pinecone index.
type Connector struct {
	config config.PineconeConfig
	store  Searcher
}

// NewConnector attaches to the index named in cfg using embedder for queries.
// Nothing is created or written on the Pinecone side.
func NewConnector(
	ctx context.Context,
	cfg config.PineconeConfig,
	embedder embeddings.Embedder,
) (*Connector, error) {
	control := common.NewBaseConnector(cfg.HTTPClientConfig,
		pkghttp.WithAPIKeyHeader("Api-Key", cfg.APIKey),
	)

	host, err := resolveIndexHost(ctx, control, cfg)
	if err != nil {
		return nil, err
	}

	store, err := pinecone.New(
		pinecone.WithHost(host),
		pinecone.WithAPIKey(cfg.APIKey),
		pinecone.WithEmbedder(embedder),
		pinecone.WithNameSpace(cfg.Namespace),
		pinecone.WithTextKey(cfg.TextKey),
	)
	if err != nil {
		return nil, fmt.Errorf("open pinecone store: %w", err)
	}

	return NewConnectorWithStore(cfg, store), nil
}

// NewConnectorWithStore wraps an already opened store.
func NewConnectorWithStore(cfg config.PineconeConfig, store Searcher) *Connector {
	return &Connector{
		config: cfg,
		store:  store,
	}
}

// Retrieve returns up to TopK documents ordered by similarity.
func (c *Connector) Retrieve(ctx context.Context, query string) ([]chain.Document, error) {
	docs, err := c.store.SimilaritySearch(ctx, query, c.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	ctxzap.Debug(ctx, "documents retrieved",
		zap.Int("top_k", c.config.TopK),
		zap.Int("document_count", len(docs)),
	)

	out := make([]chain.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, Document{doc: d})
	}
	return out, nil
}

// Document adapts a langchaingo schema.Document to chain.Document.
type Document struct {
	doc schema.Document
}

func (d Document) Text() string {
	return d.doc.PageContent
}

func (d Document) Score() float32 {
	return d.doc.Score
}

func (d Document) Metadata() map[string]any {
	return d.doc.Metadata
}
