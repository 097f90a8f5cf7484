package vectorstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"github.com/futig/rag-chatbot/internal/chain"
)

var mockPassages = []string{
	"Acne is a skin condition that occurs when hair follicles become plugged with oil and dead skin cells. It causes whiteheads, blackheads or pimples.",
	"Treatment for acne includes topical retinoids, benzoyl peroxide and antibiotics. Severe cases may need isotretinoin under medical supervision.",
	"Diabetes mellitus is a group of metabolic diseases in which a person has high blood glucose due to inadequate insulin production or response.",
	"Hypertension is persistently elevated arterial blood pressure. Lifestyle changes and antihypertensive medication lower the risk of stroke.",
}

// MockConnector ranks a fixed set of medical passages against the query
// using embedder, so mock runs still go through the embedding path.
type MockConnector struct {
	embedder embeddings.Embedder
	topK     int
}

func NewMockConnector(embedder embeddings.Embedder, topK int) *MockConnector {
	return &MockConnector{
		embedder: embedder,
		topK:     topK,
	}
}

func (m *MockConnector) Retrieve(ctx context.Context, query string) ([]chain.Document, error) {
	q, err := m.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	vectors, err := m.embedder.EmbedDocuments(ctx, mockPassages)
	if err != nil {
		return nil, fmt.Errorf("embed passages: %w", err)
	}

	docs := make([]schema.Document, len(mockPassages))
	for i, text := range mockPassages {
		docs[i] = schema.Document{
			PageContent: text,
			Score:       dot(q, vectors[i]),
			Metadata:    map[string]any{"source": "mock"},
		}
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })

	n := min(m.topK, len(docs))
	ctxzap.Info(ctx, "[MOCK] retrieving documents",
		zap.Int("query_length", len(query)),
		zap.Int("document_count", n),
	)

	out := make([]chain.Document, 0, n)
	for _, d := range docs[:n] {
		out = append(out, Document{doc: d})
	}
	return out, nil
}

func dot(a, b []float32) float32 {
	var s float32
	for i := range min(len(a), len(b)) {
		s += a[i] * b[i]
	}
	return s
}
