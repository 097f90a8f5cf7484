package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const mockDimension = 384

// MockConnector produces deterministic unit vectors from a hash of the text.
type MockConnector struct{}

func NewMockConnector() *MockConnector {
	return &MockConnector{}
}

func (m *MockConnector) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	ctxzap.Info(ctx, "[MOCK] embedding texts", zap.Int("text_count", len(texts)))

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = mockVector(text)
	}
	return out, nil
}

func (m *MockConnector) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	ctxzap.Info(ctx, "[MOCK] embedding query", zap.Int("query_length", len(text)))
	return mockVector(text), nil
}

func mockVector(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	v := make([]float32, mockDimension)
	var norm float64
	for i := range v {
		// xorshift keeps the sequence reproducible per text
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		x := float64(seed%2000)/1000 - 1
		v[i] = float32(x)
		norm += x * x
	}

	norm = math.Sqrt(norm)
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}
