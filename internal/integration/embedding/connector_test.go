package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/rag-chatbot/internal/config"
	"github.com/futig/rag-chatbot/internal/entity"
	pkgRetry "github.com/futig/rag-chatbot/internal/pkg/retry"
)

func newTestConnector(t *testing.T, h http.HandlerFunc) *Connector {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return NewConnector(config.EmbeddingConfig{
		HTTPClientConfig: config.HTTPClientConfig{Url: srv.URL},
		Model:            "sentence-transformers/all-MiniLM-L6-v2",
		Retry:            pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond},
	})
}

func TestConnector_EmbedDocuments(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)

		var req entity.EmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Normalize)

		resp := make(entity.EmbedResponse, len(req.Inputs))
		for i, in := range req.Inputs {
			resp[i] = []float32{float32(len(in)), float32(i)}
		}
		json.NewEncoder(w).Encode(resp)
	})

	vectors, err := conn.EmbedDocuments(context.Background(), []string{"acne", "diabetes"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{4, 0}, {8, 1}}, vectors)
}

func TestConnector_EmbedQuery_RetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(entity.EmbedResponse{{0.5, 0.5}})
	})

	vector, err := conn.EmbedQuery(context.Background(), "what is acne?")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vector)
	assert.Equal(t, int32(2), calls.Load())
}

func TestConnector_EmbedDocuments_CountMismatch(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(entity.EmbedResponse{{1}})
	})

	_, err := conn.EmbedDocuments(context.Background(), []string{"a", "b"})

	require.ErrorIs(t, err, entity.ErrEmbeddingMismatch)
}

func TestConnector_EmbedDocuments_Empty(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Fail(t, "no request expected")
	})

	vectors, err := conn.EmbedDocuments(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, vectors)
}

type countingEmbedder struct {
	queries atomic.Int32
}

func (c *countingEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}

func (c *countingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	c.queries.Add(1)
	return []float32{float32(len(text))}, nil
}

func TestCachedEmbedder_MemoizesQueries(t *testing.T) {
	inner := &countingEmbedder{}
	emb := NewCachedEmbedder(inner, "mini", time.Minute, time.Minute)

	first, err := emb.EmbedQuery(context.Background(), "fever")
	require.NoError(t, err)
	first[0] = 42

	second, err := emb.EmbedQuery(context.Background(), "fever")
	require.NoError(t, err)
	_, err = emb.EmbedQuery(context.Background(), "cough")
	require.NoError(t, err)

	assert.Equal(t, []float32{5}, second)
	assert.Equal(t, int32(2), inner.queries.Load())
	assert.Equal(t, 2, emb.(*CachedEmbedder).Len())
}

func TestCachedEmbedder_DisabledReturnsInner(t *testing.T) {
	inner := &countingEmbedder{}

	emb := NewCachedEmbedder(inner, "mini", 0, time.Minute)

	assert.Same(t, inner, emb)
}

func TestMockConnector_Deterministic(t *testing.T) {
	m := NewMockConnector()

	a, err := m.EmbedQuery(context.Background(), "headache")
	require.NoError(t, err)
	b, err := m.EmbedQuery(context.Background(), "headache")
	require.NoError(t, err)
	c, err := m.EmbedQuery(context.Background(), "rash")
	require.NoError(t, err)

	assert.Len(t, a, mockDimension)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
