package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/tmc/langchaingo/embeddings"

	"github.com/futig/rag-chatbot/internal/pkg/metrics"
)

// CachedEmbedder memoizes query embeddings. Document embeddings are never
// cached since only queries repeat.
type CachedEmbedder struct {
	next  embeddings.Embedder
	model string
	cache *cache.Cache
}

var _ embeddings.Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps next with a TTL cache. A non-positive ttl disables
// caching and returns next unchanged.
func NewCachedEmbedder(next embeddings.Embedder, model string, ttl, cleanup time.Duration) embeddings.Embedder {
	if ttl <= 0 {
		return next
	}
	return &CachedEmbedder{
		next:  next,
		model: model,
		cache: cache.New(ttl, cleanup),
	}
}

func (c *CachedEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return c.next.EmbedDocuments(ctx, texts)
}

func (c *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	if v, ok := c.cache.Get(key); ok {
		metrics.ObserveEmbeddingCache(true)
		return clone(v.([]float32)), nil
	}
	metrics.ObserveEmbeddingCache(false)

	vector, err := c.next.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, clone(vector), cache.DefaultExpiration)
	return vector, nil
}

// Len reports the number of live cache entries.
func (c *CachedEmbedder) Len() int {
	return c.cache.ItemCount()
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func clone(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
