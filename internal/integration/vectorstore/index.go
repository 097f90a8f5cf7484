package vectorstore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rag-chatbot/internal/config"
	"github.com/futig/rag-chatbot/internal/entity"
	"github.com/futig/rag-chatbot/internal/pkg/retry"
	pkghttp "github.com/futig/rag-chatbot/pkg/http"
)

// resolveIndexHost returns the data-plane host of the configured index. An
// explicit PINECONE_INDEX_HOST wins; otherwise the control plane is asked.
// GET {control_plane}/indexes/{index_name}
func resolveIndexHost(ctx context.Context, control *pkghttp.Connector, cfg config.PineconeConfig) (string, error) {
	if cfg.IndexHost != "" {
		return cfg.IndexHost, nil
	}

	endpoint := "/indexes/" + url.PathEscape(cfg.IndexName)

	desc, err := retry.Do(ctx, cfg.Retry, "describe_index", func() (entity.IndexDescription, error) {
		var resp entity.IndexDescription
		err := control.DoRequest(ctx, http.MethodGet, endpoint, nil, &resp,
			pkghttp.WithHeader("X-Pinecone-API-Version", cfg.APIVersion),
		)
		return resp, err
	})
	if err != nil {
		return "", fmt.Errorf("describe index %q: %w", cfg.IndexName, err)
	}

	if desc.Host == "" {
		return "", fmt.Errorf("%w: %q", entity.ErrIndexHostNotFound, cfg.IndexName)
	}

	if !desc.Status.Ready {
		ctxzap.Warn(ctx, "vector index is not ready yet",
			zap.String("index", cfg.IndexName),
			zap.String("state", desc.Status.State),
		)
	}

	ctxzap.Info(ctx, "vector index resolved",
		zap.String("index", cfg.IndexName),
		zap.String("host", desc.Host),
		zap.Int("dimension", desc.Dimension),
		zap.String("metric", desc.Metric),
	)

	return desc.Host, nil
}
