package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/futig/rag-chatbot/internal/config"
	"github.com/futig/rag-chatbot/internal/entity"
	"github.com/futig/rag-chatbot/internal/integration/common"
	"github.com/futig/rag-chatbot/internal/pkg/retry"
	pkghttp "github.com/futig/rag-chatbot/pkg/http"
)

// Model is the generation half of langchaingo's llms.Model.
type Model interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Connector sends chat completions to a hosted OpenAI-compatible endpoint.
type Connector struct {
	config config.OpenAIConfig
	model  Model
}

func NewConnector(cfg config.OpenAIConfig) (*Connector, error) {
	client := pkghttp.NewClient(common.ClientOptions(cfg.HTTPClientConfig)...)

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithHTTPClient(client),
	}
	if cfg.Url != "" {
		opts = append(opts, openai.WithBaseURL(cfg.Url))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}

	return NewConnectorWithModel(cfg, model), nil
}

// NewConnectorWithModel wraps an existing model handle.
func NewConnectorWithModel(cfg config.OpenAIConfig, model Model) *Connector {
	return &Connector{
		config: cfg,
		model:  model,
	}
}

// Generate returns the text of the first completion choice, unmodified.
func (c *Connector) Generate(ctx context.Context, messages []llms.MessageContent) (string, error) {
	ctxzap.Debug(ctx, "generating answer via LLM service",
		zap.String("model", c.config.Model),
		zap.Int("message_count", len(messages)),
	)

	var opts []llms.CallOption
	if c.config.Temperature != nil {
		opts = append(opts, llms.WithTemperature(*c.config.Temperature))
	}

	resp, err := retry.DoIf(ctx, c.config.Retry, "generate", isTransient, func() (*llms.ContentResponse, error) {
		return c.model.GenerateContent(ctx, messages, opts...)
	})
	if err != nil {
		return "", fmt.Errorf("generate completion: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", entity.ErrEmptyCompletion
	}

	choice := resp.Choices[0]
	ctxzap.Debug(ctx, "answer generated",
		zap.String("stop_reason", choice.StopReason),
		zap.Int("answer_length", len(choice.Content)),
	)

	return choice.Content, nil
}

// transientMarkers are substrings of the OpenAI client's status errors that
// indicate rate limiting or a server-side failure.
var transientMarkers = []string{
	"status code: 429",
	"status code: 500",
	"status code: 502",
	"status code: 503",
	"status code: 504",
	"rate limit",
	"server_error",
}

func isTransient(err error) bool {
	if pkghttp.IsRetryable(err) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
