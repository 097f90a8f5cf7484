// Package chain composes retrieval, prompt assembly and generation into a
// single query -> answer function.
package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/futig/rag-chatbot/internal/pkg/logger"
	"github.com/futig/rag-chatbot/internal/pkg/metrics"
)

// DocumentSeparator joins retrieved passages in the prompt context.
const DocumentSeparator = "\n\n"

// Document is anything retrieval returns that carries text.
type Document interface {
	Text() string
}

type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Document, error)
}

type Generator interface {
	Generate(ctx context.Context, messages []llms.MessageContent) (string, error)
}

// Prompt renders the chat messages from the per-request values.
type Prompt interface {
	FormatMessages(values map[string]any) ([]llms.ChatMessage, error)
}

// Chain is immutable once built and safe for concurrent use.
type Chain struct {
	retriever Retriever
	prompt    Prompt
	generator Generator
}

func New(retriever Retriever, prompt Prompt, generator Generator) (*Chain, error) {
	switch {
	case retriever == nil:
		return nil, errors.New("chain: retriever is required")
	case prompt == nil:
		return nil, errors.New("chain: prompt is required")
	case generator == nil:
		return nil, errors.New("chain: generator is required")
	}

	return &Chain{
		retriever: retriever,
		prompt:    prompt,
		generator: generator,
	}, nil
}

// Invoke runs retrieve -> format -> generate for one input and returns the
// model's text unchanged.
func (c *Chain) Invoke(ctx context.Context, input string) (string, error) {
	ctx = logger.AddFields(ctx, zap.String("invocation_id", uuid.NewString()))
	start := time.Now()

	answer, err := c.invoke(ctx, input)
	if err != nil {
		metrics.ObserveChainInvocation(resultLabel(ctx, err))
		ctxzap.Error(ctx, "chain invocation failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", err
	}

	metrics.ObserveChainInvocation("success")
	ctxzap.Info(ctx, "chain invocation finished",
		zap.Int("input_length", len(input)),
		zap.Int("answer_length", len(answer)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return answer, nil
}

func (c *Chain) invoke(ctx context.Context, input string) (string, error) {
	stageStart := time.Now()
	docs, err := c.retriever.Retrieve(ctx, input)
	if err != nil {
		return "", fmt.Errorf("retrieve: %w", err)
	}
	metrics.ObserveChainStage("retrieve", time.Since(stageStart))

	values := map[string]any{
		ContextKey: FormatDocuments(docs),
		InputKey:   input,
	}

	chatMessages, err := c.prompt.FormatMessages(values)
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}

	messages := make([]llms.MessageContent, 0, len(chatMessages))
	for _, m := range chatMessages {
		messages = append(messages, llms.TextParts(m.GetType(), m.GetContent()))
	}

	ctxzap.Debug(ctx, "prompt assembled",
		zap.Int("document_count", len(docs)),
		zap.Int("context_length", len(values[ContextKey].(string))),
	)

	stageStart = time.Now()
	answer, err := c.generator.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	metrics.ObserveChainStage("generate", time.Since(stageStart))

	return answer, nil
}

// FormatDocuments joins the text of docs with DocumentSeparator.
func FormatDocuments(docs []Document) string {
	texts := make([]string, 0, len(docs))
	for _, d := range docs {
		texts = append(texts, d.Text())
	}
	return strings.Join(texts, DocumentSeparator)
}

func resultLabel(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled), errors.Is(ctx.Err(), context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
