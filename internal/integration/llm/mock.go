package llm

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// MockConnector answers without a network call, echoing the user's question.
type MockConnector struct{}

func NewMockConnector() *MockConnector {
	return &MockConnector{}
}

func (m *MockConnector) Generate(ctx context.Context, messages []llms.MessageContent) (string, error) {
	var question string
	var contextLen int
	for _, msg := range messages {
		for _, part := range msg.Parts {
			text, ok := part.(llms.TextContent)
			if !ok {
				continue
			}
			switch msg.Role {
			case llms.ChatMessageTypeHuman:
				question = text.Text
			case llms.ChatMessageTypeSystem:
				contextLen += len(text.Text)
			}
		}
	}

	ctxzap.Info(ctx, "[MOCK] generating answer",
		zap.Int("message_count", len(messages)),
		zap.Int("system_length", contextLen),
	)

	return fmt.Sprintf("[MOCK] This is a placeholder answer to %q. Consult a medical professional for advice.", question), nil
}
