package chat

import "context"

// ChainInvoker answers one user message.
type ChainInvoker interface {
	Invoke(ctx context.Context, input string) (string, error)
}
