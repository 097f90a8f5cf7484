package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	pkghttp "github.com/futig/rag-chatbot/pkg/http"
)

type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"200ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"2s"`
}

func (rc *RetryConfig) ToRetryOptions() []retry.Option {
	attempts := rc.Attempts
	if attempts == 0 {
		attempts = 1
	}
	return []retry.Option{
		retry.Attempts(attempts),
		retry.MaxDelay(rc.MaxDelay),
		retry.Delay(rc.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, the attempts run out
// or ctx is done. Retries are logged through the context logger under op.
func Do[T any](ctx context.Context, rc RetryConfig, op string, fn func() (T, error)) (T, error) {
	return DoIf(ctx, rc, op, pkghttp.IsRetryable, fn)
}

// DoIf is Do with a caller supplied classification of retryable errors, for
// SDK clients whose errors are not pkg/http types.
func DoIf[T any](ctx context.Context, rc RetryConfig, op string, retryIf func(error) bool, fn func() (T, error)) (T, error) {
	opts := append(rc.ToRetryOptions(),
		retry.Context(ctx),
		retry.RetryIf(retryIf),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Warn(ctx, "retrying upstream call",
				zap.String("operation", op),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)

	return retry.DoWithData(fn, opts...)
}
