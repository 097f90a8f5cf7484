package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkghttp "github.com/futig/rag-chatbot/pkg/http"
)

func fastConfig(attempts uint) RetryConfig {
	return RetryConfig{Attempts: attempts, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestDo_RetriesTransientErrors(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(3), "generate", func() (string, error) {
		calls++
		if calls < 3 {
			return "", &pkghttp.HTTPError{StatusCode: http.StatusServiceUnavailable}
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(5), "search", func() (int, error) {
		calls++
		return 0, &pkghttp.HTTPError{StatusCode: http.StatusUnauthorized, Message: "bad key"}
	})

	var httpErr *pkghttp.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestDo_GivesUpAfterAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(2), "embed", func() ([]float32, error) {
		calls++
		return nil, &pkghttp.NetworkError{Err: errors.New("connection reset")}
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), RetryConfig{}, "embed", func() (bool, error) {
		calls++
		return false, &pkghttp.NetworkError{Err: errors.New("timeout")}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoIf_CustomClassifier(t *testing.T) {
	transient := errors.New("rate limited")
	calls := 0
	got, err := DoIf(context.Background(), fastConfig(3), "generate",
		func(err error) bool { return errors.Is(err, transient) },
		func() (string, error) {
			calls++
			if calls == 1 {
				return "", transient
			}
			return "answer", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "answer", got)
	assert.Equal(t, 2, calls)
}
