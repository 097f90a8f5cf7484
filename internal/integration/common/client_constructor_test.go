package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/rag-chatbot/internal/config"
	pkgHTTP "github.com/futig/rag-chatbot/pkg/http"
)

func TestClientOptions_RequestTimeout(t *testing.T) {
	client := pkgHTTP.NewClient(ClientOptions(config.HTTPClientConfig{RequestTimeout: 7 * time.Second})...)

	assert.Equal(t, 7*time.Second, client.Timeout)
}

func TestNewBaseConnector_InsecureSkipVerifyFromConfig(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tei-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	cfg := config.HTTPClientConfig{
		Url:                 srv.URL,
		Token:               "tei-token",
		TLSHandshakeTimeout: 2 * time.Second,
		MaxIdleConnsPerHost: 4,
	}

	err := NewBaseConnector(cfg).DoRequest(context.Background(), http.MethodGet, "/health", nil, nil)
	require.Error(t, err)

	cfg.InsecureSkipVerify = true
	err = NewBaseConnector(cfg).DoRequest(context.Background(), http.MethodGet, "/health", nil, nil)
	require.NoError(t, err)
}
