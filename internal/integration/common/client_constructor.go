package common

import (
	"github.com/futig/rag-chatbot/internal/config"
	pkgHTTP "github.com/futig/rag-chatbot/pkg/http"
)

// ClientOptions maps the per-upstream HTTP settings onto client options.
func ClientOptions(cfg config.HTTPClientConfig) []pkgHTTP.HttpOpts {
	return []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithTLSHandshakeTimeout(cfg.TLSHandshakeTimeout),
		pkgHTTP.WithMaxIdleConnsPerHost(cfg.MaxIdleConnsPerHost),
		pkgHTTP.WithInsecureSkipVerify(cfg.InsecureSkipVerify),
		pkgHTTP.WithRequestLogging(),
	}
}

// NewBaseConnector builds the JSON connector for one upstream. Extra options
// (vendor auth headers) are applied after the common ones.
func NewBaseConnector(cfg config.HTTPClientConfig, extra ...pkgHTTP.HttpOpts) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		BaseURL: cfg.Url,
	}

	opts := append(ClientOptions(cfg), pkgHTTP.WithAuthToken(cfg.Token))
	opts = append(opts, extra...)

	return pkgHTTP.NewConnector(connCfg, opts...)
}
