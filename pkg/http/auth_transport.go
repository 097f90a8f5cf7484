package http

import "net/http"

// headerTransport sets a single credential header on every outgoing request.
type headerTransport struct {
	header    string
	value     string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.value == "" {
		return t.transport.RoundTrip(req)
	}

	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set(t.header, t.value)

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken adds "Authorization: Bearer <token>". An empty token is a no-op.
func WithAuthToken(token string) HttpOpts {
	value := ""
	if token != "" {
		value = "Bearer " + token
	}
	return withHeader("Authorization", value)
}

// WithAPIKeyHeader adds the key under a vendor-specific header, e.g. Pinecone's "Api-Key".
func WithAPIKeyHeader(header, key string) HttpOpts {
	return withHeader(header, key)
}

func withHeader(header, value string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			header:    header,
			value:     value,
			transport: rt,
		}
	})
}
