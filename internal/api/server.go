package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/futig/rag-chatbot/internal/api/chat"
	"github.com/futig/rag-chatbot/internal/api/docs"
	"github.com/futig/rag-chatbot/internal/api/middleware"
	"github.com/futig/rag-chatbot/web"
)

// SetupRouter creates and configures the HTTP router. requestTimeout must
// exceed the chat handler's own budget so the handler reports timeouts itself.
func SetupRouter(chatHandler *chat.Handler, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))

	docs.RegisterRoutes(r)

	chat.RegisterRoutes(r, chatHandler)

	return r
}
