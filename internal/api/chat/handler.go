package chat

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rag-chatbot/internal/entity"
	"github.com/futig/rag-chatbot/internal/pkg/logger"
	"github.com/futig/rag-chatbot/internal/pkg/response"
)

const (
	pageTemplate  = "chat.html"
	pageTitle     = "Medical Chatbot"
	messageField  = "msg"
	maxFormMemory = 1 << 20

	notReadyMessage = "RAG chain not initialized. Check server logs for startup errors."
	upstreamMessage = "failed to generate answer"
	timeoutMessage  = "answer generation timed out"
)

// Handler serves the chat page and the message exchange. chain is set once by
// the builder and is nil when composition failed at startup.
type Handler struct {
	chain   ChainInvoker
	pages   *template.Template
	timeout time.Duration
}

func NewHandler(
	chain ChainInvoker,
	pages *template.Template,
	timeout time.Duration,
) *Handler {
	return &Handler{
		chain:   chain,
		pages:   pages,
		timeout: timeout,
	}
}

type pageData struct {
	Title string
}

// Index handles GET / - chat page
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Index")

	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, pageTemplate, pageData{Title: pageTitle}); err != nil {
		ctxzap.Error(ctx, "failed to render chat page", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Chat handles POST /get - answer one message
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")

	if h.chain == nil {
		h.respondError(ctx, w, http.StatusServiceUnavailable, notReadyMessage, entity.ErrChainNotReady)
		return
	}

	req, err := parseChatRequest(r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, entity.ErrMissingMessage) {
			status = http.StatusUnprocessableEntity
		}
		h.respondError(ctx, w, status, err.Error(), err)
		return
	}

	ctxzap.Info(ctx, "chat message received", zap.Int("message_length", len(req.Message)))

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	answer, err := h.chain.Invoke(ctx, req.Message)
	if err != nil {
		h.handleChainError(ctx, r, w, err)
		return
	}

	response.Success(w, entity.ChatResponse{Answer: answer})
}

// Ready handles GET /ready - 200 once the chain is composed
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.chain == nil {
		response.JSON(w, http.StatusServiceUnavailable, entity.ReadinessResponse{Status: "not ready"})
		return
	}
	response.Success(w, entity.ReadinessResponse{Status: "ready", Chain: true})
}

func parseChatRequest(r *http.Request) (*entity.ChatRequest, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}

	// An empty value counts as missing, like an absent field.
	values := r.PostForm[messageField]
	if len(values) == 0 || values[0] == "" {
		return nil, entity.ErrMissingMessage
	}

	return &entity.ChatRequest{Message: values[0]}, nil
}

func (h *Handler) handleChainError(ctx context.Context, r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(r.Context().Err(), context.Canceled):
		// Client went away; nobody is left to read a reply.
		ctxzap.Warn(ctx, "client disconnected before answer was ready", zap.Error(err))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		// gRPC status errors from the vector store do not wrap ctx.Err().
		h.respondError(ctx, w, http.StatusGatewayTimeout, timeoutMessage, err)
	default:
		h.respondError(ctx, w, http.StatusBadGateway, upstreamMessage, err)
	}
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Int("status", status), zap.Error(err))
	response.Error(w, status, message)
}
