package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type textDoc string

func (d textDoc) Text() string { return string(d) }

type stubRetriever struct {
	docs []Document
	err  error
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string) ([]Document, error) {
	return s.docs, s.err
}

type recordingGenerator struct {
	mu      sync.Mutex
	answer  string
	err     error
	gotMsgs []llms.MessageContent
}

func (g *recordingGenerator) Generate(ctx context.Context, messages []llms.MessageContent) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gotMsgs = messages
	return g.answer, g.err
}

func textOf(t *testing.T, msg llms.MessageContent) string {
	t.Helper()
	require.Len(t, msg.Parts, 1)
	part, ok := msg.Parts[0].(llms.TextContent)
	require.True(t, ok)
	return part.Text
}

func TestChain_Invoke_PassesAnswerThrough(t *testing.T) {
	retriever := &stubRetriever{docs: []Document{textDoc("Acne is common."), textDoc("Retinoids help."), textDoc("See a dermatologist.")}}
	generator := &recordingGenerator{answer: "  Acne is a skin condition.\n"}
	c, err := New(retriever, NewPrompt(), generator)
	require.NoError(t, err)

	answer, err := c.Invoke(context.Background(), "What is acne?")

	require.NoError(t, err)
	assert.Equal(t, "  Acne is a skin condition.\n", answer)

	require.Len(t, generator.gotMsgs, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, generator.gotMsgs[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, generator.gotMsgs[1].Role)

	system := textOf(t, generator.gotMsgs[0])
	assert.True(t, strings.HasPrefix(system, "You are a medical assistant"))
	assert.True(t, strings.HasSuffix(system, "\n\nAcne is common.\n\nRetinoids help.\n\nSee a dermatologist."))
	assert.Equal(t, "What is acne?", textOf(t, generator.gotMsgs[1]))
}

func TestChain_Invoke_InputIsNotTemplated(t *testing.T) {
	generator := &recordingGenerator{answer: "ok"}
	c, err := New(&stubRetriever{}, NewPrompt(), generator)
	require.NoError(t, err)

	_, err = c.Invoke(context.Background(), "{{.context}} <b>&</b>")

	require.NoError(t, err)
	assert.Equal(t, "{{.context}} <b>&</b>", textOf(t, generator.gotMsgs[1]))
}

func TestChain_Invoke_RetrieveError(t *testing.T) {
	boom := errors.New("pinecone down")
	generator := &recordingGenerator{}
	c, err := New(&stubRetriever{err: boom}, NewPrompt(), generator)
	require.NoError(t, err)

	_, err = c.Invoke(context.Background(), "q")

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "retrieve")
	assert.Nil(t, generator.gotMsgs)
}

func TestChain_Invoke_GenerateError(t *testing.T) {
	c, err := New(&stubRetriever{}, NewPrompt(), &recordingGenerator{err: context.DeadlineExceeded})
	require.NoError(t, err)

	_, err = c.Invoke(context.Background(), "q")

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "timeout", resultLabel(context.Background(), err))
}

func TestResultLabel_UsesContextWhenErrorIsOpaque(t *testing.T) {
	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	canceled, cancel2 := context.WithCancel(context.Background())
	cancel2()

	opaque := errors.New("rpc error: code = DeadlineExceeded desc = context deadline exceeded")

	assert.Equal(t, "timeout", resultLabel(expired, opaque))
	assert.Equal(t, "canceled", resultLabel(canceled, opaque))
	assert.Equal(t, "error", resultLabel(context.Background(), opaque))
}

// echoGenerator answers with the human message so concurrent callers can
// check they got their own reply.
type echoGenerator struct{}

func (echoGenerator) Generate(ctx context.Context, messages []llms.MessageContent) (string, error) {
	last := messages[len(messages)-1]
	return "answer:" + last.Parts[0].(llms.TextContent).Text, nil
}

func TestChain_Invoke_ConcurrentCallsAreIsolated(t *testing.T) {
	c, err := New(&stubRetriever{docs: []Document{textDoc("shared")}}, NewPrompt(), echoGenerator{})
	require.NoError(t, err)

	const n = 32
	var wg sync.WaitGroup
	results := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.Invoke(context.Background(), fmt.Sprintf("question-%d", i))
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, fmt.Sprintf("answer:question-%d", i), got)
	}
}

func TestNew_RequiresParts(t *testing.T) {
	_, err := New(nil, NewPrompt(), echoGenerator{})
	assert.Error(t, err)

	_, err = New(&stubRetriever{}, nil, echoGenerator{})
	assert.Error(t, err)

	_, err = New(&stubRetriever{}, NewPrompt(), nil)
	assert.Error(t, err)
}

func TestFormatDocuments(t *testing.T) {
	assert.Equal(t, "", FormatDocuments(nil))
	assert.Equal(t, "a", FormatDocuments([]Document{textDoc("a")}))
	assert.Equal(t, "a\n\nb", FormatDocuments([]Document{textDoc("a"), textDoc("b")}))
}
