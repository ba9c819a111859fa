package rag

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"docchat/internal/domain"
	"docchat/internal/vectorstore/memory"
)

// scriptedLLM returns canned responses in call order.
type scriptedLLM struct {
	responses []string
	err       error
	calls     [][]llms.MessageContent
}

func (s *scriptedLLM) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.calls = append(s.calls, messages)
	idx := len(s.calls) - 1
	content := ""
	if idx < len(s.responses) {
		content = s.responses[idx]
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content}}}, nil
}

func (s *scriptedLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := s.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}, options...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

// recordingEmbedder tracks the queries it embeds so tests can verify what
// the retriever searched for.
type recordingEmbedder struct {
	queries []string
}

func (r *recordingEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

func (r *recordingEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	r.queries = append(r.queries, text)
	return []float32{1, 0}, nil
}

func seededStore(t *testing.T, user string, texts ...string) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.EnsureCollection(ctx, user, 2))
	records := make([]domain.Record, len(texts))
	for i, text := range texts {
		records[i] = domain.Record{ID: text, Text: text, Embedding: []float32{1, float32(i) * 0.01}}
	}
	require.NoError(t, store.Upsert(ctx, user, records))
	return store
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestNewConversational_RequiresExistingCollection(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{}
	embedder := &recordingEmbedder{}

	_, err := NewConversational(ctx, "ghost", llm, nil, embedder, memory.NewStore(), testLogger())
	var initErr *domain.InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "ghost", initErr.User)
}

func TestNewConversational_RequiresUserAndDependencies(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, "alice", "doc")
	embedder := &recordingEmbedder{}
	llm := &scriptedLLM{}

	var initErr *domain.InitializationError

	_, err := NewConversational(ctx, "", llm, nil, embedder, store, testLogger())
	assert.ErrorAs(t, err, &initErr)

	_, err = NewConversational(ctx, "alice", nil, nil, embedder, store, testLogger())
	assert.ErrorAs(t, err, &initErr)

	_, err = NewConversational(ctx, "alice", llm, nil, nil, store, testLogger())
	assert.ErrorAs(t, err, &initErr)

	_, err = NewConversational(ctx, "alice", llm, nil, embedder, nil, testLogger())
	assert.ErrorAs(t, err, &initErr)
}

func TestAnswer_UninitializedPipeline(t *testing.T) {
	var c *Conversational
	_, err := c.Answer(context.Background(), "hi", nil)
	assert.ErrorIs(t, err, domain.ErrNotInitialized)

	_, err = (&Conversational{}).Answer(context.Background(), "hi", nil)
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestAnswer_RetrievesWithRewrittenQuery(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, "alice", "Arindam is a software engineer from Kolkata.")
	embedder := &recordingEmbedder{}
	llm := &scriptedLLM{responses: []string{
		"Where does Arindam live?",
		"Arindam lives in Kolkata.",
	}}

	c, err := NewConversational(ctx, "alice", llm, nil, embedder, store, testLogger())
	require.NoError(t, err)

	history := []domain.ChatTurn{
		{Role: domain.RoleUser, Content: "Who is Arindam?"},
		{Role: domain.RoleAssistant, Content: "Arindam is a software engineer."},
	}
	answer, err := c.Answer(ctx, "Where does he live?", history)
	require.NoError(t, err)
	assert.Equal(t, "Arindam lives in Kolkata.", answer)

	require.Len(t, embedder.queries, 1)
	assert.Equal(t, "Where does Arindam live?", embedder.queries[0], "retrieval must use the standalone rewrite")

	// generation sees the retrieved context and the original question
	require.Len(t, llm.calls, 2)
	gen := llm.calls[1]
	require.NotEmpty(t, gen)
	system := gen[0].Parts[0].(llms.TextContent).Text
	assert.Contains(t, system, "Arindam is a software engineer from Kolkata.")
	last := gen[len(gen)-1].Parts[0].(llms.TextContent).Text
	assert.Equal(t, "Where does he live?", last)
}

func TestAnswer_EmptyRewriteFallsBackToInput(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, "alice", "some context")
	embedder := &recordingEmbedder{}
	llm := &scriptedLLM{responses: []string{"", "the answer"}}

	c, err := NewConversational(ctx, "alice", llm, nil, embedder, store, testLogger())
	require.NoError(t, err)

	answer, err := c.Answer(ctx, "plain question", nil)
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
	require.Len(t, embedder.queries, 1)
	assert.Equal(t, "plain question", embedder.queries[0])
}

func TestAnswer_EmptyGenerationYieldsSentinel(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, "alice", "some context")
	embedder := &recordingEmbedder{}
	llm := &scriptedLLM{responses: []string{"standalone question", "   "}}

	c, err := NewConversational(ctx, "alice", llm, nil, embedder, store, testLogger())
	require.NoError(t, err)

	answer, err := c.Answer(ctx, "question", nil)
	require.NoError(t, err)
	assert.Equal(t, NoAnswer, answer)
}

func TestAnswer_EmptyInputOnUnseededCollection(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.EnsureCollection(ctx, "alice", 2))
	embedder := &recordingEmbedder{}
	llm := &scriptedLLM{}

	c, err := NewConversational(ctx, "alice", llm, nil, embedder, store, testLogger())
	require.NoError(t, err)

	answer, err := c.Answer(ctx, "", nil)
	require.NoError(t, err)
	assert.Equal(t, NoAnswer, answer)
}

func TestAnswer_LLMFailureBecomesInvocationError(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, "alice", "some context")
	embedder := &recordingEmbedder{}
	llm := &scriptedLLM{}

	c, err := NewConversational(ctx, "alice", llm, nil, embedder, store, testLogger())
	require.NoError(t, err)

	cause := errors.New("rate limited")
	llm.err = cause
	_, err = c.Answer(ctx, "question", nil)

	var invErr *domain.InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "alice", invErr.User)
	assert.Equal(t, "rewrite", invErr.Stage)
	assert.NotEmpty(t, invErr.SessionID)
	assert.ErrorIs(t, err, cause)
}
