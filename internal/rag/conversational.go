package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"docchat/internal/domain"
	"docchat/internal/prompt"
)

// NoAnswer is returned when the model produces an empty result; callers
// get a stable sentinel instead of a failure.
const NoAnswer = "no answer generated."

// Conversational answers questions against one user's collection in
// three stages: rewrite the question with chat history, retrieve context
// for the rewritten query, generate the answer from context plus the
// original question. One instance is bound to one user and assumes one
// invocation in flight at a time.
type Conversational struct {
	user      string
	sessionID string
	llm       llms.Model
	callOpts  []llms.CallOption
	retriever *Retriever
	logger    *log.Logger
	ready     bool
}

// NewConversational opens the user's collection as an MMR retriever
// (k=1) and binds the LLM. Construction fails if the collection does not
// exist or any dependency is missing; a failed instance must not be
// invoked.
func NewConversational(
	ctx context.Context,
	user string,
	llm llms.Model,
	callOpts []llms.CallOption,
	embedder domain.Embedder,
	store domain.VectorStore,
	logger *log.Logger,
) (*Conversational, error) {
	if user == "" {
		return nil, &domain.InitializationError{User: user, Err: errors.New("user identity is required")}
	}
	if llm == nil || embedder == nil || store == nil {
		return nil, &domain.InitializationError{User: user, Err: errors.New("llm, embedder, and vector store are required")}
	}
	exists, err := store.CollectionExists(ctx, user)
	if err != nil {
		return nil, &domain.InitializationError{User: user, Err: err}
	}
	if !exists {
		return nil, &domain.InitializationError{User: user, Err: fmt.Errorf("collection %q does not exist", user)}
	}
	c := &Conversational{
		user:      user,
		sessionID: uuid.NewString(),
		llm:       llm,
		callOpts:  callOpts,
		retriever: NewRetriever(embedder, store, user, 1),
		logger:    logger,
		ready:     true,
	}
	logger.Info("conversational pipeline initialized", "user", user, "session_id", c.sessionID)
	return c, nil
}

// Answer runs one invocation. Any stage failure is logged and re-raised
// as an InvocationError so callers handle one error shape.
func (c *Conversational) Answer(ctx context.Context, input string, history []domain.ChatTurn) (string, error) {
	if c == nil || !c.ready {
		return "", domain.ErrNotInitialized
	}
	rewritten, err := c.rewrite(ctx, input, history)
	if err != nil {
		return "", c.fail("rewrite", input, err)
	}
	contextText, err := c.retrieve(ctx, rewritten)
	if err != nil {
		return "", c.fail("retrieve", input, err)
	}
	answer, err := c.generate(ctx, contextText, input, history)
	if err != nil {
		return "", c.fail("generate", input, err)
	}
	if strings.TrimSpace(answer) == "" {
		c.logger.Warn("no answer generated", "user", c.user, "session_id", c.sessionID, "input", input)
		return NoAnswer, nil
	}
	c.logger.Info("invocation complete",
		"user", c.user,
		"session_id", c.sessionID,
		"answer_preview", preview(answer),
	)
	return answer, nil
}

// rewrite produces a standalone query independent of conversational
// context. An empty rewrite falls back to the original input.
func (c *Conversational) rewrite(ctx context.Context, input string, history []domain.ChatTurn) (string, error) {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, prompt.System(prompt.ContextualizeQuestion)))
	messages = append(messages, historyMessages(history)...)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, input))
	resp, err := c.llm.GenerateContent(ctx, messages, c.callOpts...)
	if err != nil {
		return "", err
	}
	rewritten := firstChoice(resp)
	if strings.TrimSpace(rewritten) == "" {
		return input, nil
	}
	return rewritten, nil
}

// retrieve concatenates the retrieved chunks' text with blank-line
// separators into one context string.
func (c *Conversational) retrieve(ctx context.Context, query string) (string, error) {
	matches, err := c.retriever.Retrieve(ctx, query)
	if err != nil {
		return "", err
	}
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Text)
	}
	return strings.Join(texts, "\n\n"), nil
}

// generate answers from the retrieved context plus the original input
// (not the rewritten query) and the full chat history.
func (c *Conversational) generate(ctx context.Context, contextText, input string, history []domain.ChatTurn) (string, error) {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, prompt.RenderContextQA(contextText)))
	messages = append(messages, historyMessages(history)...)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, input))
	resp, err := c.llm.GenerateContent(ctx, messages, c.callOpts...)
	if err != nil {
		return "", err
	}
	return firstChoice(resp), nil
}

func (c *Conversational) fail(stage, input string, err error) error {
	c.logger.Error("invocation failed",
		"user", c.user,
		"session_id", c.sessionID,
		"stage", stage,
		"input", input,
		"err", err,
	)
	return &domain.InvocationError{User: c.user, SessionID: c.sessionID, Stage: stage, Err: err}
}

func historyMessages(history []domain.ChatTurn) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history))
	for _, turn := range history {
		role := llms.ChatMessageTypeHuman
		if turn.Role == domain.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Content))
	}
	return messages
}

func firstChoice(resp *llms.ContentResponse) string {
	if resp == nil || len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Content
}

func preview(s string) string {
	if len(s) > 150 {
		return s[:150]
	}
	return s
}
