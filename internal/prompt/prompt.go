package prompt

import "strings"

// Type identifies a prompt template in the registry.
type Type string

const (
	// ContextualizeQuestion rewrites a context-dependent user question
	// into a standalone query using the chat history.
	ContextualizeQuestion Type = "contextualize_question"
	// ContextQA answers the user's question from retrieved context.
	ContextQA Type = "context_qa"
)

const contextPlaceholder = "{context}"

var registry = map[Type]string{
	ContextualizeQuestion: "Given a chat history and the latest user question " +
		"which might reference context in the chat history, formulate a standalone " +
		"question which can be understood without the chat history. Do NOT answer " +
		"the question, just reformulate it if needed and otherwise return it as is.",
	ContextQA: "You are an assistant for question-answering tasks. " +
		"Use the following pieces of retrieved context to answer the question. " +
		"If you don't know the answer, say that you don't know. " +
		"Keep the answer concise.\n\n" + contextPlaceholder,
}

// System returns the system prompt text for a prompt type.
func System(t Type) string {
	return registry[t]
}

// RenderContextQA substitutes the retrieved context into the QA prompt.
func RenderContextQA(contextText string) string {
	return strings.Replace(registry[ContextQA], contextPlaceholder, contextText, 1)
}
