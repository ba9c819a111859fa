package domain

import "context"

// Document is the normalized text content of one input file.
type Document struct {
	Text   string
	Source string
}

// Chunk is a bounded-size slice of a document's text, the unit stored
// and retrieved from the vector index. Metadata keeps traceability to
// the originating file.
type Chunk struct {
	Text     string
	Metadata map[string]string
}

// Record is a chunk with its embedding, ready to persist.
type Record struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  map[string]string
}

// Match is a search hit returned by a vector store.
type Match struct {
	ID        string
	Score     float64
	Text      string
	Embedding []float32
	Metadata  map[string]string
}

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one message of the conversation history supplied by the
// caller. History is input-only context; it is never persisted.
type ChatTurn struct {
	Role    Role
	Content string
}

// Embedder converts text into numeric vector representations.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// SearchOptions controls similarity search execution.
type SearchOptions struct {
	TopK int
	// WithVectors asks the store to return candidate embeddings so the
	// caller can re-rank (e.g. maximal marginal relevance).
	WithVectors bool
}

// VectorStore persists embedded chunks in named collections and supports
// similarity search. One collection per user is the tenant isolation
// boundary.
type VectorStore interface {
	EnsureCollection(ctx context.Context, collection string, dimension int) error
	CollectionExists(ctx context.Context, collection string) (bool, error)
	Upsert(ctx context.Context, collection string, records []Record) error
	Search(ctx context.Context, collection string, vector []float32, opts SearchOptions) ([]Match, error)
}

// ObjectStore archives original files under namespaced keys.
type ObjectStore interface {
	Upload(ctx context.Context, localPath, key string) error
	Read(ctx context.Context, key string) ([]byte, error)
}

// Chunker splits documents into chunks suitable for embedding.
type Chunker interface {
	Split(documents []Document) ([]Chunk, error)
}
