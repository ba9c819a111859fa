package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

func TestEnsureCollection(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.EnsureCollection(ctx, "alice", 3))
	exists, err := s.CollectionExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	// idempotent with the same dimension
	require.NoError(t, s.EnsureCollection(ctx, "alice", 3))

	err = s.EnsureCollection(ctx, "alice", 4)
	assert.Error(t, err)

	err = s.EnsureCollection(ctx, "bob", 0)
	assert.Error(t, err)

	exists, err = s.CollectionExists(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpsertRequiresCollection(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.Upsert(ctx, "ghost", []domain.Record{{ID: "1", Embedding: []float32{1}}})
	assert.Error(t, err)

	require.NoError(t, s.EnsureCollection(ctx, "alice", 2))
	err = s.Upsert(ctx, "alice", []domain.Record{{ID: "1", Embedding: []float32{1, 0, 0}}})
	assert.Error(t, err, "dimension mismatch must be rejected")
}

func TestSearchRanksByCosine(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.EnsureCollection(ctx, "alice", 2))
	require.NoError(t, s.Upsert(ctx, "alice", []domain.Record{
		{ID: "x", Text: "x axis", Embedding: []float32{1, 0}, Metadata: map[string]string{"source": "a.txt"}},
		{ID: "y", Text: "y axis", Embedding: []float32{0, 1}},
		{ID: "d", Text: "diagonal", Embedding: []float32{1, 1}},
	}))

	matches, err := s.Search(ctx, "alice", []float32{1, 0}, domain.SearchOptions{TopK: 2})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "x", matches[0].ID)
	assert.Equal(t, "d", matches[1].ID)
	assert.Equal(t, "x axis", matches[0].Text)
	assert.Equal(t, "a.txt", matches[0].Metadata["source"])
	assert.Nil(t, matches[0].Embedding, "vectors withheld unless requested")

	matches, err = s.Search(ctx, "alice", []float32{1, 0}, domain.SearchOptions{TopK: 1, WithVectors: true})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, []float32{1, 0}, matches[0].Embedding)
}

func TestSearchUnknownCollection(t *testing.T) {
	s := NewStore()
	_, err := s.Search(context.Background(), "nobody", []float32{1}, domain.SearchOptions{})
	assert.Error(t, err)
}

func TestCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.EnsureCollection(ctx, "alice", 1))
	require.NoError(t, s.EnsureCollection(ctx, "bob", 1))
	require.NoError(t, s.Upsert(ctx, "alice", []domain.Record{{ID: "a1", Text: "alice doc", Embedding: []float32{1}}}))

	matches, err := s.Search(ctx, "bob", []float32{1}, domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, matches)
}
