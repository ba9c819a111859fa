package rag

import (
	"context"

	"docchat/internal/domain"
)

const (
	// defaultFetchK is how many candidates are fetched before MMR
	// re-ranking narrows them down to k.
	defaultFetchK = 20
	defaultLambda = 0.5
)

// Retriever runs maximal-marginal-relevance search against one user's
// collection.
type Retriever struct {
	embedder   domain.Embedder
	store      domain.VectorStore
	collection string
	k          int
	fetchK     int
	lambda     float64
}

func NewRetriever(embedder domain.Embedder, store domain.VectorStore, collection string, k int) *Retriever {
	if k <= 0 {
		k = 1
	}
	return &Retriever{
		embedder:   embedder,
		store:      store,
		collection: collection,
		k:          k,
		fetchK:     defaultFetchK,
		lambda:     defaultLambda,
	}
}

// Retrieve embeds the query, fetches a candidate set with vectors, and
// returns the k most relevant yet diverse matches.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.Match, error) {
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	matches, err := r.store.Search(ctx, r.collection, vector, domain.SearchOptions{
		TopK:        r.fetchK,
		WithVectors: true,
	})
	if err != nil {
		return nil, err
	}
	if len(matches) <= r.k {
		return matches, nil
	}
	selected := maximalMarginalRelevance(vector, matches, r.k, r.lambda)
	out := make([]domain.Match, 0, len(selected))
	for _, idx := range selected {
		out = append(out, matches[idx])
	}
	return out, nil
}
