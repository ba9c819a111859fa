package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"docchat/internal/domain"
)

// Store is a simple in-memory vector store using brute-force cosine
// similarity. It backs tests and local runs without a Qdrant instance.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	dimension int
	records   []domain.Record
}

func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) EnsureCollection(_ context.Context, name string, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.collections[name]; ok {
		if existing.dimension != dimension {
			return fmt.Errorf("collection %q exists with dimension %d", name, existing.dimension)
		}
		return nil
	}
	s.collections[name] = &collection{dimension: dimension}
	return nil
}

func (s *Store) CollectionExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[name]
	return ok, nil
}

func (s *Store) Upsert(_ context.Context, name string, records []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("collection %q does not exist", name)
	}
	for _, rec := range records {
		if len(rec.Embedding) != col.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	col.records = append(col.records, records...)
	return nil
}

func (s *Store) Search(_ context.Context, name string, vector []float32, opts domain.SearchOptions) ([]domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", name)
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}
	matches := make([]domain.Match, 0, len(col.records))
	for _, rec := range col.records {
		match := domain.Match{
			ID:       rec.ID,
			Score:    cosine(rec.Embedding, vector),
			Text:     rec.Text,
			Metadata: rec.Metadata,
		}
		if opts.WithVectors {
			match.Embedding = rec.Embedding
		}
		matches = append(matches, match)
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
