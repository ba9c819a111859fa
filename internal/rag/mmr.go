package rag

import (
	"math"

	"docchat/internal/domain"
)

// maximalMarginalRelevance selects up to k candidate indexes balancing
// relevance to the query against diversity among the already selected
// results. lambda 1 is pure relevance, lambda 0 pure diversity.
func maximalMarginalRelevance(query []float32, candidates []domain.Match, k int, lambda float64) []int {
	if k > len(candidates) {
		k = len(candidates)
	}
	selected := make([]int, 0, k)
	remaining := make(map[int]struct{}, len(candidates))
	for i := range candidates {
		remaining[i] = struct{}{}
	}
	for len(selected) < k && len(remaining) > 0 {
		best := -1
		bestScore := math.Inf(-1)
		for idx := range remaining {
			relevance := cosineSimilarity(query, candidates[idx].Embedding)
			maxRedundancy := 0.0
			for _, j := range selected {
				if sim := cosineSimilarity(candidates[idx].Embedding, candidates[j].Embedding); sim > maxRedundancy {
					maxRedundancy = sim
				}
			}
			score := lambda*relevance - (1-lambda)*maxRedundancy
			if score > bestScore {
				bestScore = score
				best = idx
			}
		}
		selected = append(selected, best)
		delete(remaining, best)
	}
	return selected
}

func cosineSimilarity(a, b []float32) float64 {
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
