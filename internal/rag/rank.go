package rag

import (
	"cmp"
	"math"
	"slices"
)

// DefaultTopK is the number of documents sent to the generator.
const DefaultTopK = 3

// SentinelScore is assigned when similarity is undefined. It sorts below
// every real cosine value.
var SentinelScore = math.Inf(-1)

// CosineSimilarity returns dot(a,b) / (|a|·|b|), or SentinelScore when either
// vector is empty, zero, or the dimensions differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return SentinelScore
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return SentinelScore
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) {
		return SentinelScore
	}
	return sim
}

// Rank scores every document against query and returns the k best, in
// ascending corpus position. Equal scores keep corpus order, so a nil query
// selects the first k documents.
func Rank(query []float32, docs []EmbeddedDocument, k int) []RankedDocument {
	if k <= 0 || len(docs) == 0 {
		return []RankedDocument{}
	}

	ranked := make([]RankedDocument, len(docs))
	for i, d := range docs {
		score := SentinelScore
		if len(query) > 0 && len(d.Embedding) > 0 {
			score = CosineSimilarity(query, d.Embedding)
		}
		ranked[i] = RankedDocument{
			EmbeddedDocument: d,
			Score:            score,
			Position:         i + 1,
		}
	}

	slices.SortStableFunc(ranked, func(a, b RankedDocument) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}

	// ordem do corpus, para a numeração da citação bater com o ARTIKEL N
	slices.SortFunc(ranked, func(a, b RankedDocument) int {
		return cmp.Compare(a.Position, b.Position)
	})

	return ranked
}

// Positions returns the corpus positions of ranked, in order.
func Positions(ranked []RankedDocument) []int {
	out := make([]int, len(ranked))
	for i, r := range ranked {
		out[i] = r.Position
	}
	return out
}
