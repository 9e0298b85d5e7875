package engine

import "math"

// CosineSimilarity computes the cosine of the angle between two embedding
// vectors, in [-1, 1]. Absent vectors, mismatched lengths and zero-norm
// vectors all yield 0.0 — a deliberate "no signal" policy so that a missing
// or malformed embedding never fails a ranking pass.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
