package matching

import "math"

// Score maps cosine similarity from [-1, 1] onto an integer match percentage
// in [0, 100]. Similarity is undefined for zero or mismatched vectors; those
// score 0.
func Score(a, b []float32) int {
	cos, ok := cosine(a, b)
	if !ok {
		return 0
	}
	s := math.Round(50 * (cos + 1))
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	}
	return int(s)
}

func cosine(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}
