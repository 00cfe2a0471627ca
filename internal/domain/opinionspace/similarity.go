package opinionspace

import "math"

// Similarity weights: stance proximity dominates, keyword overlap refines,
// emotion match nudges.  Weights sum to 1 so a pair of clusters with equal
// scores, identical keywords, and the same dominant emotion scores exactly 1.
const (
	scoreWeight   = 0.5
	keywordWeight = 0.3
	emotionWeight = 0.2

	// emotionMismatch is the residual credit for differing dominant emotions;
	// disagreement on feeling is not total dissimilarity.
	emotionMismatch = 0.3
)

// Similarity computes the symmetric similarity score in [0,1] between two
// cluster summaries:
//
//	0.5·(1 − |Δscore|/100) + 0.3·Jaccard(keywords) + 0.2·(1 if same emotion else 0.3)
func Similarity(a, b *ClusterSummary) float64 {
	scoreTerm := 1 - math.Abs(a.AvgScore-b.AvgScore)/100

	emotionTerm := emotionMismatch
	if a.DominantEmotion == b.DominantEmotion {
		emotionTerm = 1
	}

	return scoreWeight*scoreTerm +
		keywordWeight*jaccard(a.Keywords, b.Keywords) +
		emotionWeight*emotionTerm
}

// jaccard is |intersection| / |union| over two keyword lists, 0 when the
// union is empty.
func jaccard(a, b []string) float64 {
	union := make(map[string]struct{}, len(a)+len(b))
	setA := make(map[string]struct{}, len(a))
	for _, k := range a {
		setA[k] = struct{}{}
		union[k] = struct{}{}
	}
	intersection := 0
	seenB := make(map[string]struct{}, len(b))
	for _, k := range b {
		if _, dup := seenB[k]; dup {
			continue
		}
		seenB[k] = struct{}{}
		if _, ok := setA[k]; ok {
			intersection++
		}
		union[k] = struct{}{}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}

// SimilarityMatrix builds the full N×N symmetric matrix over the given
// summaries.  The diagonal is computed like any other entry, not pinned to 1:
// a cluster with no keywords self-scores below 1 because the empty-union
// Jaccard term contributes nothing.
func SimilarityMatrix(clusters []ClusterSummary) [][]float64 {
	n := len(clusters)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s := Similarity(&clusters[i], &clusters[j])
			matrix[i][j] = s
			matrix[j][i] = s
		}
	}
	return matrix
}
