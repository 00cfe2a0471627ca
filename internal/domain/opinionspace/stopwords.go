package opinionspace

// stopWords is the fixed list of common English function words excluded from
// keyword extraction.  The list is a tuning table, not a correctness
// requirement: changing it changes which keywords surface, so it stays fixed
// to keep projections reproducible across releases.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "that", "this", "with", "from", "have", "has", "had",
		"will", "would", "could", "should", "must", "shall", "might", "may",
		"about", "above", "after", "again", "because", "been", "before",
		"being", "below", "between", "both", "down", "during", "each",
		"into", "just", "more", "most", "only", "other", "over", "same",
		"some", "such", "than", "then", "there", "these", "they", "them",
		"their", "theirs", "through", "under", "until", "very", "were",
		"what", "when", "where", "which", "while", "your", "yours",
		"ours", "mine", "hers", "whom", "whose", "does", "doing", "done",
		"against", "here", "once", "itself", "himself", "herself",
		"myself", "yourself", "ourselves", "themselves",
	} {
		stopWords[w] = struct{}{}
	}
}

// isStopWord reports whether the lower-cased token is excluded from keyword
// tallies.
func isStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
