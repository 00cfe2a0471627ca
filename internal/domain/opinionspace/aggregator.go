package opinionspace

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/civitas-ai/opinionspace/internal/domain/simulation"
)

const (
	maxKeywords     = 8
	maxAgentSamples = 10
	maxVerbatims    = 5

	// minKeywordLen discards short tokens; anything of this length or less is
	// too generic to be a useful keyword.
	minKeywordLen = 3

	// defaultScore is the neutral midpoint used when a cluster produced no
	// scored results.
	defaultScore = 50.0
)

// nonWord collapses every run of non-word characters to a single separator
// before tokenising response text.
var nonWord = regexp.MustCompile(`\W+`)

// orderedCounter is an insertion-ordered tally.  Tie-breaking across the
// engine depends on first-encounter order, so an unordered map is not enough:
// keys remember the order in which they were first tallied.
type orderedCounter struct {
	keys   []string
	counts map[string]int
}

func newOrderedCounter() *orderedCounter {
	return &orderedCounter{counts: make(map[string]int)}
}

func (c *orderedCounter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.keys = append(c.keys, key)
	}
	c.counts[key]++
}

// top returns up to n keys ordered by descending count; equal counts keep
// first-encounter order.
func (c *orderedCounter) top(n int) []string {
	ranked := make([]string, len(c.keys))
	copy(ranked, c.keys)
	sort.SliceStable(ranked, func(i, j int) bool {
		return c.counts[ranked[i]] > c.counts[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// max returns the key with the highest count; ties resolve to the key tallied
// first.  ok is false when nothing was tallied.
func (c *orderedCounter) max() (key string, ok bool) {
	best := -1
	for _, k := range c.keys {
		if c.counts[k] > best {
			key, best = k, c.counts[k]
		}
	}
	return key, best >= 0
}

// Aggregate reduces the raw per-agent records of one cluster into its
// statistical summary.  The summary carries no position; layout attaches one
// later.  Results and memberships are filtered to the cluster in their
// original order, which fixes sample selection and all tie-breaking.
func Aggregate(cluster simulation.Cluster, agents []simulation.AgentMembership, results []simulation.AgentResult) ClusterSummary {
	var clusterResults []simulation.AgentResult
	for _, r := range results {
		if r.ClusterID == cluster.ID {
			clusterResults = append(clusterResults, r)
		}
	}
	agentCount := 0
	for _, a := range agents {
		if a.ClusterID == cluster.ID {
			agentCount++
		}
	}

	var scores []float64
	emotions := newOrderedCounter()
	var responses []string
	for _, r := range clusterResults {
		ft := r.FirstTurn()
		if ft == nil {
			continue
		}
		if ft.Score != nil {
			scores = append(scores, *ft.Score)
		}
		if ft.Emotion != "" {
			emotions.add(ft.Emotion)
		}
		if ft.Response != "" {
			responses = append(responses, ft.Response)
		}
	}

	avg := defaultScore
	if len(scores) > 0 {
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		avg = sum / float64(len(scores))
	}

	dominant, ok := emotions.max()
	if !ok {
		dominant = "neutral"
	}

	return ClusterSummary{
		ID:              cluster.ID,
		Name:            cluster.Name,
		Description:     cluster.Description,
		Weight:          cluster.Weight,
		AgentCount:      agentCount,
		AvgScore:        avg,
		Cohesion:        cohesion(scores),
		DominantEmotion: dominant,
		Keywords:        extractKeywords(responses),
		AgentSamples:    sampleAgents(clusterResults),
		Verbatims:       sampleVerbatims(responses),
		Analysis:        buildNarratives(clusterResults, avg),
	}
}

// cohesion maps score dispersion to [0,100]: round(max(0, 100 − 2σ)) using
// the population standard deviation.  No scores means nothing to cohere
// around (0); a single score is perfect agreement (100).
func cohesion(scores []float64) float64 {
	switch len(scores) {
	case 0:
		return 0
	case 1:
		return 100
	}
	mean := 0.0
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))

	variance := 0.0
	for _, s := range scores {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(scores))

	return math.Round(math.Max(0, 100-2*math.Sqrt(variance)))
}

// extractKeywords tokenises the responses and returns the most frequent
// terms: lower-cased, non-word runs treated as separators, short tokens and
// stop words discarded, ranked by count with first-seen tie order.
func extractKeywords(responses []string) []string {
	counter := newOrderedCounter()
	for _, resp := range responses {
		cleaned := nonWord.ReplaceAllString(strings.ToLower(resp), " ")
		for _, token := range strings.Fields(cleaned) {
			if len(token) <= minKeywordLen || isStopWord(token) {
				continue
			}
			counter.add(token)
		}
	}
	keywords := counter.top(maxKeywords)
	if keywords == nil {
		keywords = []string{}
	}
	return keywords
}

// sampleAgents keeps the first maxAgentSamples results as representative
// agent-level records.
func sampleAgents(results []simulation.AgentResult) []AgentSample {
	samples := make([]AgentSample, 0, maxAgentSamples)
	for _, r := range results {
		if len(samples) == maxAgentSamples {
			break
		}
		s := AgentSample{AgentID: r.AgentID, Name: r.DisplayName}
		if s.Name == "" {
			s.Name = r.AgentID
		}
		if ft := r.FirstTurn(); ft != nil {
			s.Score = ft.Score
			s.Emotion = ft.Emotion
			s.Response = ft.Response
		}
		samples = append(samples, s)
	}
	return samples
}

// sampleVerbatims keeps the first maxVerbatims non-empty responses in
// encounter order.
func sampleVerbatims(responses []string) []string {
	verbatims := make([]string, 0, maxVerbatims)
	for _, resp := range responses {
		if len(verbatims) == maxVerbatims {
			break
		}
		verbatims = append(verbatims, resp)
	}
	return verbatims
}

// subScore identifies one of the optional per-agent analysis dimensions.
type subScore int

const (
	subInnerBelief subScore = iota
	subExpressedBelief
	subActionIntensity
)

func (s subScore) from(a *simulation.AnalysisScores) *float64 {
	switch s {
	case subInnerBelief:
		return a.InnerBelief
	case subExpressedBelief:
		return a.ExpressedBelief
	default:
		return a.ActionIntensity
	}
}

// averageSubScore averages one analysis dimension across all results that
// carry it, returning the contributing count.
func averageSubScore(results []simulation.AgentResult, dim subScore) (avg float64, n int) {
	sum := 0.0
	for _, r := range results {
		ft := r.FirstTurn()
		if ft == nil || ft.Analysis == nil {
			continue
		}
		if v := dim.from(ft.Analysis); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// buildNarratives renders the three analysis strings.  Each dimension prefers
// the averaged per-agent sub-score and falls back to the cluster average when
// no agent carried analysis data for it.
func buildNarratives(results []simulation.AgentResult, avgScore float64) Narratives {
	return Narratives{
		Belief:     renderNarrative("Inner belief", results, subInnerBelief, avgScore),
		Expression: renderNarrative("Expressed stance", results, subExpressedBelief, avgScore),
		Action:     renderNarrative("Action intensity", results, subActionIntensity, avgScore),
	}
}

func renderNarrative(label string, results []simulation.AgentResult, dim subScore, avgScore float64) string {
	avg, n := averageSubScore(results, dim)
	if n == 0 {
		return fmt.Sprintf("%s estimated at %.1f from the cluster stance average; no per-agent analysis data available.", label, avgScore)
	}
	return fmt.Sprintf("%s averages %.1f across analysis data from %d agents.", label, avg, n)
}
