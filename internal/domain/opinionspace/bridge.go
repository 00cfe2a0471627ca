package opinionspace

import (
	"fmt"
	"sort"
	"strings"
)

// Bridge strength terms: a neutral base adjusted up by shared keywords and
// emotions, down by stance distance, clamped to [0,1].
const (
	bridgeBase          = 0.5
	keywordBonus        = 0.15
	emotionBonus        = 0.2
	strongThreshold     = 0.6
	moderateThreshold   = 0.4
	closeScoreGap       = 20.0
	significantScoreGap = 40.0

	// maxNamedKeywords caps how many shared concerns the persuasion text
	// names explicitly.
	maxNamedKeywords = 3
)

// AnalyzeBridges computes one OpinionBridge per unordered cluster pair,
// sorted descending by strength.  Pairs are generated in input cluster order
// (i before j), and the sort is stable so equal-strength bridges keep that
// order.
func AnalyzeBridges(clusters []ClusterSummary) []OpinionBridge {
	n := len(clusters)
	bridges := make([]OpinionBridge, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			bridges = append(bridges, buildBridge(&clusters[i], &clusters[j]))
		}
	}
	sort.SliceStable(bridges, func(a, b int) bool {
		return bridges[a].Strength > bridges[b].Strength
	})
	return bridges
}

func buildBridge(a, b *ClusterSummary) OpinionBridge {
	shared := sharedKeywords(a.Keywords, b.Keywords)

	var sharedEmotions []string
	if a.DominantEmotion == b.DominantEmotion && a.DominantEmotion != "" {
		sharedEmotions = []string{a.DominantEmotion}
	} else {
		sharedEmotions = []string{}
	}

	scoreDiff := a.AvgScore - b.AvgScore
	if scoreDiff < 0 {
		scoreDiff = -scoreDiff
	}

	strength := bridgeBase +
		keywordBonus*float64(len(shared)) +
		emotionBonus*float64(len(sharedEmotions)) -
		scoreDiff/100
	strength = clamp01(strength)

	return OpinionBridge{
		SourceID:         a.ID,
		TargetID:         b.ID,
		Strength:         strength,
		SharedKeywords:   shared,
		SharedEmotions:   sharedEmotions,
		ScoreDifference:  scoreDiff,
		BridgeType:       classifyBridge(strength),
		PersuasionVector: persuasionVector(shared, sharedEmotions, scoreDiff),
	}
}

// sharedKeywords returns the intersection, preserving the first list's
// frequency-rank order.
func sharedKeywords(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, k := range b {
		inB[k] = struct{}{}
	}
	shared := []string{}
	for _, k := range a {
		if _, ok := inB[k]; ok {
			shared = append(shared, k)
		}
	}
	return shared
}

// classifyBridge buckets strength into the three categorical bridge types.
func classifyBridge(strength float64) BridgeType {
	switch {
	case strength >= strongThreshold:
		return BridgeStrong
	case strength >= moderateThreshold:
		return BridgeModerate
	default:
		return BridgeWeak
	}
}

// persuasionVector renders deterministic natural-language guidance from the
// bridge facts.  Sentence order is fixed: shared concerns, stance distance,
// emotional resonance; a generic fallback covers the case where none apply.
func persuasionVector(shared, sharedEmotions []string, scoreDiff float64) string {
	var parts []string

	if len(shared) > 0 {
		named := shared
		if len(named) > maxNamedKeywords {
			named = named[:maxNamedKeywords]
		}
		parts = append(parts, fmt.Sprintf("Both groups voice shared concerns around %s.", strings.Join(named, ", ")))
	}

	if scoreDiff < closeScoreGap {
		parts = append(parts, "Their overall stances sit close together, so appeals to common ground carry well.")
	} else if scoreDiff > significantScoreGap {
		parts = append(parts, "A significant stance gap separates them; bridge it through shared emotions and values rather than positions.")
	}

	if len(sharedEmotions) > 0 {
		parts = append(parts, fmt.Sprintf("Emotional resonance around %q offers a natural opening.", sharedEmotions[0]))
	}

	if len(parts) == 0 {
		return "Build connection through sustained dialogue and mutual understanding."
	}
	return strings.Join(parts, " ")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
