package opinionspace

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestBridgeCountAndUniquePairs(t *testing.T) {
	var clusters []ClusterSummary
	for i := 0; i < 5; i++ {
		clusters = append(clusters, summary(fmt.Sprintf("c%d", i), float64(i*20), "hope"))
	}

	bridges := AnalyzeBridges(clusters)
	if want := 5 * 4 / 2; len(bridges) != want {
		t.Fatalf("expected %d bridges, got %d", want, len(bridges))
	}

	seen := make(map[string]struct{})
	for _, b := range bridges {
		key := b.SourceID + "|" + b.TargetID
		if _, dup := seen[key]; dup {
			t.Errorf("duplicate pair %s", key)
		}
		seen[key] = struct{}{}
		if b.SourceID >= b.TargetID {
			t.Errorf("source should precede target in generation order: %s → %s", b.SourceID, b.TargetID)
		}
	}
}

func TestBridgesSortedByStrengthDescending(t *testing.T) {
	clusters := []ClusterSummary{
		summary("a", 10, "anger", "taxes"),
		summary("b", 90, "hope", "growth"),
		summary("c", 12, "anger", "taxes"),
	}
	bridges := AnalyzeBridges(clusters)
	for i := 1; i < len(bridges); i++ {
		if bridges[i].Strength > bridges[i-1].Strength {
			t.Errorf("bridges out of order at %d: %v after %v", i, bridges[i].Strength, bridges[i-1].Strength)
		}
	}
	// a and c are nearly identical; that pair must rank first.
	if bridges[0].SourceID != "a" || bridges[0].TargetID != "c" {
		t.Errorf("strongest bridge should be a-c, got %s-%s", bridges[0].SourceID, bridges[0].TargetID)
	}
}

func TestBridgeClassificationBoundaries(t *testing.T) {
	cases := []struct {
		strength float64
		want     BridgeType
	}{
		{0.6, BridgeStrong},
		{0.599999, BridgeModerate},
		{0.4, BridgeModerate},
		{0.399999, BridgeWeak},
		{1.0, BridgeStrong},
		{0.0, BridgeWeak},
	}
	for _, tc := range cases {
		if got := classifyBridge(tc.strength); got != tc.want {
			t.Errorf("classifyBridge(%v) = %s, want %s", tc.strength, got, tc.want)
		}
	}
}

func TestBridgeAlignedClusters(t *testing.T) {
	// Identical stance, keywords, and emotion: strength clamps to 1.
	a := ClusterSummary{ID: "a", AvgScore: 60, DominantEmotion: "hope", Keywords: []string{"tax", "jobs"}}
	b := ClusterSummary{ID: "b", AvgScore: 60, DominantEmotion: "hope", Keywords: []string{"tax", "jobs"}}

	bridges := AnalyzeBridges([]ClusterSummary{a, b})
	if len(bridges) != 1 {
		t.Fatalf("expected 1 bridge, got %d", len(bridges))
	}
	br := bridges[0]
	if math.Abs(br.Strength-1) > eps {
		t.Errorf("strength = %v, want 1", br.Strength)
	}
	if br.BridgeType != BridgeStrong {
		t.Errorf("bridgeType = %s, want strong", br.BridgeType)
	}
	if len(br.SharedKeywords) != 2 {
		t.Errorf("sharedKeywords = %v, want both", br.SharedKeywords)
	}
	if len(br.SharedEmotions) != 1 || br.SharedEmotions[0] != "hope" {
		t.Errorf("sharedEmotions = %v, want [hope]", br.SharedEmotions)
	}
	if br.ScoreDifference != 0 {
		t.Errorf("scoreDifference = %v, want 0", br.ScoreDifference)
	}
}

func TestBridgeOpposedClusters(t *testing.T) {
	a := summary("a", 10, "anger", "taxes")
	b := summary("b", 90, "hope", "growth")

	br := AnalyzeBridges([]ClusterSummary{a, b})[0]
	if br.Strength != 0 {
		t.Errorf("strength = %v, want clamp to 0", br.Strength)
	}
	if br.BridgeType != BridgeWeak {
		t.Errorf("bridgeType = %s, want weak", br.BridgeType)
	}
	if br.ScoreDifference != 80 {
		t.Errorf("scoreDifference = %v, want 80", br.ScoreDifference)
	}
	if len(br.SharedKeywords) != 0 || len(br.SharedEmotions) != 0 {
		t.Errorf("opposed clusters share nothing: %+v", br)
	}
}

func TestPersuasionVectorSharedConcerns(t *testing.T) {
	text := persuasionVector([]string{"wages", "rents", "prices", "debt"}, nil, 50)
	if !strings.Contains(text, "wages, rents, prices") {
		t.Errorf("should name at most three shared concerns: %q", text)
	}
	if strings.Contains(text, "debt") {
		t.Errorf("fourth keyword must not be named: %q", text)
	}
	if !strings.Contains(text, "significant stance gap") {
		t.Errorf("gap over 40 should produce the gap sentence: %q", text)
	}
}

func TestPersuasionVectorCommonGround(t *testing.T) {
	text := persuasionVector(nil, []string{"hope"}, 5)
	if !strings.Contains(text, "common ground") {
		t.Errorf("gap under 20 should produce the common-ground sentence: %q", text)
	}
	if !strings.Contains(text, `"hope"`) {
		t.Errorf("shared emotion should be named: %q", text)
	}
	if !strings.Contains(text, "Emotional resonance") {
		t.Errorf("shared emotion should invoke emotional resonance: %q", text)
	}
}

func TestPersuasionVectorFallback(t *testing.T) {
	// No shared keywords, a mid-range gap, no shared emotion: generic advice.
	text := persuasionVector(nil, nil, 30)
	if !strings.Contains(text, "dialogue") || !strings.Contains(text, "understanding") {
		t.Errorf("expected the generic fallback sentence, got %q", text)
	}
}

func TestSharedKeywordsPreserveRankOrder(t *testing.T) {
	got := sharedKeywords([]string{"first", "second", "third"}, []string{"third", "first"})
	if len(got) != 2 || got[0] != "first" || got[1] != "third" {
		t.Errorf("intersection should keep the source ranking: %v", got)
	}
}
