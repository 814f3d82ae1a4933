package search

import "math"

// Score weights. Skill coverage and semantic relevance each contribute
// up to 50 points, so finalScore never exceeds 100.
const (
	maxSkillScore      = 50.0
	maxSemanticScore   = 50.0
	semanticMultiplier = 1500.0
)

// SkillScore returns the coverage ratio and skill score for a candidate
// matching matched of total query skills.
func SkillScore(matched, total int) (coverage, score float64) {
	if total <= 0 {
		return 0, 0
	}
	coverage = float64(matched) / float64(total)
	return coverage, coverage * maxSkillScore
}

// SemanticScore scales an RRF score into [0, 50]. RRF values are tiny
// (at most 2/(k+1) across two lists), so the multiplier stretches them
// into a useful range before capping.
func SemanticScore(rrf float64) float64 {
	return math.Min(rrf*semanticMultiplier, maxSemanticScore)
}

// Display rounding: coverage to 2 decimals, RRF to 4, scores to 1.

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
