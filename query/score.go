package query

import "math"

// ScoreFromDistance maps a descriptor distance to a relevance score.
// The arithmetic runs in float32 so the breakpoint at d == 1 is evaluated on
// the same value that is returned.
func ScoreFromDistance(d float64, boost float32) float32 {
	dist := float32(d)
	var score float32
	if dist <= 1 {
		score = 2 - dist
	} else {
		score = 1 / dist
		// Distances beyond the float32 range still score above zero.
		if score == 0 {
			score = math.SmallestNonzeroFloat32
		}
	}
	return score * boost
}
