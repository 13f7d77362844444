package distance

import "math"

// L1 calculates the Manhattan distance between two vectors.
func L1(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

// SquaredL2 calculates the squared Euclidean distance between two vectors.
func SquaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// L2 calculates the Euclidean distance between two vectors.
func L2(a, b []float64) float64 {
	return math.Sqrt(SquaredL2(a, b))
}

// WeightedL2 calculates sqrt(sum(w[i] * (a[i]-b[i])^2)).
// Missing weights default to 1.
func WeightedL2(a, b, w []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		weight := 1.0
		if i < len(w) {
			weight = w[i]
		}
		sum += weight * d * d
	}
	return math.Sqrt(sum)
}

// RelativeL1 calculates sum(|a[i]-b[i]| / (1 + a[i] + b[i])).
// This is the d1 distance used for color correlograms; inputs must be non-negative.
func RelativeL1(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i]-b[i]) / (1 + (a[i] + b[i]))
	}
	return sum
}

// JensenShannon calculates the Jensen-Shannon divergence of two non-negative
// histograms. Both inputs are normalized to unit sum first.
// Two all-zero histograms are at distance 0; an all-zero histogram is at
// distance 1 (the maximum in base 2) from any non-empty one.
func JensenShannon(a, b []float64) float64 {
	sa, sb := sum(a), sum(b)
	switch {
	case sa == 0 && sb == 0:
		return 0
	case sa == 0 || sb == 0:
		return 1
	}

	var div float64
	for i := range a {
		p := a[i] / sa
		q := b[i] / sb
		m := (p + q) / 2
		// Pair the terms per bin: the result is bitwise symmetric in a and b.
		var tp, tq float64
		if p > 0 {
			tp = p * math.Log2(p/m)
		}
		if q > 0 {
			tq = q * math.Log2(q/m)
		}
		div += tp + tq
	}
	div /= 2
	// Rounding may produce a tiny negative value for near-identical inputs.
	if div < 0 {
		return 0
	}
	return div
}

// Tanimoto calculates 1 - a.b / (a.a + b.b - a.b).
// Two all-zero vectors are at distance 0.
func Tanimoto(a, b []float64) float64 {
	var ab, aa, bb float64
	for i := range a {
		ab += a[i] * b[i]
		aa += a[i] * a[i]
		bb += b[i] * b[i]
	}
	denom := aa + bb - ab
	if denom == 0 {
		return 0
	}
	d := 1 - ab/denom
	if d < 0 {
		return 0
	}
	return d
}

func sum(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}
