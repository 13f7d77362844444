package feature

import (
	"image"
	"math"
)

const (
	edgeTypes        = 5
	edgeSubImages    = 16
	edgeHistogramLen = edgeTypes * edgeSubImages
	edgeThreshold    = 11.0
	edgeTargetBlocks = 1100
	edgeGlobalWeight = 5.0
)

// edgeQuantTable maps quantized bin levels back to normalized bin values, one row per edge type.
var edgeQuantTable = [edgeTypes][8]float64{
	{0.010867, 0.057915, 0.099526, 0.144849, 0.195573, 0.260504, 0.358031, 0.530128},
	{0.012266, 0.069934, 0.125879, 0.182307, 0.243396, 0.314563, 0.411728, 0.564319},
	{0.004193, 0.025852, 0.046860, 0.068519, 0.093286, 0.123490, 0.161505, 0.228960},
	{0.004174, 0.025924, 0.046232, 0.067163, 0.089655, 0.115391, 0.151904, 0.217745},
	{0.006778, 0.051667, 0.108650, 0.166257, 0.224226, 0.285691, 0.356375, 0.450972},
}

// edgeFilters are applied to the mean luminance of the four sub-blocks
// (top-left, top-right, bottom-left, bottom-right) of an image block.
var edgeFilters = [edgeTypes][4]float64{
	{1, -1, 1, -1},                  // vertical
	{1, 1, -1, -1},                  // horizontal
	{math.Sqrt2, 0, 0, -math.Sqrt2}, // 45 degree
	{0, math.Sqrt2, -math.Sqrt2, 0}, // 135 degree
	{2, -2, -2, 2},                  // non-directional
}

func edgeBlockSize(w, h int) int {
	size := int(math.Sqrt(float64(w*h)/edgeTargetBlocks)/2) * 2
	if size < 2 {
		size = 2
	}
	return size
}

func extractEdgeHistogram(img *image.NRGBA) ([]float64, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	block := edgeBlockSize(w, h)
	if w < 4*block || h < 4*block {
		return nil, errTooSmall
	}

	var counts [edgeHistogramLen]float64
	var blocks [edgeSubImages]float64
	half := block / 2

	for y0 := 0; y0+block <= h; y0 += block {
		for x0 := 0; x0+block <= w; x0 += block {
			sub := (y0*4/h)*4 + x0*4/w

			var means [4]float64
			for i := range means {
				sx := x0 + (i%2)*half
				sy := y0 + (i/2)*half
				means[i] = meanLuma(img, sx, sy, half)
			}

			blocks[sub]++
			best, strength := -1, 0.0
			for t, f := range edgeFilters {
				s := math.Abs(f[0]*means[0] + f[1]*means[1] + f[2]*means[2] + f[3]*means[3])
				if s > strength {
					best, strength = t, s
				}
			}
			if best >= 0 && strength >= edgeThreshold {
				counts[sub*edgeTypes+best]++
			}
		}
	}

	vec := make([]float64, edgeHistogramLen)
	for i := range vec {
		sub, t := i/edgeTypes, i%edgeTypes
		var v float64
		if blocks[sub] > 0 {
			v = counts[i] / blocks[sub]
		}
		vec[i] = float64(nearestLevel(edgeQuantTable[t][:], v))
	}
	return vec, nil
}

func meanLuma(img *image.NRGBA, x0, y0, size int) float64 {
	var s float64
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			r, g, b := rgbAt(img, x, y)
			s += 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
		}
	}
	return s / float64(size*size)
}

func nearestLevel(levels []float64, v float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, l := range levels {
		if d := math.Abs(l - v); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func dequantizeEdges(q []float64) ([edgeHistogramLen]float64, [edgeTypes]float64) {
	var local [edgeHistogramLen]float64
	var global [edgeTypes]float64
	for i, v := range q {
		level := int(v)
		if level < 0 {
			level = 0
		}
		if level > 7 {
			level = 7
		}
		t := i % edgeTypes
		local[i] = edgeQuantTable[t][level]
		global[t] += local[i] / edgeSubImages
	}
	return local, global
}

func edgeHistogramDistance(a, b []float64) float64 {
	la, ga := dequantizeEdges(a)
	lb, gb := dequantizeEdges(b)
	var d float64
	for i := range la {
		d += math.Abs(la[i] - lb[i])
	}
	for i := range ga {
		d += edgeGlobalWeight * math.Abs(ga[i]-gb[i])
	}
	return d
}
