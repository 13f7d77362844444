package feature

import (
	"image"
	"math"

	"github.com/hupe1980/imgsim/distance"
)

const (
	colorHistogramLen    = 64
	opponentHistogramLen = 64
)

func extractSimpleColorHistogram(img *image.NRGBA) ([]float64, error) {
	hist := make([]float64, colorHistogramLen)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := rgbAt(img, x, y)
			hist[rgbBin(r, g, b)]++
		}
	}
	normalizeToByte(hist)
	return hist, nil
}

func simpleColorHistogramDistance(a, b []float64) float64 {
	return distance.L1(a, b)
}

var (
	opponentMax1 = 255 / math.Sqrt2
	opponentMax2 = 510 / math.Sqrt(6)
	opponentMax3 = 765 / math.Sqrt(3)
)

func extractOpponentHistogram(img *image.NRGBA) ([]float64, error) {
	hist := make([]float64, opponentHistogramLen)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := rgbAt(img, x, y)
			fr, fg, fb := float64(r), float64(g), float64(b)
			o1 := (fr - fg) / math.Sqrt2
			o2 := (fr + fg - 2*fb) / math.Sqrt(6)
			o3 := (fr + fg + fb) / math.Sqrt(3)

			q1 := binOf(o1+opponentMax1, 2*opponentMax1, 4)
			q2 := binOf(o2+opponentMax2, 2*opponentMax2, 4)
			q3 := binOf(o3, opponentMax3, 4)
			hist[q1*16+q2*4+q3]++
		}
	}
	normalizeToByte(hist)
	return hist, nil
}

func opponentHistogramDistance(a, b []float64) float64 {
	return distance.JensenShannon(a, b)
}

func rgbBin(r, g, b int) int {
	return (r>>6)<<4 | (g>>6)<<2 | b>>6
}

// binOf maps v in [0, span] to one of n equal-width bins.
func binOf(v, span float64, n int) int {
	i := int(v / span * float64(n))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// normalizeToByte scales hist in place so its largest bin becomes 255.
func normalizeToByte(hist []float64) {
	var maxVal float64
	for _, v := range hist {
		maxVal = math.Max(maxVal, v)
	}
	for i, v := range hist {
		hist[i] = quantize(v, maxVal, 256)
	}
}
