package feature

import (
	"errors"
	"image"
	"math"

	"github.com/hupe1980/imgsim/distance"
)

const (
	colorLayoutY   = 21
	colorLayoutC   = 6
	colorLayoutLen = colorLayoutY + 2*colorLayoutC
	layoutGrid     = 8
)

var errTooSmall = errors.New("image smaller than descriptor grid")

// zigzag holds row*8+col positions of an 8x8 block in zigzag scan order.
var zigzag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

var (
	colorLayoutWeightsY  = []float64{2, 2, 2, 1, 1, 1}
	colorLayoutWeightsCb = []float64{2, 1, 1}
	colorLayoutWeightsCr = []float64{4, 2, 2}
)

var dctCos = func() [8][8]float64 {
	var t [8][8]float64
	for u := 0; u < 8; u++ {
		for x := 0; x < 8; x++ {
			t[u][x] = math.Cos(float64(2*x+1) * float64(u) * math.Pi / 16)
		}
	}
	return t
}()

func extractColorLayout(img *image.NRGBA) ([]float64, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w < layoutGrid || h < layoutGrid {
		return nil, errTooSmall
	}

	var y, cb, cr [64]float64
	for by := 0; by < layoutGrid; by++ {
		y0, y1 := by*h/layoutGrid, (by+1)*h/layoutGrid
		for bx := 0; bx < layoutGrid; bx++ {
			x0, x1 := bx*w/layoutGrid, (bx+1)*w/layoutGrid
			var sr, sg, sb float64
			for py := y0; py < y1; py++ {
				for px := x0; px < x1; px++ {
					r, g, b := rgbAt(img, px, py)
					sr += float64(r)
					sg += float64(g)
					sb += float64(b)
				}
			}
			n := float64((y1 - y0) * (x1 - x0))
			r, g, b := sr/n, sg/n, sb/n
			i := by*layoutGrid + bx
			y[i] = 0.299*r + 0.587*g + 0.114*b
			cb[i] = -0.169*r - 0.331*g + 0.5*b + 128
			cr[i] = 0.5*r - 0.419*g - 0.081*b + 128
		}
	}

	vec := make([]float64, 0, colorLayoutLen)
	vec = appendDCT(vec, &y, colorLayoutY)
	vec = appendDCT(vec, &cb, colorLayoutC)
	vec = appendDCT(vec, &cr, colorLayoutC)
	return vec, nil
}

// appendDCT transforms block and appends the first n zigzag coefficients quantized to 0..63.
func appendDCT(dst []float64, block *[64]float64, n int) []float64 {
	var coef [64]float64
	for v := 0; v < 8; v++ {
		for u := 0; u < 8; u++ {
			var s float64
			for yy := 0; yy < 8; yy++ {
				for xx := 0; xx < 8; xx++ {
					s += block[yy*8+xx] * dctCos[u][xx] * dctCos[v][yy]
				}
			}
			cu, cv := 1.0, 1.0
			if u == 0 {
				cu = 1 / math.Sqrt2
			}
			if v == 0 {
				cv = 1 / math.Sqrt2
			}
			coef[v*8+u] = 0.25 * cu * cv * s
		}
	}

	for i := 0; i < n; i++ {
		c := coef[zigzag[i]]
		if i == 0 {
			// DC is 8x the block mean.
			dst = append(dst, quantize(c, 8*255, 64))
			continue
		}
		// AC is compressed with a square root so small coefficients keep resolution.
		s := math.Copysign(math.Sqrt(math.Min(math.Abs(c), 1020)/1020), c)
		dst = append(dst, quantize(s+1, 2, 64))
	}
	return dst
}

func colorLayoutDistance(a, b []float64) float64 {
	y := distance.WeightedL2(a[:colorLayoutY], b[:colorLayoutY], colorLayoutWeightsY)
	o := colorLayoutY
	cb := distance.WeightedL2(a[o:o+colorLayoutC], b[o:o+colorLayoutC], colorLayoutWeightsCb)
	o += colorLayoutC
	cr := distance.WeightedL2(a[o:o+colorLayoutC], b[o:o+colorLayoutC], colorLayoutWeightsCr)
	return y + cb + cr
}
