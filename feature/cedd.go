package feature

import (
	"image"
	"math"

	"github.com/hupe1980/imgsim/distance"
)

// CEDD: a 24 color fuzzy histogram per texture class, six texture classes.
const (
	ceddTextures = 6
	ceddColors   = 24
	ceddLen      = ceddTextures * ceddColors
	ceddGrid     = 40

	ceddNonEdge     = 14.0
	ceddNonDirected = 0.68
	ceddDirected    = 0.98
)

// Texture classes in histogram order.
const (
	ceddClassNonEdge = iota
	ceddClassNonDirectional
	ceddClassHorizontal
	ceddClassVertical
	ceddClass45
	ceddClass135
)

// ceddClassOfFilter maps the rows of edgeFilters to texture classes.
var ceddClassOfFilter = [edgeTypes]int{
	ceddClassVertical,
	ceddClassHorizontal,
	ceddClass45,
	ceddClass135,
	ceddClassNonDirectional,
}

// ceddLevels are the normalized bin values of the eight quantization levels.
var ceddLevels = [8]float64{0, 0.0039, 0.0098, 0.0196, 0.0353, 0.0588, 0.0980, 0.1765}

// ceddHues are the centers, in degrees, of the chromatic hue sets.
var ceddHues = [7]float64{0, 30, 60, 120, 180, 240, 300}

func extractCEDD(img *image.NRGBA) ([]float64, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w < 2 || h < 2 {
		return nil, errTooSmall
	}
	gx := min(ceddGrid, w/2)
	gy := min(ceddGrid, h/2)

	var hist [ceddLen]float64
	for by := 0; by < gy; by++ {
		y0, y1 := by*h/gy, (by+1)*h/gy
		ym := (y0 + y1) / 2
		for bx := 0; bx < gx; bx++ {
			x0, x1 := bx*w/gx, (bx+1)*w/gx
			xm := (x0 + x1) / 2

			var luma [4]float64
			var rs, gs, bs float64
			for i, r := range [4]image.Rectangle{
				image.Rect(x0, y0, xm, ym),
				image.Rect(xm, y0, x1, ym),
				image.Rect(x0, ym, xm, y1),
				image.Rect(xm, ym, x1, y1),
			} {
				mr, mg, mb := meanRGB(img, r)
				luma[i] = 0.299*mr + 0.587*mg + 0.114*mb
				rs, gs, bs = rs+mr, gs+mg, bs+mb
			}

			classes := ceddTexture(luma)
			colors := ceddFuzzyColor(rs/4, gs/4, bs/4)
			for t, on := range classes {
				if !on {
					continue
				}
				for c, m := range colors {
					hist[t*ceddColors+c] += m
				}
			}
		}
	}

	var total float64
	for _, v := range hist {
		total += v
	}
	vec := make([]float64, ceddLen)
	if total == 0 {
		return vec, nil
	}
	for i, v := range hist {
		vec[i] = float64(nearestLevel(ceddLevels[:], v/total))
	}
	return vec, nil
}

// ceddTexture sets the texture classes of a block from the mean luminance of
// its four quadrants. A block can belong to several edge classes.
func ceddTexture(luma [4]float64) [ceddTextures]bool {
	var classes [ceddTextures]bool
	var resp [edgeTypes]float64
	var maxResp float64
	for t, f := range edgeFilters {
		resp[t] = math.Abs(f[0]*luma[0] + f[1]*luma[1] + f[2]*luma[2] + f[3]*luma[3])
		maxResp = math.Max(maxResp, resp[t])
	}
	if maxResp < ceddNonEdge {
		classes[ceddClassNonEdge] = true
		return classes
	}

	for t, r := range resp {
		class := ceddClassOfFilter[t]
		limit := ceddDirected
		if class == ceddClassNonDirectional {
			limit = ceddNonDirected
		}
		if r/maxResp > limit {
			classes[class] = true
		}
	}
	return classes
}

// ceddFuzzyColor returns the membership of an RGB color in the 24 color sets:
// black, grey and white, then dark, normal and light shades of seven hues.
// Memberships sum to 1.
func ceddFuzzyColor(r, g, b float64) [ceddColors]float64 {
	var out [ceddColors]float64
	hue, sat, val := hsv(r, g, b)

	chroma := ramp(sat, 40, 70)
	if achroma := 1 - chroma; achroma > 0 {
		black := 1 - ramp(val, 50, 90)
		white := ramp(val, 170, 210)
		out[0] = achroma * black
		out[1] = achroma * (1 - black - white)
		out[2] = achroma * white
	}
	if chroma == 0 {
		return out
	}

	light := ramp(val, 150, 215)
	dark := 1 - ramp(val, 85, 150)
	shades := [3]float64{dark, 1 - dark - light, light}

	for i, center := range ceddHues {
		next := ceddHues[(i+1)%len(ceddHues)]
		if next <= center {
			next += 360
		}
		h := hue
		if h < center {
			h += 360
		}
		if h >= next {
			continue
		}
		// Linear split between two adjacent hue centers.
		m := (h - center) / (next - center)
		for s, v := range shades {
			out[3+i*3+s] += chroma * (1 - m) * v
			out[3+((i+1)%len(ceddHues))*3+s] += chroma * m * v
		}
		break
	}
	return out
}

// ramp rises linearly from 0 at lo to 1 at hi.
func ramp(v, lo, hi float64) float64 {
	switch {
	case v <= lo:
		return 0
	case v >= hi:
		return 1
	default:
		return (v - lo) / (hi - lo)
	}
}

// hsv converts 8 bit RGB to hue in [0, 360) and saturation and value in [0, 255].
func hsv(r, g, b float64) (h, s, v float64) {
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	v = maxC
	if maxC == 0 {
		return 0, 0, 0
	}
	delta := maxC - minC
	s = delta / maxC * 255
	if delta == 0 {
		return 0, s, v
	}
	switch maxC {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

func meanRGB(img *image.NRGBA, r image.Rectangle) (float64, float64, float64) {
	if r.Empty() {
		return 0, 0, 0
	}
	var sr, sg, sb float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			pr, pg, pb := rgbAt(img, x, y)
			sr, sg, sb = sr+float64(pr), sg+float64(pg), sb+float64(pb)
		}
	}
	n := float64(r.Dx() * r.Dy())
	return sr / n, sg / n, sb / n
}

func ceddDistance(a, b []float64) float64 {
	return distance.Tanimoto(a, b)
}
