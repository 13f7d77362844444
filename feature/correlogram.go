package feature

import (
	"image"

	"github.com/hupe1980/imgsim/distance"
)

const (
	correlogramColors = 64
	correlogramLen    = correlogramColors * len(correlogramDistances)
)

var correlogramDistances = [...]int{1, 2, 3, 4}

// neighbor directions sampled at each distance.
var correlogramOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

func extractAutoColorCorrelogram(img *image.NRGBA) ([]float64, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()

	colors := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := rgbAt(img, x, y)
			colors[y*w+x] = uint8(rgbBin(r, g, b))
		}
	}

	var same, total [correlogramLen]float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := int(colors[y*w+x])
			for di, d := range correlogramDistances {
				slot := c*len(correlogramDistances) + di
				for _, o := range correlogramOffsets {
					nx, ny := x+o[0]*d, y+o[1]*d
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					total[slot]++
					if int(colors[ny*w+nx]) == c {
						same[slot]++
					}
				}
			}
		}
	}

	vec := make([]float64, correlogramLen)
	for i := range vec {
		if total[i] > 0 {
			// Rounded through float32 so the stored layout round trips exactly.
			vec[i] = float64(float32(same[i] / total[i]))
		}
	}
	return vec, nil
}

func correlogramDistance(a, b []float64) float64 {
	return distance.RelativeL1(a, b)
}
