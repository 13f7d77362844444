package feature

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/hupe1980/imgsim/distance"
)

const luminanceLayoutLen = layoutGrid * layoutGrid

func extractLuminanceLayout(img *image.NRGBA) ([]float64, error) {
	thumb := imaging.Resize(imaging.Grayscale(img), layoutGrid, layoutGrid, imaging.Box)
	vec := make([]float64, 0, luminanceLayoutLen)
	for y := 0; y < layoutGrid; y++ {
		for x := 0; x < layoutGrid; x++ {
			v, _, _ := rgbAt(thumb, x, y)
			vec = append(vec, float64(v))
		}
	}
	return vec, nil
}

func luminanceLayoutDistance(a, b []float64) float64 {
	return distance.L2(a, b)
}
