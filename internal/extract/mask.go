package extract

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/verdeo/ndvicalc/internal/raster"
)

// maskToPolygon crops the warped band to the polygon's minimal enclosing
// pixel extent and invalidates every cell whose center falls outside the
// polygon itself, not just its bounding box. Cells already invalid (nodata,
// outside the warp) stay invalid.
func maskToPolygon(warped *raster.Band, polygon orb.Polygon) (*raster.Band, error) {
	pb := polygon.Bound()
	t := warped.Transform

	ulCol, ulRow, err := t.PixelAt(pb.Min[0], pb.Max[1])
	if err != nil {
		return nil, err
	}
	lrCol, lrRow, err := t.PixelAt(pb.Max[0], pb.Min[1])
	if err != nil {
		return nil, err
	}

	ulCol = clamp(ulCol, 0, warped.Width-1)
	lrCol = clamp(lrCol, 0, warped.Width-1)
	ulRow = clamp(ulRow, 0, warped.Height-1)
	lrRow = clamp(lrRow, 0, warped.Height-1)

	width := lrCol - ulCol + 1
	height := lrRow - ulRow + 1
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: polygon crop covers no pixels", ErrEmptyExtraction)
	}

	originX, originY := t.Apply(float64(ulCol), float64(ulRow))
	cropped := raster.NewBand(width, height, raster.Affine{originX, t[1], 0, originY, 0, t[5]})

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			v, ok := warped.At(ulCol+col, ulRow+row)
			if !ok {
				continue
			}
			cx, cy := t.Apply(float64(ulCol+col)+0.5, float64(ulRow+row)+0.5)
			if !planar.PolygonContains(polygon, orb.Point{cx, cy}) {
				continue
			}
			cropped.Set(col, row, v)
		}
	}

	return cropped, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
