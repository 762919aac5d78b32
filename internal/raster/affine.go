package raster

import (
	"fmt"
	"math"
)

// Affine is a GDAL-style geotransform, the six coefficients mapping a pixel
// (col, row) to world coordinates in the raster's CRS:
//
//	x = a[0] + col*a[1] + row*a[2]
//	y = a[3] + col*a[4] + row*a[5]
//
// a[0], a[3] is the world position of the upper-left corner of pixel (0, 0).
type Affine [6]float64

// FromOrigin builds a north-up transform anchored at the given upper-left
// corner with the given per-pixel resolution.
func FromOrigin(west, north, xRes, yRes float64) Affine {
	return Affine{west, xRes, 0, north, 0, -yRes}
}

// Apply maps fractional pixel coordinates to world coordinates.
func (a Affine) Apply(col, row float64) (x, y float64) {
	x = a[0] + col*a[1] + row*a[2]
	y = a[3] + col*a[4] + row*a[5]
	return x, y
}

// PixelAt maps world coordinates to the integer pixel containing them.
// Only north-up grids are supported; a rotated or skewed transform is an
// error, as is a degenerate resolution.
func (a Affine) PixelAt(x, y float64) (col, row int, err error) {
	if a[2] != 0 || a[4] != 0 {
		return 0, 0, fmt.Errorf("rotated or skewed geotransform not supported (a[2]=%g, a[4]=%g)", a[2], a[4])
	}
	if a[1] == 0 || a[5] == 0 {
		return 0, 0, fmt.Errorf("degenerate geotransform: pixel size is zero (a[1]=%g, a[5]=%g)", a[1], a[5])
	}
	col = int(math.Floor((x - a[0]) / a[1]))
	row = int(math.Floor((y - a[3]) / a[5]))
	return col, row, nil
}
