package extract

import (
	"fmt"
	"math"

	"github.com/verdeo/ndvicalc/internal/raster"
)

// geographicFit computes the destination transform for warping a native-CRS
// subset into EPSG:4326: the subset's corner bounding box is transformed to
// lon/lat and the pixel grid dimensions are preserved, so the destination
// resolution auto-fits the geographic extent of the window.
func geographicFit(proj Projection, ulX, ulY, lrX, lrY float64, width, height int) (raster.Affine, error) {
	xs := []float64{ulX, lrX, ulX, lrX}
	ys := []float64{ulY, ulY, lrY, lrY}
	if err := proj.Inverse(xs, ys); err != nil {
		return raster.Affine{}, err
	}

	minLon, maxLon := math.Inf(1), math.Inf(-1)
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	for i := range xs {
		minLon = math.Min(minLon, xs[i])
		maxLon = math.Max(maxLon, xs[i])
		minLat = math.Min(minLat, ys[i])
		maxLat = math.Max(maxLat, ys[i])
	}

	if maxLon <= minLon || maxLat <= minLat {
		return raster.Affine{}, fmt.Errorf("%w: degenerate geographic extent", ErrEmptyExtraction)
	}

	xRes := (maxLon - minLon) / float64(width)
	yRes := (maxLat - minLat) / float64(height)
	return raster.FromOrigin(minLon, maxLat, xRes, yRes), nil
}

// reprojectToGeographic warps a native-CRS subset into EPSG:4326 using
// nearest-neighbor resampling. The index arithmetic downstream is
// order-preserving per pixel, so higher-order resampling would only blur the
// band alignment. Destination cells falling outside the subset, or sampling
// the nodata marker, are left invalid.
func reprojectToGeographic(subset []float64, width, height int, subsetTransform raster.Affine,
	proj Projection, ulX, ulY, lrX, lrY float64, nodata float64, hasNodata bool) (*raster.Band, error) {

	dstTransform, err := geographicFit(proj, ulX, ulY, lrX, lrY, width, height)
	if err != nil {
		return nil, err
	}

	dst := raster.NewBand(width, height, dstTransform)

	xs := make([]float64, width)
	ys := make([]float64, width)
	for row := 0; row < height; row++ {
		// Pixel centers of one destination row, then one batched transform
		// back into the native CRS.
		for col := 0; col < width; col++ {
			xs[col], ys[col] = dstTransform.Apply(float64(col)+0.5, float64(row)+0.5)
		}
		if err := proj.Forward(xs, ys); err != nil {
			return nil, err
		}

		for col := 0; col < width; col++ {
			srcCol, srcRow, err := subsetTransform.PixelAt(xs[col], ys[col])
			if err != nil {
				return nil, err
			}
			if srcCol < 0 || srcCol >= width || srcRow < 0 || srcRow >= height {
				continue
			}
			v := subset[srcRow*width+srcCol]
			if hasNodata && v == nodata {
				continue
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			dst.Set(col, row, v)
		}
	}

	return dst, nil
}
