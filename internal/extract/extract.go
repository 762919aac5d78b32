// Package extract resolves a geographic polygon into an exact pixel window of
// a remote raster band, fetches only that window, reprojects it to EPSG:4326
// and masks it to the polygon's exact shape.
package extract

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/verdeo/ndvicalc/internal/raster"
)

// Sentinel-2 bands 4 and 8 ship at 10 m ground resolution. This is a property
// of the sensor, not derived from the window.
const nativeResolution = 10.0

var (
	// ErrGeometryOutOfBounds means the area of interest lies partly or wholly
	// outside the raster's coverage. The caller must shrink the input; no read
	// has been attempted.
	ErrGeometryOutOfBounds = errors.New("geometry extends past the raster coverage")

	// ErrSourceUnavailable means the windowed read against the remote raster
	// failed. Retry policy, if any, belongs to the caller.
	ErrSourceUnavailable = errors.New("raster source unavailable")

	// ErrEmptyExtraction means the resolved window or the polygon crop covers
	// zero pixels.
	ErrEmptyExtraction = errors.New("extraction produced an empty window")
)

// Source is the capability surface the extractor needs from one raster band.
// *raster.GodalSource implements it; tests use deterministic stubs.
type Source interface {
	Transform() (raster.Affine, error)
	Size() (width, height int)
	NoData() (float64, bool)
	ReadWindow(w raster.Window) ([]float64, error)
}

// Projection converts coordinates between EPSG:4326 (x=lon, y=lat) and the
// band's native CRS, in place.
type Projection interface {
	Forward(xs, ys []float64) error
	Inverse(xs, ys []float64) error
}

// Extract maps bound into src's pixel grid, reads the covering window,
// reprojects it to EPSG:4326 and masks it to polygon. The returned band is
// cropped to the polygon's minimal enclosing extent, with cells outside the
// polygon or carrying nodata marked invalid.
func Extract(src Source, proj Projection, bound orb.Bound, polygon orb.Polygon) (*raster.Band, error) {
	// Transform the bbox's diagonal corners into the native CRS.
	xs := []float64{bound.Min[0], bound.Max[0]} // west, east
	ys := []float64{bound.Max[1], bound.Min[1]} // north, south
	if err := proj.Forward(xs, ys); err != nil {
		return nil, err
	}
	ulX, ulY := xs[0], ys[0]
	lrX, lrY := xs[1], ys[1]

	gt, err := src.Transform()
	if err != nil {
		return nil, err
	}
	ulCol, ulRow, err := gt.PixelAt(ulX, ulY)
	if err != nil {
		return nil, err
	}
	lrCol, lrRow, err := gt.PixelAt(lrX, lrY)
	if err != nil {
		return nil, err
	}

	// A negative pixel coordinate means the requested area starts before the
	// raster's origin. Abort before issuing any read.
	for _, px := range []int{ulRow, ulCol, lrRow, lrCol} {
		if px < 0 {
			return nil, fmt.Errorf("%w: window rows %d:%d cols %d:%d", ErrGeometryOutOfBounds, ulRow, lrRow, ulCol, lrCol)
		}
	}

	window := raster.WindowFromCorners(ulCol, ulRow, lrCol, lrRow)
	if window.Empty() {
		return nil, fmt.Errorf("%w: resolved window %s", ErrEmptyExtraction, window)
	}

	subset, err := src.ReadWindow(window)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	// Synthetic transform for the subset, anchored at the transformed
	// north-west corner at the sensor's fixed resolution.
	subsetTransform := raster.FromOrigin(ulX, ulY, nativeResolution, nativeResolution)

	nodata, hasNodata := src.NoData()
	warped, err := reprojectToGeographic(subset, window.Width(), window.Height(),
		subsetTransform, proj, ulX, ulY, lrX, lrY, nodata, hasNodata)
	if err != nil {
		return nil, err
	}

	masked, err := maskToPolygon(warped, polygon)
	if err != nil {
		return nil, err
	}
	return masked, nil
}
