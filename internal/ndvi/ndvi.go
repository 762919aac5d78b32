// Package ndvi combines two aligned reflectance bands into the normalized
// difference vegetation index and its summary statistics.
package ndvi

import (
	"errors"
	"fmt"
	"math"

	"github.com/verdeo/ndvicalc/internal/raster"
)

var (
	// ErrBandMisalignment means the two bands do not cover an identical pixel
	// grid. The bands come from independently fetched and reprojected
	// sources, so this is checked, never assumed.
	ErrBandMisalignment = errors.New("nir and red bands are misaligned")

	// ErrNoValidPixels means no finite, in-polygon cell survived masking, so
	// no statistic can be computed.
	ErrNoValidPixels = errors.New("no valid pixels in masked region")
)

// Result is the per-pixel index grid plus statistics over its valid cells.
type Result struct {
	Band       *raster.Band
	ValidCount int
	Mean       float64
	Min        float64
	Max        float64
	Std        float64
}

// Pixel computes the index for a single nir/red pair:
// (nir-red)/(nir+red). A zero denominator yields a non-finite value; callers
// must treat that as missing, never as zero.
func Pixel(nir, red float64) float64 {
	return (nir - red) / (nir + red)
}

// Compute applies the index element-wise over the two bands and derives
// mean, min, max and standard deviation over the finite, valid cells only.
// Cells invalid in either input, or whose denominator is zero, are excluded
// from both the output mask and the statistics.
func Compute(nir, red *raster.Band) (*Result, error) {
	if !nir.SameShape(red) {
		return nil, fmt.Errorf("%w: nir %dx%d vs red %dx%d",
			ErrBandMisalignment, nir.Width, nir.Height, red.Width, red.Height)
	}

	out := raster.NewBand(nir.Width, nir.Height, nir.Transform)

	sum := 0.0
	count := 0
	min, max := math.Inf(1), math.Inf(-1)
	for i := range nir.Data {
		if !nir.Valid[i] || !red.Valid[i] {
			continue
		}
		v := Pixel(nir.Data[i], red.Data[i])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out.Data[i] = v
		out.Valid[i] = true
		sum += v
		count++
		min = math.Min(min, v)
		max = math.Max(max, v)
	}

	if count == 0 {
		return nil, ErrNoValidPixels
	}

	mean := sum / float64(count)

	// Second pass for the variance keeps the accumulation centered.
	sqSum := 0.0
	for i := range out.Data {
		if out.Valid[i] {
			d := out.Data[i] - mean
			sqSum += d * d
		}
	}
	std := math.Sqrt(sqSum / float64(count))

	return &Result{
		Band:       out,
		ValidCount: count,
		Mean:       mean,
		Min:        min,
		Max:        max,
		Std:        std,
	}, nil
}
