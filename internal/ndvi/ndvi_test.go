package ndvi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdeo/ndvicalc/internal/raster"
)

func filledBand(width, height int, v float64) *raster.Band {
	b := raster.NewBand(width, height, raster.FromOrigin(0, float64(height*10), 10, 10))
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			b.Set(col, row, v)
		}
	}
	return b
}

func TestPixel(t *testing.T) {
	assert.InDelta(t, 0.13513513513513514, Pixel(42.0, 32.0), 1e-7)
	assert.Equal(t, 1.0, Pixel(5, 0))
	assert.Equal(t, -1.0, Pixel(0, 5))
	assert.False(t, math.IsInf(Pixel(42.0, 32.0), 0))
}

func TestComputeUniform(t *testing.T) {
	nir := filledBand(8, 6, 80)
	red := filledBand(8, 6, 40)

	res, err := Compute(nir, red)
	require.NoError(t, err)

	assert.Equal(t, 48, res.ValidCount)
	assert.InDelta(t, 1.0/3.0, res.Mean, 1e-12)
	assert.InDelta(t, 1.0/3.0, res.Min, 1e-12)
	assert.InDelta(t, 1.0/3.0, res.Max, 1e-12)
	assert.InDelta(t, 0.0, res.Std, 1e-12)
}

func TestComputeStatisticsOrdering(t *testing.T) {
	nir := filledBand(3, 1, 0)
	red := filledBand(3, 1, 0)
	// Three pixels with distinct indexes: 1/3, 0.6, -0.2.
	nir.Set(0, 0, 80)
	red.Set(0, 0, 40)
	nir.Set(1, 0, 80)
	red.Set(1, 0, 20)
	nir.Set(2, 0, 40)
	red.Set(2, 0, 60)

	res, err := Compute(nir, red)
	require.NoError(t, err)

	assert.Equal(t, 3, res.ValidCount)
	assert.InDelta(t, -0.2, res.Min, 1e-12)
	assert.InDelta(t, 0.6, res.Max, 1e-12)
	assert.LessOrEqual(t, res.Min, res.Mean)
	assert.LessOrEqual(t, res.Mean, res.Max)
	assert.GreaterOrEqual(t, res.Std, 0.0)

	mean := (1.0/3.0 + 0.6 - 0.2) / 3.0
	assert.InDelta(t, mean, res.Mean, 1e-12)
}

func TestComputeBounded(t *testing.T) {
	// For any non-negative reflectance pair the index stays in [-1, 1].
	nir := raster.NewBand(10, 10, raster.Affine{})
	red := raster.NewBand(10, 10, raster.Affine{})
	for row := 0; row < 10; row++ {
		for col := 0; col < 10; col++ {
			nir.Set(col, row, float64(col*137%997))
			red.Set(col, row, float64(row*251%883))
		}
	}

	res, err := Compute(nir, red)
	require.NoError(t, err)

	for i, v := range res.Band.Data {
		if !res.Band.Valid[i] {
			continue
		}
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.GreaterOrEqual(t, res.Min, -1.0)
	assert.LessOrEqual(t, res.Max, 1.0)
}

func TestComputeZeroDenominatorExcluded(t *testing.T) {
	nir := filledBand(2, 1, 80)
	red := filledBand(2, 1, 40)
	// Second pixel: nir+red == 0, a non-finite index that must not leak
	// into the statistics or the valid mask.
	nir.Set(1, 0, 0)
	red.Set(1, 0, 0)

	res, err := Compute(nir, red)
	require.NoError(t, err)

	assert.Equal(t, 1, res.ValidCount)
	assert.False(t, res.Band.Valid[1])
	assert.InDelta(t, 1.0/3.0, res.Mean, 1e-12)
}

func TestComputeInvalidInputsExcluded(t *testing.T) {
	nir := filledBand(2, 2, 80)
	red := filledBand(2, 2, 40)
	nir.Valid[0] = false
	red.Valid[3] = false

	res, err := Compute(nir, red)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ValidCount, "a cell invalid in either band is invalid in the index")
}

func TestComputeMisalignment(t *testing.T) {
	nir := filledBand(4, 3, 80)
	red := filledBand(3, 4, 40)

	_, err := Compute(nir, red)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBandMisalignment)
}

func TestComputeNoValidPixels(t *testing.T) {
	nir := raster.NewBand(4, 3, raster.Affine{})
	red := raster.NewBand(4, 3, raster.Affine{})

	_, err := Compute(nir, red)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoValidPixels)
}
