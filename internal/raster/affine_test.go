package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromOrigin(t *testing.T) {
	a := FromOrigin(399960, 5800020, 10, 10)

	x, y := a.Apply(0, 0)
	assert.Equal(t, 399960.0, x)
	assert.Equal(t, 5800020.0, y)

	// One pixel right moves east, one pixel down moves south.
	x, y = a.Apply(1, 1)
	assert.Equal(t, 399970.0, x)
	assert.Equal(t, 5800010.0, y)
}

func TestAffinePixelAt(t *testing.T) {
	a := FromOrigin(0, 1000, 10, 10)

	tests := []struct {
		name     string
		x, y     float64
		col, row int
	}{
		{"origin", 0, 1000, 0, 0},
		{"interior", 105, 955, 10, 4},
		{"pixel boundary", 100, 900, 10, 10},
		{"west of origin", -5, 1000, -1, 0},
		{"north of origin", 0, 1005, 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, row, err := a.PixelAt(tt.x, tt.y)
			require.NoError(t, err)
			assert.Equal(t, tt.col, col)
			assert.Equal(t, tt.row, row)
		})
	}
}

func TestAffinePixelAtRejectsRotation(t *testing.T) {
	rotated := Affine{0, 10, 2, 1000, 2, -10}
	_, _, err := rotated.PixelAt(50, 950)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rotated")
}

func TestAffinePixelAtRejectsZeroResolution(t *testing.T) {
	degenerate := Affine{0, 0, 0, 1000, 0, -10}
	_, _, err := degenerate.PixelAt(50, 950)
	require.Error(t, err)
}

func TestAffineRoundTrip(t *testing.T) {
	a := FromOrigin(399960, 5800020, 10, 10)

	// The world position of a pixel center maps back to the same pixel.
	for _, px := range [][2]int{{0, 0}, {17, 3}, {255, 511}} {
		x, y := a.Apply(float64(px[0])+0.5, float64(px[1])+0.5)
		col, row, err := a.PixelAt(x, y)
		require.NoError(t, err)
		assert.Equal(t, px[0], col)
		assert.Equal(t, px[1], row)
	}
}
