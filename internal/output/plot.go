package output

import (
	"fmt"

	"github.com/fogleman/gg"

	"github.com/verdeo/ndvicalc/internal/raster"
)

// RenderPNG draws the index grid to a PNG with a diverging ramp: -1 deep
// blue through white at 0 to deep red at +1. Invalid cells render dark gray
// so holes in the mask stay visible.
func RenderPNG(band *raster.Band, path string) error {
	if band.Width <= 0 || band.Height <= 0 {
		return fmt.Errorf("cannot render empty band")
	}

	dc := gg.NewContext(band.Width, band.Height)
	for row := 0; row < band.Height; row++ {
		for col := 0; col < band.Width; col++ {
			v, ok := band.At(col, row)
			if !ok {
				dc.SetRGB(0.2, 0.2, 0.2)
			} else {
				r, g, b := divergingRamp(v)
				dc.SetRGB(r, g, b)
			}
			dc.SetPixel(col, row)
		}
	}

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

// divergingRamp maps [-1, 1] to blue/white/red. Values outside the range are
// clamped; the index is only bounded for physically valid reflectances.
func divergingRamp(v float64) (r, g, b float64) {
	if v < -1 {
		v = -1
	}
	if v > 1 {
		v = 1
	}
	if v < 0 {
		// blue to white
		t := v + 1
		return t, t, 1
	}
	// white to red
	t := 1 - v
	return 1, t, t
}
