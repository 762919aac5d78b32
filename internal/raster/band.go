package raster

// Band is a 2-D float64 grid with an explicit validity mask. Cells outside
// the masked polygon or carrying the source's nodata marker are invalid;
// invalid cells keep whatever value they had, the mask is authoritative.
type Band struct {
	Data      []float64 // row-major, len == Width*Height
	Valid     []bool
	Width     int
	Height    int
	Transform Affine
}

func NewBand(width, height int, transform Affine) *Band {
	return &Band{
		Data:      make([]float64, width*height),
		Valid:     make([]bool, width*height),
		Width:     width,
		Height:    height,
		Transform: transform,
	}
}

func (b *Band) index(col, row int) int { return row*b.Width + col }

// At returns the value at (col, row) and whether it is valid.
func (b *Band) At(col, row int) (float64, bool) {
	i := b.index(col, row)
	return b.Data[i], b.Valid[i]
}

// Set stores a valid value at (col, row).
func (b *Band) Set(col, row int, v float64) {
	i := b.index(col, row)
	b.Data[i] = v
	b.Valid[i] = true
}

// ValidCount returns the number of valid cells.
func (b *Band) ValidCount() int {
	n := 0
	for _, ok := range b.Valid {
		if ok {
			n++
		}
	}
	return n
}

// SameShape reports whether the other band covers an identical pixel grid.
func (b *Band) SameShape(other *Band) bool {
	return b.Width == other.Width && b.Height == other.Height
}
