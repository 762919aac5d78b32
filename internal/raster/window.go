package raster

import "fmt"

// Window is an integer pixel rectangle inside a raster grid. Start bounds are
// inclusive, stop bounds exclusive.
type Window struct {
	RowStart int
	RowStop  int
	ColStart int
	ColStop  int
}

// WindowFromCorners builds a window from the pixel coordinates of the
// upper-left and lower-right corners of the requested area. The lower-right
// pixel is included.
func WindowFromCorners(ulCol, ulRow, lrCol, lrRow int) Window {
	return Window{
		RowStart: ulRow,
		RowStop:  lrRow + 1,
		ColStart: ulCol,
		ColStop:  lrCol + 1,
	}
}

func (w Window) Width() int  { return w.ColStop - w.ColStart }
func (w Window) Height() int { return w.RowStop - w.RowStart }

// Empty reports whether the window covers no pixels.
func (w Window) Empty() bool { return w.Width() <= 0 || w.Height() <= 0 }

func (w Window) String() string {
	return fmt.Sprintf("rows %d:%d cols %d:%d", w.RowStart, w.RowStop, w.ColStart, w.ColStop)
}
