package raster

import (
	"fmt"
	"strings"
	"sync"

	"github.com/airbusgeo/godal"
)

var registerDrivers sync.Once

// GodalSource reads a single band of a (possibly remote) cloud-optimized
// GeoTIFF through GDAL. Remote locations go through /vsicurl/ so only the
// byte ranges covering a requested window are fetched.
type GodalSource struct {
	ds   *godal.Dataset
	band godal.Band
}

// OpenBand opens the first band at the given location. http(s) URLs are
// opened via the GDAL virtual curl filesystem.
func OpenBand(location string) (*GodalSource, error) {
	registerDrivers.Do(godal.RegisterAll)

	name := location
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		name = "/vsicurl/" + location
	}

	ds, err := godal.Open(name, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal: %s", msg)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to open raster %s: %w", location, err)
	}

	bands := ds.Bands()
	if len(bands) == 0 {
		ds.Close()
		return nil, fmt.Errorf("raster %s has no bands", location)
	}

	return &GodalSource{ds: ds, band: bands[0]}, nil
}

// Transform returns the dataset geotransform.
func (s *GodalSource) Transform() (Affine, error) {
	gt, err := s.ds.GeoTransform()
	if err != nil {
		return Affine{}, fmt.Errorf("failed to get geotransform: %w", err)
	}
	return Affine(gt), nil
}

// Size returns the raster dimensions in pixels.
func (s *GodalSource) Size() (width, height int) {
	st := s.ds.Structure()
	return st.SizeX, st.SizeY
}

// NoData returns the band's nodata marker, if one is set.
func (s *GodalSource) NoData() (float64, bool) {
	return s.band.NoData()
}

// ReadWindow reads the pixels covered by w into a row-major float64 buffer.
// This is a partial read: only the bytes backing the window are fetched.
func (s *GodalSource) ReadWindow(w Window) ([]float64, error) {
	if w.Empty() {
		return nil, fmt.Errorf("cannot read empty window (%s)", w)
	}
	buf := make([]float64, w.Width()*w.Height())
	if err := s.band.Read(w.ColStart, w.RowStart, buf, w.Width(), w.Height()); err != nil {
		return nil, fmt.Errorf("failed to read window %s: %w", w, err)
	}
	return buf, nil
}

// Projection builds the coordinate transform pair between EPSG:4326 and the
// dataset's native CRS. The caller owns the returned projection and must
// close it.
func (s *GodalSource) Projection() (*GodalProjection, error) {
	native := s.ds.SpatialRef()
	if native == nil {
		return nil, fmt.Errorf("raster has no spatial reference")
	}

	wgs84, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		return nil, fmt.Errorf("failed to create EPSG:4326 spatial ref: %w", err)
	}

	fwd, err := godal.NewTransform(wgs84, native)
	if err != nil {
		wgs84.Close()
		return nil, fmt.Errorf("failed to create 4326->native transform: %w", err)
	}
	inv, err := godal.NewTransform(native, wgs84)
	if err != nil {
		fwd.Close()
		wgs84.Close()
		return nil, fmt.Errorf("failed to create native->4326 transform: %w", err)
	}

	return &GodalProjection{wgs84: wgs84, fwd: fwd, inv: inv}, nil
}

func (s *GodalSource) Close() error {
	return s.ds.Close()
}

// GodalProjection converts coordinates between EPSG:4326 (x=lon, y=lat) and a
// raster's native CRS, both directions, in place.
type GodalProjection struct {
	wgs84 *godal.SpatialRef
	fwd   *godal.Transform
	inv   *godal.Transform
}

// Forward transforms lon/lat coordinates into the native CRS.
func (p *GodalProjection) Forward(xs, ys []float64) error {
	if err := p.fwd.TransformEx(xs, ys, nil, nil); err != nil {
		return fmt.Errorf("transform to native CRS failed: %w", err)
	}
	return nil
}

// Inverse transforms native CRS coordinates into lon/lat.
func (p *GodalProjection) Inverse(xs, ys []float64) error {
	if err := p.inv.TransformEx(xs, ys, nil, nil); err != nil {
		return fmt.Errorf("transform to EPSG:4326 failed: %w", err)
	}
	return nil
}

func (p *GodalProjection) Close() error {
	p.fwd.Close()
	p.inv.Close()
	p.wgs84.Close()
	return nil
}
