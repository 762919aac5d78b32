package delivery

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdeo/ndvicalc/internal/catalog"
	"github.com/verdeo/ndvicalc/internal/extract"
	"github.com/verdeo/ndvicalc/internal/geometry"
	"github.com/verdeo/ndvicalc/internal/ndvi"
	"github.com/verdeo/ndvicalc/internal/raster"
)

// The stub rasters pretend their native CRS is already geographic: a 100x100
// grid at 10 units per pixel with origin (0, 1000).

type stubSource struct {
	value  float64
	nodata bool
}

func (s *stubSource) Transform() (raster.Affine, error) {
	return raster.FromOrigin(0, 1000, 10, 10), nil
}

func (s *stubSource) Size() (int, int) { return 100, 100 }

func (s *stubSource) NoData() (float64, bool) {
	if s.nodata {
		return s.value, true
	}
	return 0, false
}

func (s *stubSource) ReadWindow(w raster.Window) ([]float64, error) {
	buf := make([]float64, w.Width()*w.Height())
	for i := range buf {
		buf[i] = s.value
	}
	return buf, nil
}

type identityProjection struct{}

func (identityProjection) Forward(xs, ys []float64) error { return nil }
func (identityProjection) Inverse(xs, ys []float64) error { return nil }

type stubCatalog struct {
	scene *catalog.Scene
	err   error
}

func (s *stubCatalog) LatestScene(ctx context.Context, geom orb.Geometry) (*catalog.Scene, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.scene, nil
}

const aoiJSON = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"properties": {},
		"geometry": {
			"type": "Polygon",
			"coordinates": [[[120, 820], [280, 820], [280, 930], [120, 930], [120, 820]]]
		}
	}]
}`

func writeAOI(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aoi.geojson")
	require.NoError(t, os.WriteFile(path, []byte(aoiJSON), 0644))
	return path
}

func testPipeline(sources map[string]extract.Source) (*Pipeline, *atomic.Int32) {
	// The two band extractions run concurrently, so the close counter must
	// be atomic.
	var closes atomic.Int32
	return &Pipeline{
		Catalog: &stubCatalog{scene: &catalog.Scene{
			NIR:      "mem://nir",
			Red:      "mem://red",
			Datetime: "2021-08-10T10:26:09Z",
		}},
		Open: func(location string) (*BandHandle, error) {
			src, ok := sources[location]
			if !ok {
				return nil, os.ErrNotExist
			}
			return &BandHandle{
				Source:     src,
				Projection: identityProjection{},
				Close: func() error {
					closes.Add(1)
					return nil
				},
			}, nil
		},
	}, &closes
}

func TestRunEndToEnd(t *testing.T) {
	pipeline, closes := testPipeline(map[string]extract.Source{
		"mem://nir": &stubSource{value: 80},
		"mem://red": &stubSource{value: 40},
	})

	result, err := pipeline.Run(context.Background(), writeAOI(t), Options{Silent: true})
	require.NoError(t, err)

	assert.Equal(t, "2021-08-10T10:26:09Z", result.Scene.Datetime)
	assert.Greater(t, result.NDVI.ValidCount, 0)
	assert.InDelta(t, 1.0/3.0, result.NDVI.Mean, 1e-12)
	assert.LessOrEqual(t, result.NDVI.Min, result.NDVI.Mean)
	assert.LessOrEqual(t, result.NDVI.Mean, result.NDVI.Max)
	assert.GreaterOrEqual(t, result.NDVI.Std, 0.0)

	assert.Equal(t, int32(2), closes.Load(), "each band handle is released after its extraction")
}

func TestRunAllInvalidYieldsNoValidPixels(t *testing.T) {
	pipeline, _ := testPipeline(map[string]extract.Source{
		"mem://nir": &stubSource{value: -9999, nodata: true},
		"mem://red": &stubSource{value: -9999, nodata: true},
	})

	_, err := pipeline.Run(context.Background(), writeAOI(t), Options{Silent: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ndvi.ErrNoValidPixels)
}

func TestRunInvalidGeometry(t *testing.T) {
	pipeline, _ := testPipeline(nil)
	path := filepath.Join(t.TempDir(), "broken.geojson")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":`), 0644))

	_, err := pipeline.Run(context.Background(), path, Options{Silent: true})
	assert.ErrorIs(t, err, geometry.ErrInvalidGeometry)
}

func TestRunNoImagery(t *testing.T) {
	pipeline, _ := testPipeline(nil)
	pipeline.Catalog = &stubCatalog{err: catalog.ErrNoImageryFound}

	_, err := pipeline.Run(context.Background(), writeAOI(t), Options{Silent: true})
	assert.ErrorIs(t, err, catalog.ErrNoImageryFound)
}

func TestRunOpenFailureIsSourceUnavailable(t *testing.T) {
	pipeline, _ := testPipeline(map[string]extract.Source{})

	_, err := pipeline.Run(context.Background(), writeAOI(t), Options{Silent: true})
	assert.ErrorIs(t, err, extract.ErrSourceUnavailable)
}

func TestRunSurfacesMultiFeatureWarning(t *testing.T) {
	pipeline, _ := testPipeline(map[string]extract.Source{
		"mem://nir": &stubSource{value: 80},
		"mem://red": &stubSource{value: 40},
	})

	multi := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[120, 820], [280, 820], [280, 930], [120, 930], [120, 820]]]}},
			{"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 1], [0, 0]]]}}
		]
	}`
	path := filepath.Join(t.TempDir(), "multi.geojson")
	require.NoError(t, os.WriteFile(path, []byte(multi), 0644))

	result, err := pipeline.Run(context.Background(), path, Options{Silent: true})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "feature")
}
