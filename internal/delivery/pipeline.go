// Package delivery wires geometry resolution, scene discovery, band
// extraction and index computation into the single caller-visible operation.
package delivery

import (
	"context"
	"fmt"
	"net/http"

	"github.com/paulmach/orb"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/verdeo/ndvicalc/internal/catalog"
	"github.com/verdeo/ndvicalc/internal/extract"
	"github.com/verdeo/ndvicalc/internal/geometry"
	"github.com/verdeo/ndvicalc/internal/ndvi"
	"github.com/verdeo/ndvicalc/internal/raster"
)

// BandHandle is one opened raster band plus its coordinate transforms. Close
// releases both; a handle never outlives the extraction of its own band.
type BandHandle struct {
	Source     extract.Source
	Projection extract.Projection
	Close      func() error
}

// Opener opens one remote band by location.
type Opener func(location string) (*BandHandle, error)

// Options controls the caller-visible surface of one invocation.
type Options struct {
	// Silent suppresses the extraction progress bar.
	Silent bool
}

// Result carries everything a caller may want from one invocation. Fatal
// conditions never produce a partial Result.
type Result struct {
	Scene    *catalog.Scene
	NDVI     *ndvi.Result
	Warnings []string
}

// Pipeline composes the collaborators. The zero value is not usable; build
// one with New or wire stubs directly in tests.
type Pipeline struct {
	Catalog catalog.Searcher
	Open    Opener
	HTTP    *http.Client
}

// New wires the production pipeline: STAC discovery and GDAL-backed COG
// reads.
func New() *Pipeline {
	return &Pipeline{
		Catalog: catalog.NewClient(),
		Open:    openGodalBand,
		HTTP:    http.DefaultClient,
	}
}

func openGodalBand(location string) (*BandHandle, error) {
	src, err := raster.OpenBand(location)
	if err != nil {
		return nil, err
	}
	proj, err := src.Projection()
	if err != nil {
		src.Close()
		return nil, err
	}
	return &BandHandle{
		Source:     src,
		Projection: proj,
		Close: func() error {
			proj.Close()
			return src.Close()
		},
	}, nil
}

// Run resolves the geometry source, discovers the latest scene, extracts the
// NIR and RED bands and computes the index. The two band extractions are
// independent read-only fetches and run concurrently; they join before index
// computation starts.
func (p *Pipeline) Run(ctx context.Context, source string, opts Options) (*Result, error) {
	resolved, err := geometry.Load(source, p.HTTP)
	if err != nil {
		return nil, err
	}

	scene, err := p.Catalog.LatestScene(ctx, resolved.Polygon)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if !opts.Silent {
		bar = progressbar.Default(2, "extracting bands")
	}

	var nirBand, redBand *raster.Band
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		nirBand, err = p.extractBand(scene.NIR, resolved.Bound, resolved.Polygon, bar)
		return err
	})
	g.Go(func() error {
		var err error
		redBand, err = p.extractBand(scene.Red, resolved.Bound, resolved.Polygon, bar)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if bar != nil {
		bar.Finish()
	}

	index, err := ndvi.Compute(nirBand, redBand)
	if err != nil {
		return nil, err
	}

	return &Result{
		Scene:    scene,
		NDVI:     index,
		Warnings: resolved.Warnings,
	}, nil
}

func (p *Pipeline) extractBand(location string, bound orb.Bound, polygon orb.Polygon, bar *progressbar.ProgressBar) (*raster.Band, error) {
	handle, err := p.Open(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", extract.ErrSourceUnavailable, err)
	}
	defer handle.Close()

	band, err := extract.Extract(handle.Source, handle.Projection, bound, polygon)
	if err != nil {
		return nil, err
	}
	if bar != nil {
		bar.Add(1)
	}
	return band, nil
}
