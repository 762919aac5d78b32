// Package geometry normalizes GeoJSON input from a local path or URL into a
// single polygon and its bounding box.
package geometry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var (
	// ErrInvalidGeometry means the input was not well-formed GeoJSON or did
	// not contain a polygon. Extraction must not proceed.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrSourceUnreachable means the geometry file itself could not be
	// fetched or read.
	ErrSourceUnreachable = errors.New("geometry source unreachable")
)

// Resolved is a normalized area of interest: always a single polygon in
// EPSG:4326, immutable for the rest of the invocation.
type Resolved struct {
	Polygon orb.Polygon
	Bound   orb.Bound

	// Warnings records non-fatal normalization decisions, e.g. discarding
	// all but the first feature of a collection. Silently dropping features
	// is a latent correctness risk, so the caller gets told.
	Warnings []string
}

// IsRemote reports whether source names a remote resource. Only an explicit
// http or https scheme with a host qualifies; a local path that merely
// contains "http" in its name is a file.
func IsRemote(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Load fetches the GeoJSON content at source (path or URL) and resolves it.
func Load(source string, client *http.Client) (*Resolved, error) {
	if client == nil {
		client = http.DefaultClient
	}

	var raw []byte
	if IsRemote(source) {
		resp, err := client.Get(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnreachable, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %s returned status %d", ErrSourceUnreachable, source, resp.StatusCode)
		}
		raw, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnreachable, err)
		}
	} else {
		var err error
		raw, err = os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnreachable, err)
		}
	}

	return Resolve(raw)
}

// Resolve normalizes raw GeoJSON content into a single polygon. Feature
// wrappers are unwrapped; a FeatureCollection selects its first feature and
// surfaces a warning when more are present.
func Resolve(raw []byte) (*Resolved, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}

	var warnings []string
	var geom orb.Geometry

	switch probe.Type {
	case "Feature":
		feat, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		geom = feat.Geometry
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		if len(fc.Features) == 0 {
			return nil, fmt.Errorf("%w: feature collection is empty", ErrInvalidGeometry)
		}
		if len(fc.Features) > 1 {
			warnings = append(warnings, fmt.Sprintf("found %d features, using feature #1", len(fc.Features)))
		}
		geom = fc.Features[0].Geometry
	case "Polygon", "MultiPolygon":
		g, err := geojson.UnmarshalGeometry(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		geom = g.Coordinates
	default:
		return nil, fmt.Errorf("%w: unsupported GeoJSON type %q", ErrInvalidGeometry, probe.Type)
	}

	var polygon orb.Polygon
	switch g := geom.(type) {
	case orb.Polygon:
		polygon = g
	case orb.MultiPolygon:
		if len(g) == 0 {
			return nil, fmt.Errorf("%w: empty multipolygon", ErrInvalidGeometry)
		}
		if len(g) > 1 {
			warnings = append(warnings, fmt.Sprintf("multipolygon with %d polygons, using polygon #1", len(g)))
		}
		polygon = g[0]
	default:
		return nil, fmt.Errorf("%w: geometry type %s is not a polygon", ErrInvalidGeometry, geom.GeoJSONType())
	}

	if len(polygon) == 0 || len(polygon[0]) < 4 {
		return nil, fmt.Errorf("%w: polygon ring is degenerate", ErrInvalidGeometry)
	}

	return &Resolved{
		Polygon:  polygon,
		Bound:    polygon.Bound(),
		Warnings: warnings,
	}, nil
}
