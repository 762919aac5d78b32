// Package catalog discovers the latest cloud-free Sentinel-2 scene
// intersecting a geometry through a STAC search endpoint and yields the COG
// locations of its NIR and RED bands.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/verdeo/ndvicalc/internal/properties"
)

// ErrNoImageryFound means discovery returned zero scenes for the geometry
// and time window.
var ErrNoImageryFound = errors.New("no imagery found for geometry")

// Scene locates the two band assets of one discovered scene.
type Scene struct {
	NIR      string
	Red      string
	Datetime string
}

// Searcher is the discovery capability consumed by the pipeline.
type Searcher interface {
	LatestScene(ctx context.Context, geom orb.Geometry) (*Scene, error)
}

// Client is a minimal STAC search client. It is not a general STAC
// implementation; it issues one intersects query and reads two assets back.
type Client struct {
	BaseURL       string
	HTTPClient    *http.Client
	Collection    string
	MaxCloudCover float64
	LookbackDays  int

	// Now is the clock used to anchor the trailing search window.
	Now func() time.Time
}

// NewClient builds a client from the process configuration. When OAuth
// client credentials are configured the HTTP transport fetches and refreshes
// tokens on its own.
func NewClient() *Client {
	httpClient := http.DefaultClient
	if properties.OAuthClientID() != "" && properties.OAuthClientSecret() != "" && properties.OAuthTokenURL() != "" {
		config := &clientcredentials.Config{
			ClientID:     properties.OAuthClientID(),
			ClientSecret: properties.OAuthClientSecret(),
			TokenURL:     properties.OAuthTokenURL(),
		}
		httpClient = config.Client(context.Background())
	}

	return &Client{
		BaseURL:       properties.StacAPIURL(),
		HTTPClient:    httpClient,
		Collection:    properties.Collection(),
		MaxCloudCover: properties.MaxCloudCover(),
		LookbackDays:  properties.LookbackDays(),
		Now:           time.Now,
	}
}

type searchResponse struct {
	Features []struct {
		Properties struct {
			Datetime string `json:"datetime"`
		} `json:"properties"`
		Assets map[string]struct {
			Href string `json:"href"`
		} `json:"assets"`
	} `json:"features"`
}

// LatestScene searches the trailing lookback window for scenes intersecting
// geom under the cloud-cover ceiling and returns the most recent one.
func (c *Client) LatestScene(ctx context.Context, geom orb.Geometry) (*Scene, error) {
	now := c.Now()
	from := now.AddDate(0, 0, -c.LookbackDays)

	payload := map[string]interface{}{
		"intersects":  geojson.NewGeometry(geom),
		"datetime":    fmt.Sprintf("%s/%s", from.Format("2006-01-02"), now.Format("2006-01-02")),
		"collections": []string{c.Collection},
		"query": map[string]interface{}{
			"eo:cloud_cover": map[string]float64{"lt": c.MaxCloudCover},
		},
		"sortby": []map[string]string{
			{"field": "properties.datetime", "direction": "desc"},
		},
		"limit": 1,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("catalog search returned status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	if len(result.Features) == 0 {
		return nil, ErrNoImageryFound
	}

	item := result.Features[0]
	nir, ok := item.Assets["nir"]
	if !ok {
		return nil, fmt.Errorf("%w: scene %s has no nir asset", ErrNoImageryFound, item.Properties.Datetime)
	}
	red, ok := item.Assets["red"]
	if !ok {
		return nil, fmt.Errorf("%w: scene %s has no red asset", ErrNoImageryFound, item.Properties.Datetime)
	}

	return &Scene{
		NIR:      nir.Href,
		Red:      red.Href,
		Datetime: item.Properties.Datetime,
	}, nil
}
