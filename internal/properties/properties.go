// Package properties exposes the process configuration, all sourced from the
// environment. main loads a .env file before anything reads these.
package properties

import (
	"os"
	"strconv"
)

const (
	defaultStacAPI      = "https://earth-search.aws.element84.com/v0"
	defaultCollection   = "sentinel-s2-l2a-cogs"
	defaultCloudCover   = 20.0
	defaultLookbackDays = 90
)

func StacAPIURL() string {
	if v := os.Getenv("NDVICALC_STAC_API"); v != "" {
		return v
	}
	return defaultStacAPI
}

func Collection() string {
	if v := os.Getenv("NDVICALC_COLLECTION"); v != "" {
		return v
	}
	return defaultCollection
}

// MaxCloudCover is the scene cloud-cover ceiling in percent.
func MaxCloudCover() float64 {
	if v := os.Getenv("NDVICALC_MAX_CLOUD_COVER"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultCloudCover
}

// LookbackDays is the trailing search window for scene discovery.
func LookbackDays() int {
	if v := os.Getenv("NDVICALC_LOOKBACK_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultLookbackDays
}

// OAuth client credentials for STAC endpoints that require them. All three
// must be set for the authenticated transport to be used.
func OAuthClientID() string     { return os.Getenv("NDVICALC_OAUTH_CLIENT_ID") }
func OAuthClientSecret() string { return os.Getenv("NDVICALC_OAUTH_CLIENT_SECRET") }
func OAuthTokenURL() string     { return os.Getenv("NDVICALC_OAUTH_TOKEN_URL") }
