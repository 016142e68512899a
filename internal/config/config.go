// Package config loads the JSON configuration file shared by the
// ingest, extract, prune, and registry command-line tools, with
// environment-variable overrides for secrets.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marcoculver/adsb-logger/pkg/geo"
)

// Config is the complete application configuration.
type Config struct {
	Snapshot SnapshotConfig `json:"snapshot"`
	Archive  ArchiveConfig  `json:"archive"`
	Registry RegistryConfig `json:"registry"`
	Route    RouteConfig    `json:"route"`
	Descent  DescentConfig  `json:"descent"`
}

// SnapshotConfig configures the Snapshot Fetcher (C2).
type SnapshotConfig struct {
	// URL is the upstream decoder's aircraft.json endpoint.
	URL string `json:"url"`

	// TimeoutSeconds bounds each fetch request.
	TimeoutSeconds float64 `json:"timeout_seconds"`

	// TickSeconds is the target poll period for the Pacer.
	TickSeconds float64 `json:"tick_seconds"`
}

// ArchiveConfig configures the Segment Writer/Store (C4/C5).
type ArchiveConfig struct {
	// OutDir is the archive root directory.
	OutDir string `json:"out_dir"`

	// FsyncEverySeconds bounds how often the active segment is flushed
	// and fsynced.
	FsyncEverySeconds float64 `json:"fsync_every_seconds"`

	// KeepDays is the default retention window for Prune.
	KeepDays int `json:"keep_days"`
}

// RegistryConfig configures the Callsign Registry (C10).
type RegistryConfig struct {
	// Path is the sqlite database file, default "./archive/callsigns.db"
	// inside the default archive directory.
	Path string `json:"path"`
}

// RouteConfig configures the Route Lookup Client (C11).
type RouteConfig struct {
	// APIToken is the FlightRadar24 bearer token.
	// ADSB_LOGGER_ROUTE_API_TOKEN, when set, overrides this field.
	APIToken string `json:"api_token,omitempty"`

	// BaseURL defaults to https://fr24api.flightradar24.com/api.
	BaseURL string `json:"base_url"`

	// MinRequestIntervalSeconds is the per-caller minimum delay between
	// requests, default 1.0.
	MinRequestIntervalSeconds float64 `json:"min_request_interval_seconds"`
}

// DescentConfig exposes the descent-analytics heuristics as
// configuration per the spec's open question on these constants.
type DescentConfig struct {
	TMALatitude            float64 `json:"tma_latitude"`
	TMALongitude           float64 `json:"tma_longitude"`
	TMARadiusNM            float64 `json:"tma_radius_nm"`
	EnterAltitudeCeilingFt float64 `json:"enter_altitude_ceiling_ft"`
	EnterAltitudeFloorFt   float64 `json:"enter_altitude_floor_ft"`
	BaroRateThresholdFPM   float64 `json:"baro_rate_threshold_fpm"`
}

// TMACenter converts the configured TMA point into a geo.Point.
func (d DescentConfig) TMACenter() geo.Point {
	return geo.Point{Lat: d.TMALatitude, Lon: d.TMALongitude}
}

// Load reads configuration from a JSON file. If the file doesn't exist,
// returns the default configuration rather than erroring -- every
// command-line tool is usable with zero setup.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvironmentOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()
	return cfg, nil
}

// Save writes the configuration to a JSON file, creating its directory
// if missing.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns a configuration with every spec-mandated default.
func DefaultConfig() *Config {
	return &Config{
		Snapshot: SnapshotConfig{
			URL:            "http://127.0.0.1:8080/data/aircraft.json",
			TimeoutSeconds: 2.0,
			TickSeconds:    1.0,
		},
		Archive: ArchiveConfig{
			OutDir:            "./archive",
			FsyncEverySeconds: 1.0,
			KeepDays:          30,
		},
		Registry: RegistryConfig{
			Path: "./archive/callsigns.db",
		},
		Route: RouteConfig{
			BaseURL:                   "https://fr24api.flightradar24.com/api",
			MinRequestIntervalSeconds: 1.0,
		},
		Descent: DescentConfig{
			TMARadiusNM:            150,
			EnterAltitudeCeilingFt: 40000,
			EnterAltitudeFloorFt:   15000,
			BaroRateThresholdFPM:   -100,
		},
	}
}

// applyEnvironmentOverrides keeps secrets (the FR24 bearer token) out of
// the config file on disk.
func (c *Config) applyEnvironmentOverrides() {
	if token := os.Getenv("ADSB_LOGGER_ROUTE_API_TOKEN"); token != "" {
		c.Route.APIToken = token
	}
	if url := os.Getenv("ADSB_LOGGER_SNAPSHOT_URL"); url != "" {
		c.Snapshot.URL = url
	}
}
