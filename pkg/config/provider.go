// Package config defines the configuration surface consumed by the
// simulation core and its drivers, with YAML and SQLite backends.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalid tags configuration errors. They are propagated to the caller
// and never recovered; a bad scenario table must fail before any run starts.
var ErrInvalid = errors.New("invalid configuration")

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetSurfaces() ([]SurfaceData, error)
	GetMaterials() ([]MaterialData, error)
	GetCoverages() ([]CoverageData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Simulation SimulationData    `json:"simulation"`
	Constants  ConstantsData     `json:"constants"`
	Data       DataSourceData    `json:"data,omitempty"`
	Surfaces   []SurfaceData     `json:"surfaces"`
	Materials  []MaterialData    `json:"materials"`
	Coverages  []CoverageData    `json:"coverages"`
	Labels     map[string]string `json:"labels,omitempty"`
}

// SimulationData holds the run horizon and the fixed geographic point
type SimulationData struct {
	Steps       int     `json:"steps"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Altitude    float64 `json:"altitude,omitempty"`
	PanelAreaM2 float64 `json:"panel_area_m2"`
	StartYear   int     `json:"start_year,omitempty"`
	Workers     int     `json:"workers,omitempty"`
}

// ConstantsData holds the four physical constants of the model
type ConstantsData struct {
	ClimateSensitivity float64 `json:"climate_sensitivity"`
	CO2EmissionFactor  float64 `json:"co2_emission_factor_kg_per_kwh"`
	TCRE               float64 `json:"tcre_c_per_1000_gtco2"`
	EarthSurfaceAreaM2 float64 `json:"earth_surface_area_m2"`
}

// DataSourceData holds the climate dataset endpoints and fetch tuning.
// Empty URLs select the synthetic clear-sky source.
type DataSourceData struct {
	TemperatureURL       string  `json:"temperature_url,omitempty"`
	RadiationURL         string  `json:"radiation_url,omitempty"`
	CacheDir             string  `json:"cache_dir,omitempty"`
	FetchTimeoutSeconds  int     `json:"fetch_timeout_seconds,omitempty"`
	FetchMaxAttempts     int     `json:"fetch_max_attempts,omitempty"`
	MaxConcurrentFetches int     `json:"max_concurrent_fetches,omitempty"`
	SyntheticMeanTempC   float64 `json:"synthetic_mean_temp_c,omitempty"`
	SyntheticAmplitudeC  float64 `json:"synthetic_amplitude_c,omitempty"`
}

// SurfaceData is one displaced ground type
type SurfaceData struct {
	ID     string  `json:"id"`
	Albedo float64 `json:"albedo"`
}

// MaterialData is one panel material. A nil Albedo means the material has
// no surface of its own and inherits the ground albedo (bare ground rows).
type MaterialData struct {
	ID              string   `json:"id"`
	Albedo          *float64 `json:"albedo,omitempty"`
	Efficiency      float64  `json:"efficiency"`
	TempCoefficient float64  `json:"temperature_coefficient,omitempty"`
}

// CoverageData is one deployment-scale scenario
type CoverageData struct {
	ID       string  `json:"id"`
	Fraction float64 `json:"fraction"`
}

// Validate fails fast on anything that would poison a run: non-positive
// panel area, out-of-range albedos or fractions, duplicate or empty keys.
func (c *ConfigData) Validate() error {
	if c.Simulation.Steps < 0 {
		return fmt.Errorf("%w: negative simulation steps %d", ErrInvalid, c.Simulation.Steps)
	}
	if c.Simulation.PanelAreaM2 <= 0 {
		return fmt.Errorf("%w: panel area must be positive, got %v", ErrInvalid, c.Simulation.PanelAreaM2)
	}
	if c.Constants.ClimateSensitivity <= 0 {
		return fmt.Errorf("%w: climate sensitivity must be positive", ErrInvalid)
	}
	if c.Constants.EarthSurfaceAreaM2 <= 0 {
		return fmt.Errorf("%w: Earth surface area must be positive", ErrInvalid)
	}

	seen := make(map[string]bool)
	for _, s := range c.Surfaces {
		if s.ID == "" {
			return fmt.Errorf("%w: surface with empty id", ErrInvalid)
		}
		if seen["s/"+s.ID] {
			return fmt.Errorf("%w: duplicate surface %q", ErrInvalid, s.ID)
		}
		seen["s/"+s.ID] = true
		if s.Albedo < 0 || s.Albedo > 1 {
			return fmt.Errorf("%w: surface %q albedo %v outside [0,1]", ErrInvalid, s.ID, s.Albedo)
		}
	}
	for _, m := range c.Materials {
		if m.ID == "" {
			return fmt.Errorf("%w: material with empty id", ErrInvalid)
		}
		if seen["m/"+m.ID] {
			return fmt.Errorf("%w: duplicate material %q", ErrInvalid, m.ID)
		}
		seen["m/"+m.ID] = true
		if m.Albedo != nil && (*m.Albedo < 0 || *m.Albedo > 1) {
			return fmt.Errorf("%w: material %q albedo %v outside [0,1]", ErrInvalid, m.ID, *m.Albedo)
		}
		if m.Efficiency < 0 || m.Efficiency >= 1 {
			return fmt.Errorf("%w: material %q efficiency %v outside [0,1)", ErrInvalid, m.ID, m.Efficiency)
		}
	}
	for _, cov := range c.Coverages {
		if cov.ID == "" {
			return fmt.Errorf("%w: coverage with empty id", ErrInvalid)
		}
		if seen["c/"+cov.ID] {
			return fmt.Errorf("%w: duplicate coverage %q", ErrInvalid, cov.ID)
		}
		seen["c/"+cov.ID] = true
		if cov.Fraction <= 0 || cov.Fraction > 1 {
			return fmt.Errorf("%w: coverage %q fraction %v outside (0,1]", ErrInvalid, cov.ID, cov.Fraction)
		}
	}

	return nil
}

// Label returns the display label for a machine key, falling back to the
// key itself. Labels are presentation-only and never participate in
// scenario identity.
func (c *ConfigData) Label(key string) string {
	if label, ok := c.Labels[key]; ok {
		return label
	}
	return key
}
