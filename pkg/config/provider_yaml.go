package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// yamlConfig mirrors ConfigData with YAML tags
type yamlConfig struct {
	Simulation yamlSimulation    `yaml:"simulation"`
	Constants  yamlConstants     `yaml:"constants"`
	Data       yamlDataSource    `yaml:"data,omitempty"`
	Surfaces   []yamlSurface     `yaml:"surfaces"`
	Materials  []yamlMaterial    `yaml:"materials"`
	Coverages  []yamlCoverage    `yaml:"coverages"`
	Labels     map[string]string `yaml:"labels,omitempty"`
}

type yamlSimulation struct {
	Steps       int     `yaml:"steps"`
	Latitude    float64 `yaml:"latitude"`
	Longitude   float64 `yaml:"longitude"`
	Altitude    float64 `yaml:"altitude,omitempty"`
	PanelAreaM2 float64 `yaml:"panel_area_m2"`
	StartYear   int     `yaml:"start_year,omitempty"`
	Workers     int     `yaml:"workers,omitempty"`
}

type yamlConstants struct {
	ClimateSensitivity float64 `yaml:"climate_sensitivity"`
	CO2EmissionFactor  float64 `yaml:"co2_emission_factor_kg_per_kwh"`
	TCRE               float64 `yaml:"tcre_c_per_1000_gtco2"`
	EarthSurfaceAreaM2 float64 `yaml:"earth_surface_area_m2"`
}

type yamlDataSource struct {
	TemperatureURL       string  `yaml:"temperature_url,omitempty"`
	RadiationURL         string  `yaml:"radiation_url,omitempty"`
	CacheDir             string  `yaml:"cache_dir,omitempty"`
	FetchTimeoutSeconds  int     `yaml:"fetch_timeout_seconds,omitempty"`
	FetchMaxAttempts     int     `yaml:"fetch_max_attempts,omitempty"`
	MaxConcurrentFetches int     `yaml:"max_concurrent_fetches,omitempty"`
	SyntheticMeanTempC   float64 `yaml:"synthetic_mean_temp_c,omitempty"`
	SyntheticAmplitudeC  float64 `yaml:"synthetic_amplitude_c,omitempty"`
}

type yamlSurface struct {
	ID     string  `yaml:"id"`
	Albedo float64 `yaml:"albedo"`
}

type yamlMaterial struct {
	ID              string   `yaml:"id"`
	Albedo          *float64 `yaml:"albedo,omitempty"`
	Efficiency      float64  `yaml:"efficiency"`
	TempCoefficient float64  `yaml:"temperature_coefficient,omitempty"`
}

type yamlCoverage struct {
	ID       string  `yaml:"id"`
	Fraction float64 `yaml:"fraction"`
}

// LoadConfig loads and validates the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(cfgFile, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", y.filename, err)
	}

	config := &ConfigData{
		Simulation: SimulationData(raw.Simulation),
		Constants:  ConstantsData(raw.Constants),
		Data:       DataSourceData(raw.Data),
		Surfaces:   make([]SurfaceData, len(raw.Surfaces)),
		Materials:  make([]MaterialData, len(raw.Materials)),
		Coverages:  make([]CoverageData, len(raw.Coverages)),
		Labels:     raw.Labels,
	}
	for i, s := range raw.Surfaces {
		config.Surfaces[i] = SurfaceData(s)
	}
	for i, m := range raw.Materials {
		config.Materials[i] = MaterialData(m)
	}
	for i, c := range raw.Coverages {
		config.Coverages[i] = CoverageData(c)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

func (y *YAMLProvider) loaded() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}
	return y.LoadConfig()
}

// GetSurfaces returns the surface table
func (y *YAMLProvider) GetSurfaces() ([]SurfaceData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return cfg.Surfaces, nil
}

// GetMaterials returns the material table
func (y *YAMLProvider) GetMaterials() ([]MaterialData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return cfg.Materials, nil
}

// GetCoverages returns the coverage table
func (y *YAMLProvider) GetCoverages() ([]CoverageData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return cfg.Coverages, nil
}

// IsReadOnly returns true; YAML files are not modified by the application
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML providers
func (y *YAMLProvider) Close() error {
	return nil
}
