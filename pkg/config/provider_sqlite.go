package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads and validates the complete configuration from the database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	row := s.db.QueryRow(`SELECT steps, latitude, longitude, altitude, panel_area_m2,
		start_year, workers FROM simulation LIMIT 1`)
	if err := row.Scan(&config.Simulation.Steps, &config.Simulation.Latitude,
		&config.Simulation.Longitude, &config.Simulation.Altitude,
		&config.Simulation.PanelAreaM2, &config.Simulation.StartYear,
		&config.Simulation.Workers); err != nil {
		return nil, fmt.Errorf("failed to load simulation settings: %w", err)
	}

	row = s.db.QueryRow(`SELECT climate_sensitivity, co2_emission_factor_kg_per_kwh,
		tcre_c_per_1000_gtco2, earth_surface_area_m2 FROM constants LIMIT 1`)
	if err := row.Scan(&config.Constants.ClimateSensitivity, &config.Constants.CO2EmissionFactor,
		&config.Constants.TCRE, &config.Constants.EarthSurfaceAreaM2); err != nil {
		return nil, fmt.Errorf("failed to load constants: %w", err)
	}

	if err := s.loadDataSource(config); err != nil {
		return nil, err
	}

	var err error
	if config.Surfaces, err = s.GetSurfaces(); err != nil {
		return nil, err
	}
	if config.Materials, err = s.GetMaterials(); err != nil {
		return nil, err
	}
	if config.Coverages, err = s.GetCoverages(); err != nil {
		return nil, err
	}
	if config.Labels, err = s.loadLabels(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (s *SQLiteProvider) loadDataSource(config *ConfigData) error {
	row := s.db.QueryRow(`SELECT temperature_url, radiation_url, cache_dir,
		fetch_timeout_seconds, fetch_max_attempts, max_concurrent_fetches,
		synthetic_mean_temp_c, synthetic_amplitude_c FROM data_source LIMIT 1`)
	err := row.Scan(&config.Data.TemperatureURL, &config.Data.RadiationURL,
		&config.Data.CacheDir, &config.Data.FetchTimeoutSeconds,
		&config.Data.FetchMaxAttempts, &config.Data.MaxConcurrentFetches,
		&config.Data.SyntheticMeanTempC, &config.Data.SyntheticAmplitudeC)
	if err == sql.ErrNoRows {
		return nil // data source section is optional
	}
	if err != nil {
		return fmt.Errorf("failed to load data source settings: %w", err)
	}
	return nil
}

func (s *SQLiteProvider) loadLabels() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, label FROM labels`)
	if err != nil {
		return nil, nil // labels table is optional
	}
	defer rows.Close()

	labels := make(map[string]string)
	for rows.Next() {
		var key, label string
		if err := rows.Scan(&key, &label); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels[key] = label
	}
	return labels, rows.Err()
}

// GetSurfaces returns the surface table in stored order
func (s *SQLiteProvider) GetSurfaces() ([]SurfaceData, error) {
	rows, err := s.db.Query(`SELECT id, albedo FROM surfaces ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query surfaces: %w", err)
	}
	defer rows.Close()

	var surfaces []SurfaceData
	for rows.Next() {
		var surface SurfaceData
		if err := rows.Scan(&surface.ID, &surface.Albedo); err != nil {
			return nil, fmt.Errorf("failed to scan surface: %w", err)
		}
		surfaces = append(surfaces, surface)
	}
	return surfaces, rows.Err()
}

// GetMaterials returns the material table in stored order
func (s *SQLiteProvider) GetMaterials() ([]MaterialData, error) {
	rows, err := s.db.Query(`SELECT id, albedo, efficiency, temperature_coefficient
		FROM materials ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer rows.Close()

	var materials []MaterialData
	for rows.Next() {
		var material MaterialData
		var albedo sql.NullFloat64
		if err := rows.Scan(&material.ID, &albedo, &material.Efficiency,
			&material.TempCoefficient); err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		if albedo.Valid {
			material.Albedo = &albedo.Float64
		}
		materials = append(materials, material)
	}
	return materials, rows.Err()
}

// GetCoverages returns the coverage table in stored order
func (s *SQLiteProvider) GetCoverages() ([]CoverageData, error) {
	rows, err := s.db.Query(`SELECT id, fraction FROM coverages ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query coverages: %w", err)
	}
	defer rows.Close()

	var coverages []CoverageData
	for rows.Next() {
		var coverage CoverageData
		if err := rows.Scan(&coverage.ID, &coverage.Fraction); err != nil {
			return nil, fmt.Errorf("failed to scan coverage: %w", err)
		}
		coverages = append(coverages, coverage)
	}
	return coverages, rows.Err()
}

// IsReadOnly returns false; the SQLite backend can be edited in place
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
