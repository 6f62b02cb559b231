package config

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func createConfigDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE simulation (steps INTEGER, latitude REAL, longitude REAL,
			altitude REAL, panel_area_m2 REAL, start_year INTEGER, workers INTEGER)`,
		`CREATE TABLE constants (climate_sensitivity REAL, co2_emission_factor_kg_per_kwh REAL,
			tcre_c_per_1000_gtco2 REAL, earth_surface_area_m2 REAL)`,
		`CREATE TABLE data_source (temperature_url TEXT, radiation_url TEXT, cache_dir TEXT,
			fetch_timeout_seconds INTEGER, fetch_max_attempts INTEGER, max_concurrent_fetches INTEGER,
			synthetic_mean_temp_c REAL, synthetic_amplitude_c REAL)`,
		`CREATE TABLE surfaces (position INTEGER, id TEXT, albedo REAL)`,
		`CREATE TABLE materials (position INTEGER, id TEXT, albedo REAL, efficiency REAL,
			temperature_coefficient REAL)`,
		`CREATE TABLE coverages (position INTEGER, id TEXT, fraction REAL)`,
		`CREATE TABLE labels (key TEXT, label TEXT)`,
		`INSERT INTO simulation VALUES (240, 40.0150, -105.2705, 1655, 1000, 2024, 0)`,
		`INSERT INTO constants VALUES (0.02, 0.5366, 0.5, 5.101e14)`,
		`INSERT INTO surfaces VALUES (1, 'standard_land', 0.25), (2, 'desert', 0.40), (3, 'ocean', 0.08)`,
		`INSERT INTO materials VALUES (1, 'perovskite_pv', 0.15, 0.25, -0.08),
			(2, 'mirror', 0.85, 0, 0), (3, 'bare_ground', NULL, 0, 0)`,
		`INSERT INTO coverages VALUES (1, 'small_scale', 0.0001), (2, 'large_scale', 0.01)`,
		`INSERT INTO labels VALUES ('mirror', 'Mirror')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("unexpected error running %q: %v", stmt, err)
		}
	}
	return path
}

func TestSQLiteProviderLoadConfig(t *testing.T) {
	provider, err := NewSQLiteProvider(createConfigDB(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Simulation.Steps != 240 || cfg.Simulation.PanelAreaM2 != 1000 {
		t.Errorf("unexpected simulation settings: %+v", cfg.Simulation)
	}
	if cfg.Constants.CO2EmissionFactor != 0.5366 {
		t.Errorf("CO2EmissionFactor = %v, expected 0.5366", cfg.Constants.CO2EmissionFactor)
	}

	// Stored position order is preserved for deterministic sweeps.
	if len(cfg.Surfaces) != 3 || cfg.Surfaces[0].ID != "standard_land" || cfg.Surfaces[2].ID != "ocean" {
		t.Errorf("unexpected surface order: %+v", cfg.Surfaces)
	}

	if len(cfg.Materials) != 3 {
		t.Fatalf("got %d materials, expected 3", len(cfg.Materials))
	}
	if cfg.Materials[0].Albedo == nil || *cfg.Materials[0].Albedo != 0.15 {
		t.Errorf("perovskite albedo not loaded: %+v", cfg.Materials[0])
	}
	if cfg.Materials[2].Albedo != nil {
		t.Errorf("bare_ground albedo should be nil, got %v", *cfg.Materials[2].Albedo)
	}

	if cfg.Label("mirror") != "Mirror" {
		t.Errorf("Label() = %q, expected Mirror", cfg.Label("mirror"))
	}

	if provider.IsReadOnly() {
		t.Error("SQLite provider should be writable")
	}
}
