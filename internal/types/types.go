// Package types defines the core data model shared by the simulation,
// sweep, and storage layers.
package types

// TimeStepRecord captures the state of one simulated month. Records are
// append-only; a completed run is an ordered slice of these, one per month
// that had usable climate data.
type TimeStepRecord struct {
	Step             int     `gorm:"column:step"`
	LocalTempC       float64 `gorm:"column:local_temp_c"`
	TempAnomalyC     float64 `gorm:"column:temp_anomaly_c"`
	InsolationWm2    float64 `gorm:"column:insolation_w_m2"`
	AlbedoForcingW   float64 `gorm:"column:albedo_forcing_w"`
	WasteHeatW       float64 `gorm:"column:waste_heat_forcing_w"`
	ElectricalPowerW float64 `gorm:"column:pv_power_w"`
}

// PanelSpec describes a panel material. Albedo is a pointer because some
// materials (bare ground) have no intrinsic albedo and inherit the albedo of
// whatever surface they sit on.
type PanelSpec struct {
	ID              string
	Albedo          *float64
	Efficiency      float64
	TempCoefficient float64 // %/°C, relative to the 25 °C reference
	AreaM2          float64
}

// SurfaceSpec describes the ground being displaced by the installation.
type SurfaceSpec struct {
	ID     string
	Albedo float64
}

// CoverageSpec is a hypothetical deployment scale. The fraction applies to
// Earth's total surface area and is only used during aggregation, never
// inside the feedback loop.
type CoverageSpec struct {
	ID       string
	Fraction float64
}

// Scenario is one fully-resolved (surface, material, coverage) triple. The
// sweep engine materializes the whole cross-product into these before
// dispatching any work so that result ordering is independent of scheduling.
type Scenario struct {
	Surface  SurfaceSpec
	Material PanelSpec
	Coverage CoverageSpec
}

// ScenarioResult is one row of the sweep summary table.
type ScenarioResult struct {
	SurfaceID         string  `gorm:"column:surface_id"`
	MaterialID        string  `gorm:"column:material_id"`
	CoverageID        string  `gorm:"column:coverage_id"`
	SurfaceAlbedo     float64 `gorm:"column:surface_albedo"`
	PanelAlbedo       float64 `gorm:"column:panel_albedo"`
	PanelEfficiency   float64 `gorm:"column:panel_efficiency"`
	AvgLocalAnomalyC  float64 `gorm:"column:avg_local_temp_anomaly_c"`
	GlobalTempChangeC float64 `gorm:"column:global_temp_change_c"`
	CO2ReductionGt    float64 `gorm:"column:total_co2_reduction_gt"`

	// Failed marks a sentinel row for a (surface, material) pair whose
	// simulation could not produce data. The numeric fields are zero and
	// must not be aggregated.
	Failed bool `gorm:"column:failed"`
}

// PhysicalConstants are the per-run physical parameters. They are plain
// values passed into each engine instance; nothing in the module mutates
// process-wide state, so concurrent sweeps stay independent.
type PhysicalConstants struct {
	// ClimateSensitivity converts a local forcing density (W/m²) into a
	// local temperature anomaly (°C).
	ClimateSensitivity float64

	// CO2EmissionFactor is the grid carbon intensity displaced by PV
	// generation, in kgCO2 per kWh.
	CO2EmissionFactor float64

	// TCRE is the transient climate response to cumulative emissions, in
	// °C per 1000 GtCO2.
	TCRE float64

	// EarthSurfaceAreaM2 is used to convert coverage fractions to panel area.
	EarthSurfaceAreaM2 float64
}
