package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	_ "github.com/lib/pq"

	"github.com/wodekuailen/climate-model/internal/constants"
	"github.com/wodekuailen/climate-model/internal/datasource"
	"github.com/wodekuailen/climate-model/internal/impact"
	"github.com/wodekuailen/climate-model/internal/log"
	"github.com/wodekuailen/climate-model/internal/storage"
	"github.com/wodekuailen/climate-model/internal/sweep"
	"github.com/wodekuailen/climate-model/internal/types"
	"github.com/wodekuailen/climate-model/pkg/config"
)

// tonnesPerCarYear is the EPA figure for annual emissions of a typical
// passenger vehicle, used to contextualize the CO2 numbers.
const tonnesPerCarYear = 4.6

// pairRequirement is the answer for one viable (surface, material) pair:
// the deployment needed to hit the cooling target.
type pairRequirement struct {
	surfaceID  string
	materialID string

	// coolingAtFull is the global cooling (positive °C) the pair delivers
	// at 100% coverage over the simulated horizon.
	coolingAtFull float64

	requiredFraction float64
	requiredAreaKm2  float64
}

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source:\n\t\t\t  YAML: config.yaml\n\t\t\t  SQLite: config.db")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	target := flag.Float64("target", 0.1, "Global cooling target in °C (positive)")
	summaryCSV := flag.String("summary", "", "Path to a stored sweep summary CSV; skips re-simulation")
	dbURL := flag.String("db", "", "PostgreSQL connection string; reads the stored sweep summary instead of re-simulating")
	sweepName := flag.String("sweep-name", "sweep_summary", "Sweep name to read when using -db")
	workers := flag.Int("workers", 0, "Worker pool size when re-simulating (default: configured value or NumCPU)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("goal-seek %s\n", constants.Version)
		os.Exit(0)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *target <= 0 {
		log.Errorf("cooling target must be positive, got %v", *target)
		os.Exit(1)
	}

	cfgData, err := loadConfig(*cfgFile, *cfgBackend)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	var results []types.ScenarioResult
	switch {
	case *summaryCSV != "":
		results, err = storage.ReadSummary(*summaryCSV)
	case *dbURL != "":
		results, err = readStoredSummary(*dbURL, *sweepName)
	default:
		results, err = simulateAtFullCoverage(cfgData, *workers)
	}
	if err != nil {
		log.Errorf("Failed to obtain scenario results: %v", err)
		os.Exit(1)
	}

	requirements := seek(cfgData, results, *target)
	report(cfgData, requirements, *target)
}

// simulateAtFullCoverage runs one simulation per (surface, material) pair
// with a single synthetic 100% coverage row. The projection is linear in
// coverage, so every other deployment scale follows by scaling.
func simulateAtFullCoverage(cfgData *config.ConfigData, workers int) ([]types.ScenarioResult, error) {
	tables, err := sweep.TablesFromConfig(cfgData)
	if err != nil {
		return nil, err
	}
	tables.Coverages = []types.CoverageSpec{{ID: "full", Fraction: 1}}

	newSource, err := datasource.FactoryFromConfig(cfgData)
	if err != nil {
		return nil, err
	}

	poolSize := cfgData.Simulation.Workers
	if workers > 0 {
		poolSize = workers
	}

	engine, err := sweep.New(cfgData.Simulation.Steps, types.PhysicalConstants{
		ClimateSensitivity: cfgData.Constants.ClimateSensitivity,
		CO2EmissionFactor:  cfgData.Constants.CO2EmissionFactor,
		TCRE:               cfgData.Constants.TCRE,
		EarthSurfaceAreaM2: cfgData.Constants.EarthSurfaceAreaM2,
	}, poolSize, newSource, log.GetSugaredLogger())
	if err != nil {
		return nil, err
	}

	return engine.Run(context.Background(), tables)
}

// readStoredSummary loads the rows of a stored sweep from the results
// database.
func readStoredSummary(connStr, sweepName string) ([]types.ScenarioResult, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Only the most recent sweep under the given name is of interest.
	query := `
		SELECT surface_id, material_id, coverage_id,
		       surface_albedo, panel_albedo, panel_efficiency,
		       avg_local_temp_anomaly_c, global_temp_change_c,
		       total_co2_reduction_gt, failed
		FROM sweep_summaries
		WHERE sweep_id = (
			SELECT sweep_id FROM sweep_summaries
			WHERE sweep_name = $1
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)
		ORDER BY id ASC`

	rows, err := db.Query(query, sweepName)
	if err != nil {
		return nil, fmt.Errorf("querying sweep summary: %w", err)
	}
	defer rows.Close()

	var results []types.ScenarioResult
	for rows.Next() {
		var r types.ScenarioResult
		if err := rows.Scan(&r.SurfaceID, &r.MaterialID, &r.CoverageID,
			&r.SurfaceAlbedo, &r.PanelAlbedo, &r.PanelEfficiency,
			&r.AvgLocalAnomalyC, &r.GlobalTempChangeC,
			&r.CO2ReductionGt, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no stored sweep named %q", sweepName)
	}
	return results, nil
}

// seek converts sweep rows into per-pair coverage requirements, keeping one
// viable row per (surface, material) pair. Cooling scales linearly with
// coverage, so any row with known fraction pins down the whole pair.
func seek(cfgData *config.ConfigData, results []types.ScenarioResult, target float64) []pairRequirement {
	fractions := make(map[string]float64, len(cfgData.Coverages))
	for _, c := range cfgData.Coverages {
		fractions[c.ID] = c.Fraction
	}
	fractions["full"] = 1

	seen := make(map[string]bool)
	var requirements []pairRequirement
	for _, r := range results {
		key := r.SurfaceID + "\x00" + r.MaterialID
		if seen[key] || r.Failed || r.GlobalTempChangeC >= 0 {
			continue
		}
		fraction, ok := fractions[r.CoverageID]
		if !ok || fraction <= 0 {
			continue
		}
		seen[key] = true

		coolingAtFull := -r.GlobalTempChangeC / fraction
		requiredFraction := target / coolingAtFull
		requirements = append(requirements, pairRequirement{
			surfaceID:        r.SurfaceID,
			materialID:       r.MaterialID,
			coolingAtFull:    coolingAtFull,
			requiredFraction: requiredFraction,
			requiredAreaKm2:  requiredFraction * cfgData.Constants.EarthSurfaceAreaM2 / 1e6,
		})
	}

	sort.Slice(requirements, func(i, j int) bool {
		return requirements[i].requiredFraction < requirements[j].requiredFraction
	})
	return requirements
}

func report(cfgData *config.ConfigData, requirements []pairRequirement, target float64) {
	projector := impact.Projector{
		EmissionFactor: cfgData.Constants.CO2EmissionFactor,
		TCRE:           cfgData.Constants.TCRE,
	}
	energyGWh, co2Gt := projector.RequiredEnergyGWh(target)
	cars := co2Gt * 1e9 / tonnesPerCarYear

	fmt.Printf("Goal: %.3f °C of global cooling\n", target)
	fmt.Printf("Requires avoiding %.1f Gt of CO2 (%.0f GWh of clean generation)\n", co2Gt, energyGWh)
	fmt.Printf("Equivalent to taking %.2g passenger cars off the road for a year\n\n", cars)

	if len(requirements) == 0 {
		fmt.Println("No viable scenario delivers global cooling; nothing to rank.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SURFACE\tMATERIAL\tREQUIRED COVERAGE\tAREA (km²)\tCOOLING AT FULL COVERAGE (°C)")
	for _, req := range requirements {
		coverage := fmt.Sprintf("%.4f%%", req.requiredFraction*100)
		if req.requiredFraction > 1 {
			coverage += " (exceeds Earth's surface)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\t%.4f\n",
			cfgData.Label(req.surfaceID), cfgData.Label(req.materialID),
			coverage, req.requiredAreaKm2, req.coolingAtFull)
	}
	w.Flush()
}

func loadConfig(cfgFile, cfgBackend string) (*config.ConfigData, error) {
	filename, _ := filepath.Abs(cfgFile)

	var provider config.ConfigProvider
	var err error

	switch cfgBackend {
	case "yaml":
		provider = config.NewYAMLProvider(filename)
	case "sqlite":
		provider, err = config.NewSQLiteProvider(filename)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", cfgBackend)
	}

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}

	return cfgData, nil
}
