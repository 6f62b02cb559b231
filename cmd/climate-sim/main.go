package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/stat"

	"github.com/wodekuailen/climate-model/internal/constants"
	"github.com/wodekuailen/climate-model/internal/datasource"
	"github.com/wodekuailen/climate-model/internal/log"
	"github.com/wodekuailen/climate-model/internal/simulator"
	"github.com/wodekuailen/climate-model/internal/storage"
	"github.com/wodekuailen/climate-model/internal/types"
	"github.com/wodekuailen/climate-model/pkg/config"
	"github.com/wodekuailen/climate-model/pkg/pvpower"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source:\n\t\t\t  YAML: config.yaml\n\t\t\t  SQLite: config.db")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	surfaceID := flag.String("surface", "", "Surface id to simulate (default: first configured surface)")
	materialID := flag.String("material", "", "Panel material id to simulate (default: first configured material)")
	panelAlbedo := flag.Float64("panel-albedo", -1, "Override the panel albedo, e.g. 0.8 for a high-albedo scenario")
	efficiency := flag.Float64("efficiency", -1, "Override the panel efficiency")
	resultsDir := flag.String("results-dir", "results", "Directory for the per-step CSV output")
	withBOM := flag.Bool("bom", false, "Prefix CSV output with a UTF-8 BOM for spreadsheet tools")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("climate-sim %s\n", constants.Version)
		os.Exit(0)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfgData, err := loadConfig(*cfgFile, *cfgBackend)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	surface, err := pickSurface(cfgData, *surfaceID)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	material, err := pickMaterial(cfgData, *materialID)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	// Resolve the effective panel albedo: flag override beats the material
	// table; a material with no intrinsic albedo inherits the surface.
	albedo := surface.Albedo
	if material.Albedo != nil {
		albedo = *material.Albedo
	}
	if *panelAlbedo >= 0 {
		albedo = *panelAlbedo
	}
	eff := material.Efficiency
	if *efficiency >= 0 {
		eff = *efficiency
	}

	panel, err := pvpower.New(cfgData.Simulation.PanelAreaM2, albedo, eff, material.TempCoefficient)
	if err != nil {
		log.Errorf("Invalid panel parameters: %v", err)
		os.Exit(1)
	}

	newSource, err := datasource.FactoryFromConfig(cfgData)
	if err != nil {
		log.Errorf("Failed to set up data source: %v", err)
		os.Exit(1)
	}

	sim, err := simulator.New(simulator.Config{
		Steps:        cfgData.Simulation.Steps,
		GroundAlbedo: surface.Albedo,
		Panel:        panel,
		Sensitivity:  cfgData.Constants.ClimateSensitivity,
	}, newSource(), log.GetSugaredLogger())
	if err != nil {
		log.Errorf("Failed to create simulator: %v", err)
		os.Exit(1)
	}

	log.Infof("simulating %s on %s for %d months (albedo=%.2f, efficiency=%.2f)",
		cfgData.Label(material.ID), cfgData.Label(surface.ID), cfgData.Simulation.Steps, albedo, eff)

	result, err := sim.Run(context.Background())
	if err != nil {
		log.Errorf("Simulation failed: %v", err)
		os.Exit(1)
	}
	if result.SourceFailed {
		log.Error("climate data source unreachable; no results produced")
		os.Exit(1)
	}
	if result.Skipped > 0 {
		log.Warnf("skipped %d months with no usable climate data", result.Skipped)
	}

	eng, err := storage.NewCSVEngine(*resultsDir, *withBOM)
	if err != nil {
		log.Errorf("Failed to open results directory: %v", err)
		os.Exit(1)
	}
	name := fmt.Sprintf("run_%s_%s", surface.ID, material.ID)
	if err := eng.SaveRun(name, result.Records); err != nil {
		log.Errorf("Failed to save results: %v", err)
		os.Exit(1)
	}

	printSummary(result.Records, filepath.Join(*resultsDir, name+".csv"))
}

func printSummary(records []types.TimeStepRecord, path string) {
	if len(records) == 0 {
		fmt.Println("No usable climate data; nothing written.")
		return
	}
	anomalies := make([]float64, len(records))
	powers := make([]float64, len(records))
	for i, rec := range records {
		anomalies[i] = rec.TempAnomalyC
		powers[i] = rec.ElectricalPowerW
	}
	fmt.Printf("Simulated %d months\n", len(records))
	fmt.Printf("  mean local temperature anomaly: %+.3f °C\n", stat.Mean(anomalies, nil))
	fmt.Printf("  final local temperature anomaly: %+.3f °C\n", records[len(records)-1].TempAnomalyC)
	fmt.Printf("  mean electrical power: %.1f W\n", stat.Mean(powers, nil))
	fmt.Printf("  results written to %s\n", path)
}

func pickSurface(cfg *config.ConfigData, id string) (config.SurfaceData, error) {
	if id == "" {
		if len(cfg.Surfaces) == 0 {
			return config.SurfaceData{}, fmt.Errorf("no surfaces configured")
		}
		return cfg.Surfaces[0], nil
	}
	for _, s := range cfg.Surfaces {
		if s.ID == id {
			return s, nil
		}
	}
	return config.SurfaceData{}, fmt.Errorf("unknown surface %q", id)
}

func pickMaterial(cfg *config.ConfigData, id string) (config.MaterialData, error) {
	if id == "" {
		if len(cfg.Materials) == 0 {
			return config.MaterialData{}, fmt.Errorf("no materials configured")
		}
		return cfg.Materials[0], nil
	}
	for _, m := range cfg.Materials {
		if m.ID == id {
			return m, nil
		}
	}
	return config.MaterialData{}, fmt.Errorf("unknown material %q", id)
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
