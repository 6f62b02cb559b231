package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/wodekuailen/climate-model/internal/constants"
	"github.com/wodekuailen/climate-model/internal/datasource"
	"github.com/wodekuailen/climate-model/internal/log"
	"github.com/wodekuailen/climate-model/internal/storage"
	"github.com/wodekuailen/climate-model/internal/sweep"
	"github.com/wodekuailen/climate-model/internal/types"
	"github.com/wodekuailen/climate-model/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source:\n\t\t\t  YAML: config.yaml\n\t\t\t  SQLite: config.db")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	workers := flag.Int("workers", 0, "Worker pool size for parallel pair simulation (default: configured value or NumCPU)")
	resultsDir := flag.String("results-dir", "results", "Directory for the summary CSV output")
	outName := flag.String("name", "sweep_summary", "Base name of the summary CSV file")
	withBOM := flag.Bool("bom", false, "Prefix CSV output with a UTF-8 BOM for spreadsheet tools")
	dbURL := flag.String("db", "", "PostgreSQL connection string; when set, the summary is also stored in the results database")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("scenario-sweep %s\n", constants.Version)
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

	tables, err := sweep.TablesFromConfig(cfgData)
	if err != nil {
		log.Errorf("Invalid scenario tables: %v", err)
		os.Exit(1)
	}

	newSource, err := datasource.FactoryFromConfig(cfgData)
	if err != nil {
		log.Errorf("Failed to set up data source: %v", err)
		os.Exit(1)
	}

	poolSize := cfgData.Simulation.Workers
	if *workers > 0 {
		poolSize = *workers
	}

	engine, err := sweep.New(cfgData.Simulation.Steps, types.PhysicalConstants{
		ClimateSensitivity: cfgData.Constants.ClimateSensitivity,
		CO2EmissionFactor:  cfgData.Constants.CO2EmissionFactor,
		TCRE:               cfgData.Constants.TCRE,
		EarthSurfaceAreaM2: cfgData.Constants.EarthSurfaceAreaM2,
	}, poolSize, newSource, log.GetSugaredLogger())
	if err != nil {
		log.Errorf("Failed to create sweep engine: %v", err)
		os.Exit(1)
	}

	log.Infof("sweeping %d surfaces × %d materials × %d coverages over %d months",
		len(tables.Surfaces), len(tables.Materials), len(tables.Coverages), cfgData.Simulation.Steps)

	results, err := engine.Run(context.Background(), tables)
	if err != nil {
		log.Errorf("Sweep failed: %v", err)
		os.Exit(1)
	}

	csvEng, err := storage.NewCSVEngine(*resultsDir, *withBOM)
	if err != nil {
		log.Errorf("Failed to open results directory: %v", err)
		os.Exit(1)
	}
	if err := csvEng.SaveSummary(*outName, results); err != nil {
		log.Errorf("Failed to save summary CSV: %v", err)
		os.Exit(1)
	}

	if *dbURL != "" {
		pgEng, err := storage.NewPostgresEngine(*dbURL, log.GetSugaredLogger())
		if err != nil {
			log.Errorf("Failed to connect to results database: %v", err)
			os.Exit(1)
		}
		defer pgEng.Close()
		if err := pgEng.SaveSummary(*outName, results); err != nil {
			log.Errorf("Failed to store summary in database: %v", err)
			os.Exit(1)
		}
	}

	printTable(cfgData, results)
	fmt.Printf("\nSummary written to %s\n", filepath.Join(*resultsDir, *outName+".csv"))
}

func printTable(cfg *config.ConfigData, results []types.ScenarioResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SURFACE\tMATERIAL\tCOVERAGE\tLOCAL ΔT (°C)\tGLOBAL ΔT (°C)\tCO2 AVOIDED (Gt)")
	for _, r := range results {
		if r.Failed {
			fmt.Fprintf(w, "%s\t%s\t%s\tfailed\tfailed\tfailed\n",
				cfg.Label(r.SurfaceID), cfg.Label(r.MaterialID), cfg.Label(r.CoverageID))
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%+.3f\t%+.6f\t%.2f\n",
			cfg.Label(r.SurfaceID), cfg.Label(r.MaterialID), cfg.Label(r.CoverageID),
			r.AvgLocalAnomalyC, r.GlobalTempChangeC, r.CO2ReductionGt)
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
