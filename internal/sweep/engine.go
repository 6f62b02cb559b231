package sweep

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/wodekuailen/climate-model/internal/datasource"
	"github.com/wodekuailen/climate-model/internal/impact"
	"github.com/wodekuailen/climate-model/internal/simulator"
	"github.com/wodekuailen/climate-model/internal/types"
	"github.com/wodekuailen/climate-model/pkg/pvpower"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// HoursPerMonth converts monthly mean power into monthly energy
// (24 h × 30.44 days, the mean Gregorian month).
const HoursPerMonth = 24 * 30.44

// SourceFactory builds a fresh data source per simulation run. Each run
// owns its source so pairs can execute concurrently without shared state;
// the on-disk grid cache keeps repeated Init calls cheap.
type SourceFactory func() datasource.Source

// Engine runs the scenario sweep.
type Engine struct {
	steps       int
	sensitivity float64
	constants   types.PhysicalConstants
	workers     int
	newSource   SourceFactory
	logger      *zap.SugaredLogger
}

// New builds a sweep engine. workers ≤ 0 selects NumCPU.
func New(steps int, constants types.PhysicalConstants, workers int, newSource SourceFactory, logger *zap.SugaredLogger) (*Engine, error) {
	if steps < 0 {
		return nil, fmt.Errorf("sweep: negative step count %d", steps)
	}
	if newSource == nil {
		return nil, fmt.Errorf("sweep: source factory is required")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{
		steps:       steps,
		sensitivity: constants.ClimateSensitivity,
		constants:   constants,
		workers:     workers,
		newSource:   newSource,
		logger:      logger,
	}, nil
}

// pairOutcome is what one simulation contributes to the summary: the mean
// local anomaly and the mean generated power density.
type pairOutcome struct {
	avgAnomalyC      float64
	meanPowerDensity float64 // W/m²
	months           int     // months with usable data
	skipped          int
	err              error
}

// Run executes one simulation per (surface, material) pair on a bounded
// worker pool, then expands each pair across the coverage table. Results
// are emitted in nested enumeration order regardless of completion order.
// A failed pair yields sentinel rows and does not abort the sweep.
func (e *Engine) Run(ctx context.Context, tables *Tables) ([]types.ScenarioResult, error) {
	pairs := tables.materialize()
	if len(pairs) == 0 {
		return nil, fmt.Errorf("sweep: no scenario pairs to run")
	}

	pool, err := ants.NewPool(e.workers)
	if err != nil {
		return nil, fmt.Errorf("sweep: creating worker pool: %w", err)
	}
	defer pool.Release()

	outcomes := make([]pairOutcome, len(pairs))
	var wg sync.WaitGroup
	for i := range pairs {
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			outcomes[i] = e.runPair(ctx, pairs[i])
		}); err != nil {
			wg.Done()
			outcomes[i] = pairOutcome{err: fmt.Errorf("submitting pair: %w", err)}
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []types.ScenarioResult
	for i, p := range pairs {
		outcome := outcomes[i]
		if outcome.err != nil {
			e.logger.Errorw("scenario pair failed",
				"surface", p.surface.ID, "material", p.material.ID, "error", outcome.err)
		}
		for _, coverage := range tables.Coverages {
			results = append(results, e.buildRow(p, coverage, outcome))
		}
	}
	return results, nil
}

// runPair executes the feedback simulation for one (surface, material)
// pair and reduces the series to its two aggregate metrics.
func (e *Engine) runPair(ctx context.Context, p pair) pairOutcome {
	panel, err := newPanelModel(p)
	if err != nil {
		return pairOutcome{err: err}
	}

	sim, err := simulator.New(simulator.Config{
		Steps:        e.steps,
		GroundAlbedo: p.surface.Albedo,
		Panel:        panel,
		Sensitivity:  e.sensitivity,
	}, e.newSource(), e.logger)
	if err != nil {
		return pairOutcome{err: err}
	}

	result, err := sim.Run(ctx)
	if err != nil {
		return pairOutcome{err: err}
	}
	if result.SourceFailed {
		return pairOutcome{err: fmt.Errorf("climate data source unreachable")}
	}
	if len(result.Records) == 0 {
		return pairOutcome{err: fmt.Errorf("run produced no usable steps")}
	}

	anomalies := make([]float64, len(result.Records))
	powers := make([]float64, len(result.Records))
	for i, rec := range result.Records {
		anomalies[i] = rec.TempAnomalyC
		powers[i] = rec.ElectricalPowerW
	}

	return pairOutcome{
		avgAnomalyC:      stat.Mean(anomalies, nil),
		meanPowerDensity: stat.Mean(powers, nil) / panel.AreaM2,
		months:           len(result.Records),
		skipped:          result.Skipped,
	}
}

// buildRow scales a pair outcome to one coverage value. Zero-efficiency
// materials have no global effect by definition; their rows keep the local
// anomaly but carry exactly zero global metrics.
func (e *Engine) buildRow(p pair, coverage types.CoverageSpec, outcome pairOutcome) types.ScenarioResult {
	row := types.ScenarioResult{
		SurfaceID:       p.surface.ID,
		MaterialID:      p.material.ID,
		CoverageID:      coverage.ID,
		SurfaceAlbedo:   p.surface.Albedo,
		PanelAlbedo:     p.albedo,
		PanelEfficiency: p.material.Efficiency,
	}
	if outcome.err != nil {
		row.Failed = true
		return row
	}

	row.AvgLocalAnomalyC = outcome.avgAnomalyC

	if p.material.Efficiency == 0 {
		return row
	}

	// Energy accrues only over months that had usable climate data.
	deployedAreaM2 := coverage.Fraction * e.constants.EarthSurfaceAreaM2
	totalHours := float64(outcome.months) * HoursPerMonth
	totalEnergyWh := outcome.meanPowerDensity * deployedAreaM2 * totalHours
	totalEnergyGWh := totalEnergyWh / 1e9

	projector := impact.Projector{
		EmissionFactor: e.constants.CO2EmissionFactor,
		TCRE:           e.constants.TCRE,
	}
	row.GlobalTempChangeC, row.CO2ReductionGt = projector.Project(totalEnergyGWh)
	return row
}

// newPanelModel builds the power model for a pair with the inherited
// albedo already applied.
func newPanelModel(p pair) (*pvpower.Model, error) {
	return pvpower.New(p.material.AreaM2, p.albedo, p.material.Efficiency, p.material.TempCoefficient)
}
