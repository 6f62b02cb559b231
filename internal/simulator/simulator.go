// Package simulator runs the monthly feedback loop coupling the radiation
// balance, panel power output, and local climate state.
package simulator

import (
	"context"
	"errors"
	"fmt"

	"github.com/wodekuailen/climate-model/internal/climate"
	"github.com/wodekuailen/climate-model/internal/datasource"
	"github.com/wodekuailen/climate-model/internal/types"
	"github.com/wodekuailen/climate-model/pkg/pvpower"
	"go.uber.org/zap"
)

// ErrAlreadyRun reports a second Run call on the same instance. A run is a
// finite, non-restartable sequence; build a fresh Simulator per scenario.
var ErrAlreadyRun = errors.New("simulator: run already executed")

type runStatus int

const (
	statusNotStarted runStatus = iota
	statusRunning
	statusFinished
)

// Config holds the per-run parameters of one scenario.
type Config struct {
	Steps        int
	GroundAlbedo float64
	Panel        *pvpower.Model
	// Sensitivity is the local climate sensitivity in °C per W/m².
	Sensitivity float64
}

// RunResult is the outcome of one run. SourceFailed marks the documented
// halt when the data source could not be opened at all: Records is empty
// and callers must check before aggregating.
type RunResult struct {
	Records      []types.TimeStepRecord
	Skipped      int
	SourceFailed bool
}

// Simulator drives one feedback run. Each instance owns freshly allocated
// state and shares nothing, so many simulators may run concurrently.
type Simulator struct {
	cfg    Config
	source datasource.Source
	state  *climate.State
	status runStatus
	logger *zap.SugaredLogger
}

// New validates the configuration and builds a simulator.
func New(cfg Config, source datasource.Source, logger *zap.SugaredLogger) (*Simulator, error) {
	if cfg.Steps < 0 {
		return nil, fmt.Errorf("simulator: negative step count %d", cfg.Steps)
	}
	if cfg.GroundAlbedo < 0 || cfg.GroundAlbedo > 1 {
		return nil, fmt.Errorf("simulator: ground albedo %v outside [0,1]", cfg.GroundAlbedo)
	}
	if cfg.Panel == nil {
		return nil, fmt.Errorf("simulator: panel model is required")
	}
	if source == nil {
		return nil, fmt.Errorf("simulator: data source is required")
	}
	return &Simulator{
		cfg:    cfg,
		source: source,
		state:  climate.NewState(cfg.Sensitivity),
		logger: logger,
	}, nil
}

// Run executes the feedback loop once. Per step: read the baseline sample,
// add the anomaly left by the previous step, compute power and the two
// forcing terms, then overwrite the anomaly for the next step. Steps with
// no data are skipped without touching the anomaly.
func (s *Simulator) Run(ctx context.Context) (*RunResult, error) {
	if s.status != statusNotStarted {
		return nil, ErrAlreadyRun
	}
	s.status = statusRunning
	defer func() { s.status = statusFinished }()

	result := &RunResult{}

	if err := s.source.Init(ctx); err != nil {
		s.logger.Errorw("halting run, climate data source unreachable", "error", err)
		result.SourceFailed = true
		return result, nil
	}

	panel := s.cfg.Panel
	area := panel.AreaM2

	for step := 0; step < s.cfg.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sample, err := s.source.At(ctx, step)
		if err != nil {
			if errors.Is(err, datasource.ErrNoData) {
				s.logger.Debugw("skipping step, no data", "step", step)
				result.Skipped++
				continue
			}
			return nil, fmt.Errorf("reading step %d: %w", step, err)
		}

		localTemp := sample.BaselineTempC + s.state.AnomalyC()

		power := panel.Power(sample.InsolationWm2, localTemp)

		// Albedo term: radiation the panel absorbs beyond what the ground
		// would have; waste-heat term: absorbed energy not exported as
		// electricity.
		albedoForcing := sample.InsolationWm2 * area * (s.cfg.GroundAlbedo - panel.Albedo)
		absorbed := sample.InsolationWm2 * area * (1 - panel.Albedo)
		wasteHeat := absorbed - power

		totalForcing := albedoForcing + wasteHeat

		// Updates the anomaly seen by step+1, not this one.
		s.state.ApplyForcing(totalForcing, area)

		result.Records = append(result.Records, types.TimeStepRecord{
			Step:             step,
			LocalTempC:       localTemp,
			TempAnomalyC:     s.state.AnomalyC(),
			InsolationWm2:    sample.InsolationWm2,
			AlbedoForcingW:   albedoForcing,
			WasteHeatW:       wasteHeat,
			ElectricalPowerW: power,
		})
	}

	if result.Skipped > 0 {
		s.logger.Infow("run finished with gaps", "steps", s.cfg.Steps, "skipped", result.Skipped)
	}

	return result, nil
}
