// Package sweep enumerates (surface × material × coverage) scenarios, runs
// one feedback simulation per (surface, material) pair, and aggregates the
// results into a comparative summary table.
package sweep

import (
	"fmt"

	"github.com/wodekuailen/climate-model/internal/types"
	"github.com/wodekuailen/climate-model/pkg/config"
)

// Tables are the three scenario dimensions in enumeration order. The sweep
// output follows this order exactly: surface outer, material middle,
// coverage inner.
type Tables struct {
	Surfaces  []types.SurfaceSpec
	Materials []types.PanelSpec
	Coverages []types.CoverageSpec
}

// TablesFromConfig converts the validated configuration tables, stamping
// the configured panel area onto every material.
func TablesFromConfig(cfg *config.ConfigData) (*Tables, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Tables{}
	for _, s := range cfg.Surfaces {
		t.Surfaces = append(t.Surfaces, types.SurfaceSpec{ID: s.ID, Albedo: s.Albedo})
	}
	for _, m := range cfg.Materials {
		t.Materials = append(t.Materials, types.PanelSpec{
			ID:              m.ID,
			Albedo:          m.Albedo,
			Efficiency:      m.Efficiency,
			TempCoefficient: m.TempCoefficient,
			AreaM2:          cfg.Simulation.PanelAreaM2,
		})
	}
	for _, c := range cfg.Coverages {
		t.Coverages = append(t.Coverages, types.CoverageSpec{ID: c.ID, Fraction: c.Fraction})
	}

	if len(t.Surfaces) == 0 || len(t.Materials) == 0 || len(t.Coverages) == 0 {
		return nil, fmt.Errorf("%w: empty scenario dimension", config.ErrInvalid)
	}
	return t, nil
}

// pair is one (surface, material) combination with the material albedo
// already resolved. One simulation serves all coverage rows of the pair.
type pair struct {
	surface  types.SurfaceSpec
	material types.PanelSpec
	albedo   float64
}

// materialize expands the cross-product into pair descriptors up front, so
// dispatch order and result order are fixed before any work is scheduled.
func (t *Tables) materialize() []pair {
	pairs := make([]pair, 0, len(t.Surfaces)*len(t.Materials))
	for _, surface := range t.Surfaces {
		for _, material := range t.Materials {
			albedo := surface.Albedo // bare-ground materials inherit the surface
			if material.Albedo != nil {
				albedo = *material.Albedo
			}
			pairs = append(pairs, pair{surface: surface, material: material, albedo: albedo})
		}
	}
	return pairs
}

// Scenarios returns the fully-expanded scenario list in enumeration order.
func (t *Tables) Scenarios() []types.Scenario {
	var scenarios []types.Scenario
	for _, p := range t.materialize() {
		material := p.material
		albedo := p.albedo
		material.Albedo = &albedo
		for _, coverage := range t.Coverages {
			scenarios = append(scenarios, types.Scenario{
				Surface:  p.surface,
				Material: material,
				Coverage: coverage,
			})
		}
	}
	return scenarios
}
