// Package storage defines interfaces and implementations for persisting
// simulation runs and sweep summary tables.
package storage

import "github.com/wodekuailen/climate-model/internal/types"

// Engine is a result persistence backend. Names identify the run or sweep
// within the backend (a file stem for CSV, a label column for SQL).
type Engine interface {
	SaveRun(name string, records []types.TimeStepRecord) error
	SaveSummary(name string, results []types.ScenarioResult) error
	Close() error
}
