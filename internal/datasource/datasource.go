// Package datasource provides baseline climate data (temperature and
// insolation) to the feedback simulator, one sample per simulated month.
package datasource

import (
	"context"
	"errors"
)

// ErrNoData reports that a single step has no usable data. The simulator
// recovers by skipping the step; it is a normal outcome, not a fault.
var ErrNoData = errors.New("datasource: no data for step")

// Sample is the climate input for one step at the configured point.
type Sample struct {
	BaselineTempC float64
	InsolationWm2 float64
}

// Source supplies per-step climate samples for a fixed geographic point.
//
// Init must be called before At. An Init error means the source is
// unreachable and the whole run should halt with empty output; an At error
// wrapping ErrNoData concerns that step alone.
type Source interface {
	Init(ctx context.Context) error
	At(ctx context.Context, step int) (Sample, error)
}
