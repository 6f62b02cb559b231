package datasource

import (
	"context"
	"math"
	"time"

	"github.com/wodekuailen/climate-model/pkg/solar"
)

// ClearSkySource synthesizes a monthly climatology from the clear-sky
// irradiance model and a sinusoidal baseline temperature. It serves offline
// runs and tests where no gridded dataset is configured, the way the
// original study fell back to synthetic insolation.
type ClearSkySource struct {
	Lat       float64
	Lon       float64
	Altitude  float64
	StartYear int

	// MeanTempC and SeasonalAmplitudeC shape the synthetic baseline
	// temperature: mean + amplitude at the July peak (northern phase).
	MeanTempC          float64
	SeasonalAmplitudeC float64
}

// Init is a no-op; the synthetic source has nothing to open.
func (s *ClearSkySource) Init(ctx context.Context) error {
	return nil
}

// At returns the synthetic sample for the given month offset. The clear-sky
// model supplies insolation; temperature follows a smooth annual cycle.
func (s *ClearSkySource) At(ctx context.Context, step int) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}
	if step < 0 {
		return Sample{}, ErrNoData
	}

	year := s.StartYear + step/12
	month := time.Month(step%12 + 1)

	insolation := solar.MonthlyMeanGHI(year, month, s.Lat, s.Lon, s.Altitude)

	// Annual temperature cycle peaking in July at northern latitudes,
	// January south of the equator.
	phase := float64(month-7) * math.Pi / 6
	if s.Lat < 0 {
		phase = float64(month-1) * math.Pi / 6
	}
	temp := s.MeanTempC + s.SeasonalAmplitudeC*math.Cos(phase)

	return Sample{BaselineTempC: temp, InsolationWm2: insolation}, nil
}
